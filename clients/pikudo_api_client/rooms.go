package pikudo_api_client

import (
	"context"
	"net/url"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/internal/models"
)

type roomResponse struct {
	Room *models.Room `json:"room"`
}

// CreateRoom opens a new room owned by this device's player.
func (c *PikudoApiClient) CreateRoom(ctx context.Context, rounds int) (*models.Room, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomCreateEndpoint,
		JSON:   map[string]int{"rounds": rounds},
	})
	payload, err := decode[roomResponse](res)
	if err != nil {
		return nil, err
	}
	if payload.Room == nil || payload.Room.Code == "" {
		return nil, &clients.APIError{Status: res.Status, Code: "ROOM_CREATE_FAILED"}
	}
	return payload.Room, nil
}

// JoinRoom adds this device's player to the room with the given code.
func (c *PikudoApiClient) JoinRoom(ctx context.Context, code string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomJoinEndpoint,
		JSON:   map[string]string{"code": code},
	})
	return decodeOK(res)
}

// RoomInfo fetches the room's configuration and lifecycle status.
func (c *PikudoApiClient) RoomInfo(ctx context.Context, code string) (*models.Room, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Path: RoomInfoEndpoint + "?code=" + url.QueryEscape(code),
	})
	payload, err := decode[roomResponse](res)
	if err != nil {
		return nil, err
	}
	if payload.Room == nil {
		return nil, &clients.APIError{Status: res.Status, Code: clients.ErrRequestFailed}
	}
	return payload.Room, nil
}

// RoomMembership is this device's standing inside its current room. Role is
// server-derived on every call, never asserted by the client.
type RoomMembership struct {
	Role   string         `json:"role"`
	Player *models.Player `json:"player"`
}

// RoomMe reports the caller's role and player record in its current room.
func (c *PikudoApiClient) RoomMe(ctx context.Context) (*RoomMembership, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: RoomMeEndpoint})
	payload, err := decode[RoomMembership](res)
	if err != nil {
		return nil, err
	}
	if payload.Role != "owner" {
		payload.Role = "member"
	}
	return payload, nil
}

// Players lists the room's members. Unauthenticated.
func (c *PikudoApiClient) Players(ctx context.Context, code string) ([]models.Player, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Path:   RoomPlayersEndpoint + "?code=" + url.QueryEscape(code),
		NoAuth: true,
	})
	payload, err := decode[struct {
		Players []models.Player `json:"players"`
	}](res)
	if err != nil {
		return nil, err
	}
	return payload.Players, nil
}

// Owner identifies the room's administrator. Unauthenticated.
func (c *PikudoApiClient) Owner(ctx context.Context, code string) (*models.Player, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Path:   RoomOwnerEndpoint + "?code=" + url.QueryEscape(code),
		NoAuth: true,
	})
	payload, err := decode[struct {
		Owner *models.Player `json:"owner"`
	}](res)
	if err != nil {
		return nil, err
	}
	if payload.Owner == nil {
		return nil, &clients.APIError{Status: res.Status, Code: "OWNER_NOT_FOUND"}
	}
	return payload.Owner, nil
}

// SetRounds updates the round count before the game starts. Owner only.
func (c *PikudoApiClient) SetRounds(ctx context.Context, code string, rounds int) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomRoundsEndpoint,
		JSON:   map[string]any{"code": code, "rounds": rounds},
	})
	return decodeOK(res)
}

// StartRoom begins the game for every player. Owner only.
func (c *PikudoApiClient) StartRoom(ctx context.Context, code string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomStartEndpoint,
		JSON:   map[string]string{"code": code},
	})
	return decodeOK(res)
}

// LeaveRoom detaches this device's player from its current room.
func (c *PikudoApiClient) LeaveRoom(ctx context.Context) *clients.APIError {
	res := c.Do(ctx, clients.Request{Method: "POST", Path: RoomLeaveEndpoint})
	return decodeOK(res)
}

// LeaveRoomTransfer reassigns ownership to another member, then leaves.
func (c *PikudoApiClient) LeaveRoomTransfer(ctx context.Context) *clients.APIError {
	res := c.Do(ctx, clients.Request{Method: "POST", Path: RoomLeaveTransferEndpoint})
	return decodeOK(res)
}

// CloseRoom closes the room for all players. Owner only.
func (c *PikudoApiClient) CloseRoom(ctx context.Context, code string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomCloseEndpoint,
		JSON:   map[string]string{"code": code},
	})
	return decodeOK(res)
}

// EndRoom marks the game finished, leaving the room browsable. Owner only.
func (c *PikudoApiClient) EndRoom(ctx context.Context, code string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   RoomEndEndpoint,
		JSON:   map[string]string{"code": code},
	})
	return decodeOK(res)
}
