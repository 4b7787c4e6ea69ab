// Package session covers everything that happens before a room view
// exists: device registration, room create/join, and resuming the last
// room after a restart.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/models"
)

// Client defines what the session app needs from the API client.
type Client interface {
	RegisterDevice(ctx context.Context, nickname string) (*pikudo_api_client.RegisterDeviceResponse, *clients.APIError)
	Me(ctx context.Context) (*pikudo_api_client.MeResponse, *clients.APIError)
	CreateRoom(ctx context.Context, rounds int) (*models.Room, *clients.APIError)
	JoinRoom(ctx context.Context, code string) *clients.APIError
}

// Identity defines what the session app needs from the identity app.
type Identity interface {
	SetSessionToken(token string) error
	SetNickname(nickname string) error
	Nickname() (string, bool)
	LastRoom() (string, bool)
	SetLastRoom(code string) error
	ClearRoomSession() error
}

type App struct {
	client   Client
	identity Identity
}

func NewApp(client Client, identity Identity) *App {
	return &App{client: client, identity: identity}
}

var roomCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidRoomCode accepts 4-10 alphanumeric characters.
func ValidRoomCode(code string) bool {
	v := strings.TrimSpace(code)
	if len(v) < 4 || len(v) > 10 {
		return false
	}
	return roomCodePattern.MatchString(v)
}

// ValidNickname accepts 4-12 characters after trimming.
func ValidNickname(nickname string) bool {
	n := len(strings.TrimSpace(nickname))
	return n >= 4 && n <= 12
}

// Register binds a nickname to this device, persisting the issued session
// token and the nickname for later resumes.
func (a *App) Register(ctx context.Context, nickname string) error {
	nick := strings.TrimSpace(nickname)
	if !ValidNickname(nick) {
		return errors.New("INVALID_NICKNAME")
	}

	res, apiErr := a.client.RegisterDevice(ctx, nick)
	if apiErr != nil {
		return errors.New(apiErr.Code)
	}
	if res.SessionToken != "" {
		if err := a.identity.SetSessionToken(res.SessionToken); err != nil {
			return err
		}
	}
	if err := a.identity.SetNickname(nick); err != nil {
		log.Warn().Err(err).Msg("failed to cache nickname")
	}
	return nil
}

// CreateRoom opens a room and records it as the last room for auto-resume.
func (a *App) CreateRoom(ctx context.Context, rounds int) (string, error) {
	room, apiErr := a.client.CreateRoom(ctx, rounds)
	if apiErr != nil {
		return "", errors.New(apiErr.Code)
	}
	if err := a.identity.SetLastRoom(room.Code); err != nil {
		log.Warn().Err(err).Msg("failed to persist last room")
	}
	return room.Code, nil
}

// JoinRoom validates the code, joins, and records the room for auto-resume.
func (a *App) JoinRoom(ctx context.Context, code string) error {
	v := strings.TrimSpace(code)
	if !ValidRoomCode(v) {
		return errors.New("INVALID_ROOM_CODE")
	}
	if apiErr := a.client.JoinRoom(ctx, v); apiErr != nil {
		return errors.New(apiErr.Code)
	}
	if err := a.identity.SetLastRoom(v); err != nil {
		log.Warn().Err(err).Msg("failed to persist last room")
	}
	return nil
}

// Resume returns the stored room code to rejoin, if any. It probes the
// backend's view of this device first: a 401/404 means the cached session
// is dead, so the advisory state is cleared and no resume happens. Any
// other probe failure (network, 5xx) never blocks the resume - the room
// view itself re-validates on mount.
func (a *App) Resume(ctx context.Context) (string, bool) {
	me, apiErr := a.client.Me(ctx)
	if apiErr != nil {
		if apiErr.Status == 401 || apiErr.Status == 404 {
			if err := a.identity.ClearRoomSession(); err != nil {
				log.Warn().Err(err).Msg("failed to clear stale session")
			}
			return "", false
		}
		return a.identity.LastRoom()
	}
	if me.Player != nil {
		if nick := strings.TrimSpace(me.Player.Nickname); nick != "" {
			if err := a.identity.SetNickname(nick); err != nil {
				log.Warn().Err(err).Msg("failed to adopt server nickname")
			}
		}
	}
	return a.identity.LastRoom()
}
