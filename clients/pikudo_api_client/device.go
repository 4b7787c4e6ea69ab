package pikudo_api_client

import (
	"context"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/internal/models"
)

// RegisterDeviceResponse carries the session token issued for this device
// plus the backend's view of the player.
type RegisterDeviceResponse struct {
	SessionToken string         `json:"sessionToken"`
	Player       *models.Player `json:"player"`
}

// RegisterDevice binds a nickname to this device and returns a session
// token. An existing session token, when present, is still forwarded so the
// backend can migrate the session instead of minting a fresh identity.
func (c *PikudoApiClient) RegisterDevice(ctx context.Context, nickname string) (*RegisterDeviceResponse, *clients.APIError) {
	deviceID, err := c.Identity().DeviceID()
	if err != nil {
		return nil, &clients.APIError{Status: 0, Code: clients.ErrRequestFailed}
	}
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   DeviceRegisterEndpoint,
		JSON: map[string]string{
			"nickname": nickname,
			"deviceId": deviceID,
		},
	})
	return decode[RegisterDeviceResponse](res)
}

// MeResponse is the device-level identity probe payload.
type MeResponse struct {
	Player *models.Player `json:"player"`
}

// Me reports which player, if any, this device is currently registered as.
func (c *PikudoApiClient) Me(ctx context.Context) (*MeResponse, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: MeEndpoint})
	return decode[MeResponse](res)
}

// VersionInfo is the forced-update check payload.
type VersionInfo struct {
	RevisionVersion string `json:"revisionVersion"`
	ClientVersion   string `json:"clientVersion"`
}

// AppVersion fetches the backend's accepted client versions. Unauthenticated.
func (c *PikudoApiClient) AppVersion(ctx context.Context) (*VersionInfo, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: AppVersionEndpoint, NoAuth: true})
	return decode[VersionInfo](res)
}
