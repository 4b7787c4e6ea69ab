// Package final serves the end-of-game views: the summary with the final
// ranking, and per-player / per-challenge media browsing with local
// bookkeeping of which media the user already saved to the device.
package final

import (
	"context"
	"errors"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/models"
)

// Client defines what the final app needs from the API client.
type Client interface {
	FinalSummary(ctx context.Context) (*pikudo_api_client.FinalSummary, *clients.APIError)
	FinalPlayers(ctx context.Context) ([]models.Player, *clients.APIError)
	FinalChallenges(ctx context.Context) ([]models.Challenge, *clients.APIError)
	FinalPlayer(ctx context.Context, playerID string) (*pikudo_api_client.FinalPlayerMedia, *clients.APIError)
	FinalChallenge(ctx context.Context, challengeID string) (*pikudo_api_client.FinalChallengeMedia, *clients.APIError)
}

// Markers defines what the final app needs from the persistent store.
type Markers interface {
	MarkSaved(scope, mediaID string) error
	SavedSet(scope string) (map[string]bool, error)
}

// Browsing scopes for saved-media bookkeeping.
const (
	ScopePlayer    = "player"
	ScopeChallenge = "challenge"
)

type App struct {
	client   Client
	markers  Markers
	roomCode string
}

func NewApp(client Client, markers Markers, roomCode string) *App {
	return &App{client: client, markers: markers, roomCode: roomCode}
}

func (a *App) Summary(ctx context.Context) (*pikudo_api_client.FinalSummary, error) {
	summary, apiErr := a.client.FinalSummary(ctx)
	if apiErr != nil {
		return nil, errors.New(apiErr.Code)
	}
	return summary, nil
}

func (a *App) Players(ctx context.Context) ([]models.Player, error) {
	players, apiErr := a.client.FinalPlayers(ctx)
	if apiErr != nil {
		return nil, errors.New(apiErr.Code)
	}
	return players, nil
}

func (a *App) Challenges(ctx context.Context) ([]models.Challenge, error) {
	challenges, apiErr := a.client.FinalChallenges(ctx)
	if apiErr != nil {
		return nil, errors.New(apiErr.Code)
	}
	return challenges, nil
}

func (a *App) PlayerMedia(ctx context.Context, playerID string) (*pikudo_api_client.FinalPlayerMedia, error) {
	media, apiErr := a.client.FinalPlayer(ctx, playerID)
	if apiErr != nil {
		return nil, errors.New(apiErr.Code)
	}
	return media, nil
}

func (a *App) ChallengeMedia(ctx context.Context, challengeID string) (*pikudo_api_client.FinalChallengeMedia, error) {
	media, apiErr := a.client.FinalChallenge(ctx, challengeID)
	if apiErr != nil {
		return nil, errors.New(apiErr.Code)
	}
	return media, nil
}

// savedScope keys marker rows per room, browse mode and scope id, so the
// same media listed under a player and under a challenge track separately.
func (a *App) savedScope(mode, scopeID string) string {
	return "pikudo:saved:" + a.roomCode + ":" + mode + ":" + scopeID
}

// MarkSaved records that a media item was saved to the device.
func (a *App) MarkSaved(mode, scopeID, mediaID string) error {
	return a.markers.MarkSaved(a.savedScope(mode, scopeID), mediaID)
}

// Saved returns the ids already saved within one browse scope.
func (a *App) Saved(mode, scopeID string) (map[string]bool, error) {
	return a.markers.SavedSet(a.savedScope(mode, scopeID))
}
