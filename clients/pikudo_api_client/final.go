package pikudo_api_client

import (
	"context"
	"net/url"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/internal/models"
)

// FinalSummary is the end-of-game recap: room name plus final ranking.
type FinalSummary struct {
	RoomName string          `json:"roomName"`
	Leaders  []models.Leader `json:"leaders"`
}

func (c *PikudoApiClient) FinalSummary(ctx context.Context) (*FinalSummary, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: FinalSummaryEndpoint})
	return decode[FinalSummary](res)
}

// FinalPlayers lists players available for per-player media browsing.
func (c *PikudoApiClient) FinalPlayers(ctx context.Context) ([]models.Player, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: FinalPlayersEndpoint})
	payload, err := decode[struct {
		Players []models.Player `json:"players"`
	}](res)
	if err != nil {
		return nil, err
	}
	return payload.Players, nil
}

// FinalChallenges lists challenges available for per-challenge browsing.
func (c *PikudoApiClient) FinalChallenges(ctx context.Context) ([]models.Challenge, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: FinalChallengesEndpoint})
	payload, err := decode[struct {
		Challenges []models.Challenge `json:"challenges"`
	}](res)
	if err != nil {
		return nil, err
	}
	return payload.Challenges, nil
}

// FinalPlayerMedia is everything one player submitted during the game.
type FinalPlayerMedia struct {
	Player    models.Player      `json:"player"`
	Completed []models.MediaItem `json:"completed"`
}

func (c *PikudoApiClient) FinalPlayer(ctx context.Context, playerID string) (*FinalPlayerMedia, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Path: FinalPlayerEndpoint + "?playerId=" + url.QueryEscape(playerID),
	})
	return decode[FinalPlayerMedia](res)
}

// FinalChallengeMedia is every submission for one challenge.
type FinalChallengeMedia struct {
	Challenge models.Challenge   `json:"challenge"`
	Media     []models.MediaItem `json:"media"`
}

func (c *PikudoApiClient) FinalChallenge(ctx context.Context, challengeID string) (*FinalChallengeMedia, *clients.APIError) {
	res := c.Do(ctx, clients.Request{
		Path: FinalChallengeEndpoint + "?challengeId=" + url.QueryEscape(challengeID),
	})
	return decode[FinalChallengeMedia](res)
}
