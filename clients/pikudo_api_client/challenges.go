package pikudo_api_client

import (
	"context"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/internal/models"
)

// ChallengeBoard is the per-player challenge listing plus the room's
// lifecycle state and the countdown to the next challenge wave.
type ChallengeBoard struct {
	State          string             `json:"state"`
	NextBlockInSec int                `json:"nextBlockInSec"`
	Challenges     []models.Challenge `json:"challenges"`
}

// Challenges fetches this player's challenge board.
func (c *PikudoApiClient) Challenges(ctx context.Context) (*ChallengeBoard, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: ChallengesEndpoint})
	return decode[ChallengeBoard](res)
}

// CompleteChallenge marks an uploaded challenge as done, scoring it.
func (c *PikudoApiClient) CompleteChallenge(ctx context.Context, playerChallengeID string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   CompleteEndpoint,
		JSON:   map[string]string{"playerChallengeId": playerChallengeID},
	})
	return decodeOK(res)
}

// DeleteChallengeMedia removes a submission so the challenge can be redone.
func (c *PikudoApiClient) DeleteChallengeMedia(ctx context.Context, playerChallengeID string) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   ChallengeDeleteEndpoint,
		JSON:   map[string]string{"playerChallengeId": playerChallengeID},
	})
	return decodeOK(res)
}

// Leaderboard fetches the room's ranking, ordered by the server.
func (c *PikudoApiClient) Leaderboard(ctx context.Context) ([]models.Leader, *clients.APIError) {
	res := c.Do(ctx, clients.Request{Path: LeaderboardEndpoint})
	payload, err := decode[struct {
		Leaders []models.Leader `json:"leaders"`
	}](res)
	if err != nil {
		return nil, err
	}
	return payload.Leaders, nil
}
