package final

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/models"
)

type fakeFinalClient struct {
	summary    *pikudo_api_client.FinalSummary
	summaryErr *clients.APIError
	players    []models.Player
	playerRes  *pikudo_api_client.FinalPlayerMedia
}

func (f *fakeFinalClient) FinalSummary(ctx context.Context) (*pikudo_api_client.FinalSummary, *clients.APIError) {
	return f.summary, f.summaryErr
}

func (f *fakeFinalClient) FinalPlayers(ctx context.Context) ([]models.Player, *clients.APIError) {
	return f.players, nil
}

func (f *fakeFinalClient) FinalChallenges(ctx context.Context) ([]models.Challenge, *clients.APIError) {
	return nil, nil
}

func (f *fakeFinalClient) FinalPlayer(ctx context.Context, playerID string) (*pikudo_api_client.FinalPlayerMedia, *clients.APIError) {
	return f.playerRes, nil
}

func (f *fakeFinalClient) FinalChallenge(ctx context.Context, challengeID string) (*pikudo_api_client.FinalChallengeMedia, *clients.APIError) {
	return nil, nil
}

type memMarkers struct {
	saved map[string]map[string]bool
}

func newMemMarkers() *memMarkers {
	return &memMarkers{saved: make(map[string]map[string]bool)}
}

func (m *memMarkers) MarkSaved(scope, mediaID string) error {
	if m.saved[scope] == nil {
		m.saved[scope] = make(map[string]bool)
	}
	m.saved[scope][mediaID] = true
	return nil
}

func (m *memMarkers) SavedSet(scope string) (map[string]bool, error) {
	out := make(map[string]bool, len(m.saved[scope]))
	for id := range m.saved[scope] {
		out[id] = true
	}
	return out, nil
}

func TestSummarySurfacesBackendCode(t *testing.T) {
	client := &fakeFinalClient{summaryErr: &clients.APIError{Status: 409, Code: "GAME_NOT_ENDED"}}
	app := NewApp(client, newMemMarkers(), "ROOM1")

	_, err := app.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, "GAME_NOT_ENDED", err.Error())
}

func TestSummaryReturnsRanking(t *testing.T) {
	client := &fakeFinalClient{summary: &pikudo_api_client.FinalSummary{
		RoomName: "Despedida",
		Leaders:  []models.Leader{{Nickname: "ana", Points: 9}, {Nickname: "luis", Points: 7}},
	}}
	app := NewApp(client, newMemMarkers(), "ROOM1")

	summary, err := app.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Despedida", summary.RoomName)
	assert.Len(t, summary.Leaders, 2)
}

func TestSavedMarkersScopedPerRoomModeAndID(t *testing.T) {
	markers := newMemMarkers()
	app := NewApp(&fakeFinalClient{}, markers, "ROOM1")

	require.NoError(t, app.MarkSaved(ScopePlayer, "p1", "m1"))
	require.NoError(t, app.MarkSaved(ScopeChallenge, "c1", "m1"))

	saved, err := app.Saved(ScopePlayer, "p1")
	require.NoError(t, err)
	assert.True(t, saved["m1"])

	// Same media under a different player scope is not marked.
	other, err := app.Saved(ScopePlayer, "p2")
	require.NoError(t, err)
	assert.False(t, other["m1"])

	// A different room tracks separately.
	otherRoom := NewApp(&fakeFinalClient{}, markers, "ROOM2")
	saved, err = otherRoom.Saved(ScopePlayer, "p1")
	require.NoError(t, err)
	assert.False(t, saved["m1"])
}
