package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/models"
)

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	info     models.Room
	infoErr  *clients.APIError
	board    pikudo_api_client.ChallengeBoard
	boardErr *clients.APIError
	me       pikudo_api_client.RoomMembership
	players  []models.Player
	owner    models.Player
	leaders  []models.Leader

	startErr *clients.APIError
	endErr   *clients.APIError

	// challengeGate, when set, blocks Challenges until closed.
	// challengeStarted receives one value per Challenges call.
	challengeGate    chan struct{}
	challengeStarted chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls: make(map[string]int),
		info:  models.Room{Code: "ROOM1", Name: "Test room", Rounds: 5, Status: "scheduled"},
		board: pikudo_api_client.ChallengeBoard{
			State:          "scheduled",
			NextBlockInSec: 0,
			Challenges:     []models.Challenge{{ID: "c1", Title: "First challenge"}},
		},
		me:      pikudo_api_client.RoomMembership{Role: "owner", Player: &models.Player{ID: "p1", Nickname: "ana"}},
		players: []models.Player{{ID: "p1", Nickname: "ana"}, {ID: "p2", Nickname: "luis"}},
		owner:   models.Player{ID: "p1", Nickname: "ana"},
		leaders: []models.Leader{{Nickname: "ana", Points: 3}},
	}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) RoomInfo(ctx context.Context, code string) (*models.Room, *clients.APIError) {
	f.record("info")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.info
	return &info, nil
}

func (f *fakeClient) RoomMe(ctx context.Context) (*pikudo_api_client.RoomMembership, *clients.APIError) {
	f.record("me")
	f.mu.Lock()
	defer f.mu.Unlock()
	me := f.me
	return &me, nil
}

func (f *fakeClient) Players(ctx context.Context, code string) ([]models.Player, *clients.APIError) {
	f.record("players")
	return f.players, nil
}

func (f *fakeClient) Owner(ctx context.Context, code string) (*models.Player, *clients.APIError) {
	f.record("owner")
	owner := f.owner
	return &owner, nil
}

func (f *fakeClient) Challenges(ctx context.Context) (*pikudo_api_client.ChallengeBoard, *clients.APIError) {
	f.record("challenges")
	f.mu.Lock()
	gate := f.challengeGate
	started := f.challengeStarted
	boardErr := f.boardErr
	board := f.board
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if boardErr != nil {
		return nil, boardErr
	}
	return &board, nil
}

func (f *fakeClient) Leaderboard(ctx context.Context) ([]models.Leader, *clients.APIError) {
	f.record("leaders")
	return f.leaders, nil
}

func (f *fakeClient) SetRounds(ctx context.Context, code string, rounds int) *clients.APIError {
	f.record("setRounds")
	return nil
}

func (f *fakeClient) StartRoom(ctx context.Context, code string) *clients.APIError {
	f.record("start")
	return f.startErr
}

func (f *fakeClient) LeaveRoom(ctx context.Context) *clients.APIError {
	f.record("leave")
	return nil
}

func (f *fakeClient) LeaveRoomTransfer(ctx context.Context) *clients.APIError {
	f.record("transfer")
	return nil
}

func (f *fakeClient) CloseRoom(ctx context.Context, code string) *clients.APIError {
	f.record("close")
	return nil
}

func (f *fakeClient) EndRoom(ctx context.Context, code string) *clients.APIError {
	f.record("end")
	return f.endErr
}

type fakeSessionStore struct {
	mu      sync.Mutex
	cleared int
}

func (f *fakeSessionStore) ClearRoomSession() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func (f *fakeSessionStore) clearedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Publish(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, value)
}

func (f *fakeNotifier) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func newTestSynchronizer(client *fakeClient) (*Synchronizer, *fakeSessionStore, *fakeNotifier) {
	store := &fakeSessionStore{}
	notifier := &fakeNotifier{}
	s := NewSynchronizer(Config{
		Client:   client,
		Identity: store,
		Notifier: notifier,
		Clock:    clockwork.NewFakeClock(),
		RoomCode: "ROOM1",
	})
	return s, store, notifier
}

func TestInitialRefreshPopulatesSnapshot(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	s.refresh(context.Background(), true)

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, StateScheduled, snap.State)
	assert.Equal(t, "owner", snap.Role)
	assert.Equal(t, 5, snap.Rounds)
	assert.Equal(t, "ana", snap.OwnerNickname)
	require.NotNil(t, snap.Self)
	assert.Equal(t, "p1", snap.Self.ID)
	assert.Len(t, snap.Players, 2)
	assert.Len(t, snap.Challenges, 1)
	assert.Len(t, snap.Leaders, 1)
}

func TestRefreshIgnoresOutOfRangeRounds(t *testing.T) {
	client := newFakeClient()
	client.info.Rounds = 99
	s, _, _ := newTestSynchronizer(client)

	s.refresh(context.Background(), true)

	assert.Equal(t, 4, s.Snapshot().Rounds)
}

func TestChallengeErrorSurfacesAndRecovers(t *testing.T) {
	client := newFakeClient()
	client.boardErr = &clients.APIError{Status: 500, Code: clients.ErrInternal}
	s, _, notifier := newTestSynchronizer(client)

	ctx := context.Background()
	s.refresh(ctx, true)
	assert.Equal(t, clients.ErrInternal, s.Snapshot().LastError)
	assert.Equal(t, []string{clients.ErrInternal}, notifier.published())

	client.mu.Lock()
	client.boardErr = nil
	client.mu.Unlock()
	s.pollOnce(ctx)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestStaleScheduledNeverDisplacesRunning(t *testing.T) {
	client := newFakeClient()
	client.board.State = "running"
	s, _, _ := newTestSynchronizer(client)

	ctx := context.Background()
	s.refresh(ctx, true)
	assert.Equal(t, StateRunning, s.Snapshot().State)

	// A poll response carrying the pre-start room info arrives late.
	s.loadInfo(ctx)
	assert.Equal(t, StateRunning, s.Snapshot().State)
}

func TestEndLatchesEndedInPlace(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	ctx := context.Background()
	s.refresh(ctx, true)
	require.NoError(t, s.End(ctx))

	snap := s.Snapshot()
	assert.Equal(t, StateEnded, snap.State)
	// Ending shows the final summary in place; it is not an exit.
	assert.False(t, s.ExitAllowed())

	// Every later snapshot keeps ended no matter what the server reports.
	s.pollOnce(ctx)
	assert.Equal(t, StateEnded, s.Snapshot().State)
}

func TestEndPropagatesServerError(t *testing.T) {
	client := newFakeClient()
	client.endErr = &clients.APIError{Status: 403, Code: clients.ErrForbidden}
	s, _, _ := newTestSynchronizer(client)

	err := s.End(context.Background())
	require.Error(t, err)
	assert.Equal(t, clients.ErrForbidden, err.Error())
	assert.Equal(t, StateScheduled, s.Snapshot().State)
}

func TestStartPushesRoundsAndLatchesRunning(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	require.NoError(t, s.Start(context.Background(), 6))
	assert.Equal(t, 1, client.count("setRounds"))
	assert.Equal(t, 1, client.count("start"))
	assert.Equal(t, StateRunning, s.Snapshot().State)
}

func TestStartSkipsInvalidRounds(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	require.NoError(t, s.Start(context.Background(), 0))
	assert.Equal(t, 0, client.count("setRounds"))
	assert.Equal(t, 1, client.count("start"))
}

func TestStartFailureLeavesStateUntouched(t *testing.T) {
	client := newFakeClient()
	client.startErr = &clients.APIError{Status: 409, Code: "ROOM_ALREADY_STARTED"}
	s, _, _ := newTestSynchronizer(client)

	err := s.Start(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, "ROOM_ALREADY_STARTED", err.Error())
	assert.Equal(t, StateScheduled, s.Snapshot().State)
}

func TestLeaveClearsLocalSessionBeforeServerCall(t *testing.T) {
	client := newFakeClient()
	s, store, _ := newTestSynchronizer(client)

	require.NoError(t, s.Leave(context.Background()))
	assert.True(t, s.ExitAllowed())
	assert.Equal(t, 1, store.clearedCount())
	assert.Equal(t, 1, client.count("leave"))
}

func TestTransferAndLeaveExitsLocallyEvenOnServerError(t *testing.T) {
	client := newFakeClient()
	s, store, _ := newTestSynchronizer(client)

	require.NoError(t, s.TransferAndLeave(context.Background()))
	assert.True(t, s.ExitAllowed())
	assert.Equal(t, 1, store.clearedCount())
}

func TestVanishedRoomClearsSessionOnce(t *testing.T) {
	client := newFakeClient()
	client.boardErr = &clients.APIError{Status: 404, Code: clients.ErrNotFound}

	store := &fakeSessionStore{}
	var vanished int
	s := NewSynchronizer(Config{
		Client:     client,
		Identity:   store,
		Clock:      clockwork.NewFakeClock(),
		RoomCode:   "ROOM1",
		OnVanished: func() { vanished++ },
	})

	ctx := context.Background()
	s.refresh(ctx, true)
	assert.True(t, s.ExitAllowed())
	assert.Equal(t, 1, store.clearedCount())
	assert.Equal(t, 1, vanished)

	// A second failing poll must not re-run the recovery.
	s.pollOnce(ctx)
	assert.Equal(t, 1, store.clearedCount())
	assert.Equal(t, 1, vanished)
}

func TestVanishTriggersOnSessionCode(t *testing.T) {
	client := newFakeClient()
	client.boardErr = &clients.APIError{Status: 409, Code: "ROOM_NOT_FOUND"}
	s, store, _ := newTestSynchronizer(client)

	s.refresh(context.Background(), true)
	assert.True(t, s.ExitAllowed())
	assert.Equal(t, 1, store.clearedCount())
}

func TestCountdownDecrementsOnlyWhileRunning(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	ctx := context.Background()
	s.apply(ctx, func(snap *Snapshot) {
		snap.State = StateRunning
		snap.NextBlockInSec = 2
	})

	s.tickCountdown()
	assert.Equal(t, 1, s.Snapshot().NextBlockInSec)
	s.tickCountdown()
	s.tickCountdown()
	assert.Equal(t, 0, s.Snapshot().NextBlockInSec, "countdown floors at zero")

	s.apply(ctx, func(snap *Snapshot) {
		snap.State = StateScheduled
		snap.NextBlockInSec = 5
	})
	s.tickCountdown()
	assert.Equal(t, 5, s.Snapshot().NextBlockInSec, "no countdown before start")
}

func TestPollTickSkippedWhileBatchInFlight(t *testing.T) {
	client := newFakeClient()
	client.challengeStarted = make(chan struct{}, 16)

	clock := clockwork.NewFakeClock()
	store := &fakeSessionStore{}
	s := NewSynchronizer(Config{
		Client:       client,
		Identity:     store,
		Clock:        clock,
		RoomCode:     "ROOM1",
		PollInterval: 15 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	// Initial refresh completes before the tickers exist.
	<-client.challengeStarted
	require.NoError(t, clock.BlockUntilContext(ctx, 2))

	// Block the next batch mid-flight.
	gate := make(chan struct{})
	client.mu.Lock()
	client.challengeGate = gate
	client.mu.Unlock()

	clock.Advance(15 * time.Second)
	<-client.challengeStarted // first poll batch now stuck on the gate

	// A second tick while the batch is outstanding must start nothing.
	clock.Advance(15 * time.Second)
	select {
	case <-client.challengeStarted:
		t.Fatal("tick during in-flight poll must be a no-op")
	case <-time.After(100 * time.Millisecond):
	}

	// Release the batch; the next tick polls again.
	client.mu.Lock()
	client.challengeGate = nil
	client.mu.Unlock()
	close(gate)
	time.Sleep(50 * time.Millisecond)

	clock.Advance(15 * time.Second)
	select {
	case <-client.challengeStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected polling to resume after the batch settled")
	}

	cancel()
	<-done
}

func TestSnapshotIsACopy(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)
	s.refresh(context.Background(), true)

	snap := s.Snapshot()
	snap.Players[0].Nickname = "mutated"
	snap.Self.Nickname = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "ana", fresh.Players[0].Nickname)
	assert.Equal(t, "ana", fresh.Self.Nickname)
}

func TestCanceledContextDiscardsLateResponses(t *testing.T) {
	client := newFakeClient()
	s, _, _ := newTestSynchronizer(client)

	ctx, cancel := context.WithCancel(context.Background())
	s.refresh(ctx, true)
	cancel()

	client.mu.Lock()
	client.me.Role = "member"
	client.mu.Unlock()
	s.loadMe(ctx)

	assert.Equal(t, "owner", s.Snapshot().Role)
}
