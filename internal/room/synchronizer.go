// Package room keeps a local view of one PIKUDO room consistent with the
// backend. The backend owns all real state; this synchronizer polls it on a
// fixed cadence, folds snapshots into a monotonic local state, and exposes
// the mutating room operations.
package room

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/models"
)

const DefaultPollInterval = 15 * time.Second

// Client defines what the synchronizer needs from the API client.
type Client interface {
	RoomInfo(ctx context.Context, code string) (*models.Room, *clients.APIError)
	RoomMe(ctx context.Context) (*pikudo_api_client.RoomMembership, *clients.APIError)
	Players(ctx context.Context, code string) ([]models.Player, *clients.APIError)
	Owner(ctx context.Context, code string) (*models.Player, *clients.APIError)
	Challenges(ctx context.Context) (*pikudo_api_client.ChallengeBoard, *clients.APIError)
	Leaderboard(ctx context.Context) ([]models.Leader, *clients.APIError)
	SetRounds(ctx context.Context, code string, rounds int) *clients.APIError
	StartRoom(ctx context.Context, code string) *clients.APIError
	LeaveRoom(ctx context.Context) *clients.APIError
	LeaveRoomTransfer(ctx context.Context) *clients.APIError
	CloseRoom(ctx context.Context, code string) *clients.APIError
	EndRoom(ctx context.Context, code string) *clients.APIError
}

// Identity defines what the synchronizer needs from the identity app.
type Identity interface {
	ClearRoomSession() error
}

// Notifier receives error codes worth surfacing to the user.
type Notifier interface {
	Publish(value string)
}

// Snapshot is the room view handed to the frontend. It is a value copy;
// mutating it does not touch the synchronizer.
type Snapshot struct {
	Loading        bool
	State          State
	Role           string
	Rounds         int
	RoomStartsAt   string
	OwnerNickname  string
	Self           *models.Player
	Players        []models.Player
	Challenges     []models.Challenge
	Leaders        []models.Leader
	NextBlockInSec int
	LastError      string
}

// Config wires a Synchronizer. Clock and PollInterval default to the real
// clock and DefaultPollInterval.
type Config struct {
	Client       Client
	Identity     Identity
	Notifier     Notifier
	Clock        clockwork.Clock
	RoomCode     string
	PollInterval time.Duration
	// OnVanished fires once when the server reports the room gone for this
	// device (401/404 on a room-scoped read). Local session state is already
	// cleared when it runs.
	OnVanished func()
}

type Synchronizer struct {
	client       Client
	identity     Identity
	notifier     Notifier
	clock        clockwork.Clock
	roomCode     string
	pollInterval time.Duration
	onVanished   func()

	mu   sync.Mutex
	snap Snapshot

	pollBusy  atomic.Bool
	allowExit atomic.Bool
	vanished  atomic.Bool
}

func NewSynchronizer(cfg Config) *Synchronizer {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Synchronizer{
		client:       cfg.Client,
		identity:     cfg.Identity,
		notifier:     cfg.Notifier,
		clock:        clock,
		roomCode:     cfg.RoomCode,
		pollInterval: interval,
		onVanished:   cfg.OnVanished,
		snap: Snapshot{
			Loading: true,
			State:   StateScheduled,
			Role:    "member",
			Rounds:  4,
		},
	}
}

func (s *Synchronizer) RoomCode() string {
	return s.roomCode
}

// Snapshot returns a copy of the current room view.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	snap.Players = append([]models.Player(nil), s.snap.Players...)
	snap.Challenges = append([]models.Challenge(nil), s.snap.Challenges...)
	snap.Leaders = append([]models.Leader(nil), s.snap.Leaders...)
	if s.snap.Self != nil {
		self := *s.snap.Self
		snap.Self = &self
	}
	return snap
}

// Run drives the synchronizer until ctx is canceled: one initial full
// batch, then a fixed-interval refresh loop plus a one-second cosmetic
// countdown tick. Poll ticks that fire while a batch is still in flight are
// skipped outright, so at most one batch is outstanding at any instant.
func (s *Synchronizer) Run(ctx context.Context) {
	s.refresh(ctx, true)

	poll := s.clock.NewTicker(s.pollInterval)
	defer poll.Stop()
	countdown := s.clock.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.Chan():
			if !s.pollBusy.CompareAndSwap(false, true) {
				log.Debug().Str("room", s.roomCode).Msg("poll still in flight - skipping tick")
				continue
			}
			go func() {
				defer s.pollBusy.Store(false)
				s.pollOnce(ctx)
			}()
		case <-countdown.Chan():
			s.tickCountdown()
		}
	}
}

// refresh runs the full fetch batch. initial additionally drives the
// loading flag, which clears only after every fetch has settled.
func (s *Synchronizer) refresh(ctx context.Context, initial bool) {
	if initial {
		s.apply(ctx, func(snap *Snapshot) { snap.Loading = true })
	}

	var wg sync.WaitGroup
	for _, load := range []func(context.Context){
		s.loadInfo, s.loadMe, s.loadPlayers, s.loadOwner, s.loadChallenges, s.loadLeaders,
	} {
		wg.Add(1)
		go func(fn func(context.Context)) {
			defer wg.Done()
			fn(ctx)
		}(load)
	}
	wg.Wait()

	if initial {
		s.apply(ctx, func(snap *Snapshot) { snap.Loading = false })
	}
}

// pollOnce runs one refresh batch. While the room is still scheduled the
// batch includes membership and config reads, since those can change before
// start; afterwards it narrows to challenges, leaderboard and self.
func (s *Synchronizer) pollOnce(ctx context.Context) {
	loads := []func(context.Context){s.loadChallenges, s.loadLeaders, s.loadMe}
	if s.currentState() == StateScheduled {
		loads = append(loads, s.loadPlayers, s.loadOwner, s.loadInfo)
	}

	var wg sync.WaitGroup
	for _, load := range loads {
		wg.Add(1)
		go func(fn func(context.Context)) {
			defer wg.Done()
			fn(ctx)
		}(load)
	}
	wg.Wait()
}

func (s *Synchronizer) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.State
}

// apply mutates the snapshot unless the session was canceled; responses
// arriving after unmount are discarded, never applied.
func (s *Synchronizer) apply(ctx context.Context, fn func(*Snapshot)) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

func (s *Synchronizer) mergeState(ctx context.Context, raw string) {
	incoming, ok := ParseState(raw)
	if !ok {
		return
	}
	s.apply(ctx, func(snap *Snapshot) {
		snap.State = Merge(snap.State, incoming)
	})
}

func (s *Synchronizer) tickCountdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State != StateRunning && s.snap.State != StatePaused {
		return
	}
	if s.snap.NextBlockInSec > 0 {
		s.snap.NextBlockInSec--
	}
}

// roomVanished reports whether an API failure means the room is no longer
// valid for this device.
func roomVanished(err *clients.APIError) bool {
	if err == nil {
		return false
	}
	return err.Status == 401 || err.Status == 404 || err.Code == "ROOM_NOT_FOUND"
}

// vanish runs the sole automatic recovery path: clear local session and
// resume pointer, permit exit, and hand control back to the entry point.
func (s *Synchronizer) vanish() {
	if !s.vanished.CompareAndSwap(false, true) {
		return
	}
	log.Warn().Str("room", s.roomCode).Msg("room no longer valid for this device")
	s.allowExit.Store(true)
	if err := s.identity.ClearRoomSession(); err != nil {
		log.Error().Err(err).Msg("failed to clear room session")
	}
	if s.onVanished != nil {
		s.onVanished()
	}
}

func (s *Synchronizer) loadInfo(ctx context.Context) {
	info, err := s.client.RoomInfo(ctx, s.roomCode)
	if err != nil {
		if roomVanished(err) {
			s.vanish()
		}
		return
	}
	s.mergeState(ctx, info.Status)
	s.apply(ctx, func(snap *Snapshot) {
		if info.Rounds >= 1 && info.Rounds <= 10 {
			snap.Rounds = info.Rounds
		}
		if info.StartsAt != "" {
			snap.RoomStartsAt = info.StartsAt
		}
	})
}

func (s *Synchronizer) loadMe(ctx context.Context) {
	me, err := s.client.RoomMe(ctx)
	if err != nil {
		if roomVanished(err) {
			s.vanish()
		}
		return
	}
	s.apply(ctx, func(snap *Snapshot) {
		snap.Role = me.Role
		if me.Player != nil && me.Player.ID != "" {
			snap.Self = me.Player
		}
	})
}

func (s *Synchronizer) loadPlayers(ctx context.Context) {
	players, err := s.client.Players(ctx, s.roomCode)
	if err != nil {
		if roomVanished(err) {
			s.vanish()
		}
		return
	}
	s.apply(ctx, func(snap *Snapshot) { snap.Players = players })
}

func (s *Synchronizer) loadOwner(ctx context.Context) {
	owner, err := s.client.Owner(ctx, s.roomCode)
	if err != nil {
		if roomVanished(err) {
			s.vanish()
		}
		return
	}
	s.apply(ctx, func(snap *Snapshot) { snap.OwnerNickname = owner.Nickname })
}

// loadChallenges is the one fetch whose failure is surfaced: the challenge
// board is the heart of the running view, so its errors reach the user via
// the notifier instead of silently leaving state stale.
func (s *Synchronizer) loadChallenges(ctx context.Context) {
	board, err := s.client.Challenges(ctx)
	if err != nil {
		if roomVanished(err) {
			s.vanish()
			return
		}
		s.apply(ctx, func(snap *Snapshot) { snap.LastError = err.Code })
		if s.notifier != nil {
			s.notifier.Publish(err.Code)
		}
		return
	}
	s.mergeState(ctx, board.State)
	s.apply(ctx, func(snap *Snapshot) {
		snap.LastError = ""
		snap.NextBlockInSec = board.NextBlockInSec
		snap.Challenges = board.Challenges
	})
}

func (s *Synchronizer) loadLeaders(ctx context.Context) {
	leaders, err := s.client.Leaderboard(ctx)
	if err != nil {
		log.Debug().Str("code", err.Code).Msg("leaderboard refresh failed")
		return
	}
	s.apply(ctx, func(snap *Snapshot) { snap.Leaders = leaders })
}
