package room

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Mutating room operations. Each one applies its local effect only after
// the server confirms (Leave excepted, which exits locally first), and
// reports failure as an error value carrying the backend code - never a
// panic across this boundary.

// Start pushes the chosen round count when valid, then starts the game.
// On success the local state latches running and a full refresh is kicked
// off immediately.
func (s *Synchronizer) Start(ctx context.Context, rounds int) error {
	if rounds >= 1 && rounds <= 10 {
		if apiErr := s.client.SetRounds(ctx, s.roomCode, rounds); apiErr != nil {
			return errors.New(apiErr.Code)
		}
	}
	if apiErr := s.client.StartRoom(ctx, s.roomCode); apiErr != nil {
		return errors.New(apiErr.Code)
	}

	s.apply(ctx, func(snap *Snapshot) {
		snap.State = Merge(snap.State, StateRunning)
	})
	log.Info().Str("room", s.roomCode).Msg("game started")

	if s.pollBusy.CompareAndSwap(false, true) {
		defer s.pollBusy.Store(false)
		s.refresh(ctx, false)
	}
	return nil
}

// Leave exits the room as a member. The local session is cleared before the
// server call so navigation never blocks on the network; the server-side
// unlink is best effort and its failure only surfaces as the return value.
func (s *Synchronizer) Leave(ctx context.Context) error {
	s.allowExit.Store(true)
	if err := s.identity.ClearRoomSession(); err != nil {
		log.Error().Err(err).Msg("failed to clear room session on leave")
	}
	if apiErr := s.client.LeaveRoom(ctx); apiErr != nil {
		log.Warn().Str("code", apiErr.Code).Msg("server leave failed after local exit")
		return errors.New(apiErr.Code)
	}
	return nil
}

// Close shuts the room for every player. Owner only.
func (s *Synchronizer) Close(ctx context.Context) error {
	if apiErr := s.client.CloseRoom(ctx, s.roomCode); apiErr != nil {
		return errors.New(apiErr.Code)
	}
	s.allowExit.Store(true)
	if err := s.identity.ClearRoomSession(); err != nil {
		log.Error().Err(err).Msg("failed to clear room session on close")
	}
	return nil
}

// End marks the game finished. Owner only. The session stays put: state
// latches ended in place and the frontend switches to the final summary
// without navigating away.
func (s *Synchronizer) End(ctx context.Context) error {
	if apiErr := s.client.EndRoom(ctx, s.roomCode); apiErr != nil {
		return errors.New(apiErr.Code)
	}
	s.apply(ctx, func(snap *Snapshot) {
		snap.State = Merge(snap.State, StateEnded)
	})
	log.Info().Str("room", s.roomCode).Msg("game ended")
	return nil
}

// TransferAndLeave hands ownership to another member, then leaves. The
// local exit happens regardless of the server outcome.
func (s *Synchronizer) TransferAndLeave(ctx context.Context) error {
	apiErr := s.client.LeaveRoomTransfer(ctx)

	s.allowExit.Store(true)
	if err := s.identity.ClearRoomSession(); err != nil {
		log.Error().Err(err).Msg("failed to clear room session on transfer")
	}

	if apiErr != nil {
		return errors.New(apiErr.Code)
	}
	return nil
}

// ExitAllowed reports whether leaving the room view needs no further
// confirmation: some completed operation (or the vanish path) has already
// detached this device from the room.
func (s *Synchronizer) ExitAllowed() bool {
	return s.allowExit.Load()
}

// PermitExit marks exit as confirmed without going through an operation.
func (s *Synchronizer) PermitExit() {
	s.allowExit.Store(true)
}
