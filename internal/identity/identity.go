// Package identity manages the device's persistent identity: the
// installation id sent on every request, the backend-issued session token,
// and the advisory resume cache (last room code, nickname, rounds
// preference).
package identity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mikimas/pikudo-client/internal/storage"
)

// Storage defines what the identity app needs from the persistent store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// App holds the device identity state.
type App struct {
	store Storage
}

func NewApp(store Storage) *App {
	return &App{store: store}
}

// DeviceID returns the persistent installation identifier, generating and
// persisting one on first use. It is never regenerated unless the store is
// cleared.
func (a *App) DeviceID() (string, error) {
	existing, ok, err := a.store.Get(storage.KeyDeviceID)
	if err == nil && ok && strings.TrimSpace(existing) != "" {
		return existing, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	next := newDeviceID()
	if err := a.store.Set(storage.KeyDeviceID, next); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	log.Info().Str("device_id", next).Msg("generated device id")
	return next, nil
}

func newDeviceID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	rand := uuid.New().String()[:8]
	return fmt.Sprintf("dev_%s_%s", ts, rand)
}

// SessionToken returns the stored session token, if any. Storage failures
// read as "no session" so a broken store degrades to unauthenticated calls.
func (a *App) SessionToken() (string, bool) {
	token, ok, err := a.store.Get(storage.KeySession)
	if err != nil || !ok || token == "" {
		return "", false
	}
	return token, true
}

func (a *App) SetSessionToken(token string) error {
	return a.store.Set(storage.KeySession, token)
}

func (a *App) ClearSessionToken() error {
	return a.store.Delete(storage.KeySession)
}

// LastRoom returns the advisory resume pointer to the last joined room.
func (a *App) LastRoom() (string, bool) {
	code, ok, err := a.store.Get(storage.KeyLastRoom)
	if err != nil || !ok || strings.TrimSpace(code) == "" {
		return "", false
	}
	return strings.TrimSpace(code), true
}

func (a *App) SetLastRoom(code string) error {
	return a.store.Set(storage.KeyLastRoom, code)
}

// ClearRoomSession drops both the session token and the last-room pointer.
// Used on leave/close and when the server reports the room gone; the cache
// is advisory, so clearing must always succeed locally even when the
// backend was never told.
func (a *App) ClearRoomSession() error {
	roomErr := a.store.Delete(storage.KeyLastRoom)
	sessionErr := a.store.Delete(storage.KeySession)
	if roomErr != nil {
		return roomErr
	}
	return sessionErr
}

// Nickname returns the cached nickname.
func (a *App) Nickname() (string, bool) {
	nick, ok, err := a.store.Get(storage.KeyNickname)
	if err != nil || !ok || strings.TrimSpace(nick) == "" {
		return "", false
	}
	return strings.TrimSpace(nick), true
}

func (a *App) SetNickname(nickname string) error {
	return a.store.Set(storage.KeyNickname, strings.TrimSpace(nickname))
}

// RoundsPreference returns the locally preferred round count, defaulting
// to defaultRounds when unset or out of the 1..10 range.
func (a *App) RoundsPreference(defaultRounds int) int {
	raw, ok, err := a.store.Get(storage.KeyRounds)
	if err != nil || !ok {
		return defaultRounds
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 10 {
		return defaultRounds
	}
	return n
}

func (a *App) SetRoundsPreference(rounds int) error {
	return a.store.Set(storage.KeyRounds, strconv.Itoa(rounds))
}
