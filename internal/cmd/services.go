package main

import (
	"time"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
	"github.com/mikimas/pikudo-client/internal/final"
	"github.com/mikimas/pikudo-client/internal/identity"
	"github.com/mikimas/pikudo-client/internal/notify"
	"github.com/mikimas/pikudo-client/internal/room"
	"github.com/mikimas/pikudo-client/internal/session"
	"github.com/mikimas/pikudo-client/internal/storage"
	"github.com/mikimas/pikudo-client/internal/version"
)

var (
	_ session.Client   = (*pikudo_api_client.PikudoApiClient)(nil)
	_ room.Client      = (*pikudo_api_client.PikudoApiClient)(nil)
	_ final.Client     = (*pikudo_api_client.PikudoApiClient)(nil)
	_ version.Client   = (*pikudo_api_client.PikudoApiClient)(nil)
	_ room.Identity    = (*identity.App)(nil)
	_ clients.Identity = (*identity.App)(nil)
)

type Services struct {
	Store    *storage.Store
	Identity *identity.App
	Client   *pikudo_api_client.PikudoApiClient
	Session  *session.App
	Bus      *notify.Bus
	Gate     *version.Gate
}

func setupServices(config *Config, store *storage.Store) *Services {
	// Storage layer → identity layer → API client → app layer.
	identityApp := identity.NewApp(store)

	baseURL := config.API.BaseURL
	if stored, ok, err := store.Get(storage.KeyBaseURL); err == nil && ok && baseURL == "" {
		baseURL = stored
	}
	client := pikudo_api_client.NewPikudoApiClient(clients.NormalizeBaseURL(baseURL), identityApp)
	if config.API.TimeoutMS > 0 {
		client.SetTimeout(time.Duration(config.API.TimeoutMS) * time.Millisecond)
	}

	sessionApp := session.NewApp(client, identityApp)
	bus := notify.NewBus(nil)
	gate := version.NewGate(client, config.Client.InstalledVer)

	return &Services{
		Store:    store,
		Identity: identityApp,
		Client:   client,
		Session:  sessionApp,
		Bus:      bus,
		Gate:     gate,
	}
}

func (s *Services) newFinalApp(roomCode string) *final.App {
	return final.NewApp(s.Client, s.Store, roomCode)
}
