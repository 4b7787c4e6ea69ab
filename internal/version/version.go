// Package version implements the forced-update gate: the client asks the
// backend which build versions it accepts and blocks the session when the
// installed build matches none of them.
package version

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
)

// Client defines what the gate needs from the API client.
type Client interface {
	AppVersion(ctx context.Context) (*pikudo_api_client.VersionInfo, *clients.APIError)
}

// Normalize trims the input and strips a leading "v"/"V".
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == 'v' || trimmed[0] == 'V' {
		return trimmed[1:]
	}
	return trimmed
}

// Allowed reports whether any installed-version candidate matches either
// accepted version. Pure comparison, no I/O.
func Allowed(installed []string, revisionVersion, clientVersion string) bool {
	revision := Normalize(revisionVersion)
	client := Normalize(clientVersion)
	if revision == "" || client == "" {
		return true
	}
	for _, candidate := range installed {
		v := Normalize(candidate)
		if v == "" {
			continue
		}
		if v == revision || v == client {
			return true
		}
	}
	return false
}

type Gate struct {
	client    Client
	installed []string
}

func NewGate(client Client, installedVersions []string) *Gate {
	return &Gate{client: client, installed: installedVersions}
}

// MustUpdate asks the backend for its accepted versions. Any failure -
// network, backend error, missing fields - leaves the gate open; blocking
// play is only justified by a definite version mismatch.
func (g *Gate) MustUpdate(ctx context.Context) bool {
	if len(g.installed) == 0 {
		return false
	}
	info, apiErr := g.client.AppVersion(ctx)
	if apiErr != nil {
		log.Debug().Str("code", apiErr.Code).Msg("version check failed - gate stays open")
		return false
	}
	return !Allowed(g.installed, info.RevisionVersion, info.ClientVersion)
}
