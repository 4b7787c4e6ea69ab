package version

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/clients/pikudo_api_client"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "1.2.3", Normalize("v1.2.3"))
	assert.Equal(t, "1.2.3", Normalize("V1.2.3"))
	assert.Equal(t, "1.2.3", Normalize("  v1.2.3  "))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}

func TestAllowed(t *testing.T) {
	installed := []string{"v1.4.0", "102"}

	assert.True(t, Allowed(installed, "1.4.0", "1.5.0"))
	assert.True(t, Allowed(installed, "101", "102"))
	assert.False(t, Allowed(installed, "1.5.0", "103"))

	// Missing server-side versions never block.
	assert.True(t, Allowed(installed, "", "1.5.0"))
	assert.True(t, Allowed(installed, "1.5.0", ""))

	// No installed candidates means nothing can match; the gate handles
	// that case before calling Allowed.
	assert.False(t, Allowed(nil, "1.5.0", "103"))
}

type fakeVersionClient struct {
	info *pikudo_api_client.VersionInfo
	err  *clients.APIError
}

func (f *fakeVersionClient) AppVersion(ctx context.Context) (*pikudo_api_client.VersionInfo, *clients.APIError) {
	return f.info, f.err
}

func TestMustUpdateOnMismatch(t *testing.T) {
	client := &fakeVersionClient{info: &pikudo_api_client.VersionInfo{RevisionVersion: "2.0.0", ClientVersion: "103"}}
	gate := NewGate(client, []string{"1.4.0", "102"})

	assert.True(t, gate.MustUpdate(context.Background()))
}

func TestMustUpdateFalseOnMatch(t *testing.T) {
	client := &fakeVersionClient{info: &pikudo_api_client.VersionInfo{RevisionVersion: "v1.4.0", ClientVersion: "103"}}
	gate := NewGate(client, []string{"1.4.0", "102"})

	assert.False(t, gate.MustUpdate(context.Background()))
}

func TestMustUpdateGateStaysOpenOnFailure(t *testing.T) {
	client := &fakeVersionClient{err: &clients.APIError{Status: 0, Code: clients.ErrNetwork}}
	gate := NewGate(client, []string{"1.4.0"})

	assert.False(t, gate.MustUpdate(context.Background()))
}

func TestMustUpdateWithoutInstalledVersions(t *testing.T) {
	gate := NewGate(&fakeVersionClient{}, nil)
	assert.False(t, gate.MustUpdate(context.Background()))
}
