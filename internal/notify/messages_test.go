package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessageKnownCodes(t *testing.T) {
	assert.Equal(t, "No hay conexion con el servidor. Intentalo de nuevo.", NormalizeMessage("NETWORK_ERROR"))
	assert.Equal(t, "Tu sesion no es valida. Vuelve a entrar.", NormalizeMessage("UNAUTHORIZED"))
	assert.Equal(t, "La sala ya no existe.", NormalizeMessage("ROOM_NOT_FOUND"))
	assert.Equal(t, "La partida ya ha comenzado.", NormalizeMessage("ROOM_ALREADY_STARTED"))
}

func TestNormalizeMessageCaseInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeMessage("NETWORK_ERROR"), NormalizeMessage("network_error"))
	assert.Equal(t, NormalizeMessage("ROOM_CLOSED"), NormalizeMessage("Room_Closed"))
}

func TestNormalizeMessageFuzzyVariants(t *testing.T) {
	// Backend spellings not in the exact table still resolve by keywords.
	want := NormalizeMessage("NICKNAME_TAKEN")
	assert.Equal(t, want, NormalizeMessage("nickname_already_taken"))
	assert.Equal(t, want, NormalizeMessage("USERNAME_TAKEN"))

	assert.Equal(t, NormalizeMessage("ROOM_NOT_FOUND"), NormalizeMessage("THE ROOM WAS NOT FOUND"))
	assert.Equal(t, NormalizeMessage("ALREADY_STARTED"), NormalizeMessage("game already started"))
	assert.Equal(t, "Ese dato ya existe. Prueba con otro valor.", NormalizeMessage("row already exists"))
	assert.Equal(t, "Ese dato ya existe. Prueba con otro valor.", NormalizeMessage("duplicate key value violates unique constraint"))
}

func TestNormalizeMessageEmptyFallsBackToRequestFailed(t *testing.T) {
	want := NormalizeMessage("REQUEST_FAILED")
	assert.Equal(t, want, NormalizeMessage(""))
	assert.Equal(t, want, NormalizeMessage("   "))
}

func TestNormalizeMessageHumanizesUnknownCodes(t *testing.T) {
	assert.Equal(t, "Foo baz qux", NormalizeMessage("FOO_BAZ_QUX"))
}

func TestNormalizeMessagePassesFreeTextThrough(t *testing.T) {
	assert.Equal(t, "Servidor caído", NormalizeMessage("Servidor caído"))
	assert.Equal(t, "something odd happened", NormalizeMessage("something odd happened"))
}

func TestNormalizeMessageServerAndTimeoutPrefixes(t *testing.T) {
	assert.Equal(t, serverMessage, NormalizeMessage("HTTP_502"))
	assert.Equal(t, timeoutMessage, NormalizeMessage("REQUEST_TIMEOUT"))
	assert.Equal(t, timeoutMessage, NormalizeMessage("upstream timeout"))
}
