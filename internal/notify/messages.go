package notify

import (
	"regexp"
	"strings"
)

// exactMessages maps backend error codes to user-facing Spanish messages.
// Lookup is exact first, then an ordered substring scan over the same
// entries, so near-miss code spellings still resolve.
var exactMessages = []struct {
	code    string
	message string
}{
	{"REQUEST_FAILED", "No se pudo completar la solicitud."},
	{"NETWORK_ERROR", "No hay conexion con el servidor. Intentalo de nuevo."},
	{"UNAUTHORIZED", "Tu sesion no es valida. Vuelve a entrar."},
	{"RATE_LIMITED", "Se alcanzo el limite de solicitudes. Espera un momento e intentalo de nuevo."},
	{"NICKNAME_TAKEN", "Ese nickname ya esta en uso en la partida. Prueba otro."},
	{"INVALID_NICKNAME", "El nickname no es valido. Usa entre 4 y 12 caracteres."},
	{"MISSING_DEVICE_ID", "No se pudo identificar este dispositivo. Reinicia la app e intentalo de nuevo."},
	{"ROOM_CREATE_FAILED", "No se pudo crear la sala. Intentalo otra vez."},
	{"CREATE_ROOM_FAILED", "No se pudo crear la sala. Intentalo otra vez."},
	{"ALREADY_IN_ROOM", "Ya estas dentro de una sala."},
	{"ROOM_NOT_FOUND", "La sala ya no existe."},
	{"OWNER_NOT_FOUND", "No se encontro al administrador de la sala."},
	{"ROOM_CLOSED", "La sala esta cerrada."},
	{"ROOM_ALREADY_STARTED", "La partida ya ha comenzado."},
	{"ROOM_ALREADY_ENDED", "La partida ya ha finalizado."},
	{"ALREADY_STARTED", "La partida ya ha comenzado."},
	{"GAME_NOT_STARTED", "La partida aun no ha comenzado."},
	{"GAME_NOT_ENDED", "La partida aun no ha finalizado."},
	{"PLAYER_NOT_FOUND", "No se encontro el jugador."},
	{"INVALID_PLAYER_ID", "El jugador indicado no es valido."},
	{"NOT_ALLOWED", "No tienes permiso para realizar esta accion."},
	{"FORBIDDEN", "No tienes permiso para realizar esta accion."},
	{"ROOM_MISMATCH", "Esa accion no corresponde a esta sala."},
	{"NO_MEDIA", "No hay contenido multimedia disponible."},
	{"NO_IMAGES", "No hay imagenes para descargar."},
	{"NO_PLAYERS", "No hay jugadores disponibles."},
	{"NO_DOWNLOADABLE_IMAGES", "No hay imagenes descargables disponibles."},
	{"TOO_MANY_ATTEMPTS", "Has hecho demasiados intentos. Espera un momento."},
	{"NO_ROOM", "No estas dentro de ninguna sala."},
	{"INVALID_FORM", "El formulario enviado no es valido."},
	{"INVALID_BODY", "Los datos enviados no son validos."},
	{"INVALID_JSON", "El formato de la solicitud no es valido."},
	{"INVALID_ROOM_CODE", "El código de sala no es valido."},
	{"INVALID_ROOM_NAME", "El nombre de sala no es valido."},
	{"INVALID_ROUNDS", "El número de rondas no es valido."},
	{"INVALID_FILE_TYPE", "El tipo de archivo no es valido."},
	{"INVALID_MIME", "El tipo de archivo no es valido."},
	{"INVALID_PATH", "La ruta del archivo no es valida."},
	{"FILE_TOO_LARGE", "El archivo es demasiado grande."},
	{"MISSING_FILE", "Falta el archivo para completar la accion."},
	{"INVALID_PLAYER_CHALLENGE_ID", "El reto ya no es valido."},
	{"INVALID_CHALLENGE_ID", "El reto indicado no es valido."},
	{"CHALLENGE_NOT_FOUND", "No se encontro el reto."},
	{"NOT_FOUND", "No se encontro el recurso solicitado."},
	{"UPLOAD_FAILED", "No se pudo subir el archivo."},
	{"COMPLETE_FAILED", "No se pudo completar el reto."},
	{"DELETE_FAILED", "No se pudo eliminar el archivo."},
	{"SAVE_FAILED", "No se pudo guardar el archivo."},
	{"EMAIL_NOT_CONFIGURED", "El envio por correo no esta configurado."},
	{"EMAIL_SEND_FAILED", "No se pudo enviar el correo."},
	{"INVALID_EMAIL", "El correo electronico no es valido."},
	{"INVALID_PASSWORD", "La contrasena no es valida."},
	{"MISSING_PASSWORD", "Falta la contrasena."},
	{"ADMIN_NOT_CONFIGURED", "La administracion no esta configurada."},
	{"DEVICE_NOT_REGISTERED", "Este dispositivo no esta registrado en la partida."},
	{"SESSION_NOT_FOUND", "No se encontro la sesion. Vuelve a entrar."},
	{"INVALID_SESSION", "Tu sesion no es valida. Vuelve a entrar."},
	{"MISSING_DB_MIGRATION_ROOM_NAME", "Falta una actualizacion del servidor. Contacta con soporte."},
	{"MISSING_DB_MIGRATION_ROUNDS", "Falta una actualizacion del servidor. Contacta con soporte."},
	{"MISSING_RPC_ASSIGN_CHALLENGES", "Falta una actualizacion del servidor. Contacta con soporte."},
	{"MISSING_RPC_REJECT", "Falta una actualizacion del servidor. Contacta con soporte."},
	{"REJECT_FAILED", "No se pudo completar la accion solicitada."},
	{"PAUSE_DISABLED", "Esta accion no esta habilitada en el servidor."},
	{"SQL", "Ha ocurrido un error interno. Intentalo de nuevo."},
	{"DB", "Ha ocurrido un error interno. Intentalo de nuevo."},
	{"RPC_FAILED", "Ha ocurrido un error interno. Intentalo de nuevo."},
	{"INTERNAL_ERROR", "Ha ocurrido un error interno. Intentalo de nuevo."},
}

const (
	duplicateMessage = "Ese dato ya existe. Prueba con otro valor."
	timeoutMessage   = "La solicitud tardo demasiado. Revisa tu conexión e intentalo de nuevo."
	serverMessage    = "El servidor devolvio un error. Intentalo de nuevo."
)

// fuzzyRules tolerate backend code variants not in the exact table. Order
// matters: the first rule whose needles all appear wins.
var fuzzyRules = []struct {
	needles []string
	message string
}{
	{[]string{"NICKNAME", "TAKEN"}, messageFor("NICKNAME_TAKEN")},
	{[]string{"USERNAME", "TAKEN"}, messageFor("NICKNAME_TAKEN")},
	{[]string{"ROOM", "NOT", "FOUND"}, messageFor("ROOM_NOT_FOUND")},
	{[]string{"ROOM", "CLOSED"}, messageFor("ROOM_CLOSED")},
	{[]string{"ALREADY", "START"}, messageFor("ALREADY_STARTED")},
	{[]string{"GAME", "NOT", "START"}, messageFor("GAME_NOT_STARTED")},
	{[]string{"GAME", "NOT", "END"}, messageFor("GAME_NOT_ENDED")},
	{[]string{"ALREADY EXISTS"}, duplicateMessage},
	{[]string{"DUPLICATE KEY"}, duplicateMessage},
	{[]string{"ALREADY IN ROOM"}, messageFor("ALREADY_IN_ROOM")},
	{[]string{"INVALID ROOM CODE"}, messageFor("INVALID_ROOM_CODE")},
	{[]string{"INVALID ROUNDS"}, messageFor("INVALID_ROUNDS")},
	{[]string{"INVALID NICKNAME"}, messageFor("INVALID_NICKNAME")},
	{[]string{"NOT FOUND"}, messageFor("NOT_FOUND")},
	{[]string{"NOT ALLOWED"}, messageFor("NOT_ALLOWED")},
	{[]string{"FORBIDDEN"}, messageFor("FORBIDDEN")},
	{[]string{"INVALID SESSION"}, messageFor("INVALID_SESSION")},
	{[]string{"NO SESSION"}, messageFor("SESSION_NOT_FOUND")},
	{[]string{"MISSING DEVICE"}, messageFor("MISSING_DEVICE_ID")},
	{[]string{"INVALID EMAIL"}, messageFor("INVALID_EMAIL")},
	{[]string{"TIMEOUT"}, timeoutMessage},
}

func messageFor(code string) string {
	for _, entry := range exactMessages {
		if entry.code == code {
			return entry.message
		}
	}
	return ""
}

var codeShapedPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// NormalizeMessage maps a backend error code, or arbitrary free text, to a
// user-facing message. Unknown code-shaped inputs are humanized
// ("FOO_BAR_BAZ" -> "Foo bar baz"); anything else passes through unchanged.
func NormalizeMessage(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return messageFor("REQUEST_FAILED")
	}
	code := strings.ToUpper(raw)

	for _, rule := range fuzzyRules {
		if containsAll(code, rule.needles) {
			return rule.message
		}
	}

	for _, entry := range exactMessages {
		if strings.Contains(code, entry.code) {
			return entry.message
		}
	}

	return fallbackMessage(raw)
}

func containsAll(code string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(code, needle) {
			return false
		}
	}
	return true
}

func fallbackMessage(raw string) string {
	compact := strings.TrimSpace(raw)
	if compact == "" {
		return messageFor("REQUEST_FAILED")
	}
	upper := strings.ToUpper(compact)
	if strings.HasPrefix(upper, "HTTP_") {
		return serverMessage
	}
	if strings.HasPrefix(upper, "REQUEST_TIMEOUT") {
		return timeoutMessage
	}
	if codeShapedPattern.MatchString(compact) {
		words := strings.ToLower(strings.ReplaceAll(compact, "_", " "))
		return strings.ToUpper(words[:1]) + words[1:]
	}
	return compact
}
