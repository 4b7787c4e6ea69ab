package pikudo_api_client

import (
	"encoding/json"

	"github.com/mikimas/pikudo-client/clients"
)

// PikudoApiClient is the typed surface over the PIKUDO backend. Every
// method returns either a payload or an *clients.APIError; logical failures
// the backend reports inside a 200 body ({ok:false, error}) are folded into
// the same error path as HTTP failures, so callers deal with exactly one
// failure shape.
type PikudoApiClient struct {
	*clients.BaseClient
}

func NewPikudoApiClient(baseURL string, identity clients.Identity) *PikudoApiClient {
	return &PikudoApiClient{
		BaseClient: clients.NewBaseClient(baseURL, identity),
	}
}

// envelope is the common {ok, error} wrapper on every backend body.
type envelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

// decode splits a transport Result into a typed payload or an APIError,
// honoring the body-level ok flag. A missing or malformed success body is
// tolerated and yields a zero payload.
func decode[T any](res clients.Result) (*T, *clients.APIError) {
	if !res.OK {
		return nil, &clients.APIError{Status: res.Status, Code: res.Error}
	}

	if len(res.Data) > 0 {
		var env envelope
		if err := json.Unmarshal(res.Data, &env); err == nil && env.OK != nil && !*env.OK {
			code := env.Error
			if code == "" {
				code = clients.ErrRequestFailed
			}
			return nil, &clients.APIError{Status: res.Status, Code: code}
		}
	}

	var payload T
	if len(res.Data) > 0 {
		_ = json.Unmarshal(res.Data, &payload)
	}
	return &payload, nil
}

// decodeOK is decode for operations whose payload does not matter.
func decodeOK(res clients.Result) *clients.APIError {
	_, err := decode[struct{}](res)
	return err
}
