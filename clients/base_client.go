package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Identity supplies the per-device headers attached to every request.
type Identity interface {
	// DeviceID returns the persistent installation identifier, creating it
	// on first use.
	DeviceID() (string, error)
	// SessionToken returns the stored session token, if any.
	SessionToken() (string, bool)
}

// Header names understood by the backend.
const (
	DeviceIDHeader     = "x-device-id"
	SessionTokenHeader = "x-session-token"
)

// Result is the discriminated outcome of an API call. Expected failure modes
// never surface as panics or transport errors to callers; they always arrive
// here. On success Data holds the raw JSON body (nil when the body was
// missing or malformed). On failure Status is the HTTP status (0 when no
// response was received) and Error a code from the failure taxonomy.
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage
	Error  string
}

// Request describes one API call. The zero value of Method means GET (POST
// when Form is set). NoAuth suppresses the session-token header.
type Request struct {
	Method     string
	Path       string
	JSON       any
	Form       *FormBody
	NoAuth     bool
	Headers    map[string]string
	OnProgress func(pct int)
}

// BaseClient executes HTTP calls against one backend base URL, attaching
// identity headers and normalizing every outcome into a Result.
type BaseClient struct {
	baseURL  string
	client   *http.Client
	identity Identity
	headers  map[string]string
	urls     URLStrategy
}

func NewBaseClient(baseURL string, identity Identity) *BaseClient {
	return &BaseClient{
		baseURL: NormalizeBaseURL(baseURL),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		identity: identity,
		headers:  make(map[string]string),
		urls:     BuildURLCandidates,
	}
}

// SetURLStrategy replaces the candidate-URL builder. Useful when an endpoint
// rename needs both the old and new paths tried in order.
func (c *BaseClient) SetURLStrategy(strategy URLStrategy) {
	if strategy != nil {
		c.urls = strategy
	}
}

// SetHeader adds a static header sent on every request.
func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) Identity() Identity {
	return c.identity
}

// Do executes the request against each URL candidate in order. A 404, or a
// transport error with no response, moves on to the next candidate; any
// other outcome on any candidate, or anything on the last one, finalizes.
func (c *BaseClient) Do(ctx context.Context, req Request) Result {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		if req.Form != nil {
			method = http.MethodPost
		} else {
			method = http.MethodGet
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return Result{Status: 0, Error: ErrRequestFailed}
	}

	headers, err := c.requestHeaders(req, contentType)
	if err != nil {
		return Result{Status: 0, Error: ErrRequestFailed}
	}

	urls := c.urls(c.baseURL, req.Path)
	for i, url := range urls {
		last := i == len(urls)-1

		res, ok := c.attempt(ctx, method, url, headers, body, req.OnProgress)
		if !ok {
			// No response at all. Progress-reporting uploads retry the same
			// candidate once over the plain transport before giving up.
			if req.OnProgress != nil {
				res, ok = c.attempt(ctx, method, url, headers, body, nil)
			}
			if !ok {
				if last {
					return Result{Status: 0, Error: ErrNetwork}
				}
				continue
			}
		}

		if res.Status == http.StatusNotFound && !last {
			continue
		}
		return res
	}

	return Result{Status: 0, Error: ErrNetwork}
}

// attempt performs a single HTTP round trip. ok is false only when no
// response was received.
func (c *BaseClient) attempt(ctx context.Context, method, url string, headers map[string]string, body []byte, onProgress func(int)) (Result, bool) {
	var reader io.Reader
	if body != nil {
		if onProgress != nil {
			reader = &progressReader{r: bytes.NewReader(body), total: int64(len(body)), report: onProgress}
		} else {
			reader = bytes.NewReader(body)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{}, false
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	log.Debug().Str("method", method).Str("url", url).Msg("api request")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("api transport error")
		return Result{}, false
	}
	defer resp.Body.Close()
	log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("api response")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		raw = nil
	}
	var data json.RawMessage
	if json.Valid(raw) {
		data = json.RawMessage(raw)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{OK: true, Status: resp.StatusCode, Data: data}, true
	}

	code := readAPIError(data)
	if code == ErrRequestFailed {
		code = FallbackErrorByStatus(resp.StatusCode)
	}
	return Result{Status: resp.StatusCode, Error: code}, true
}

func (c *BaseClient) requestHeaders(req Request, contentType string) (map[string]string, error) {
	headers := make(map[string]string, len(c.headers)+len(req.Headers)+3)
	for key, value := range c.headers {
		headers[key] = value
	}
	for key, value := range req.Headers {
		headers[key] = value
	}
	if contentType != "" {
		headers["content-type"] = contentType
	}

	deviceID, err := c.identity.DeviceID()
	if err != nil {
		return nil, err
	}
	headers[DeviceIDHeader] = deviceID

	if !req.NoAuth {
		if token, ok := c.identity.SessionToken(); ok {
			headers[SessionTokenHeader] = token
		}
	}
	return headers, nil
}

func encodeBody(req Request) (body []byte, contentType string, err error) {
	if req.Form != nil {
		return req.Form.encode()
	}
	if req.JSON != nil {
		body, err = json.Marshal(req.JSON)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	}
	return nil, "", nil
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
