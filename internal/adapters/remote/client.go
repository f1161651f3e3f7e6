package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/porters-chapel/membership-console/internal/domain"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"
)

// TokenSource supplies the bearer token attached to every request. ok=false
// means no active session; requests then go out unauthenticated.
type TokenSource interface {
	Token() (token string, ok bool)
}

// Config holds the client's transport settings.
type Config struct {
	// BaseURL is the API origin, e.g. "http://localhost:3000". Trailing
	// slashes are stripped.
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
}

// Client is the remote implementation of memberstore.Backend, speaking the
// members REST API: bearer-authenticated requests, `{data:...}` response
// envelopes and `{error|message}` error bodies.
//
// Transport-level failures are classified as memberstore.ErrUnreachable so
// the app layer can fall back to the local store. Well-formed non-2xx
// responses become *APIError and are never treated as unreachable.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

func NewClient(cfg Config, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: tokens,
		log:    log,
	}
}

// APIError is a well-formed non-2xx response from a reachable server. The
// message is the server's own wording, surfaced verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Is maps 404 responses onto the port's not-found sentinel.
func (e *APIError) Is(target error) bool {
	return target == memberstore.ErrNotFound && e.Status == http.StatusNotFound
}

func (c *Client) List(ctx context.Context, crit domain.Criteria) ([]domain.Member, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/members", queryFrom(crit), nil)
	if err != nil {
		return nil, err
	}
	var ms []domain.Member
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, &APIError{Status: http.StatusOK, Message: "malformed member list in response"}
	}
	return domain.NormalizeAll(ms), nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.Member, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/members/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return domain.Member{}, err
	}
	return decodeMember(data)
}

func (c *Client) Create(ctx context.Context, p memberstore.CreatePayload) (domain.Member, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/members", nil, p)
	if err != nil {
		return domain.Member{}, err
	}
	return decodeMember(data)
}

func (c *Client) Update(ctx context.Context, id string, p memberstore.UpdatePatch) (domain.Member, error) {
	data, err := c.do(ctx, http.MethodPut, "/api/members/"+url.PathEscape(id), nil, p)
	if err != nil {
		return domain.Member{}, err
	}
	return decodeMember(data)
}

func (c *Client) SoftDelete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/members/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) Restore(ctx context.Context, id string) (domain.Member, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/members/"+url.PathEscape(id)+"/restore", nil, nil)
	if err != nil {
		return domain.Member{}, err
	}
	return decodeMember(data)
}

func (c *Client) PermanentDelete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/members/"+url.PathEscape(id)+"/permanent", nil, nil)
	return err
}

func (c *Client) Stats(ctx context.Context) (memberstore.Stats, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/members/stats", nil, nil)
	if err != nil {
		return memberstore.Stats{}, err
	}
	var st memberstore.Stats
	if err := json.Unmarshal(data, &st); err != nil {
		return memberstore.Stats{}, &APIError{Status: http.StatusOK, Message: "malformed stats in response"}
	}
	return st, nil
}

// do performs one request and unwraps the `{data:...}` envelope. The
// returned bytes are the raw data payload; mutation-only endpoints may
// return none.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memberstore.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memberstore.ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
		c.log.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	if len(raw) == 0 {
		return nil, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "malformed response envelope"}
	}
	return env.Data, nil
}

func decodeMember(data json.RawMessage) (domain.Member, error) {
	var m domain.Member
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Member{}, &APIError{Status: http.StatusOK, Message: "malformed member in response"}
	}
	return domain.Normalize(m), nil
}

// errorMessage extracts the server's `{error|message}` wording, with a
// generic fallback for bodies that carry neither.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return "unable to process request"
}

func queryFrom(c domain.Criteria) url.Values {
	q := url.Values{}
	if c.Search != "" {
		q.Set("search", c.Search)
	}
	if c.MaritalStatus != "" {
		q.Set("maritalStatus", c.MaritalStatus)
	}
	if c.MinAge != nil {
		q.Set("minAge", strconv.Itoa(*c.MinAge))
	}
	if c.MaxAge != nil {
		q.Set("maxAge", strconv.Itoa(*c.MaxAge))
	}
	if c.Trash {
		q.Set("trash", "true")
	}
	return q
}
