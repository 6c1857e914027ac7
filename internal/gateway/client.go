// Package gateway is the HTTP client for the MoodMuse recommendation backend.
//
// Every call gets its own timeout and goes through the circuit breaker of its
// operation, so a failing activity service never rejects recommendations. Failures
// come back as *NetworkError (no response) or *ServerError (non-success
// status); nothing is retried.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/metrics"
	"github.com/justestif/moodmuse/internal/model"
)

const (
	userAgent = "moodmuse/1.0"

	defaultTimeout          = 10 * time.Second
	defaultFailureThreshold = 5

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// FailureThreshold is the number of consecutive transport or 5xx
	// failures that opens the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	HTTPClient *http.Client
}

// Client calls the six backend endpoints.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breakers   map[Op]*gobreaker.CircuitBreaker[[]byte]
}

var ops = []Op{OpLogin, OpRegister, OpLogout, OpRecentActivity, OpLogActivity, OpRecommend}

// New creates a client for the backend at cfg.BaseURL.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	breakers := make(map[Op]*gobreaker.CircuitBreaker[[]byte], len(ops))
	for _, op := range ops {
		breakers[op] = newBreaker("moodmuse-gateway-"+string(op), cfg.FailureThreshold, cfg.OpenTimeout)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		breakers:   breakers,
	}
}

func newBreaker(name string, threshold uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A 4xx is the backend answering; only transport errors and 5xx
		// count against it.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *ServerError
			return errors.As(err, &se) && se.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

type tokenKey struct{}

// WithToken returns a context whose calls carry tok as a bearer token.
func WithToken(ctx context.Context, tok *oauth2.Token) context.Context {
	return context.WithValue(ctx, tokenKey{}, tok)
}

func tokenFromContext(ctx context.Context) *oauth2.Token {
	tok, _ := ctx.Value(tokenKey{}).(*oauth2.Token)
	return tok
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, OpLogin, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, OpRegister, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout calls POST /auth/logout. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, OpLogout, http.MethodPost, "/auth/logout", nil, struct{}{}, nil)
}

// RecentActivity calls GET /home/get_recent_activity.
func (c *Client) RecentActivity(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	params := url.Values{
		"user_id": {userID},
		"limit":   {strconv.Itoa(limit)},
	}

	var resp activityListResponse
	if err := c.do(ctx, OpRecentActivity, http.MethodGet, "/home/get_recent_activity", params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Activities == nil {
		return []model.Activity{}, nil
	}
	return resp.Activities, nil
}

// LogActivity calls POST /home/log_activity and returns the stored record.
// A response without an "activity" object yields a record built from the
// request with an empty ID.
func (c *Client) LogActivity(ctx context.Context, userID, action, mood string) (model.Activity, error) {
	var resp logActivityResponse
	req := logActivityRequest{UserID: userID, Action: action, Mood: mood}
	if err := c.do(ctx, OpLogActivity, http.MethodPost, "/home/log_activity", nil, req, &resp); err != nil {
		return model.Activity{}, err
	}
	if resp.Activity == nil {
		return model.Activity{UserID: userID, Action: action, Mood: mood}, nil
	}
	return *resp.Activity, nil
}

// Recommend calls POST /home/ for one page of results.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) ([]model.Item, error) {
	var resp recommendResponse
	if err := c.do(ctx, OpRecommend, http.MethodPost, "/home/", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []model.Item{}, nil
	}
	return resp.Results, nil
}

// do performs one call through the breaker of op and decodes the body into out.
func (c *Client) do(ctx context.Context, op Op, method, path string, params url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	body, err := c.breakers[op].Execute(func() ([]byte, error) {
		return c.doSingleRequest(ctx, op, method, reqURL, in)
	})
	metrics.GatewayDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.GatewayRequests.WithLabelValues(string(op), "rejected").Inc()
			logging.Ctx(ctx).Warn().Str("op", string(op)).Err(err).Msg("request rejected by circuit breaker")
			return &NetworkError{Op: op, Err: err}
		}
		outcome := "network_error"
		if !IsNetwork(err) {
			outcome = "server_error"
		}
		metrics.GatewayRequests.WithLabelValues(string(op), outcome).Inc()
		logging.Ctx(ctx).Debug().Str("op", string(op)).Err(err).Msg("gateway call failed")
		return err
	}

	metrics.GatewayRequests.WithLabelValues(string(op), "success").Inc()
	logging.Ctx(ctx).Debug().Str("op", string(op)).Dur("elapsed", time.Since(start)).Msg("gateway call succeeded")

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		logging.Ctx(ctx).Warn().Str("op", string(op)).Err(err).Msg("undecodable response body")
		return &ServerError{Op: op, Status: http.StatusOK, Message: GenericMessage(op)}
	}
	return nil
}

// doSingleRequest performs a single HTTP request and returns the body of a
// 2xx response.
func (c *Client) doSingleRequest(ctx context.Context, op Op, method, reqURL string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", op, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := tokenFromContext(ctx); tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}
	if id := logging.CorrelationID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Message: errorMessage(op, body)}
	}

	return body, nil
}

// errorMessage extracts the "error" field of a failed response.
func errorMessage(op Op, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && strings.TrimSpace(e.Error) != "" {
		return e.Error
	}
	return GenericMessage(op)
}
