// Package client is the HTTP implementation of the viewer backend. It talks
// to the event map API and trips a circuit breaker when the API keeps
// failing, so a headless walk degrades the same way the browser map does.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/server"
	"github.com/playperu/eventmap/internal/viewer"
)

var _ viewer.Backend = (*Client)(nil)

const breakerName = "eventmap-api"

type Client struct {
	base   string
	http   *http.Client
	cb     *gobreaker.CircuitBreaker[*response]
	logger *slog.Logger
}

type settings struct {
	httpClient  *http.Client
	maxFailures uint32
	openTimeout time.Duration
}

type Option func(*settings)

func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) Option {
	return func(s *settings) { s.maxFailures = n }
}

// WithOpenTimeout sets how long the breaker stays open before probing.
func WithOpenTimeout(d time.Duration) Option {
	return func(s *settings) { s.openTimeout = d }
}

func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	s := settings{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxFailures: 5,
		openTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(&s)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   s.httpClient,
		cb:     cb,
		logger: logger,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

type response struct {
	status int
	body   []byte
}

// do sends one request. Transport errors and 5xx answers count against the
// breaker; 4xx answers are the caller's problem and do not.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = b
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.cb.Execute(func() (*response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%s %s: status %d: %s", method, path, res.StatusCode, apiMessage(data))
		}
		return &response{status: res.StatusCode, body: data}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.DebugContext(ctx, "request rejected by circuit breaker", "method", method, "path", path)
		}
		return fmt.Errorf("%w: %w", eventmap.ErrPersistence, err)
	}

	switch {
	case resp.status == http.StatusNotFound:
		return fmt.Errorf("%s %s: %s: %w", method, path, apiMessage(resp.body), eventmap.ErrNotFound)
	case resp.status == http.StatusBadRequest:
		return fmt.Errorf("%s %s: %s: %w", method, path, apiMessage(resp.body), eventmap.ErrValidation)
	case resp.status == http.StatusTooManyRequests:
		return fmt.Errorf("%s %s: rate limited: %w", method, path, eventmap.ErrPersistence)
	case resp.status >= 300:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.status, apiMessage(resp.body))
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func apiMessage(body []byte) string {
	var e server.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func mapQuery(id eventmap.Identity, mapID string) url.Values {
	q := id.Query()
	if mapID != "" {
		q.Set("mapId", mapID)
	}
	return q
}

func (c *Client) FetchCatalog(ctx context.Context, mapID string) (eventmap.Catalog, error) {
	q := url.Values{}
	if mapID != "" {
		q.Set("mapId", mapID)
	}
	var resp server.CatalogResponse
	if err := c.do(ctx, http.MethodGet, "/api/catalog", q, nil, &resp); err != nil {
		return eventmap.Catalog{}, err
	}
	return eventmap.Catalog{Map: resp.Map, Events: resp.Events, Routes: resp.Routes}, nil
}

func (c *Client) RecordInteraction(ctx context.Context, in eventmap.Interaction) (progress.RecordResult, error) {
	var res progress.RecordResult
	err := c.do(ctx, http.MethodPost, "/api/interactions", nil, server.InteractionRequest{
		Identity:            in.Identity,
		EventID:             in.EventID,
		MapID:               in.MapID,
		ViewDuration:        in.ViewDuration,
		AudioListenDuration: in.AudioListenDuration,
	}, &res)
	return res, err
}

func (c *Client) FetchProgress(ctx context.Context, id eventmap.Identity, mapID string) (eventmap.Progress, error) {
	var resp server.ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/api/progress", mapQuery(id, mapID), nil, &resp); err != nil {
		return eventmap.Progress{}, err
	}
	return eventmap.Progress{Groups: resp.Groups, CompletedEventIDs: resp.CompletedEventIDs}, nil
}

func (c *Client) CheckFirstTimeVisitor(ctx context.Context, id eventmap.Identity, mapID string) (bool, error) {
	var resp server.VisitorResponse
	if err := c.do(ctx, http.MethodGet, "/api/visitor", mapQuery(id, mapID), nil, &resp); err != nil {
		return true, err
	}
	return resp.FirstTime, nil
}

func (c *Client) CheckCelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) (bool, error) {
	var resp server.CelebrationResponse
	if err := c.do(ctx, http.MethodGet, "/api/celebration", mapQuery(id, mapID), nil, &resp); err != nil {
		return false, err
	}
	return resp.Seen, nil
}

func (c *Client) MarkCelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) error {
	return c.do(ctx, http.MethodPost, "/api/celebration", nil, server.CelebrationRequest{Identity: id, MapID: mapID}, nil)
}

func (c *Client) FetchQuizQuestions(ctx context.Context, limit int) ([]eventmap.PublicQuestion, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp server.QuizQuestionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/quiz/questions", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func (c *Client) SubmitQuiz(ctx context.Context, sub quiz.Submission) (eventmap.QuizResult, error) {
	var res eventmap.QuizResult
	err := c.do(ctx, http.MethodPost, "/api/quiz/submissions", nil, sub, &res)
	return res, err
}

// UpsertSessionHeartbeat sends a PUT, or a POST for the final beat, which
// is how a closing page delivers it.
func (c *Client) UpsertSessionHeartbeat(ctx context.Context, hb eventmap.Heartbeat) error {
	if hb.SessionID == "" {
		return fmt.Errorf("session id: %w", eventmap.ErrValidation)
	}
	method := http.MethodPut
	if hb.Final {
		method = http.MethodPost
	}
	return c.do(ctx, method, "/api/sessions/"+url.PathEscape(hb.SessionID), nil, server.HeartbeatRequest{
		Identity:       hb.Identity,
		MapID:          hb.MapID,
		TotalDuration:  hb.TotalDuration,
		ActiveDuration: hb.ActiveDuration,
		Final:          hb.Final,
	}, nil)
}
