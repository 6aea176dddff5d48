// Package remote fetches coach collections from a running API so the
// terminal client can filter them locally.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

const (
	defaultPageSize = 100
	maxPages        = 1000
)

// ErrNotConfigured is returned when no base URL was provided.
var ErrNotConfigured = errors.New("remote: base URL not configured")

// Options configures a Client.
type Options struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8080/api/v1.
	BaseURL    string
	Token      string
	Timeout    time.Duration
	PageSize   int
	RetryCount int
	RetryWait  time.Duration
	Logger     *zap.Logger
}

// Client is a thin resty wrapper over the list endpoints.
type Client struct {
	http     *resty.Client
	pageSize int
	logger   *zap.Logger
}

type listEnvelope[T any] struct {
	Data       []T               `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

type loginEnvelope struct {
	Data models.LoginResponse `json:"data"`
}

// New validates opts and builds a client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote: base URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("remote: base URL must have a host, got %q", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 200 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4 * opts.RetryWait).
		AddRetryCondition(retryCondition)
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &Client{http: client, pageSize: opts.PageSize, logger: logger}, nil
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// Login exchanges credentials for an access token and uses it for
// subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginEnvelope
	var apiErr errorEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/login")
	if err != nil {
		return "", fmt.Errorf("remote: login: %w", err)
	}
	if resp.IsError() {
		return "", responseError(resp, apiErr)
	}
	if out.Data.AccessToken == "" {
		return "", errors.New("remote: login response carried no token")
	}
	c.http.SetAuthToken(out.Data.AccessToken)
	return out.Data.AccessToken, nil
}

// Clients returns every client of the authenticated coach.
func (c *Client) Clients(ctx context.Context) ([]models.Client, error) {
	return fetchAll[models.Client](ctx, c, "/clients")
}

// Workouts returns every workout of the authenticated coach.
func (c *Client) Workouts(ctx context.Context) ([]models.Workout, error) {
	return fetchAll[models.Workout](ctx, c, "/workouts")
}

// fetchAll walks the 1-based pages of path until the server reports the
// last one.
func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		var out listEnvelope[T]
		var apiErr errorEnvelope
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"page":  strconv.Itoa(page),
				"limit": strconv.Itoa(c.pageSize),
			}).
			SetResult(&out).
			SetError(&apiErr).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("remote: get %s: %w", path, err)
		}
		if resp.IsError() {
			return nil, responseError(resp, apiErr)
		}

		all = append(all, out.Data...)
		c.logger.Debug("fetched page",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Int("items", len(out.Data)),
			zap.Int("total", out.Pagination.TotalCount),
		)
		if len(out.Data) == 0 || page >= out.Pagination.TotalPages {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

func responseError(resp *resty.Response, body errorEnvelope) error {
	if body.Error != nil && body.Error.Code != "" {
		if body.Error.Status == 0 {
			body.Error.Status = resp.StatusCode()
		}
		return body.Error
	}
	return appErrors.New("REMOTE_ERROR", resp.StatusCode(), fmt.Sprintf("remote: unexpected status %s", resp.Status()))
}
