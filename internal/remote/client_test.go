package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

type fakeAPI struct {
	clients  []models.Client
	token    string
	requests atomic.Int32
	failures atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/v1/auth/login" {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": appErrors.ErrInvalidCredentials})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": models.LoginResponse{AccessToken: f.token}})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": appErrors.ErrUnauthorized})
		return
	}
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": appErrors.ErrUnavailable})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	start := (page - 1) * size
	end := start + size
	if start > len(f.clients) {
		start = len(f.clients)
	}
	if end > len(f.clients) {
		end = len(f.clients)
	}
	pages := (len(f.clients) + size - 1) / size
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       f.clients[start:end],
		"pagination": models.Pagination{Page: page, PageSize: size, TotalCount: len(f.clients), TotalPages: pages},
	})
}

func newFakeAPI(t *testing.T, n int) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{token: "tok-123"}
	for i := 0; i < n; i++ {
		api.clients = append(api.clients, models.Client{ID: fmt.Sprintf("c-%d", i), Name: fmt.Sprintf("Client %d", i)})
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "http://"})
	assert.Error(t, err)
}

func TestClientsWalksEveryPage(t *testing.T) {
	api, srv := newFakeAPI(t, 7)
	client, err := New(Options{BaseURL: srv.URL + "/api/v1", Token: api.token, PageSize: 3})
	require.NoError(t, err)

	clients, err := client.Clients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 7)
	assert.Equal(t, "c-0", clients[0].ID)
	assert.Equal(t, "c-6", clients[6].ID)
	assert.Equal(t, int32(3), api.requests.Load())
}

func TestClientsEmptyCollection(t *testing.T) {
	api, srv := newFakeAPI(t, 0)
	client, err := New(Options{BaseURL: srv.URL + "/api/v1", Token: api.token})
	require.NoError(t, err)

	clients, err := client.Clients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestLoginStoresToken(t *testing.T) {
	api, srv := newFakeAPI(t, 2)
	client, err := New(Options{BaseURL: srv.URL + "/api/v1"})
	require.NoError(t, err)

	_, err = client.Clients(context.Background())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)

	_, err = client.Login(context.Background(), "coach@fitcoach.dev", "wrong")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)

	token, err := client.Login(context.Background(), "coach@fitcoach.dev", "secret")
	require.NoError(t, err)
	assert.Equal(t, api.token, token)

	clients, err := client.Clients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestClientsRetriesUnavailable(t *testing.T) {
	api, srv := newFakeAPI(t, 2)
	api.failures.Store(2)
	client, err := New(Options{BaseURL: srv.URL + "/api/v1", Token: api.token, RetryCount: 2, RetryWait: time.Millisecond})
	require.NoError(t, err)

	clients, err := client.Clients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	assert.Equal(t, int32(3), api.requests.Load())
}

func TestClientsGivesUpAfterRetries(t *testing.T) {
	api, srv := newFakeAPI(t, 2)
	api.failures.Store(10)
	client, err := New(Options{BaseURL: srv.URL + "/api/v1", Token: api.token, RetryCount: 1, RetryWait: time.Millisecond})
	require.NoError(t, err)

	_, err = client.Clients(context.Background())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}

func TestClientsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(Options{BaseURL: url + "/api/v1", Token: "x", Timeout: time.Second})
	require.NoError(t, err)
	_, err = client.Workouts(context.Background())
	assert.Error(t, err)
}
