package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// headerRecorder remembers the headers of the last request it served.
type headerRecorder struct {
	mu   sync.Mutex
	last http.Header
}

func (h *headerRecorder) Get(name string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.last.Get(name)
}

func echoHeaders(t *testing.T) (*httptest.Server, *headerRecorder) {
	t.Helper()

	rec := &headerRecorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.last = r.Header.Clone()
		rec.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func TestAuthenticatedClientHeaders(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		authType   server.AuthType
		details    *server.AuthDetails
		wantHeader string
		wantValue  string
	}{
		{
			name:       "api key default header",
			authType:   server.AuthAPIKey,
			details:    &server.AuthDetails{APIKey: "k-123"},
			wantHeader: "X-API-Key",
			wantValue:  "k-123",
		},
		{
			name:       "api key custom header",
			authType:   server.AuthAPIKey,
			details:    &server.AuthDetails{APIKey: "k-456", HeaderName: "X-Tenant-Key"},
			wantHeader: "X-Tenant-Key",
			wantValue:  "k-456",
		},
		{
			name:       "bearer",
			authType:   server.AuthBearer,
			details:    &server.AuthDetails{Token: "tok"},
			wantHeader: "Authorization",
			wantValue:  "Bearer tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, last := echoHeaders(t)

			client, err := AuthenticatedClient(ctx, srv.Client(), server.Descriptor{
				Name:        "s",
				AuthType:    tt.authType,
				AuthDetails: tt.details,
			})
			require.NoError(t, err)

			resp, err := client.Get(srv.URL)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())

			require.Equal(t, tt.wantValue, last.Get(tt.wantHeader))
		})
	}
}

func TestAuthenticatedClientOAuth2(t *testing.T) {
	ctx := context.Background()

	var tokenRequests atomic.Int32

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued-token","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	srv, last := echoHeaders(t)

	client, err := AuthenticatedClient(ctx, srv.Client(), server.Descriptor{
		Name:     "s",
		AuthType: server.AuthOAuth2,
		AuthDetails: &server.AuthDetails{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenURL:     tokenServer.URL,
		},
	})
	require.NoError(t, err)

	for range 2 {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	}

	require.Equal(t, "Bearer issued-token", last.Get("Authorization"))
	require.Equal(t, int32(1), tokenRequests.Load(), "token should be cached")
}

func TestAuthenticatedClientNone(t *testing.T) {
	base := &http.Client{}

	client, err := AuthenticatedClient(context.Background(), base, server.Descriptor{Name: "s", AuthType: server.AuthNone})
	require.NoError(t, err)
	require.Same(t, base, client)
}

func TestAuthenticatedClientMissingDetails(t *testing.T) {
	_, err := AuthenticatedClient(context.Background(), nil, server.Descriptor{Name: "s", AuthType: server.AuthBearer})
	require.Error(t, err)

	_, err = AuthenticatedClient(context.Background(), nil, server.Descriptor{
		Name:        "s",
		AuthType:    "kerberos",
		AuthDetails: &server.AuthDetails{},
	})
	require.Error(t, err)
}
