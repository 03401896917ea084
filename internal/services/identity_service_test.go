package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func identityServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestRESTIdentityProvider_CreateIdentity(t *testing.T) {
	server := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signUp", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "casey@downtown.example", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId": "identity-123",
			"idToken": "session-token",
		})
	})

	provider := NewRESTIdentityProvider(server.URL, "test-key", zap.NewNop())
	identityID, err := provider.CreateIdentity(context.Background(), "casey@downtown.example", "branch-secret")

	assert.NoError(t, err)
	assert.Equal(t, "identity-123", identityID)
}

func TestRESTIdentityProvider_EmailExistsIsDistinguished(t *testing.T) {
	server := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "EMAIL_EXISTS"},
		})
	})

	provider := NewRESTIdentityProvider(server.URL, "test-key", zap.NewNop())
	_, err := provider.CreateIdentity(context.Background(), "taken@peak.example", "whatever")

	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestRESTIdentityProvider_ProviderErrorIsSurfaced(t *testing.T) {
	server := identityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "INVALID_PASSWORD"},
		})
	})

	provider := NewRESTIdentityProvider(server.URL, "test-key", zap.NewNop())
	_, err := provider.SignIn(context.Background(), "casey@downtown.example", "wrong")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailAlreadyInUse)
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")
}

func TestRESTIdentityProvider_SessionGuardReleaseIsIdempotent(t *testing.T) {
	provider := NewRESTIdentityProvider("http://localhost", "test-key", zap.NewNop())

	release := provider.AcquireSession()
	release()
	release() // double release must not unlock someone else's hold

	acquired := make(chan struct{})
	go func() {
		next := provider.AcquireSession()
		defer next()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("session guard was not reacquirable after release")
	}
}
