package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
)

// authServer fakes the provider's REST endpoints.
func authServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, decodeJSON(r, &req))
		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
			return
		}
		w.Write([]byte(`{
			"access_token":"tok-123",
			"refresh_token":"ref-456",
			"expires_in":3600,
			"user":{"id":"u-1","email":"` + req.Email + `","user_metadata":{"display_name":"Sam"}}
		}`))
	})
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		require.NoError(t, decodeJSON(r, &req))
		if req.Email == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"msg":"User already registered"}`))
			return
		}
		w.Write([]byte(`{"user":{"id":"u-2","email":"` + req.Email + `"}}`))
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return httptest.NewServer(mux)
}

func decodeJSON(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func TestSignIn_Success(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	session, err := client.SignInWithPassword(context.Background(), "sam@example.com", "correct-horse")
	require.NoError(t, err)

	assert.Equal(t, "tok-123", session.AccessToken)
	assert.Equal(t, "Sam", session.User.DisplayName)

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session, held)
}

func TestSignIn_BadCredentials_DoesNotTouchSession(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	_, err := client.SignInWithPassword(context.Background(), "sam@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = client.SignInWithPassword(context.Background(), "sam@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid login credentials", authErr.Message)

	// The earlier session survives the failed attempt.
	held, _ := client.GetSession(context.Background())
	require.NotNil(t, held)
	assert.Equal(t, "tok-123", held.AccessToken)
}

func TestSignIn_ValidatesInput(t *testing.T) {
	client := NewClient("http://unused", "anon-key")

	_, err := client.SignInWithPassword(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = client.SignInWithPassword(context.Background(), "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSignUp_Success(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	user, err := client.SignUp(context.Background(), "new@example.com", "secret1", "New User")
	require.NoError(t, err)
	assert.Equal(t, "u-2", user.ID)

	// Signup alone never creates a session.
	held, _ := client.GetSession(context.Background())
	assert.Nil(t, held)
}

func TestSignUp_Validation(t *testing.T) {
	client := NewClient("http://unused", "anon-key")
	ctx := context.Background()

	_, err := client.SignUp(ctx, "a@b.c", "short", "Sam")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = client.SignUp(ctx, "a@b.c", "long-enough", "  ")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	_, err := client.SignUp(context.Background(), "taken@example.com", "secret1", "Sam")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "User already registered", authErr.Message)
}

func TestSignOut_ClearsSessionAndNotifies(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	var mu sync.Mutex
	var events []AuthEvent
	unsubscribe := client.OnAuthStateChange(func(event AuthEvent, _ *domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	})
	defer unsubscribe()

	_, err := client.SignInWithPassword(context.Background(), "sam@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, client.SignOut(context.Background()))

	held, _ := client.GetSession(context.Background())
	assert.Nil(t, held)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []AuthEvent{EventSignedIn, EventSignedOut}, events)
}

func TestSignOut_NoSessionIsNoOp(t *testing.T) {
	client := NewClient("http://unused", "anon-key")
	assert.NoError(t, client.SignOut(context.Background()))
}

func TestOnAuthStateChange_UnsubscribeStopsDelivery(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	var mu sync.Mutex
	count := 0
	unsubscribe := client.OnAuthStateChange(func(AuthEvent, *domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	_, err := client.SignInWithPassword(context.Background(), "sam@example.com", "correct-horse")
	require.NoError(t, err)
	unsubscribe()
	require.NoError(t, client.SignOut(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestEmitInitialSession(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()
	client := NewClient(srv.URL, "anon-key")

	// Nothing held yet: no event.
	fired := false
	unsub := client.OnAuthStateChange(func(event AuthEvent, _ *domain.Session) {
		if event == EventInitialSession {
			fired = true
		}
	})
	defer unsub()

	client.EmitInitialSession()
	assert.False(t, fired)

	_, err := client.SignInWithPassword(context.Background(), "sam@example.com", "correct-horse")
	require.NoError(t, err)

	client.EmitInitialSession()
	assert.True(t, fired)
}
