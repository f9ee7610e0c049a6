package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/hortifood/internal/models"
)

func newBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    *models.UserIdentity
		wantErr error
	}{
		{
			name:   "name field",
			status: http.StatusOK,
			body:   `{"user":{"id":1,"name":"João Silva","email":"joao@email.com"}}`,
			want:   &models.UserIdentity{ID: "1", Name: "João Silva", Email: "joao@email.com"},
		},
		{
			name:   "nome field and string id",
			status: http.StatusOK,
			body:   `{"user":{"id":"2","nome":"Maria Santos","email":"maria@email.com"}}`,
			want:   &models.UserIdentity{ID: "2", Name: "Maria Santos", Email: "maria@email.com"},
		},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"invalid"}`, wantErr: ErrUnexpectedStatus},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: ErrUnexpectedStatus},
		{name: "missing user", status: http.StatusOK, body: `{}`, wantErr: ErrMalformedResponse},
		{name: "missing email", status: http.StatusOK, body: `{"user":{"id":1,"name":"João Silva"}}`, wantErr: ErrMalformedResponse},
		{name: "missing id", status: http.StatusOK, body: `{"user":{"name":"João Silva","email":"joao@email.com"}}`, wantErr: ErrMalformedResponse},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, DefaultLoginPath, r.URL.Path)

				var req map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "joao@email.com", req["email"])
				assert.Equal(t, "123456", req["senha"])

				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			got, err := NewClient(srv.URL).Login(context.Background(), "joao@email.com", "123456")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Login_StatusErrorCarriesCode(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := NewClient(srv.URL).Login(context.Background(), "x@y.z", "bad")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestClient_Login_AltPath(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != AltLoginPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"user":{"id":1,"nome":"João Silva","email":"joao@email.com"}}`))
	})

	got, err := NewClient(srv.URL+"/", WithLoginPath(AltLoginPath)).Login(context.Background(), "joao@email.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "João Silva", got.Name)
}

func TestClient_Login_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Login(context.Background(), "joao@email.com", "123456")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_Register(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, UsersPath, r.URL.Path)

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]string{"nome": "Ana Lima", "email": "ana@email.com", "senha": "segredo"}, req)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":3,"nome":"Ana Lima","email":"ana@email.com"}`))
	})

	got, err := NewClient(srv.URL).Register(context.Background(), "Ana Lima", "ana@email.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, &models.UserIdentity{ID: "3", Name: "Ana Lima", Email: "ana@email.com"}, got)
}

func TestClient_Register_Conflict(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := NewClient(srv.URL).Register(context.Background(), "Ana Lima", "ana@email.com", "segredo")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_ListUsers_SendsSessionCookie(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == DefaultLoginPath:
			http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "tok", Path: "/"})
			w.Write([]byte(`{"user":{"id":1,"nome":"João Silva","email":"joao@email.com"}}`))
		case r.Method == http.MethodGet && r.URL.Path == UsersPath:
			ck, err := r.Cookie("accessToken")
			if err != nil || ck.Value != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[{"id":1,"nome":"João Silva","email":"joao@email.com"},{"id":2,"nome":"Maria Santos","email":"maria@email.com"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := NewClient(srv.URL)
	_, err := c.ListUsers(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = c.Login(context.Background(), "joao@email.com", "123456")
	require.NoError(t, err)

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Maria Santos", users[1].Nome)
}
