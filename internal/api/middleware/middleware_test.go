package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arkham-companion/internal/model"
)

const playerToken = "0b7f6a52-5a3e-4d3a-9f1c-2f1e7e0c9a11"

type stubUsers map[string]*model.User

func (s stubUsers) ParseToken(_ context.Context, signed string) (*model.User, error) {
	if u, ok := s[signed]; ok {
		return u, nil
	}
	return nil, model.ErrInvalidToken
}

type stubPlayers map[model.PlayerToken]*model.Player

func (s stubPlayers) GetPlayer(_ context.Context, token model.PlayerToken) (*model.Player, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, model.ErrPlayerNotFound
}

var (
	admin  = &model.User{ID: 1, Role: model.UserRoleAdmin}
	member = &model.User{ID: 2, Role: model.UserRoleUser}
	host   = &model.Player{ID: 10, Token: playerToken, Role: model.PlayerRoleHost, GameSessionToken: "ABCDEF"}
)

// identified routes a request through Identify, then the policy, into a handler recording the identity
func identified(t *testing.T, policy func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *model.User, *model.Player) {
	t.Helper()
	var gotUser *model.User
	var gotPlayer *model.Player

	r := mux.NewRouter()
	r.Use(Identify(stubUsers{"admin-jwt": admin, "member-jwt": member}, stubPlayers{playerToken: host}))
	h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPlayer = UserFrom(r.Context()), PlayerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	if policy != nil {
		h = policy(h)
	}
	r.Handle("/sessions/{token}", h)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, gotUser, gotPlayer
}

func request(path string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func errorKind(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestIdentifyResolvesJWTAndPlayerHeader(t *testing.T) {
	rr, user, player := identified(t, nil, request("/sessions/ABCDEF", map[string]string{
		"Authorization":   "Bearer member-jwt",
		PlayerTokenHeader: playerToken,
	}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, member, user)
	assert.Equal(t, host, player)
}

func TestIdentifyTreatsUUIDBearerAsPlayer(t *testing.T) {
	rr, user, player := identified(t, nil, request("/sessions/ABCDEF", map[string]string{
		"Authorization": "Bearer " + playerToken,
	}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, user)
	assert.Equal(t, host, player)
}

func TestIdentifyTreatsInvalidJWTAsAnonymous(t *testing.T) {
	rr, user, _ := identified(t, nil, request("/sessions/ABCDEF", map[string]string{
		"Authorization": "Bearer forged",
	}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, user)
}

func TestIdentifyInvalidJWTStillFailsRequireUser(t *testing.T) {
	rr, _, _ := identified(t, RequireUser, request("/sessions/ABCDEF", map[string]string{
		"Authorization": "Bearer forged",
	}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHORIZED", errorKind(t, rr))
}

type failingUsers struct{}

func (failingUsers) ParseToken(context.Context, string) (*model.User, error) {
	return nil, errors.New("connection refused")
}

func TestIdentifySurfacesResolverFailure(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Identify(failingUsers{}, stubPlayers{}))
	r.HandleFunc("/cards", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, request("/cards", map[string]string{"Authorization": "Bearer some-jwt"}))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestIdentifyIgnoresUnknownPlayer(t *testing.T) {
	rr, _, player := identified(t, nil, request("/sessions/ABCDEF", map[string]string{
		PlayerTokenHeader: "5c1f3a0e-0000-4000-8000-000000000000",
	}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, player)
}

func TestPolicies(t *testing.T) {

	tests := []struct {
		name    string
		policy  func(http.Handler) http.Handler
		path    string
		headers map[string]string
		status  int
		kind    string
	}{
		{"user missing", RequireUser, "/sessions/ABCDEF", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"user present", RequireUser, "/sessions/ABCDEF", map[string]string{"Authorization": "Bearer member-jwt"}, http.StatusOK, ""},
		{"admin missing", RequireAdmin, "/sessions/ABCDEF", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"admin as member", RequireAdmin, "/sessions/ABCDEF", map[string]string{"Authorization": "Bearer member-jwt"}, http.StatusForbidden, "FORBIDDEN"},
		{"admin", RequireAdmin, "/sessions/ABCDEF", map[string]string{"Authorization": "Bearer admin-jwt"}, http.StatusOK, ""},
		{"player missing", RequirePlayer, "/sessions/ABCDEF", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"player other session", RequirePlayer, "/sessions/ZZZZZZ", map[string]string{PlayerTokenHeader: playerToken}, http.StatusForbidden, "FORBIDDEN"},
		{"player", RequirePlayer, "/sessions/ABCDEF", map[string]string{PlayerTokenHeader: playerToken}, http.StatusOK, ""},
		{"host", RequireHost, "/sessions/ABCDEF", map[string]string{PlayerTokenHeader: playerToken}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _, _ := identified(t, tt.policy, request(tt.path, tt.headers))
			assert.Equal(t, tt.status, rr.Code)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, errorKind(t, rr))
			}
		})
	}
}

func TestRequireHostRejectsPlainPlayer(t *testing.T) {
	guestToken := model.PlayerToken("c4a1d0e2-1111-4111-8111-111111111111")
	guest := &model.Player{ID: 11, Token: guestToken, Role: model.PlayerRolePlayer, GameSessionToken: "ABCDEF"}

	r := mux.NewRouter()
	r.Use(Identify(stubUsers{}, stubPlayers{guestToken: guest}))
	r.Handle("/sessions/{token}", RequireHost(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, request("/sessions/ABCDEF", map[string]string{PlayerTokenHeader: string(guestToken)}))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "NOT_HOST", errorKind(t, rr))
}

func TestResolveLocale(t *testing.T) {
	languages := model.Languages{App: "en", Available: []model.Locale{"en", "es"}}

	tests := []struct {
		header string
		want   model.Locale
	}{
		{"", "en"},
		{"es", "es"},
		{"es-ES,es;q=0.9,en;q=0.8", "es"},
		{"ES-mx", "es"},
		{"fr-FR,es;q=0.9", "es"},
		{"fr-FR, es;q=0.9, en;q=0.5", "es"},
		{"fr-FR, en;q=0.5, es;q=0.9", "es"},
		{"de, fr;q=0.8", "en"},
		{"*", "en"},
		{"es;q=high", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLocale(tt.header, languages))
		})
	}
}

func TestLocaleMiddleware(t *testing.T) {
	var got model.Locale
	h := Locale(model.Languages{App: "en", Available: []model.Locale{"en", "es"}})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = LocaleFrom(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), request("/", map[string]string{"Accept-Language": "es-AR"}))
	assert.Equal(t, model.Locale("es"), got)
}

func TestRecoveryWritesJSON(t *testing.T) {
	h := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, request("/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorKind(t, rr))
}
