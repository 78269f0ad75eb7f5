// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package httpapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/pokerncp/pokerncp/internal/auth"
	"github.com/pokerncp/pokerncp/internal/httpapi"
	"github.com/pokerncp/pokerncp/internal/pokedex"
)

// fakeUserRepo is an in-memory auth.UserRepository.
type fakeUserRepo struct {
	users map[ulid.ULID]*auth.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[ulid.ULID]*auth.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return auth.ErrUsernameTaken
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Username == identifier || (user.Email != nil && *user.Email == identifier) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, id ulid.ULID, upd auth.UserUpdate) error {
	user, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	if upd.Username != nil {
		for other, existing := range r.users {
			if other != id && existing.Username == *upd.Username {
				return auth.ErrUsernameTaken
			}
		}
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = upd.Email
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeCatalog is an in-memory pokedex.Repository.
type fakeCatalog struct {
	species []pokedex.Species
	caught  map[string]map[int]bool
}

func newFakeCatalog(species ...pokedex.Species) *fakeCatalog {
	return &fakeCatalog{
		species: species,
		caught:  make(map[string]map[int]bool),
	}
}

func (f *fakeCatalog) isCaught(userID ulid.ULID, id int) bool {
	return f.caught[userID.String()][id]
}

func (f *fakeCatalog) entry(userID ulid.ULID, id int, sp pokedex.Species) pokedex.Pokemon {
	return pokedex.Pokemon{
		ID:       id,
		Name:     sp.Name,
		Type1:    sp.Type1,
		Type2:    sp.Type2,
		DexNo:    sp.DexNo,
		ImageURL: sp.ImageURL,
		Caught:   f.isCaught(userID, id),
	}
}

func (f *fakeCatalog) List(_ context.Context, userID ulid.ULID) ([]pokedex.Pokemon, error) {
	list := make([]pokedex.Pokemon, 0, len(f.species))
	for i, sp := range f.species {
		list = append(list, f.entry(userID, i+1, sp))
	}
	return list, nil
}

func (f *fakeCatalog) Search(_ context.Context, userID ulid.ULID, prefix string) ([]pokedex.Pokemon, error) {
	list := make([]pokedex.Pokemon, 0)
	for i, sp := range f.species {
		if strings.HasPrefix(strings.ToLower(sp.Name), strings.ToLower(prefix)) {
			list = append(list, f.entry(userID, i+1, sp))
		}
	}
	return list, nil
}

func (f *fakeCatalog) GetDetail(_ context.Context, userID ulid.ULID, id int) (*pokedex.Detail, error) {
	if id < 1 || id > len(f.species) {
		return nil, pokedex.ErrNotFound
	}
	sp := f.species[id-1]
	return &pokedex.Detail{
		Pokemon: f.entry(userID, id, sp),
		BaseHP:  sp.BaseHP,
	}, nil
}

func (f *fakeCatalog) IDByName(_ context.Context, name string) (int, error) {
	for i, sp := range f.species {
		if sp.Name == name {
			return i + 1, nil
		}
	}
	return 0, pokedex.ErrNotFound
}

func (f *fakeCatalog) Catch(_ context.Context, userID ulid.ULID, pokemonID int, _ *string) error {
	key := userID.String()
	if f.caught[key] == nil {
		f.caught[key] = make(map[int]bool)
	}
	f.caught[key][pokemonID] = true
	return nil
}

func (f *fakeCatalog) UpsertSpecies(_ context.Context, sp pokedex.Species) error {
	for i, existing := range f.species {
		if existing.Name == sp.Name {
			f.species[i] = sp
			return nil
		}
	}
	f.species = append(f.species, sp)
	return nil
}

func (f *fakeCatalog) Count(_ context.Context) (int64, error) {
	return int64(len(f.species)), nil
}

// testServer bundles the server under test with its fakes.
type testServer struct {
	server  *httpapi.Server
	service *auth.Service
	users   *fakeUserRepo
	catalog *fakeCatalog
}

func newTestServer(t *testing.T, cfg httpapi.Config) *testServer {
	t.Helper()

	users := newFakeUserRepo()
	catalog := newFakeCatalog(
		pokedex.Species{Name: "Bulbasaur", Type1: "Grass", Type2: ptr("Poison")},
		pokedex.Species{Name: "Pikachu", Type1: "Electric"},
	)

	codec, err := auth.NewCodec(auth.CodecConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
	})
	require.NoError(t, err)
	service := auth.NewService(users, auth.NewArgon2Hasher(), codec)

	server, err := httpapi.NewServer(cfg, service, users, catalog, nil, nil)
	require.NoError(t, err)

	return &testServer{
		server:  server,
		service: service,
		users:   users,
		catalog: catalog,
	}
}

// register creates an account directly through the service.
func (ts *testServer) register(t *testing.T, username, password string) *auth.User {
	t.Helper()
	email := username + "@example.com"
	user, err := ts.service.Register(context.Background(), username, &email, password)
	require.NoError(t, err)
	return user
}

// accessCookie returns a Cookie header value carrying a fresh access
// token for user.
func (ts *testServer) accessCookie(t *testing.T, user *auth.User) string {
	t.Helper()
	token := ts.accessToken(t, user)
	return auth.AccessCookieName + "=" + token
}

func (ts *testServer) accessToken(t *testing.T, user *auth.User) string {
	t.Helper()
	token, err := ts.service.Codec().Issue(auth.TokenAccess, user.ID, time.Now())
	require.NoError(t, err)
	return token
}

func (ts *testServer) refreshToken(t *testing.T, user *auth.User) string {
	t.Helper()
	token, err := ts.service.Codec().Issue(auth.TokenRefresh, user.ID, time.Now())
	require.NoError(t, err)
	return token
}

// do runs a request against the fiber app.
func (ts *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func ptr[T any](v T) *T { return &v }
