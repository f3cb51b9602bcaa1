package users_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/core/router"
	"github.com/dmitrymomot/inkpress/users"
)

// fakeRepo is an in-memory Repository for handler tests.
type fakeRepo struct {
	byID map[uuid.UUID]users.User
}

func newFakeRepo(seed ...users.User) *fakeRepo {
	r := &fakeRepo{byID: make(map[uuid.UUID]users.User)}
	for _, u := range seed {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, params users.CreateUserParams) (users.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, params.Email) {
			return users.User{}, users.ErrEmailTaken
		}
	}
	u := users.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (users.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *fakeRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (users.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return u, nil
}

func (r *fakeRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) error {
	u, ok := r.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	u.PasswordHash = hash
	r.byID[id] = u
	return nil
}

func fixedIdentity(id uuid.UUID) users.Identity[*router.Context] {
	return func(ctx *router.Context) (uuid.UUID, error) {
		if id == uuid.Nil {
			return uuid.Nil, errors.New("not authenticated")
		}
		return id, nil
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()

	user := users.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Name:  "Alice",
	}
	repo := newFakeRepo(user)

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()

		h := users.NewHandlers(repo, fixedIdentity(user.ID))
		r := router.New[*router.Context]()
		r.Get("/api/me", h.Profile())

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
		assert.NotContains(t, w.Body.String(), "password", "hash must never be serialized")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		h := users.NewHandlers(repo, fixedIdentity(uuid.Nil))
		r := router.New[*router.Context]()
		r.Get("/api/me", h.Profile())

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		h := users.NewHandlers(repo, fixedIdentity(uuid.New()))
		r := router.New[*router.Context]()
		r.Get("/api/me", h.Profile())

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	user := users.User{
		ID:    uuid.New(),
		Email: "bob@example.com",
		Name:  "Bob",
	}
	repo := newFakeRepo(user)

	h := users.NewHandlers(repo, fixedIdentity(user.ID))
	r := router.New[*router.Context]()
	r.Put("/api/me", h.UpdateProfile())

	t.Run("updates name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/me", strings.NewReader(`{"name":"Robert"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Robert")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/me", strings.NewReader(`{"name":"  "}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/me", strings.NewReader(`{not json`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
