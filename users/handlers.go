package users

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/response"
)

// Identity resolves the authenticated user for a request. Implementations
// return an error when no authenticated session is present.
type Identity[C handler.Context] func(ctx C) (uuid.UUID, error)

// Handlers exposes the current-user profile endpoints.
type Handlers[C handler.Context] struct {
	repo     Repository
	identity Identity[C]
}

// NewHandlers creates the profile handlers. Panics on nil dependencies:
// missing wiring is a programmer error that must fail at startup.
func NewHandlers[C handler.Context](repo Repository, identity Identity[C]) *Handlers[C] {
	if repo == nil {
		panic("users: repository is required")
	}
	if identity == nil {
		panic("users: identity resolver is required")
	}
	return &Handlers[C]{repo: repo, identity: identity}
}

// Profile returns the authenticated user's account.
func (h *Handlers[C]) Profile() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		user, err := h.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return response.Error(response.ErrNotFound.WithMessage("User not found"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSON(user)
	}
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile changes the authenticated user's display name.
func (h *Handlers[C]) UpdateProfile() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		var req updateProfileRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("Name is required"))
		}

		user, err := h.repo.UpdateName(ctx, userID, req.Name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return response.Error(response.ErrNotFound.WithMessage("User not found"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSON(user)
	}
}
