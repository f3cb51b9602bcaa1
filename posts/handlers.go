package posts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/response"
)

// Identity resolves the authenticated user for a request. Implementations
// return an error when no authenticated session is present.
type Identity[C handler.Context] func(ctx C) (uuid.UUID, error)

// Handlers exposes the post CRUD endpoints. Listing and reading are public;
// create, update, and delete require an authenticated author.
type Handlers[C handler.Context] struct {
	repo     Repository
	identity Identity[C]
}

// NewHandlers creates the post handlers. Panics on nil dependencies.
func NewHandlers[C handler.Context](repo Repository, identity Identity[C]) *Handlers[C] {
	if repo == nil {
		panic("posts: repository is required")
	}
	if identity == nil {
		panic("posts: identity resolver is required")
	}
	return &Handlers[C]{repo: repo, identity: identity}
}

// List returns published posts, newest first. Supports limit/offset paging
// via query parameters.
func (h *Handlers[C]) List() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		query := ctx.Request().URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))

		list, err := h.repo.List(ctx, ListPostsParams{
			PublishedOnly: true,
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if list == nil {
			list = []Post{}
		}
		return response.JSON(list)
	}
}

// Get returns a single post by slug. Unpublished posts are visible only to
// their author.
func (h *Handlers[C]) Get() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		post, err := h.repo.GetBySlug(ctx, ctx.Param("slug"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return response.Error(response.ErrNotFound.WithMessage("Post not found"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		if !post.Published {
			userID, err := h.identity(ctx)
			if err != nil || userID != post.AuthorID {
				return response.Error(response.ErrNotFound.WithMessage("Post not found"))
			}
		}

		return response.JSON(post)
	}
}

type createPostRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

// Create creates a post owned by the authenticated user. The slug is derived
// from the title.
func (h *Handlers[C]) Create() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		var req createPostRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("Title is required"))
		}

		post, err := h.repo.Create(ctx, CreatePostParams{
			AuthorID:  userID,
			Slug:      Slugify(req.Title),
			Title:     req.Title,
			Body:      req.Body,
			Published: req.Published,
		})
		if err != nil {
			if errors.Is(err, ErrSlugTaken) {
				return response.Error(response.ErrConflict.WithMessage("A post with this title already exists"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSONWithStatus(post, http.StatusCreated)
	}
}

// Update modifies a post. Only the author can update their post.
func (h *Handlers[C]) Update() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		post, err := h.repo.GetBySlug(ctx, ctx.Param("slug"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return response.Error(response.ErrNotFound.WithMessage("Post not found"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		if post.AuthorID != userID {
			return response.Error(response.ErrForbidden.WithMessage(ErrNotAuthor.Error()))
		}

		var req createPostRequest
		if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
			return response.Error(response.ErrBadRequest.WithMessage("Invalid JSON body"))
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			return response.Error(response.ErrUnprocessableEntity.WithMessage("Title is required"))
		}

		updated, err := h.repo.Update(ctx, post.ID, UpdatePostParams{
			Title:     req.Title,
			Body:      req.Body,
			Published: req.Published,
		})
		if err != nil {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.JSON(updated)
	}
}

// Delete removes a post. Only the author can delete their post.
func (h *Handlers[C]) Delete() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		userID, err := h.identity(ctx)
		if err != nil {
			return response.Error(response.ErrUnauthorized)
		}

		post, err := h.repo.GetBySlug(ctx, ctx.Param("slug"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return response.Error(response.ErrNotFound.WithMessage("Post not found"))
			}
			return response.Error(response.ErrInternalServerError.WithError(err))
		}
		if post.AuthorID != userID {
			return response.Error(response.ErrForbidden.WithMessage(ErrNotAuthor.Error()))
		}

		if err := h.repo.Delete(ctx, post.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return response.Error(response.ErrInternalServerError.WithError(err))
		}

		return response.NoContent()
	}
}
