package posts

import "errors"

var (
	// ErrNotFound is returned when no post matches the lookup.
	ErrNotFound = errors.New("post not found")

	// ErrSlugTaken is returned when the derived slug is already in use.
	ErrSlugTaken = errors.New("post slug already taken")

	// ErrNotAuthor is returned when a user modifies a post they do not own.
	ErrNotAuthor = errors.New("user is not the post author")
)
