package posts

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a published or draft article owned by its author.
type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercased, runs of
// non-alphanumeric characters collapsed to single hyphens.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	const maxLength = 80
	if len(s) > maxLength {
		s = strings.Trim(s[:maxLength], "-")
	}
	return s
}
