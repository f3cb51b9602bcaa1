// Package posts provides the article feature: the Post model with
// title-derived slugs, a PostgreSQL-backed repository, and CRUD endpoints.
// Listing and reading are public; mutations require the authenticated author.
package posts
