package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkpress/core/email"
)

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>Hi</p>",
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing recipient", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.SendTo = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.SendTo = "not-an-email"
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.Subject = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing body", func(t *testing.T) {
		t.Parallel()
		p := valid
		p.BodyHTML = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})
}

func TestDevSenderWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Password Reset",
		BodyHTML: "<p>Reset your password</p>",
		Tag:      "password_reset",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFound, jsonFound bool
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFound = true
			assert.Contains(t, e.Name(), "password_reset")
			body, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(body), "Reset your password")
		case ".json":
			jsonFound = true
			meta, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(meta), `"user@example.com"`)
		}
	}
	assert.True(t, htmlFound, "HTML file should be written")
	assert.True(t, jsonFound, "JSON metadata file should be written")
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, email.IsValidEmail("user@example.com"))
	assert.True(t, email.IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, email.IsValidEmail("plain"))
	assert.False(t, email.IsValidEmail("@example.com"))
	assert.False(t, email.IsValidEmail("user@"))
	assert.False(t, email.IsValidEmail(strings.Repeat("a", 5)))
}
