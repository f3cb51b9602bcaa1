package postmark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/core/email"
	"github.com/dmitrymomot/inkpress/integration/email/postmark"
)

func validConfig() postmark.Config {
	return postmark.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		sender, err := postmark.New(validConfig())
		assert.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("missing server token", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.PostmarkServerToken = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("missing account token", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.PostmarkAccountToken = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid sender email", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.SenderEmail = "not-an-email"
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid support email", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.SupportEmail = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestMustNewClientPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		postmark.MustNewClient(postmark.Config{})
	})

	assert.NotPanics(t, func() {
		postmark.MustNewClient(validConfig())
	})
}
