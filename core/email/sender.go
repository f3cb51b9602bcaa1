package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender is the provider abstraction for transactional email delivery.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams defines the content and metadata of a single email.
type SendEmailParams struct {
	// SendTo is the recipient email address (required).
	SendTo string
	// Subject is the email subject line (required).
	Subject string
	// BodyHTML is the HTML body of the email (required).
	BodyHTML string
	// Tag is an optional category label used for provider-side analytics.
	Tag string
}

// Validate checks that the parameters form a sendable email.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !IsValidEmail(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}

// emailRegex is a simple regex for validating email addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks if the provided string is a valid email address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
