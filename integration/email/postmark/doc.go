// Package postmark implements the email.EmailSender interface using
// Postmark's transactional email API.
//
// New validates configuration up front: both API tokens and a valid sender
// and support address are required. SendEmail enables open tracking and
// HTML-only link tracking, and sets Reply-To to the support address.
//
//	sender, err := postmark.New(cfg)
//	if err != nil {
//		return err
//	}
//
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Reset your password",
//		BodyHTML: body,
//		Tag:      "password_reset",
//	})
package postmark
