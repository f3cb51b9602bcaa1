// Package email provides transactional email sending behind the EmailSender
// interface, with parameter validation and a development-mode sender that
// writes emails to disk instead of delivering them.
//
//	sender := email.NewDevSender("./dev_emails")
//
//	err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Welcome",
//		BodyHTML: "<h1>Welcome!</h1>",
//		Tag:      "welcome_email",
//	})
//
// Production deployments swap in a provider implementation such as
// integration/email/postmark without changing calling code.
package email
