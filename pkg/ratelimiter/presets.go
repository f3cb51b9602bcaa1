package ratelimiter

import "time"

// Per-use-case presets. Callers pick the identifier appropriate to each
// preset's abuse vector: IP for registration and downloads, email for
// login and password reset, user id for uploads.
var (
	// RegistrationPreset throttles account creation per IP.
	RegistrationPreset = Config{
		MaxRequests: 5,
		Window:      time.Hour,
		KeyPrefix:   "rl:registration",
	}

	// LoginPreset throttles credential attempts per email.
	LoginPreset = Config{
		MaxRequests: 10,
		Window:      15 * time.Minute,
		KeyPrefix:   "rl:login",
	}

	// PasswordResetPreset throttles reset emails per email address.
	PasswordResetPreset = Config{
		MaxRequests: 3,
		Window:      time.Hour,
		KeyPrefix:   "rl:password-reset",
	}

	// UploadPreset throttles file uploads per user.
	UploadPreset = Config{
		MaxRequests: 20,
		Window:      time.Hour,
		KeyPrefix:   "rl:upload",
	}

	// DownloadPreset throttles file downloads per IP.
	DownloadPreset = Config{
		MaxRequests: 100,
		Window:      time.Hour,
		KeyPrefix:   "rl:download",
	}

	// APIPreset throttles generic API traffic per IP.
	APIPreset = Config{
		MaxRequests: 100,
		Window:      time.Minute,
		KeyPrefix:   "rl:api",
	}
)
