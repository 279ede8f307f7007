package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Sessions
const (
	SessionCookieName = "checklist_session"
)

// Pagination defaults
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication
const (
	MinPasswordLength = 8
)

// Uploads
const (
	// MaxUploadSize limits a single photo upload to 10 MiB.
	MaxUploadSize = 10 << 20
)
