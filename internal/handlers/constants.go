package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid id"
	ErrInvalidQuery        = "Invalid query parameter"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrRateLimited         = "Too many requests"
	ErrInternalServerError = "Internal server error"

	defaultHistoryLimit        = 20
	defaultRecentMissedLimit   = 10
	defaultCentreSessionsLimit = 100
	maxBodyBytes               = 1 << 20
)
