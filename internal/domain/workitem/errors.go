package workitem

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("workitem: platform not configured")
	ErrPlatformUnavailable     = errors.New("workitem: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("workitem: platform request failed")
	ErrPlatformInvalidResponse = errors.New("workitem: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("workitem: platform authentication failed")

	// Context errors
	ErrNotEmbedded        = errors.New("workitem: not running inside the host platform")
	ErrInvalidHostSession = errors.New("workitem: invalid host session token")
	ErrMissingHostItemID  = errors.New("workitem: host session carries no item id")

	// Lookup errors
	ErrItemNotFound  = errors.New("workitem: item not found")
	ErrAssetNotFound = errors.New("workitem: asset not found")
	ErrBoardEmpty    = errors.New("workitem: board has no items")

	// Payload errors
	ErrMalformedPayload = errors.New("workitem: malformed column payload")
)
