package signing

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("signing: platform not configured")
	ErrPlatformUnavailable     = errors.New("signing: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("signing: platform request failed")
	ErrPlatformInvalidResponse = errors.New("signing: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("signing: platform authentication failed")
	ErrPlatformRejected        = errors.New("signing: request rejected by platform")

	// Lookup errors
	ErrTemplateNotFound   = errors.New("signing: template not found")
	ErrSubmissionNotFound = errors.New("signing: submission not found")

	// Assignment errors
	ErrUnknownRole          = errors.New("signing: role not in template")
	ErrAssignmentIncomplete = errors.New("signing: assignment incomplete")
	ErrInvalidSignerEmail   = errors.New("signing: signer email invalid")
	ErrTemplateHasNoRoles   = errors.New("signing: template has no signer roles")
)
