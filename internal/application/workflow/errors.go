package workflow

import "errors"

var (
	// Session errors
	ErrSessionNotFound = errors.New("workflow: session not found")
	ErrStaleResult     = errors.New("workflow: stale result discarded")

	// Pipeline errors
	ErrItemNotLoaded        = errors.New("workflow: no item loaded")
	ErrNoTemplateSelected   = errors.New("workflow: no template selected")
	ErrItemSwitchNotAllowed = errors.New("workflow: item is fixed by the host")
	ErrNoTestBoard          = errors.New("workflow: no test board in this mode")

	// Lookup errors
	ErrContactNotFound = errors.New("workflow: contact not among item contacts")
	ErrFileNotFound    = errors.New("workflow: file index out of range")
	ErrFileUnresolved  = errors.New("workflow: file has neither url nor asset id")
)
