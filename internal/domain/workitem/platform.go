package workitem

import (
	"context"
)

// ---------------------------------------------------------------------------
// Host session
// ---------------------------------------------------------------------------

// HostSession is what the host platform hands an embedded app:
// a signed session token plus the ids of the item the app was opened on.
type HostSession struct {
	Token   string
	ItemID  string
	BoardID string
}

type hostSessionKey struct{}

// WithHostSession returns a context carrying the host session
func WithHostSession(ctx context.Context, s HostSession) context.Context {
	return context.WithValue(ctx, hostSessionKey{}, s)
}

// HostSessionFromContext returns the host session carried by ctx, if any
func HostSessionFromContext(ctx context.Context) (HostSession, bool) {
	s, ok := ctx.Value(hostSessionKey{}).(HostSession)
	if !ok || s.Token == "" {
		return HostSession{}, false
	}
	return s, true
}

// IsEmbedded returns true if ctx carries a host session
func IsEmbedded(ctx context.Context) bool {
	_, ok := HostSessionFromContext(ctx)
	return ok
}

// ---------------------------------------------------------------------------
// Platform values
// ---------------------------------------------------------------------------

// User is the person operating the app
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HostContext is the item and user the host platform reports
type HostContext struct {
	ItemID    string
	BoardID   string
	User      User
	AccountID string
}

// Asset is a resolved attachment
type Asset struct {
	ID            string
	Name          string
	URL           string
	PublicURL     string
	FileExtension string
	SizeBytes     int64
}

// BestURL returns the public URL when present, otherwise the private one
func (a Asset) BestURL() string {
	if a.PublicURL != "" {
		return a.PublicURL
	}
	return a.URL
}

// CredentialCheck is the outcome of validating an API credential
type CredentialCheck struct {
	Valid bool
	User  User
	Err   error
}

// ---------------------------------------------------------------------------
// Platform Port Interface
// ---------------------------------------------------------------------------

// Platform defines the port interface for the remote work-board service.
// It is defined in the domain layer; the GraphQL adapter and the fixture
// adapter live in the infrastructure layer.
type Platform interface {
	// GetContext returns the host context for an embedded session.
	// It fails with ErrNotEmbedded when ctx carries no host session and
	// with ErrInvalidHostSession when the session token does not verify.
	GetContext(ctx context.Context) (*HostContext, error)

	// GetItem fetches one item with all of its columns
	GetItem(ctx context.Context, itemID string) (*RawItem, error)

	// ListBoardItems lists up to limit items of a board, newest first
	ListBoardItems(ctx context.Context, boardID string, limit int) ([]ItemSummary, error)

	// ResolveAsset turns an asset id into a downloadable URL
	ResolveAsset(ctx context.Context, assetID string) (*Asset, error)

	// ValidateCredential checks the configured API credential.
	// A rejected credential is reported in the result, not as an error;
	// the error is reserved for transport failures.
	ValidateCredential(ctx context.Context) (*CredentialCheck, error)

	// DownloadAsset fetches the content behind a resolved asset URL
	DownloadAsset(ctx context.Context, url string) (*Download, error)
}

// Download is fetched attachment content
type Download struct {
	ContentType string
	Data        []byte
}
