package signing

import "context"

// Platform defines the port interface for the remote signing service.
// It is defined in the domain layer; the REST adapter and the fixture
// adapter live in the infrastructure layer.
type Platform interface {
	// ListTemplates returns every template available to the credential
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)

	// GetTemplateDetails returns a template with its signer roles
	GetTemplateDetails(ctx context.Context, templateID string) (*Template, error)

	// GetPreviewURL returns a URL rendering the template's document.
	// It does no I/O.
	GetPreviewURL(templateID string) string

	// CreateSubmission dispatches a signature request
	CreateSubmission(ctx context.Context, req *SubmissionRequest) (*SubmissionResult, error)

	// GetSubmission returns the current state of a submission
	GetSubmission(ctx context.Context, submissionID string) (*SubmissionResult, error)

	// CreateTemplateFromPDF uploads a drafted template
	CreateTemplateFromPDF(ctx context.Context, draft *TemplateDraft) (*DraftResult, error)

	// BuilderURL returns a link opening the template builder prefilled
	// with params. It does no I/O.
	BuilderURL(params BuilderParams) string
}
