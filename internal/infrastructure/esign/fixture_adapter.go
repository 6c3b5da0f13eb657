package esign

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/signing"
)

// FixtureSigner implements signing.Platform in process. It serves three
// sample templates and keeps created submissions and templates in memory.
type FixtureSigner struct {
	baseURL string
	now     func() time.Time

	mu          sync.RWMutex
	templates   []fixtureTemplate
	submissions map[string]*signing.SubmissionResult
	seq         int
}

type fixtureTemplate struct {
	summary signing.TemplateSummary
	roles   []signing.SignerRole
}

// Compile-time check
var _ signing.Platform = (*FixtureSigner)(nil)

// NewFixtureSigner creates the fixture signer. baseURL prefixes preview and builder links.
func NewFixtureSigner(baseURL string) *FixtureSigner {
	if baseURL == "" {
		baseURL = DocuSealDefaultBaseURL
	}
	return &FixtureSigner{
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         time.Now,
		templates:   defaultFixtureTemplates(),
		submissions: make(map[string]*signing.SubmissionResult),
	}
}

func defaultFixtureTemplates() []fixtureTemplate {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 10, 0, 0, 0, time.UTC) }
	mk := func(id, name, desc string, created time.Time, roles ...string) fixtureTemplate {
		t := fixtureTemplate{summary: signing.TemplateSummary{
			ID: id, Name: name, Description: desc, CreatedAt: created, UpdatedAt: created,
		}}
		for i, r := range roles {
			t.roles = append(t.roles, signing.SignerRole{ID: fmt.Sprintf("submitter-%d", i+1), Name: r})
		}
		return t
	}
	return []fixtureTemplate{
		mk("mock-template-1", "Convenio de Voluntariado", "Plantilla para convenios con voluntarios", day(15),
			"Representante Fundación", "Voluntario"),
		mk("mock-template-2", "Acuerdo de Confidencialidad", "Plantilla para acuerdos de confidencialidad", day(10),
			"Representante Legal", "Contraparte"),
		mk("mock-template-3", "Contrato de Proveedor", "Plantilla para contratos con proveedores", day(5),
			"Director Fundación", "Proveedor", "Testigo"),
	}
}

// ListTemplates returns the fixture templates
func (f *FixtureSigner) ListTemplates(context.Context) ([]signing.TemplateSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]signing.TemplateSummary, 0, len(f.templates))
	for _, t := range f.templates {
		out = append(out, t.summary)
	}
	return out, nil
}

// GetTemplateDetails returns a fixture template with its roles
func (f *FixtureSigner) GetTemplateDetails(_ context.Context, templateID string) (*signing.Template, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.templates {
		if t.summary.ID == templateID {
			return &signing.Template{
				ID:    t.summary.ID,
				Name:  t.summary.Name,
				Roles: append([]signing.SignerRole(nil), t.roles...),
			}, nil
		}
	}
	return nil, shared.WrapDomainError(shared.CodeNotFound,
		fmt.Sprintf("template %s not found", templateID), signing.ErrTemplateNotFound)
}

// GetPreviewURL returns the preview link of a fixture template
func (f *FixtureSigner) GetPreviewURL(templateID string) string {
	return fmt.Sprintf("%s/api/templates/%s/preview.pdf", f.baseURL, templateID)
}

// CreateSubmission records a pending submission
func (f *FixtureSigner) CreateSubmission(ctx context.Context, req *signing.SubmissionRequest) (*signing.SubmissionResult, error) {
	if req == nil {
		return nil, shared.NewValidationError("submission request is required")
	}
	if _, err := f.GetTemplateDetails(ctx, req.TemplateID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := f.now().UTC()
	expires := now.Add(30 * 24 * time.Hour)
	status := signing.SubmissionStatusPending
	if req.SendEmail {
		status = signing.SubmissionStatusSent
	}

	res := &signing.SubmissionResult{
		ID:          fmt.Sprintf("mock-submission-%d", f.seq),
		Slug:        fmt.Sprintf("mock-slug-%d", f.seq),
		Status:      status,
		CreatedAt:   now,
		ExpiresAt:   &expires,
		AuditLogURL: "#",
	}
	for i, s := range req.Submitters {
		res.Submitters = append(res.Submitters, signing.SubmitterStatus{
			ID:     fmt.Sprintf("submitter-%d", i+1),
			Name:   s.Name,
			Email:  s.Email,
			Role:   s.RoleName,
			Status: status,
		})
	}
	f.submissions[res.ID] = res
	return cloneSubmission(res), nil
}

// GetSubmission returns a recorded submission
func (f *FixtureSigner) GetSubmission(_ context.Context, submissionID string) (*signing.SubmissionResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res, ok := f.submissions[submissionID]
	if !ok {
		return nil, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("submission %s not found", submissionID), signing.ErrSubmissionNotFound)
	}
	return cloneSubmission(res), nil
}

// CreateTemplateFromPDF adds the draft as a new fixture template
func (f *FixtureSigner) CreateTemplateFromPDF(_ context.Context, draft *signing.TemplateDraft) (*signing.DraftResult, error) {
	if draft == nil || len(draft.Document) == 0 {
		return nil, shared.NewValidationError("template draft has no document")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := f.now().UTC()
	id := fmt.Sprintf("mock-template-draft-%d", f.seq)

	t := fixtureTemplate{summary: signing.TemplateSummary{ID: id, Name: draft.Name, CreatedAt: now, UpdatedAt: now}}
	for _, s := range draft.Signers {
		t.roles = append(t.roles, signing.SignerRole{ID: s.Role, Name: s.Role})
	}
	f.templates = append(f.templates, t)

	return &signing.DraftResult{
		ID:         id,
		Name:       draft.Name,
		ExternalID: draft.ExternalID,
		EditURL:    fmt.Sprintf("%s/templates/%s/edit", f.baseURL, id),
		ViewURL:    fmt.Sprintf("%s/templates/%s", f.baseURL, id),
		Signers:    draft.Signers,
		CreatedAt:  now,
	}, nil
}

// BuilderURL returns the builder link on the fixture base URL
func (f *FixtureSigner) BuilderURL(params signing.BuilderParams) string {
	return builderURL(f.baseURL, params)
}

func cloneSubmission(s *signing.SubmissionResult) *signing.SubmissionResult {
	cp := *s
	cp.Submitters = append([]signing.SubmitterStatus(nil), s.Submitters...)
	return &cp
}
