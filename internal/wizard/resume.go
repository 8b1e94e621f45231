package wizard

import (
	"context"
	"fmt"

	"loan-wizard/internal/models"
)

// ApplicationReader loads stored applications for editing.
type ApplicationReader interface {
	GetApplication(ctx context.Context, applicationID string) (*models.ApplicationResponse, error)
	ListDocuments(ctx context.Context, applicationID string) ([]models.DocumentRef, error)
}

// Resume hydrates a wizard from a stored application. Documents are only
// fetched for a rejected application, so only a rejected application gets
// locked fields.
func Resume(ctx context.Context, reader ApplicationReader, applicationID string, opts ...Option) (*Wizard, error) {
	app, err := reader.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application %s: %w", applicationID, err)
	}

	var existing ExistingDocuments
	if app.Status.IsRejected() {
		refs, err := reader.ListDocuments(ctx, applicationID)
		if err != nil {
			return nil, fmt.Errorf("list documents for %s: %w", applicationID, err)
		}
		existing = ExistingFromRefs(refs)
	}

	id := app.ApplicationID
	if id == "" {
		id = applicationID
	}
	return NewFromExisting(FormFromApplication(app), id, app.Status, existing, opts...), nil
}
