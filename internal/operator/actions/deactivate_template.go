package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/recurring-server/internal/storage"
)

// DeactivateTemplate retires a template whose end date has passed. Once the
// flag is flipped the engine never materializes from the template again.
type DeactivateTemplate struct {
	ID uuid.UUID
	IAction
}

func (a *DeactivateTemplate) Perform(ctx context.Context, writer *storage.Writer) error {
	return writer.Template.SetActive(ctx, a.ID, false)
}
