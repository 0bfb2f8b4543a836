package driven

import (
	"context"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

// RecipientStore defines the driven port for the recipient table.
type RecipientStore interface {
	LoadRecipients(ctx context.Context) ([]model.Recipient, error)
	SaveRecipients(ctx context.Context, recipients []model.Recipient) error
}

// SendPlanStore defines the driven port for the send-plan table.
type SendPlanStore interface {
	// LoadSendPlans returns every send-plan row in table order.
	LoadSendPlans(ctx context.Context) ([]model.SendPlan, error)
}
