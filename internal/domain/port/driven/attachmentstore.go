package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

var (
	// ErrAttachmentNotFound is returned when the send-plan attachment path
	// does not name a regular file.
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrAttachmentEmpty is returned when the attachment exists but has zero size.
	ErrAttachmentEmpty = errors.New("attachment is empty")
)

// AttachmentStore defines the driven port for reading the document that is
// uploaded for every recipient.
type AttachmentStore interface {
	ReadAttachment(ctx context.Context, plan model.SendPlan) (*model.Attachment, error)
}
