package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

// Error kinds surfaced by SigningClient. Match with errors.Is.
var (
	ErrUpload    = errors.New("upload document")
	ErrSetFields = errors.New("set document fields")
	ErrInvite    = errors.New("send invite")
)

// RemoteError carries the detail of a failed call to the signing service.
// Kind is one of ErrUpload, ErrSetFields or ErrInvite. StatusCode is zero
// when the request never produced a response.
type RemoteError struct {
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	}
}

// Is reports whether target is the error's kind.
func (e *RemoteError) Is(target error) bool {
	return target == e.Kind
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// SigningClient defines the driven port for the three remote operations of
// the signing workflow. Every call is authenticated with the given bearer token.
type SigningClient interface {
	// Upload submits the attachment as a new document and returns its id.
	Upload(ctx context.Context, token string, doc model.Attachment) (string, error)

	// SetFields defines roles and fields on an uploaded document.
	SetFields(ctx context.Context, token, documentID string, roles []model.Role, fields []model.Field) error

	// Invite sends a signing invitation for the document.
	Invite(ctx context.Context, token, documentID string, invite model.Invite) error
}

// TokenIssuer exchanges account credentials for an API access token.
type TokenIssuer interface {
	IssueToken(ctx context.Context, account model.Account) (string, error)
}
