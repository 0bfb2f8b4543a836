package model

import "fmt"

// Fixed placement of the single signature field added to every document.
const (
	SignatureFieldX      = 100
	SignatureFieldY      = 150
	SignatureFieldWidth  = 200
	SignatureFieldHeight = 40
	SignatureFieldPage   = 0
	DefaultSigningOrder  = 1
	FieldTypeSignature   = "signature"
)

// Role is a signer role defined on an uploaded document.
type Role struct {
	Name         string
	SigningOrder int
}

// Field is a fillable field placed on a document and bound to a role.
type Field struct {
	X          int
	Y          int
	Width      int
	Height     int
	PageNumber int
	Role       string
	Required   bool
	Type       string
}

// InviteRecipient is one addressee of an invite.
type InviteRecipient struct {
	Email string
	Role  string
	Order int
}

// Invite is the payload of a signing invitation.
type Invite struct {
	To      []InviteRecipient
	From    string
	Subject string
	Message string
}

// SigningRequest is the transient unit of work for one recipient.
type SigningRequest struct {
	Index      int
	Recipient  Recipient
	TokenEmail string // Email of the credential the request was charged to.
	DocumentID string // Set after a successful upload.
	Role       string
	Outcome    Outcome
	Err        error
}

// RoleName returns the signer role used for the recipient at the given
// zero-based table index.
func RoleName(index int) string {
	return fmt.Sprintf("Signer %d", index+1)
}

// SignatureField returns the required signature field placed for role.
func SignatureField(role string) Field {
	return Field{
		X:          SignatureFieldX,
		Y:          SignatureFieldY,
		Width:      SignatureFieldWidth,
		Height:     SignatureFieldHeight,
		PageNumber: SignatureFieldPage,
		Role:       role,
		Required:   true,
		Type:       FieldTypeSignature,
	}
}
