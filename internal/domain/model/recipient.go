package model

// Recipient is one row of the recipient table. Each row produces exactly one
// signature request.
type Recipient struct {
	Name  string
	Email string
}

// SendPlan is the message template applied to every recipient of a run. Only
// the first row of the send-plan table is used.
type SendPlan struct {
	Subject        string
	Body           string
	AttachmentType string
	AttachmentPath string
	HTMLTemplate   string // Reserved.
	TFNA           string // Reserved.
}

// Attachment is the document uploaded once per recipient.
type Attachment struct {
	Path     string
	Name     string
	MIMEType string
	Data     []byte
}
