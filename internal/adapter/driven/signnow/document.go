package signnow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

type uploadResponse struct {
	ID string `json:"id"`
}

type roleJSON struct {
	Name         string `json:"name"`
	SigningOrder int    `json:"signing_order"`
}

type fieldJSON struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PageNumber int    `json:"page_number"`
	Role       string `json:"role"`
	Required   bool   `json:"required"`
	Type       string `json:"type"`
}

type fieldsRequest struct {
	Roles  []roleJSON  `json:"roles"`
	Fields []fieldJSON `json:"fields"`
}

type inviteToJSON struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Order int    `json:"order"`
}

type inviteRequest struct {
	To      []inviteToJSON `json:"to"`
	From    string         `json:"from"`
	Subject string         `json:"subject"`
	Message string         `json:"message"`
}

// Upload posts the attachment as a multipart "file" part and returns the id
// of the created document.
func (c *Client) Upload(ctx context.Context, token string, doc model.Attachment) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", multipart.FileContentDisposition("file", doc.Name))
	header.Set("Content-Type", doc.MIMEType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: err}
	}
	if _, err := part.Write(doc.Data); err != nil {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/document", &buf)
	if err != nil {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(ctx, driven.ErrUpload, token, req)
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if resp.ID == "" {
		return "", &driven.RemoteError{Kind: driven.ErrUpload, Err: errors.New("response has no document id")}
	}
	return resp.ID, nil
}

// SetFields defines roles and fields on an uploaded document.
func (c *Client) SetFields(ctx context.Context, token, documentID string, roles []model.Role, fields []model.Field) error {
	payload := fieldsRequest{
		Roles:  make([]roleJSON, 0, len(roles)),
		Fields: make([]fieldJSON, 0, len(fields)),
	}
	for _, r := range roles {
		payload.Roles = append(payload.Roles, roleJSON{Name: r.Name, SigningOrder: r.SigningOrder})
	}
	for _, f := range fields {
		payload.Fields = append(payload.Fields, fieldJSON{
			X:          f.X,
			Y:          f.Y,
			Width:      f.Width,
			Height:     f.Height,
			PageNumber: f.PageNumber,
			Role:       f.Role,
			Required:   f.Required,
			Type:       f.Type,
		})
	}

	req, err := c.newJSONRequest(ctx, driven.ErrSetFields, http.MethodPut, documentPath(documentID), payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, driven.ErrSetFields, token, req)
	return err
}

// Invite sends a signing invitation for the document.
func (c *Client) Invite(ctx context.Context, token, documentID string, invite model.Invite) error {
	payload := inviteRequest{
		To:      make([]inviteToJSON, 0, len(invite.To)),
		From:    invite.From,
		Subject: invite.Subject,
		Message: invite.Message,
	}
	for _, to := range invite.To {
		payload.To = append(payload.To, inviteToJSON{Email: to.Email, Role: to.Role, Order: to.Order})
	}

	req, err := c.newJSONRequest(ctx, driven.ErrInvite, http.MethodPost, documentPath(documentID)+"/invite", payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, driven.ErrInvite, token, req)
	return err
}
