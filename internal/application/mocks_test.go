package application_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// --- Mock implementations ---

type uploadCall struct {
	Token string
	Doc   model.Attachment
}

type setFieldsCall struct {
	Token      string
	DocumentID string
	Roles      []model.Role
	Fields     []model.Field
}

type inviteCall struct {
	Token      string
	DocumentID string
	Invite     model.Invite
}

// mockSigningClient records every call. Hooks default to success with a
// document id derived from the call count.
type mockSigningClient struct {
	upload    func(token string, doc model.Attachment) (string, error)
	setFields func(token, documentID string) error
	invite    func(token, documentID string, inv model.Invite) error

	uploads  []uploadCall
	setCalls []setFieldsCall
	invites  []inviteCall
}

var _ driven.SigningClient = (*mockSigningClient)(nil)

func (m *mockSigningClient) Upload(_ context.Context, token string, doc model.Attachment) (string, error) {
	m.uploads = append(m.uploads, uploadCall{Token: token, Doc: doc})
	if m.upload != nil {
		return m.upload(token, doc)
	}
	return fmt.Sprintf("doc-%d", len(m.uploads)), nil
}

func (m *mockSigningClient) SetFields(_ context.Context, token, documentID string, roles []model.Role, fields []model.Field) error {
	m.setCalls = append(m.setCalls, setFieldsCall{Token: token, DocumentID: documentID, Roles: roles, Fields: fields})
	if m.setFields != nil {
		return m.setFields(token, documentID)
	}
	return nil
}

func (m *mockSigningClient) Invite(_ context.Context, token, documentID string, inv model.Invite) error {
	m.invites = append(m.invites, inviteCall{Token: token, DocumentID: documentID, Invite: inv})
	if m.invite != nil {
		return m.invite(token, documentID, inv)
	}
	return nil
}

type mockRecipientStore struct {
	recipients []model.Recipient
	loadErr    error
	saved      []model.Recipient
	saveCalls  int
}

func (m *mockRecipientStore) LoadRecipients(_ context.Context) ([]model.Recipient, error) {
	return m.recipients, m.loadErr
}

func (m *mockRecipientStore) SaveRecipients(_ context.Context, recipients []model.Recipient) error {
	m.saveCalls++
	m.saved = recipients
	return nil
}

type mockSendPlanStore struct {
	plans   []model.SendPlan
	loadErr error
}

func (m *mockSendPlanStore) LoadSendPlans(_ context.Context) ([]model.SendPlan, error) {
	return m.plans, m.loadErr
}

type mockAttachmentStore struct {
	doc   *model.Attachment
	err   error
	reads []model.SendPlan
}

func (m *mockAttachmentStore) ReadAttachment(_ context.Context, plan model.SendPlan) (*model.Attachment, error) {
	m.reads = append(m.reads, plan)
	return m.doc, m.err
}

type mockCredentialStore struct {
	rows    []model.CredentialRow
	loadErr error
	saved   [][]model.CredentialRow
}

func (m *mockCredentialStore) LoadCredentials(_ context.Context) ([]model.CredentialRow, error) {
	return m.rows, m.loadErr
}

func (m *mockCredentialStore) SaveCredentials(_ context.Context, rows []model.CredentialRow) error {
	m.saved = append(m.saved, rows)
	m.rows = rows
	return nil
}

type mockAccountStore struct {
	accounts []model.Account
	err      error
}

func (m *mockAccountStore) LoadAccounts(_ context.Context) ([]model.Account, error) {
	return m.accounts, m.err
}

type mockTokenIssuer struct {
	issue func(acct model.Account) (string, error)
	calls []string
}

func (m *mockTokenIssuer) IssueToken(_ context.Context, acct model.Account) (string, error) {
	m.calls = append(m.calls, acct.Email)
	return m.issue(acct)
}

// newTestLogger returns a text logger writing into buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
