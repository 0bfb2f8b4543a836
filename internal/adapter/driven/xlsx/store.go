package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// Column layouts of the workbooks, in the order they are written.
var (
	RecipientColumns  = []string{"Name", "Email"}
	SendPlanColumns   = []string{"Subject", "Body", "AttachmentType", "AttachmentPath", "HTMLTemplate", "TFNA"}
	CredentialColumns = []string{"Token", "Limit", "Email"}
	AccountColumns    = []string{"Email", "Password", "ClientID", "ClientSecret"}
)

// sendPlanSheet is the sheet name used when creating the send-plan workbook.
const sendPlanSheet = "SendPlan"

// Compile-time interface satisfaction checks.
var (
	_ driven.RecipientStore  = (*Store)(nil)
	_ driven.SendPlanStore   = (*Store)(nil)
	_ driven.CredentialStore = (*Store)(nil)
	_ driven.AccountStore    = (*Store)(nil)
)

// Paths locates the four workbooks.
type Paths struct {
	Recipients string
	SendPlan   string
	Accounts   string
	Tokens     string
}

// Store reads and writes the workbooks named by Paths.
type Store struct {
	paths Paths
}

// NewStore creates a Store over paths.
func NewStore(paths Paths) *Store {
	return &Store{paths: paths}
}

// LoadRecipients returns the recipient rows. Email is a required column.
func (s *Store) LoadRecipients(_ context.Context) ([]model.Recipient, error) {
	t, err := readTable(s.paths.Recipients, "Email")
	if err != nil {
		return nil, err
	}

	out := make([]model.Recipient, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.Recipient{
			Name:  strings.TrimSpace(t.get(row, "Name")),
			Email: strings.TrimSpace(t.get(row, "Email")),
		})
	}
	return out, nil
}

// SaveRecipients replaces the recipient workbook.
func (s *Store) SaveRecipients(_ context.Context, recipients []model.Recipient) error {
	rows := make([][]string, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, []string{r.Name, r.Email})
	}
	return writeTable(s.paths.Recipients, "", RecipientColumns, rows)
}

// LoadSendPlans returns every send-plan row in order.
func (s *Store) LoadSendPlans(_ context.Context) ([]model.SendPlan, error) {
	t, err := readTable(s.paths.SendPlan, "Subject", "Body", "AttachmentPath")
	if err != nil {
		return nil, err
	}

	out := make([]model.SendPlan, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.SendPlan{
			Subject:        t.get(row, "Subject"),
			Body:           t.get(row, "Body"),
			AttachmentType: strings.TrimSpace(t.get(row, "AttachmentType")),
			AttachmentPath: strings.TrimSpace(t.get(row, "AttachmentPath")),
			HTMLTemplate:   t.get(row, "HTMLTemplate"),
			TFNA:           t.get(row, "TFNA"),
		})
	}
	return out, nil
}

// LoadCredentials returns the credential rows exactly as stored. A missing
// workbook is an empty table.
func (s *Store) LoadCredentials(_ context.Context) ([]model.CredentialRow, error) {
	exists, err := fileExists(s.paths.Tokens)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.paths.Tokens, err)
	}
	if !exists {
		return []model.CredentialRow{}, nil
	}

	t, err := readTable(s.paths.Tokens, CredentialColumns...)
	if err != nil {
		return nil, err
	}

	out := make([]model.CredentialRow, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.CredentialRow{
			Token: t.get(row, "Token"),
			Limit: t.get(row, "Limit"),
			Email: t.get(row, "Email"),
		})
	}
	return out, nil
}

// SaveCredentials replaces the credential workbook with rows.
func (s *Store) SaveCredentials(_ context.Context, creds []model.CredentialRow) error {
	rows := make([][]string, 0, len(creds))
	for _, c := range creds {
		rows = append(rows, []string{c.Token, c.Limit, c.Email})
	}
	return writeTable(s.paths.Tokens, "", CredentialColumns, rows, "Limit")
}

// LoadAccounts returns the source account rows. All four columns are required.
func (s *Store) LoadAccounts(_ context.Context) ([]model.Account, error) {
	t, err := readTable(s.paths.Accounts, AccountColumns...)
	if err != nil {
		return nil, err
	}

	out := make([]model.Account, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.Account{
			Email:        strings.TrimSpace(t.get(row, "Email")),
			Password:     t.get(row, "Password"),
			ClientID:     strings.TrimSpace(t.get(row, "ClientID")),
			ClientSecret: strings.TrimSpace(t.get(row, "ClientSecret")),
		})
	}
	return out, nil
}

// EnsureFiles creates every missing workbook with only its header row and
// returns the paths it created.
func (s *Store) EnsureFiles() ([]string, error) {
	files := []struct {
		path   string
		sheet  string
		header []string
	}{
		{s.paths.Recipients, "", RecipientColumns},
		{s.paths.SendPlan, sendPlanSheet, SendPlanColumns},
		{s.paths.Tokens, "", CredentialColumns},
		{s.paths.Accounts, "", AccountColumns},
	}

	var created []string
	for _, f := range files {
		exists, err := fileExists(f.path)
		if err != nil {
			return created, fmt.Errorf("stat %s: %w", f.path, err)
		}
		if exists {
			continue
		}
		if err := writeTable(f.path, f.sheet, f.header, nil); err != nil {
			return created, err
		}
		created = append(created, f.path)
	}
	return created, nil
}
