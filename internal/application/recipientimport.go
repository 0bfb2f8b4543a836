package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// randomNames is the pool used by NameModeRandom.
var randomNames = []string{"Alice", "Bob", "Charlie", "Daisy", "Ethan", "Fiona", "George", "Hannah"}

// ParseRecipients parses free text with one recipient per line. The last
// whitespace-separated word is the email and anything before it the name; a
// line with a single word is an email with no name. Blank lines are skipped.
// mode decides whether parsed names are kept, replaced by fixedName, or
// replaced by a random name.
func ParseRecipients(text string, mode model.NameMode, fixedName string) ([]model.Recipient, error) {
	return parseRecipients(text, mode, fixedName, func(n int) int { return rand.IntN(n) })
}

func parseRecipients(text string, mode model.NameMode, fixedName string, pick func(n int) int) ([]model.Recipient, error) {
	switch mode {
	case model.NameModeUseExisting, model.NameModeFixed, model.NameModeRandom:
	default:
		return nil, fmt.Errorf("unknown name mode %q", mode)
	}
	fixedName = strings.TrimSpace(fixedName)

	var out []model.Recipient
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		r := model.Recipient{Email: parts[len(parts)-1]}
		if len(parts) > 1 {
			r.Name = strings.Join(parts[:len(parts)-1], " ")
		}

		switch mode {
		case model.NameModeFixed:
			r.Name = fixedName
		case model.NameModeRandom:
			r.Name = randomNames[pick(len(randomNames))]
		}

		out = append(out, r)
	}
	return out, nil
}

// RecipientImportService reads the recipient table and replaces it from
// pasted text.
type RecipientImportService struct {
	store  driven.RecipientStore
	logger *slog.Logger
}

// NewRecipientImportService creates a RecipientImportService.
func NewRecipientImportService(store driven.RecipientStore, logger *slog.Logger) *RecipientImportService {
	return &RecipientImportService{store: store, logger: logger}
}

// Import parses text and overwrites the recipient table with the result. It
// returns the number of recipients saved.
func (s *RecipientImportService) Import(ctx context.Context, text string, mode model.NameMode, fixedName string) (int, error) {
	recipients, err := ParseRecipients(text, mode, fixedName)
	if err != nil {
		return 0, err
	}
	if err := s.store.SaveRecipients(ctx, recipients); err != nil {
		return 0, fmt.Errorf("save recipients: %w", err)
	}
	s.logger.Info("recipients updated", "count", len(recipients), "name_mode", mode)
	return len(recipients), nil
}

// List returns the recipient table as stored.
func (s *RecipientImportService) List(ctx context.Context) ([]model.Recipient, error) {
	recipients, err := s.store.LoadRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}
	return recipients, nil
}

// WriteRecipients writes one "Name Email" line per recipient followed by the
// total. A recipient without a name is written as the bare email.
func WriteRecipients(w io.Writer, recipients []model.Recipient) error {
	for _, r := range recipients {
		line := strings.TrimSpace(r.Name + " " + r.Email)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total recipients: %d\n", len(recipients))
	return err
}
