package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// ErrNoTokensIssued is returned by FetchTokens when no account yielded a token.
var ErrNoTokensIssued = errors.New("no valid tokens were generated")

// TokenService obtains access tokens for the source accounts and appends them
// to the credential table.
type TokenService struct {
	issuer       driven.TokenIssuer
	accounts     driven.AccountStore
	credentials  driven.CredentialStore
	defaultLimit int
	logger       *slog.Logger
}

// NewTokenService creates a TokenService. defaultLimit is the quota written
// for every newly fetched token.
func NewTokenService(
	issuer driven.TokenIssuer,
	accounts driven.AccountStore,
	credentials driven.CredentialStore,
	defaultLimit int,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		issuer:       issuer,
		accounts:     accounts,
		credentials:  credentials,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// FetchTokens issues a token for every account. An account that fails is
// logged and left out; it does not stop the others. Fetched rows are appended
// to the credential table, dropping rows whose token is already present. It
// returns the number of tokens issued.
func (s *TokenService) FetchTokens(ctx context.Context) (int, error) {
	accounts, err := s.accounts.LoadAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("read accounts: %w", err)
	}

	limit := strconv.Itoa(s.defaultLimit)
	var fetched []model.CredentialRow
	for _, acct := range accounts {
		token, err := s.issuer.IssueToken(ctx, acct)
		if err != nil {
			s.logger.Error("token fetch failed", "email", acct.Email, "error", err)
			continue
		}
		if token == "" {
			s.logger.Warn("token fetch returned no token", "email", acct.Email)
			continue
		}
		fetched = append(fetched, model.CredentialRow{Token: token, Limit: limit, Email: acct.Email})
	}

	if len(fetched) == 0 {
		s.logger.Warn("no tokens fetched", "accounts", len(accounts))
		return 0, ErrNoTokensIssued
	}

	existing, err := s.credentials.LoadCredentials(ctx)
	if err != nil {
		return 0, fmt.Errorf("read credentials: %w", err)
	}

	merged := dedupeByToken(append(existing, fetched...))
	if err := s.credentials.SaveCredentials(ctx, merged); err != nil {
		return 0, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("fetched and saved tokens", "count", len(fetched), "total", len(merged))
	return len(fetched), nil
}

// dedupeByToken keeps the first row for each token, preserving order.
func dedupeByToken(rows []model.CredentialRow) []model.CredentialRow {
	seen := make(map[string]struct{}, len(rows))
	out := make([]model.CredentialRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Token]; ok {
			continue
		}
		seen[r.Token] = struct{}{}
		out = append(out, r)
	}
	return out
}
