package application_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/signdispatch/internal/application"
	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

func TestFetchTokens_AppendsAndDedupes(t *testing.T) {
	issuer := &mockTokenIssuer{issue: func(acct model.Account) (string, error) {
		return "tok-" + acct.Email, nil
	}}
	accounts := &mockAccountStore{accounts: []model.Account{
		{Email: "a@example.com", Password: "pw", ClientID: "id", ClientSecret: "secret"},
		{Email: "b@example.com", Password: "pw", ClientID: "id", ClientSecret: "secret"},
	}}
	creds := &mockCredentialStore{rows: []model.CredentialRow{
		{Token: "tok-a@example.com", Limit: "3", Email: "a@example.com"},
		{Token: "legacy", Limit: "7", Email: "old@example.com"},
	}}
	var logs bytes.Buffer
	svc := application.NewTokenService(issuer, accounts, creds, 10, newTestLogger(&logs))

	n, err := svc.FetchTokens(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, creds.saved, 1)
	assert.Equal(t, []model.CredentialRow{
		{Token: "tok-a@example.com", Limit: "3", Email: "a@example.com"},
		{Token: "legacy", Limit: "7", Email: "old@example.com"},
		{Token: "tok-b@example.com", Limit: "10", Email: "b@example.com"},
	}, creds.saved[0])
}

func TestFetchTokens_FailingAccountIsIsolated(t *testing.T) {
	issuer := &mockTokenIssuer{issue: func(acct model.Account) (string, error) {
		if acct.Email == "bad@example.com" {
			return "", errors.New("invalid_grant")
		}
		return "tok-" + acct.Email, nil
	}}
	accounts := &mockAccountStore{accounts: []model.Account{
		{Email: "bad@example.com"},
		{Email: "good@example.com"},
	}}
	creds := &mockCredentialStore{}
	var logs bytes.Buffer
	svc := application.NewTokenService(issuer, accounts, creds, 10, newTestLogger(&logs))

	n, err := svc.FetchTokens(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"bad@example.com", "good@example.com"}, issuer.calls)
	require.Len(t, creds.saved, 1)
	assert.Equal(t, []model.CredentialRow{{Token: "tok-good@example.com", Limit: "10", Email: "good@example.com"}}, creds.saved[0])
	assert.Contains(t, logs.String(), "token fetch failed")
	assert.Contains(t, logs.String(), "bad@example.com")
}

func TestFetchTokens_NoTokensLeavesTableUntouched(t *testing.T) {
	issuer := &mockTokenIssuer{issue: func(model.Account) (string, error) {
		return "", errors.New("unauthorized")
	}}
	accounts := &mockAccountStore{accounts: []model.Account{{Email: "a@example.com"}}}
	creds := &mockCredentialStore{}
	var logs bytes.Buffer
	svc := application.NewTokenService(issuer, accounts, creds, 10, newTestLogger(&logs))

	n, err := svc.FetchTokens(context.Background())

	require.ErrorIs(t, err, application.ErrNoTokensIssued)
	assert.Zero(t, n)
	assert.Empty(t, creds.saved)
}

func TestFetchTokens_AccountReadError(t *testing.T) {
	issuer := &mockTokenIssuer{}
	accounts := &mockAccountStore{err: errors.New("file locked")}
	var logs bytes.Buffer
	svc := application.NewTokenService(issuer, accounts, &mockCredentialStore{}, 10, newTestLogger(&logs))

	_, err := svc.FetchTokens(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read accounts")
	assert.Empty(t, issuer.calls)
}
