package signnow

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

// IssueToken obtains an access token for account with the OAuth2 password
// grant. Client credentials are sent in the form body.
func (c *Client) IssueToken(ctx context.Context, account model.Account) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("issuing token for %s: %w", account.Email, err)
		}
	}

	cfg := &oauth2.Config{
		ClientID:     account.ClientID,
		ClientSecret: account.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.PasswordCredentialsToken(ctx, account.Email, account.Password)
	if err != nil {
		return "", fmt.Errorf("issuing token for %s: %w", account.Email, err)
	}

	c.logger.Debug("signnow token issued", "email", account.Email, "expiry", tok.Expiry)
	return tok.AccessToken, nil
}
