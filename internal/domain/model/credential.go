// Package model holds the domain types shared by the dispatch services and adapters.
package model

// Credential is one authenticated identity usable against the signing API,
// together with its per-run usage quota. Used starts at zero on every load and
// only ever grows; a credential is usable while Used < Limit.
type Credential struct {
	Token string
	Limit int
	Used  int
	Email string // Account the token was issued for. Informational only.
}

// Usable reports whether the credential has quota left for this run.
func (c *Credential) Usable() bool {
	return c.Used < c.Limit
}

// TokenPrefix returns the first six characters of the token, safe to log.
func (c *Credential) TokenPrefix() string {
	if len(c.Token) <= 6 {
		return c.Token
	}
	return c.Token[:6]
}

// CredentialRow is the persisted form of a credential as it appears in the
// credential table. Values are kept as stored so a load/save cycle is lossless.
type CredentialRow struct {
	Token string
	Limit string
	Email string
}

// Account is a row of the source accounts table used to obtain tokens via the
// password grant.
type Account struct {
	Email        string
	Password     string
	ClientID     string
	ClientSecret string
}
