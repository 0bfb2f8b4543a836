// Package application contains use-case orchestration services.
package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// CredentialPool is the ordered set of credentials available to a run.
// Acquire always scans from the first record, so a credential is used until
// its quota is exhausted before the next one is touched.
//
// CredentialPool is not safe for concurrent use; the dispatch loop is its only
// caller.
type CredentialPool struct {
	creds []*model.Credential
}

// NewCredentialPool creates an empty pool.
func NewCredentialPool() *CredentialPool {
	return &CredentialPool{}
}

// Load replaces the pool contents with rows, in order, each starting with
// Used = 0. It returns an error wrapping driven.ErrDataFormat if any row has a
// blank token or email, or a limit that is not a non-negative integer. On
// error the pool is left unchanged.
func (p *CredentialPool) Load(rows []model.CredentialRow) error {
	creds := make([]*model.Credential, 0, len(rows))
	for i, row := range rows {
		cred, err := parseCredentialRow(row)
		if err != nil {
			return fmt.Errorf("credential row %d: %w", i+1, err)
		}
		creds = append(creds, cred)
	}
	p.creds = creds
	return nil
}

// Acquire returns the first credential with remaining quota without charging
// it. It returns nil once every credential is exhausted.
func (p *CredentialPool) Acquire() *model.Credential {
	for _, c := range p.creds {
		if c.Usable() {
			return c
		}
	}
	return nil
}

// Consume charges one unit of quota to c. It never pushes Used past Limit.
func (p *CredentialPool) Consume(c *model.Credential) {
	if c == nil || !c.Usable() {
		return
	}
	c.Used++
}

// Len returns the number of credentials in the pool.
func (p *CredentialPool) Len() int {
	return len(p.creds)
}

// Remaining returns the quota units left across the pool.
func (p *CredentialPool) Remaining() int {
	var n int
	for _, c := range p.creds {
		n += c.Limit - c.Used
	}
	return n
}

// Snapshot returns copies of the pool's credentials in order.
func (p *CredentialPool) Snapshot() []model.Credential {
	out := make([]model.Credential, len(p.creds))
	for i, c := range p.creds {
		out[i] = *c
	}
	return out
}

func parseCredentialRow(row model.CredentialRow) (*model.Credential, error) {
	token := strings.TrimSpace(row.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: Token is empty", driven.ErrDataFormat)
	}
	email := strings.TrimSpace(row.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: Email is empty", driven.ErrDataFormat)
	}
	limit, err := parseLimit(row.Limit)
	if err != nil {
		return nil, err
	}
	return &model.Credential{Token: token, Limit: limit, Email: email}, nil
}

// parseLimit accepts integers and integral decimals ("10", "10.0"); numeric
// spreadsheet cells are often written back in the latter form. Limits are
// capped at MaxInt32 so pool totals cannot overflow.
func parseLimit(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: Limit is empty", driven.ErrDataFormat)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: Limit %q is not an integer", driven.ErrDataFormat, raw)
		}
		if math.Abs(f) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: Limit %q is out of range", driven.ErrDataFormat, raw)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: Limit %d is negative", driven.ErrDataFormat, n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: Limit %q is out of range", driven.ErrDataFormat, raw)
	}
	return n, nil
}
