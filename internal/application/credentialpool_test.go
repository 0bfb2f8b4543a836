package application_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/signdispatch/internal/application"
	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

func rows(limits ...string) []model.CredentialRow {
	out := make([]model.CredentialRow, len(limits))
	for i, l := range limits {
		out[i] = model.CredentialRow{
			Token: fmt.Sprintf("token-%c", 'A'+i),
			Limit: l,
			Email: fmt.Sprintf("acct%d@example.com", i+1),
		}
	}
	return out
}

func loadPool(t *testing.T, limits ...string) *application.CredentialPool {
	t.Helper()
	pool := application.NewCredentialPool()
	require.NoError(t, pool.Load(rows(limits...)))
	return pool
}

func TestCredentialPool_LoadResetsUsed(t *testing.T) {
	pool := loadPool(t, "1", "2")

	snap := pool.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, model.Credential{Token: "token-A", Limit: 1, Used: 0, Email: "acct1@example.com"}, snap[0])
	assert.Equal(t, model.Credential{Token: "token-B", Limit: 2, Used: 0, Email: "acct2@example.com"}, snap[1])
	assert.Equal(t, 3, pool.Remaining())
}

func TestCredentialPool_LoadAcceptsIntegralDecimal(t *testing.T) {
	pool := loadPool(t, "10.0", " 3 ")

	snap := pool.Snapshot()
	assert.Equal(t, 10, snap[0].Limit)
	assert.Equal(t, 3, snap[1].Limit)
}

func TestCredentialPool_LoadRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  model.CredentialRow
	}{
		{"missing token", model.CredentialRow{Token: " ", Limit: "1", Email: "a@example.com"}},
		{"missing email", model.CredentialRow{Token: "t", Limit: "1", Email: ""}},
		{"missing limit", model.CredentialRow{Token: "t", Limit: "", Email: "a@example.com"}},
		{"non-numeric limit", model.CredentialRow{Token: "t", Limit: "ten", Email: "a@example.com"}},
		{"fractional limit", model.CredentialRow{Token: "t", Limit: "1.5", Email: "a@example.com"}},
		{"negative limit", model.CredentialRow{Token: "t", Limit: "-1", Email: "a@example.com"}},
		{"limit above int32", model.CredentialRow{Token: "t", Limit: "2147483648", Email: "a@example.com"}},
		{"limit at int64 max", model.CredentialRow{Token: "t", Limit: "9223372036854775807", Email: "a@example.com"}},
		{"decimal limit above int32", model.CredentialRow{Token: "t", Limit: "3e9", Email: "a@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := loadPool(t, "4")

			err := pool.Load([]model.CredentialRow{tt.row})

			require.Error(t, err)
			assert.ErrorIs(t, err, driven.ErrDataFormat)
			// Previous contents survive a failed load.
			assert.Equal(t, 1, pool.Len())
			assert.Equal(t, 4, pool.Remaining())
		})
	}
}

func TestCredentialPool_LargeLimitsDoNotOverflow(t *testing.T) {
	pool := loadPool(t, "2147483647", "2147483647", "2147483647.0")

	assert.Equal(t, 3*2147483647, pool.Remaining())
}

func TestCredentialPool_AcquireScansFromFirstUsable(t *testing.T) {
	pool := loadPool(t, "2", "1")

	first := pool.Acquire()
	require.NotNil(t, first)
	assert.Equal(t, "token-A", first.Token)

	// Acquire does not charge; the same record comes back until consumed.
	assert.Same(t, first, pool.Acquire())

	pool.Consume(first)
	assert.Same(t, first, pool.Acquire(), "credential is reused until exhausted")

	pool.Consume(first)
	second := pool.Acquire()
	require.NotNil(t, second)
	assert.Equal(t, "token-B", second.Token)

	pool.Consume(second)
	assert.Nil(t, pool.Acquire())
}

func TestCredentialPool_ZeroLimitIsNeverAcquired(t *testing.T) {
	pool := loadPool(t, "0", "1")

	c := pool.Acquire()
	require.NotNil(t, c)
	assert.Equal(t, "token-B", c.Token)
}

func TestCredentialPool_EmptyPoolIsExhausted(t *testing.T) {
	pool := application.NewCredentialPool()
	assert.Nil(t, pool.Acquire())
	assert.Equal(t, 0, pool.Remaining())
}

func TestCredentialPool_NeverExceedsTotalQuota(t *testing.T) {
	pool := loadPool(t, "3", "0", "2", "5")
	const total = 10

	consumed := 0
	for range 50 {
		c := pool.Acquire()
		if c == nil {
			continue
		}
		require.Less(t, c.Used, c.Limit, "acquired credential must be usable")
		pool.Consume(c)
		consumed++
	}

	assert.Equal(t, total, consumed)
	assert.Equal(t, 0, pool.Remaining())
	for _, c := range pool.Snapshot() {
		assert.Equal(t, c.Limit, c.Used)
	}

	// Exhaustion is a stable terminal state.
	for range 5 {
		assert.Nil(t, pool.Acquire())
	}
}

func TestCredentialPool_ConsumeExhaustedIsNoop(t *testing.T) {
	pool := loadPool(t, "1")
	c := pool.Acquire()
	pool.Consume(c)
	pool.Consume(c)

	assert.Equal(t, 1, pool.Snapshot()[0].Used)
}
