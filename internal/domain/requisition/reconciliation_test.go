package requisition

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingAmount(t *testing.T) {
	t.Run("remaining room", func(t *testing.T) {
		pending := PendingAmount(decimal.NewFromFloat(1000), decimal.NewFromFloat(600))
		assert.True(t, pending.Equal(decimal.NewFromFloat(400)))
	})

	t.Run("floors at zero when over-consumed", func(t *testing.T) {
		pending := PendingAmount(decimal.NewFromFloat(1000), decimal.NewFromFloat(1200))
		assert.True(t, pending.IsZero())
	})
}

func TestExceedsPending(t *testing.T) {
	pending := decimal.NewFromFloat(100)

	assert.False(t, ExceedsPending(decimal.NewFromFloat(100), pending))
	assert.False(t, ExceedsPending(decimal.NewFromFloat(99.99), pending))
	assert.True(t, ExceedsPending(decimal.NewFromFloat(100.01), pending))

	// residue below Epsilon is tolerated
	assert.False(t, ExceedsPending(decimal.RequireFromString("100.000005"), pending))
	assert.True(t, ExceedsPending(decimal.RequireFromString("100.00002"), pending))
}

func TestCoversTotal(t *testing.T) {
	total := decimal.NewFromFloat(1160)

	assert.True(t, CoversTotal(decimal.NewFromFloat(1160), total))
	assert.True(t, CoversTotal(decimal.NewFromFloat(1200), total))
	assert.False(t, CoversTotal(decimal.NewFromFloat(1159.99), total))

	// residue below Epsilon still covers
	assert.True(t, CoversTotal(decimal.RequireFromString("1159.999995"), total))
}

func TestCapabilityCheck(t *testing.T) {
	t.Run("populated tokens pass", func(t *testing.T) {
		require.NoError(t, ReviewerCapability{ReviewerID: uuid.New()}.Check())
		require.NoError(t, ResolverCapability{ResolverID: uuid.New()}.Check())
	})

	t.Run("zero tokens are unauthorized", func(t *testing.T) {
		require.Error(t, ReviewerCapability{}.Check())
		require.Error(t, ResolverCapability{}.Check())
	})
}
