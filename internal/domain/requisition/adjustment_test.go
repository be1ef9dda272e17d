package requisition

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdjustment(t *testing.T) *AdjustmentEntry {
	t.Helper()
	entry, err := NewAdjustmentEntry(uuid.New(), AdjustmentRefund, SentidoFavorEmpresa,
		decimal.NewFromFloat(120.75), "transferencia", "REF-991", "saldo no ejercido")
	require.NoError(t, err)
	return entry
}

func TestNewAdjustmentEntry(t *testing.T) {
	t.Run("creates entry in PENDIENTE status", func(t *testing.T) {
		entry := newTestAdjustment(t)

		assert.Equal(t, AdjustmentRefund, entry.Tipo)
		assert.Equal(t, SentidoFavorEmpresa, entry.Sentido)
		assert.Equal(t, AdjustmentPendiente, entry.Status)
		assert.Nil(t, entry.MontoAnterior)
		assert.Nil(t, entry.MontoNuevo)
	})

	t.Run("rejects AUTHORIZED_INCREASE through the bookkeeping constructor", func(t *testing.T) {
		_, err := NewAdjustmentEntry(uuid.New(), AdjustmentAuthorizedIncrease,
			SentidoFavorSolicitante, decimal.NewFromFloat(1), "", "", "motivo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "total snapshots")
	})

	t.Run("fails with non-positive amount", func(t *testing.T) {
		_, err := NewAdjustmentEntry(uuid.New(), AdjustmentShortfall,
			SentidoFavorSolicitante, decimal.Zero, "", "", "motivo")
		require.Error(t, err)

		_, err = NewAdjustmentEntry(uuid.New(), AdjustmentShortfall,
			SentidoFavorSolicitante, decimal.NewFromFloat(-5), "", "", "motivo")
		require.Error(t, err)
	})

	t.Run("fails with blank reason", func(t *testing.T) {
		_, err := NewAdjustmentEntry(uuid.New(), AdjustmentRefund,
			SentidoFavorEmpresa, decimal.NewFromFloat(1), "", "", "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason is required")
	})

	t.Run("fails with invalid sentido", func(t *testing.T) {
		_, err := NewAdjustmentEntry(uuid.New(), AdjustmentRefund,
			AdjustmentSentido("NEUTRAL"), decimal.NewFromFloat(1), "", "", "motivo")
		require.Error(t, err)
	})
}

func TestNewAuthorizedIncreaseEntry(t *testing.T) {
	t.Run("carries before and after snapshots", func(t *testing.T) {
		entry, err := NewAuthorizedIncreaseEntry(uuid.New(),
			decimal.NewFromFloat(1000), decimal.NewFromFloat(1500), "costo adicional de flete")
		require.NoError(t, err)

		assert.Equal(t, AdjustmentAuthorizedIncrease, entry.Tipo)
		assert.Equal(t, SentidoFavorSolicitante, entry.Sentido)
		assert.True(t, entry.Monto.Equal(decimal.NewFromFloat(500)))
		require.NotNil(t, entry.MontoAnterior)
		require.NotNil(t, entry.MontoNuevo)
		assert.True(t, entry.MontoAnterior.Equal(decimal.NewFromFloat(1000)))
		assert.True(t, entry.MontoNuevo.Equal(decimal.NewFromFloat(1500)))
	})

	t.Run("fails when the new total does not grow", func(t *testing.T) {
		_, err := NewAuthorizedIncreaseEntry(uuid.New(),
			decimal.NewFromFloat(1000), decimal.NewFromFloat(1000), "motivo")
		require.Error(t, err)

		_, err = NewAuthorizedIncreaseEntry(uuid.New(),
			decimal.NewFromFloat(1000), decimal.NewFromFloat(900), "motivo")
		require.Error(t, err)
	})
}

func TestAdjustmentTransitions(t *testing.T) {
	t.Run("approve then apply", func(t *testing.T) {
		entry := newTestAdjustment(t)

		require.NoError(t, entry.Approve())
		assert.Equal(t, AdjustmentAprobado, entry.Status)

		require.NoError(t, entry.Apply())
		assert.Equal(t, AdjustmentAplicado, entry.Status)
		assert.True(t, entry.Status.IsTerminal())
	})

	t.Run("cannot apply a pending entry", func(t *testing.T) {
		entry := newTestAdjustment(t)
		require.Error(t, entry.Apply())
	})

	t.Run("reject is terminal", func(t *testing.T) {
		entry := newTestAdjustment(t)
		require.NoError(t, entry.Reject())
		assert.Equal(t, AdjustmentRechazado, entry.Status)

		require.Error(t, entry.Approve())
		require.Error(t, entry.Cancel())
	})

	t.Run("cancel works from PENDIENTE and APROBADO", func(t *testing.T) {
		pending := newTestAdjustment(t)
		require.NoError(t, pending.Cancel())
		assert.Equal(t, AdjustmentCancelado, pending.Status)

		approved := newTestAdjustment(t)
		require.NoError(t, approved.Approve())
		require.NoError(t, approved.Cancel())
		assert.Equal(t, AdjustmentCancelado, approved.Status)
	})

	t.Run("cannot cancel an applied entry", func(t *testing.T) {
		entry := newTestAdjustment(t)
		require.NoError(t, entry.Approve())
		require.NoError(t, entry.Apply())
		require.Error(t, entry.Cancel())
	})
}
