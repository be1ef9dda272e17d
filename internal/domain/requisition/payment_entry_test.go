package requisition

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBeneficiary() BeneficiarySnapshot {
	return BeneficiarySnapshot{
		Nombre: "Proveedora del Norte SA",
		Banco:  "BBVA",
		Cuenta: "0123456789",
		Clabe:  "012345678901234567",
	}
}

func testVoucher() FileReference {
	return FileReference{
		StorageKey:  "payments/2026/02/abc.pdf",
		FileName:    "transferencia.pdf",
		ContentType: "application/pdf",
		SizeBytes:   48211,
	}
}

func TestNewPaymentEntry(t *testing.T) {
	requisitionID := uuid.New()

	t.Run("creates entry with valid inputs", func(t *testing.T) {
		entry, err := NewPaymentEntry(requisitionID, decimal.NewFromFloat(500.50),
			time.Now(), testBeneficiary(), testVoucher())
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, requisitionID, entry.RequisitionID)
		assert.True(t, entry.Monto.Equal(decimal.NewFromFloat(500.50)))
		assert.Equal(t, "Proveedora del Norte SA", entry.Beneficiario.Nombre)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	t.Run("accepts a zero-amount closing entry", func(t *testing.T) {
		entry, err := NewPaymentEntry(requisitionID, decimal.Zero,
			time.Now(), testBeneficiary(), testVoucher())
		require.NoError(t, err)
		assert.True(t, entry.Monto.IsZero())
	})

	t.Run("fails with negative amount", func(t *testing.T) {
		_, err := NewPaymentEntry(requisitionID, decimal.NewFromFloat(-1),
			time.Now(), testBeneficiary(), testVoucher())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("fails with nil requisition", func(t *testing.T) {
		_, err := NewPaymentEntry(uuid.Nil, decimal.NewFromFloat(1),
			time.Now(), testBeneficiary(), testVoucher())
		require.Error(t, err)
	})

	t.Run("fails with zero payment date", func(t *testing.T) {
		_, err := NewPaymentEntry(requisitionID, decimal.NewFromFloat(1),
			time.Time{}, testBeneficiary(), testVoucher())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Payment date is required")
	})

	t.Run("fails with incomplete beneficiary", func(t *testing.T) {
		_, err := NewPaymentEntry(requisitionID, decimal.NewFromFloat(1),
			time.Now(), BeneficiarySnapshot{Nombre: "X"}, testVoucher())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name and account are required")
	})

	t.Run("fails without a voucher file", func(t *testing.T) {
		_, err := NewPaymentEntry(requisitionID, decimal.NewFromFloat(1),
			time.Now(), testBeneficiary(), FileReference{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "evidence file is required")
	})
}

func TestBeneficiarySnapshot_IsComplete(t *testing.T) {
	assert.True(t, testBeneficiary().IsComplete())
	assert.False(t, BeneficiarySnapshot{}.IsComplete())
	assert.False(t, BeneficiarySnapshot{Nombre: "X"}.IsComplete())
	assert.False(t, BeneficiarySnapshot{Cuenta: "123"}.IsComplete())

	// Bank and CLABE are optional
	assert.True(t, BeneficiarySnapshot{Nombre: "X", Cuenta: "123"}.IsComplete())
}
