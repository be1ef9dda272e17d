package requisition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type paymentServiceFixture struct {
	service     *PaymentService
	requisition *MockRequisitionRepository
	payments    *MockPaymentEntryRepository
	evidence    *MockEvidenceEntryRepository
	adjustments *MockAdjustmentRepository
	storage     *MockObjectStorage
	auditLog    *MockActivityRecorder
	events      *MockEventPublisher
}

func newPaymentServiceFixture() *paymentServiceFixture {
	f := &paymentServiceFixture{
		requisition: new(MockRequisitionRepository),
		payments:    new(MockPaymentEntryRepository),
		evidence:    new(MockEvidenceEntryRepository),
		adjustments: new(MockAdjustmentRepository),
		storage:     new(MockObjectStorage),
		auditLog:    new(MockActivityRecorder),
		events:      new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.requisition, f.payments, f.evidence, f.adjustments)
	f.service = NewPaymentService(scope, f.storage, f.auditLog, f.events, nil, shared.IdempotencyConfig{}, zap.NewNop())
	return f
}

func TestPaymentService_RecordPayment_Success(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))

	f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), mock.Anything, int64(2048), "application/pdf").Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.payments.On("SumByRequisition", mock.Anything, record.GetID()).Return(decimal.Zero, nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*requisition.PaymentEntry")).Return(nil)
	f.requisition.On("Save", mock.Anything, record).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(400.00),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, requisition.StatusPorComprobar, result.Status)
	assert.Equal(t, decimal.NewFromFloat(600.00).String(), result.Pending.String())
	assert.NotNil(t, record.FechaPago)

	f.storage.AssertExpectations(t)
	f.requisition.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_ExceedsPending(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	// 700 already committed leaves room for 300 only
	f.payments.On("SumByRequisition", mock.Anything, record.GetID()).Return(decimal.NewFromFloat(700.00), nil)
	// rolled back: the uploaded blob must be compensated
	f.storage.On("DeleteObject", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(300.01),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, requisition.ErrAmountExceedsPending)
	f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.requisition.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.storage.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_WithinEpsilonTolerance(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.payments.On("SumByRequisition", mock.Anything, record.GetID()).Return(decimal.NewFromFloat(600.00), nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*requisition.PaymentEntry")).Return(nil)
	f.requisition.On("Save", mock.Anything, record).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// 400.000001 over a 400.00 pending balance sits inside the rounding
	// tolerance and must be accepted
	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.RequireFromString("400.000001"),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestPaymentService_RecordPayment_ZeroPendingRejectsNonZeroAmount(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(500.00))

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.payments.On("SumByRequisition", mock.Anything, record.GetID()).Return(decimal.NewFromFloat(500.00), nil)
	f.storage.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(0.01),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, requisition.ErrPendingIsZero)
}

func TestPaymentService_RecordPayment_ZeroPendingAcceptsClosingEntry(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(500.00))

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.payments.On("SumByRequisition", mock.Anything, record.GetID()).Return(decimal.NewFromFloat(500.00), nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*requisition.PaymentEntry")).Return(nil)
	f.requisition.On("Save", mock.Anything, record).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.Zero,
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, decimal.Zero.String(), result.Pending.String())
}

func TestPaymentService_RecordPayment_TerminalStatusRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(500.00))
	_ = record.Reject()
	record.ClearDomainEvents()

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.storage.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(100.00),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.Nil(t, result)
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestPaymentService_RecordPayment_UploadFailureStopsEverything(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	f.storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable"))

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: uuid.New(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(100.00),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
		Comprobante:   testUpload("transferencia.pdf"),
	})

	assert.Nil(t, result)
	assert.Error(t, err)
	f.requisition.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_MissingFileRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	result, err := f.service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID: uuid.New(),
		ActorID:       uuid.New(),
		Monto:         decimal.NewFromFloat(100.00),
		FechaPago:     time.Now(),
		Beneficiario:  testBeneficiario(),
	})

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FILE_REQUIRED", domainErr.Code)
	f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_DuplicateIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	store := new(MockIdempotencyStore)
	scope := NewNoOpTransactionScope(f.requisition, f.payments, f.evidence, f.adjustments)
	service := NewPaymentService(scope, f.storage, f.auditLog, f.events, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	store.On("IsProcessed", mock.Anything, "pay-REQ-001-1").Return(true, nil)

	result, err := service.RecordPayment(ctx, RecordPaymentInput{
		RequisitionID:  uuid.New(),
		ActorID:        uuid.New(),
		IdempotencyKey: "pay-REQ-001-1",
		Monto:          decimal.NewFromFloat(100.00),
		FechaPago:      time.Now(),
		Beneficiario:   testBeneficiario(),
		Comprobante:    testUpload("transferencia.pdf"),
	})

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_OPERATION", domainErr.Code)
	f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_GetVoucherDownloadURL(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture()

	entry, _ := requisition.NewPaymentEntry(
		uuid.New(),
		decimal.NewFromFloat(100.00),
		time.Now(),
		testBeneficiario(),
		requisition.FileReference{StorageKey: "requisitions/x/pagos/t.pdf", FileName: "t.pdf", ContentType: "application/pdf", SizeBytes: 1},
	)
	expires := time.Now().Add(DownloadURLTTL)

	f.payments.On("FindByID", mock.Anything, entry.GetID()).Return(entry, nil)
	f.storage.On("GenerateDownloadURL", mock.Anything, entry.Comprobante.StorageKey, DownloadURLTTL).
		Return("https://bucket/signed", expires, nil)

	download, err := f.service.GetVoucherDownloadURL(ctx, entry.GetID())

	assert.NoError(t, err)
	assert.Equal(t, "https://bucket/signed", download.URL)
	assert.Equal(t, "t.pdf", download.FileName)
}
