package requisition

import (
	"context"
	"testing"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type adjustmentServiceFixture struct {
	service     *AdjustmentService
	requisition *MockRequisitionRepository
	payments    *MockPaymentEntryRepository
	evidence    *MockEvidenceEntryRepository
	adjustments *MockAdjustmentRepository
	auditLog    *MockActivityRecorder
	events      *MockEventPublisher
}

func newAdjustmentServiceFixture() *adjustmentServiceFixture {
	f := &adjustmentServiceFixture{
		requisition: new(MockRequisitionRepository),
		payments:    new(MockPaymentEntryRepository),
		evidence:    new(MockEvidenceEntryRepository),
		adjustments: new(MockAdjustmentRepository),
		auditLog:    new(MockActivityRecorder),
		events:      new(MockEventPublisher),
	}
	scope := NewNoOpTransactionScope(f.requisition, f.payments, f.evidence, f.adjustments)
	f.service = NewAdjustmentService(scope, f.auditLog, f.events, zap.NewNop())
	return f
}

func TestAdjustmentService_RecordAdjustment_Refund(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))

	f.requisition.On("FindByID", mock.Anything, record.GetID()).Return(record, nil)
	f.adjustments.On("Save", mock.Anything, mock.AnythingOfType("*requisition.AdjustmentEntry")).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	entry, err := f.service.RecordAdjustment(ctx, RecordAdjustmentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Tipo:          requisition.AdjustmentRefund,
		Sentido:       requisition.SentidoFavorEmpresa,
		Monto:         decimal.NewFromFloat(120.00),
		Metodo:        "TRANSFERENCIA",
		Referencia:    "DEV-0091",
		Motivo:        "Saldo no ejercido del anticipo",
	})

	assert.NoError(t, err)
	assert.Equal(t, requisition.AdjustmentPendiente, entry.Status)
	// bookkeeping adjustments never touch the total
	assert.Equal(t, decimal.NewFromFloat(1000.00).String(), record.MontoTotal.String())
	f.adjustments.AssertExpectations(t)
}

func TestAdjustmentService_RecordAdjustment_IncreaseTypeRejected(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))
	f.requisition.On("FindByID", mock.Anything, record.GetID()).Return(record, nil)

	entry, err := f.service.RecordAdjustment(ctx, RecordAdjustmentInput{
		RequisitionID: record.GetID(),
		ActorID:       uuid.New(),
		Tipo:          requisition.AdjustmentAuthorizedIncrease,
		Sentido:       requisition.SentidoFavorSolicitante,
		Monto:         decimal.NewFromFloat(100.00),
		Motivo:        "Sobrecosto",
	})

	assert.Nil(t, entry)
	assert.Error(t, err)
	f.adjustments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdjustmentService_ApplyAuthorizedIncrease(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))
	resolver := requisition.ResolverCapability{ResolverID: uuid.New()}

	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.adjustments.On("Save", mock.Anything, mock.AnythingOfType("*requisition.AdjustmentEntry")).Return(nil)
	f.evidence.On("SumApprovedByRequisition", mock.Anything, record.GetID()).Return(decimal.Zero, nil)
	f.requisition.On("Save", mock.Anything, record).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ApplyAuthorizedIncrease(ctx, AuthorizedIncreaseInput{
		RequisitionID: record.GetID(),
		Resolver:      resolver,
		MontoNuevo:    decimal.NewFromFloat(1250.00),
		Motivo:        "Sobrecosto autorizado por direccion",
	})

	assert.NoError(t, err)
	assert.Equal(t, decimal.NewFromFloat(1000.00).String(), result.MontoAnterior.String())
	assert.Equal(t, decimal.NewFromFloat(1250.00).String(), record.MontoTotal.String())
	assert.Equal(t, requisition.AdjustmentAplicado, result.Entry.Status)
	assert.Equal(t, decimal.NewFromFloat(250.00).String(), result.Entry.Monto.String())
	assert.Equal(t, decimal.NewFromFloat(1000.00).String(), result.Entry.MontoAnterior.String())
	assert.Equal(t, decimal.NewFromFloat(1250.00).String(), result.Entry.MontoNuevo.String())
}

func TestAdjustmentService_ApplyAuthorizedIncrease_RegressesCoveredRequisition(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))
	_ = record.RegisterPayment(record.FechaCaptura)
	record.ApplyEvidenceCoverage(decimal.NewFromFloat(1000.00))
	record.ClearDomainEvents()
	assert.Equal(t, requisition.StatusComprobada, record.Status)

	resolver := requisition.ResolverCapability{ResolverID: uuid.New()}

	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)
	f.adjustments.On("Save", mock.Anything, mock.Anything).Return(nil)
	// approved evidence no longer covers the raised total
	f.evidence.On("SumApprovedByRequisition", mock.Anything, record.GetID()).Return(decimal.NewFromFloat(1000.00), nil)
	f.requisition.On("Save", mock.Anything, record).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ApplyAuthorizedIncrease(ctx, AuthorizedIncreaseInput{
		RequisitionID: record.GetID(),
		Resolver:      resolver,
		MontoNuevo:    decimal.NewFromFloat(1500.00),
		Motivo:        "Ampliacion de alcance",
	})

	assert.NoError(t, err)
	assert.Equal(t, requisition.StatusAutorizada, result.Status)
	assert.Equal(t, requisition.StatusAutorizada, record.Status)
}

func TestAdjustmentService_ApplyAuthorizedIncrease_MissingCapability(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	result, err := f.service.ApplyAuthorizedIncrease(ctx, AuthorizedIncreaseInput{
		RequisitionID: uuid.New(),
		Resolver:      requisition.ResolverCapability{},
		MontoNuevo:    decimal.NewFromFloat(1250.00),
		Motivo:        "Sobrecosto",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	f.requisition.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestAdjustmentService_ApplyAuthorizedIncrease_LowerTotalRejected(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	record := createAuthorizedRequisition(decimal.NewFromFloat(1000.00))
	resolver := requisition.ResolverCapability{ResolverID: uuid.New()}

	f.requisition.On("FindByIDForUpdate", mock.Anything, record.GetID()).Return(record, nil)

	result, err := f.service.ApplyAuthorizedIncrease(ctx, AuthorizedIncreaseInput{
		RequisitionID: record.GetID(),
		Resolver:      resolver,
		MontoNuevo:    decimal.NewFromFloat(900.00),
		Motivo:        "Recorte",
	})

	assert.Nil(t, result)
	assert.Error(t, err)
	// nothing was written, the total is untouched
	assert.Equal(t, decimal.NewFromFloat(1000.00).String(), record.MontoTotal.String())
	f.adjustments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdjustmentService_AdjustmentWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentServiceFixture()

	requisitionID := uuid.New()
	entry, _ := requisition.NewAdjustmentEntry(
		requisitionID,
		requisition.AdjustmentShortfall,
		requisition.SentidoFavorSolicitante,
		decimal.NewFromFloat(80.00),
		"TRANSFERENCIA",
		"",
		"Gasto mayor al anticipo",
	)
	resolver := requisition.ResolverCapability{ResolverID: uuid.New()}

	f.adjustments.On("FindByID", mock.Anything, entry.GetID()).Return(entry, nil)
	f.adjustments.On("Save", mock.Anything, entry).Return(nil)
	f.auditLog.On("Record", mock.Anything, mock.Anything).Return(nil)

	approved, err := f.service.ApproveAdjustment(ctx, entry.GetID(), resolver)
	assert.NoError(t, err)
	assert.Equal(t, requisition.AdjustmentAprobado, approved.Status)

	applied, err := f.service.ApplyAdjustment(ctx, entry.GetID(), resolver)
	assert.NoError(t, err)
	assert.Equal(t, requisition.AdjustmentAplicado, applied.Status)

	// terminal status accepts no further transitions
	_, err = f.service.CancelAdjustment(ctx, entry.GetID(), resolver)
	assert.Error(t, err)
}
