package requisition

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockRequisitionRepository is a mock implementation of RequisitionRepository
type MockRequisitionRepository struct {
	mock.Mock
}

func (m *MockRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.RequisitionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.RequisitionRecord), args.Error(1)
}

func (m *MockRequisitionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*requisition.RequisitionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.RequisitionRecord), args.Error(1)
}

func (m *MockRequisitionRepository) FindByFolio(ctx context.Context, folio string) (*requisition.RequisitionRecord, error) {
	args := m.Called(ctx, folio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.RequisitionRecord), args.Error(1)
}

func (m *MockRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]requisition.RequisitionRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]requisition.RequisitionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequisitionRepository) Save(ctx context.Context, record *requisition.RequisitionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockPaymentEntryRepository is a mock implementation of PaymentEntryRepository
type MockPaymentEntryRepository struct {
	mock.Mock
}

func (m *MockPaymentEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.PaymentEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.PaymentEntry), args.Error(1)
}

func (m *MockPaymentEntryRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.PaymentEntry, error) {
	args := m.Called(ctx, requisitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requisition.PaymentEntry), args.Error(1)
}

func (m *MockPaymentEntryRepository) SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, requisitionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentEntryRepository) Save(ctx context.Context, entry *requisition.PaymentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEvidenceEntryRepository is a mock implementation of EvidenceEntryRepository
type MockEvidenceEntryRepository struct {
	mock.Mock
}

func (m *MockEvidenceEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.EvidenceEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.EvidenceEntry), args.Error(1)
}

func (m *MockEvidenceEntryRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.EvidenceEntry, error) {
	args := m.Called(ctx, requisitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requisition.EvidenceEntry), args.Error(1)
}

func (m *MockEvidenceEntryRepository) SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, requisitionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEvidenceEntryRepository) SumApprovedByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, requisitionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEvidenceEntryRepository) Save(ctx context.Context, entry *requisition.EvidenceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEvidenceEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAdjustmentRepository is a mock implementation of AdjustmentRepository
type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.AdjustmentEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.AdjustmentEntry), args.Error(1)
}

func (m *MockAdjustmentRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.AdjustmentEntry, error) {
	args := m.Called(ctx, requisitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requisition.AdjustmentEntry), args.Error(1)
}

func (m *MockAdjustmentRepository) Save(ctx context.Context, entry *requisition.AdjustmentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// =============================================================================
// Mock Ports
// =============================================================================

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, storageKey, body, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.Get(0).(string), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Get(0).(bool), args.Error(1)
}

// MockReviewNotifier is a mock implementation of ReviewNotifier
type MockReviewNotifier struct {
	mock.Mock
}

func (m *MockReviewNotifier) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockReviewNotifier) Notify(ctx context.Context, notice EvidenceReadyNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// MockActivityRecorder is a mock implementation of audit.Recorder
type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) Record(ctx context.Context, entry *audit.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// =============================================================================
// Test Helper Functions
// =============================================================================

func createAuthorizedRequisition(total decimal.Decimal) *requisition.RequisitionRecord {
	record, _ := requisition.NewRequisitionRecord(
		"REQ-2024-001",
		requisition.RequisitionTypeAdvance,
		"Viaticos proyecto norte",
		total,
		total,
		time.Now(),
		uuid.New(),
		uuid.New(),
	)
	_ = record.Capture()
	_ = record.Authorize()
	record.ClearDomainEvents()
	return record
}

func testBeneficiario() requisition.BeneficiarySnapshot {
	return requisition.BeneficiarySnapshot{
		Nombre: "Proveedora del Norte SA",
		Banco:  "BBVA",
		Cuenta: "0123456789",
		Clabe:  "012345678901234567",
	}
}

func testUpload(name string) FileUpload {
	return FileUpload{
		FileName:    name,
		ContentType: "application/pdf",
		SizeBytes:   2048,
		Body:        strings.NewReader("%PDF-1.4"),
	}
}
