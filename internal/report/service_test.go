package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mahdiimanzadeh/storetrack/internal/report"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) LowStock(ctx context.Context, userID uuid.UUID, threshold int) ([]report.LowStockItem, error) {
	args := m.Called(ctx, userID, threshold)
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockReportRepository) LowStockAll(ctx context.Context, threshold int) ([]report.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockReportRepository) ShippedOrders(ctx context.Context, userID uuid.UUID, r report.DateRange) ([]report.Sale, error) {
	args := m.Called(ctx, userID, r)
	return args.Get(0).([]report.Sale), args.Error(1)
}

func (m *MockReportRepository) InboundEntries(ctx context.Context, userID uuid.UUID, r report.DateRange) ([]report.Purchase, error) {
	args := m.Called(ctx, userID, r)
	return args.Get(0).([]report.Purchase), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func TestReportService_Sales(t *testing.T) {
	repo := new(MockReportRepository)
	svc := report.NewService(repo)
	userID := uuid.Must(uuid.NewV4())

	repo.On("ShippedOrders", mock.Anything, userID, report.DateRange{}).Return([]report.Sale{
		{OrderID: uuid.Must(uuid.NewV4()), TotalAmount: 40},
		{OrderID: uuid.Must(uuid.NewV4()), TotalAmount: 12.5},
	}, nil).Once()

	rep, err := svc.Sales(context.Background(), userID, report.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Count)
	assert.InDelta(t, 52.5, rep.Total, 1e-9)
	repo.AssertExpectations(t)
}

func TestReportService_Purchases_LiveAndSnapshotPrices(t *testing.T) {
	repo := new(MockReportRepository)
	svc := report.NewService(repo)
	userID := uuid.Must(uuid.NewV4())

	repo.On("InboundEntries", mock.Anything, userID, report.DateRange{}).Return([]report.Purchase{
		{Quantity: 50, UnitPrice: 2, CurrentPrice: ptr(3.0)},
		{Quantity: 0, UnitPrice: 2, CurrentPrice: ptr(3.0)},
		{Quantity: 4, UnitPrice: 10, CurrentPrice: nil},
	}, nil).Once()

	rep, err := svc.Purchases(context.Background(), userID, report.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, 3, rep.Count)
	assert.InDelta(t, 150.0, rep.Total, 1e-9)
	assert.InDelta(t, 140.0, rep.SnapshotTotal, 1e-9)
}

func TestReportService_LowStock_NegativeThreshold(t *testing.T) {
	repo := new(MockReportRepository)
	svc := report.NewService(repo)

	_, err := svc.LowStock(context.Background(), uuid.Must(uuid.NewV4()), -1)

	require.ErrorIs(t, err, report.ErrValidation)
	repo.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_ThresholdBeyondStockRange(t *testing.T) {
	repo := new(MockReportRepository)
	svc := report.NewService(repo)

	_, err := svc.LowStock(context.Background(), uuid.Must(uuid.NewV4()), report.MaxThreshold+1)
	require.ErrorIs(t, err, report.ErrValidation)

	_, err = svc.LowStockAcrossOwners(context.Background(), report.MaxThreshold+1)
	require.ErrorIs(t, err, report.ErrValidation)

	repo.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "LowStockAll", mock.Anything, mock.Anything)
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		wantFrom *time.Time
		wantTo   *time.Time
		wantErr  bool
	}{
		{name: "open", start: "", end: ""},
		{
			name:     "bare_dates_cover_whole_end_day",
			start:    "2025-03-01",
			end:      "2025-03-31",
			wantFrom: ptr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
			wantTo:   ptr(time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC)),
		},
		{
			name:     "rfc3339_is_exact",
			start:    "2025-03-01T10:00:00Z",
			end:      "2025-03-01T12:00:00+02:00",
			wantFrom: ptr(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
			wantTo:   ptr(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
		},
		{name: "garbage", start: "yesterday", wantErr: true},
		{name: "reversed", start: "2025-04-02", end: "2025-04-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.ParseDateRange(tt.start, tt.end)
			if tt.wantErr {
				require.ErrorIs(t, err, report.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantTo, got.To)
		})
	}
}

func TestDateRange_Contains(t *testing.T) {
	r, err := report.ParseDateRange("2025-01-01", "2025-01-01")
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
}
