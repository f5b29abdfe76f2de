package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"garage_backend/internal/database/testdb"
	"garage_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJobCard(t *testing.T, db *sql.DB) *models.JobCard {
	t.Helper()
	ctx := context.Background()
	first, last := "John", "Doe"
	client := &models.Client{ClientType: models.ClientTypeIndividual, FirstName: &first, LastName: &last, IsActive: true}
	_, err := NewClientRepository().CreateClient(ctx, db, client)
	require.NoError(t, err)
	vehicle := &models.Vehicle{ClientID: client.ID, VIN: "1HGCM82633A004352", Make: "Toyota", Model: "Corolla", Year: 2019}
	_, err = NewVehicleRepository().CreateVehicle(ctx, db, vehicle)
	require.NoError(t, err)

	jc := &models.JobCard{ClientID: client.ID, VehicleID: vehicle.ID, Status: models.JobStatusDraft}
	_, err = NewJobCardRepository().CreateJobCard(ctx, db, jc)
	require.NoError(t, err)
	return jc
}

func TestMapWriteErrorSQLiteUnique(t *testing.T) {
	err := mapWriteError(errors.New("UNIQUE constraint failed: vehicles.vin"), "creating vehicle")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsDuplicateOn(err, "vin"))
	assert.False(t, IsDuplicateOn(err, "license_plate"))

	other := mapWriteError(errors.New("disk I/O error"), "creating vehicle")
	assert.ErrorIs(t, other, ErrDatabaseError)
	assert.False(t, IsDuplicateOn(other, "vin"))
}

func TestMapWriteErrorPostgresCodes(t *testing.T) {
	overflow := mapWriteError(&pq.Error{Code: "22003", Message: "numeric field overflow"}, "updating totals of job card 1")
	assert.ErrorIs(t, overflow, ErrValueOutOfRange)
	assert.NotErrorIs(t, overflow, ErrDatabaseError)
	assert.Contains(t, overflow.Error(), "updating totals of job card 1")

	dup := mapWriteError(&pq.Error{Code: "23505", Message: "duplicate key", Constraint: "inventory_parts_sku_key"}, "creating inventory part")
	assert.ErrorIs(t, dup, ErrDuplicateKey)
	assert.True(t, IsDuplicateOn(dup, "sku"))

	check := mapWriteError(&pq.Error{Code: "23514", Message: "violates check constraint"}, "setting stock on part 1")
	assert.ErrorIs(t, check, ErrDatabaseError)
}

func TestJobNumberIsAssignedOnce(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewJobCardRepository()
	jc := seedJobCard(t, db)

	got, err := repo.GetJobCardByID(ctx, db, jc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.JobNumber)
	assert.Equal(t, "John Doe", got.ClientName)
	assert.Equal(t, "2019 Toyota Corolla (No Plate)", got.VehicleInfo)
	assert.Nil(t, got.TechnicianName)

	require.NoError(t, repo.AssignJobNumber(ctx, db, jc.ID, "J000001"))
	assert.ErrorIs(t, repo.AssignJobNumber(ctx, db, jc.ID, "J000009"), ErrNotFound)

	second := &models.JobCard{ClientID: jc.ClientID, VehicleID: jc.VehicleID, Status: models.JobStatusDraft}
	_, err = repo.CreateJobCard(ctx, db, second)
	require.NoError(t, err)
	err = repo.AssignJobNumber(ctx, db, second.ID, "J000001")
	assert.True(t, IsDuplicateOn(err, "job_number"))
}

func TestLineItemsRoundTripDecimals(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewJobCardRepository()
	jc := seedJobCard(t, db)

	sku := "OIL123"
	item := &models.LineItem{
		JobCardID: jc.ID, ItemType: models.LineItemPart, Description: "Oil", SKU: &sku,
		Quantity: decimal.RequireFromString("1.25"), UnitPrice: decimal.RequireFromString("19.99"),
		LineTotal: decimal.RequireFromString("24.99"),
	}
	_, err := repo.CreateLineItem(ctx, db, item)
	require.NoError(t, err)
	labor := &models.LineItem{
		JobCardID: jc.ID, ItemType: models.LineItemLabor, Description: "Labor",
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40), LineTotal: decimal.NewFromInt(40),
		LaborTimeHrs: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
	}
	_, err = repo.CreateLineItem(ctx, db, labor)
	require.NoError(t, err)

	got, err := repo.GetLineItem(ctx, db, jc.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.25", got.Quantity.String())
	assert.Equal(t, "24.99", got.LineTotal.StringFixed(2))
	assert.False(t, got.LaborTimeHrs.Valid)

	_, err = repo.GetLineItem(ctx, db, jc.ID+1, item.ID)
	assert.ErrorIs(t, err, ErrNotFound, "line items are scoped to their job card")

	items, err := repo.GetLineItemsByJobCardID(ctx, db, jc.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[1].LaborTimeHrs.Valid)

	n, err := repo.DeleteLineItemsByJobCardID(ctx, db, jc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.ErrorIs(t, repo.DeleteLineItem(ctx, db, jc.ID, item.ID), ErrNotFound)
}

func TestUpdateTotalsAndPayments(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewJobCardRepository()
	payments := NewPaymentRepository()
	jc := seedJobCard(t, db)

	totals := models.Totals{
		PartsSubtotal: decimal.RequireFromString("100"),
		LaborSubtotal: decimal.RequireFromString("40"),
		TaxAmount:     decimal.RequireFromString("21"),
		TotalDue:      decimal.RequireFromString("161"),
		TotalPaid:     decimal.RequireFromString("100"),
	}
	require.NoError(t, repo.UpdateTotals(ctx, db, jc.ID, totals))
	got, err := repo.GetJobCardByID(ctx, db, jc.ID)
	require.NoError(t, err)
	assert.True(t, totals.Equal(got.Totals()))
	assert.Equal(t, "61.00", got.BalanceDue.StringFixed(2))

	assert.ErrorIs(t, repo.UpdateTotals(ctx, db, 999, totals), ErrNotFound)
	assert.ErrorIs(t, repo.LockJobCard(ctx, db, 999), ErrNotFound)

	for _, amount := range []string{"60.00", "40.00"} {
		_, err := payments.CreatePayment(ctx, db, &models.Payment{
			JobCardID: jc.ID, Amount: decimal.RequireFromString(amount), PaymentMethod: models.PaymentCash,
		})
		require.NoError(t, err)
	}
	list, err := payments.GetPaymentsByJobCardID(ctx, db, jc.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "60.00", list[0].Amount.StringFixed(2))

	require.NoError(t, payments.DeletePaymentsByJobCardID(ctx, db, jc.ID))
	list, err = payments.GetPaymentsByJobCardID(ctx, db, jc.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPartLockingAndStockCheck(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewInventoryRepository()

	part := &models.InventoryPart{SKU: "OIL123", Name: "Oil", StockQty: 10, CriticalQty: 5, IsActive: true}
	_, err := repo.CreatePart(ctx, db, part)
	require.NoError(t, err)

	id, stock, err := repo.LockPartBySKU(ctx, db, "OIL123")
	require.NoError(t, err)
	assert.Equal(t, part.ID, id)
	assert.Equal(t, 10, stock)

	_, _, err = repo.LockPartBySKU(ctx, db, "oil123")
	assert.ErrorIs(t, err, ErrNotFound, "SKU lookup is exact")

	require.NoError(t, repo.SetStock(ctx, db, part.ID, 3))
	sku, stock, err := repo.LockPartByID(ctx, db, part.ID)
	require.NoError(t, err)
	assert.Equal(t, "OIL123", sku)
	assert.Equal(t, 3, stock)

	// The schema refuses negative stock even if a caller forgets to clamp.
	assert.ErrorIs(t, repo.SetStock(ctx, db, part.ID, -1), ErrDatabaseError)

	dup := &models.InventoryPart{SKU: "OIL123", Name: "Other"}
	_, err = repo.CreatePart(ctx, db, dup)
	assert.True(t, IsDuplicateOn(err, "sku"))
}

func TestListPagination(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewClientRepository()

	for i := 0; i < 7; i++ {
		name := fmt.Sprintf("Client%02d", i)
		_, err := repo.CreateClient(ctx, db, &models.Client{ClientType: models.ClientTypeIndividual, LastName: &name, IsActive: true})
		require.NoError(t, err)
	}

	page, total, err := repo.GetClients(ctx, db, models.ClientFilters{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page, 3)
	assert.Equal(t, "Client03", page[0].FullName)

	last, total, err := repo.GetClients(ctx, db, models.ClientFilters{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, last, 1)
}

func TestStockMovementFilters(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewStockMovementRepository()
	jobCardID := int64(4)

	for _, m := range []models.StockMovement{
		{PartID: 1, SKU: "A", MovementType: models.MovementJobConsume, RequestedChange: -2, AppliedChange: -2, StockAfter: 8, JobCardID: &jobCardID},
		{PartID: 1, SKU: "A", MovementType: models.MovementManualAdjust, RequestedChange: 5, AppliedChange: 5, StockAfter: 13},
		{PartID: 2, SKU: "B", MovementType: models.MovementJobConsume, RequestedChange: -1, AppliedChange: 0, StockAfter: 0, JobCardID: &jobCardID},
	} {
		m := m
		_, err := repo.CreateMovement(ctx, db, &m)
		require.NoError(t, err)
	}

	byJob, total, err := repo.GetMovements(ctx, db, models.MovementFilters{JobCardID: &jobCardID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "B", byJob[0].SKU)

	manual := models.MovementManualAdjust
	byType, _, err := repo.GetMovements(ctx, db, models.MovementFilters{MovementType: &manual})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Nil(t, byType[0].JobCardID)
}
