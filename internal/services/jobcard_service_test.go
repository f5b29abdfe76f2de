package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The numbered scenarios walk one job card through its life.
func TestJobCardLifecycleScenarios(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "OIL123", 10)

	// 1. PART line quantity 2 at 50.00 consumes stock and drives the totals.
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID, InitialOdometer: 42000,
		LineItems: []LineItemRequest{partLine("OIL123", "2", "50.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDraft, jc.Status)
	assertMoney(t, "100.00", jc.PartsSubtotal)
	assertMoney(t, "0.00", jc.LaborSubtotal)
	assertMoney(t, "15.00", jc.TaxAmount)
	assertMoney(t, "115.00", jc.TotalDue)
	assert.Equal(t, 8, env.stockOf(t, "OIL123"))
	require.Len(t, jc.LineItems, 1)
	assertMoney(t, "100.00", jc.LineItems[0].LineTotal)
	partLineID := jc.LineItems[0].ID

	// 2. Adding labor folds into labor_subtotal and total_due.
	jc, err = env.jobCardSvc.AddLineItem(ctx, jc.ID, laborLine("1", "40.00"))
	require.NoError(t, err)
	assertMoney(t, "40.00", jc.LaborSubtotal)
	assertMoney(t, "21.00", jc.TaxAmount)
	assertMoney(t, "161.00", jc.TotalDue)

	// 3. A payment updates total_paid and the derived balance.
	payment, jc, err := env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec("100.00"), PaymentMethod: models.PaymentCash})
	require.NoError(t, err)
	assert.NotZero(t, payment.ID)
	assertMoney(t, "100.00", jc.TotalPaid)
	assertMoney(t, "61.00", jc.BalanceDue)

	// 4. Removing the PART line restores stock and recomputes.
	jc, err = env.jobCardSvc.RemoveLineItem(ctx, jc.ID, partLineID)
	require.NoError(t, err)
	assert.Equal(t, 10, env.stockOf(t, "OIL123"))
	assertMoney(t, "0.00", jc.PartsSubtotal)
	assertMoney(t, "46.00", jc.TotalDue)
	assertMoney(t, "-54.00", jc.BalanceDue)
	assertTotalsConsistent(t, jc)

	movements := env.movementsFor(t, "OIL123")
	require.Len(t, movements, 2)
	assert.Equal(t, models.MovementJobRestore, movements[0].MovementType)
	assert.Equal(t, 2, movements[0].AppliedChange)
	assert.Equal(t, models.MovementJobConsume, movements[1].MovementType)
	assert.Equal(t, -2, movements[1].AppliedChange)
}

func TestUnknownSKUIsSoftMiss(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("NOPE-999", "3", "12.50")},
	})
	require.NoError(t, err)
	require.Len(t, jc.LineItems, 1)
	assertMoney(t, "37.50", jc.PartsSubtotal)
	assert.Empty(t, env.movementsFor(t, "NOPE-999"))

	res, err := env.stock.Consume(ctx, env.db, &jc.LineItems[0])
	require.NoError(t, err)
	assert.True(t, res.Missed)
	assert.Equal(t, -3, res.Requested)
}

func TestConsumptionBeyondStockClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "BRK-01", 3)

	_, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("BRK-01", "5", "30.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.stockOf(t, "BRK-01"))

	movements := env.movementsFor(t, "BRK-01")
	require.Len(t, movements, 1)
	assert.Equal(t, -5, movements[0].RequestedChange)
	assert.Equal(t, -3, movements[0].AppliedChange)
	assert.Equal(t, 0, movements[0].StockAfter)
}

func TestStockConservation(t *testing.T) {
	for _, qty := range []string{"1", "2", "4.5", "0.25"} {
		t.Run(qty, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
			env.seedPart(t, "FLT-9", 25)

			jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
			require.NoError(t, err)
			jc, err = env.jobCardSvc.AddLineItem(ctx, jc.ID, partLine("FLT-9", qty, "10.00"))
			require.NoError(t, err)
			assert.Less(t, env.stockOf(t, "FLT-9"), 25)

			_, err = env.jobCardSvc.RemoveLineItem(ctx, jc.ID, jc.LineItems[0].ID)
			require.NoError(t, err)
			assert.Equal(t, 25, env.stockOf(t, "FLT-9"))
		})
	}
}

func TestUpdateLineItemAdjustsStockByDifference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "OIL123", 10)
	env.seedPart(t, "OIL456", 10)

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("OIL123", "2", "50.00")},
	})
	require.NoError(t, err)
	itemID := jc.LineItems[0].ID

	jc, err = env.jobCardSvc.UpdateLineItem(ctx, jc.ID, itemID, partLine("OIL123", "5", "50.00"))
	require.NoError(t, err)
	assert.Equal(t, 5, env.stockOf(t, "OIL123"))
	assertMoney(t, "250.00", jc.PartsSubtotal)
	movements := env.movementsFor(t, "OIL123")
	require.NotEmpty(t, movements)
	assert.Equal(t, models.MovementJobAdjust, movements[0].MovementType)
	assert.Equal(t, -3, movements[0].AppliedChange)

	jc, err = env.jobCardSvc.UpdateLineItem(ctx, jc.ID, itemID, partLine("OIL123", "1", "50.00"))
	require.NoError(t, err)
	assert.Equal(t, 9, env.stockOf(t, "OIL123"))

	// Switching SKU restores the old part and consumes the new one.
	jc, err = env.jobCardSvc.UpdateLineItem(ctx, jc.ID, itemID, partLine("OIL456", "3", "45.00"))
	require.NoError(t, err)
	assert.Equal(t, 10, env.stockOf(t, "OIL123"))
	assert.Equal(t, 7, env.stockOf(t, "OIL456"))
	assertMoney(t, "135.00", jc.PartsSubtotal)

	// Turning the line into labor releases the part entirely.
	jc, err = env.jobCardSvc.UpdateLineItem(ctx, jc.ID, itemID, laborLine("2", "30.00"))
	require.NoError(t, err)
	assert.Equal(t, 10, env.stockOf(t, "OIL456"))
	assertMoney(t, "0.00", jc.PartsSubtotal)
	assertMoney(t, "60.00", jc.LaborSubtotal)
	assertTotalsConsistent(t, jc)
}

func TestUpdateJobCardReplacesAllLineItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "OIL123", 10)
	env.seedPart(t, "PAD-7", 4)

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("OIL123", "2", "50.00"), laborLine("1", "40.00")},
	})
	require.NoError(t, err)
	originalNumber := jc.JobNumber

	notes := "customer waiting"
	jc, err = env.jobCardSvc.UpdateJobCard(ctx, jc.ID, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID, InitialOdometer: 42010, Status: strPtr(models.JobStatusOpen), Notes: &notes,
		LineItems: []LineItemRequest{partLine("PAD-7", "2", "80.00"), {ItemType: models.LineItemFee, Description: "Disposal", UnitPrice: dec("5.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, originalNumber, jc.JobNumber, "job number is immutable")
	assert.Equal(t, models.JobStatusOpen, jc.Status)
	assert.Equal(t, 42010, jc.InitialOdometer)
	require.Len(t, jc.LineItems, 2)
	assert.Equal(t, 10, env.stockOf(t, "OIL123"))
	assert.Equal(t, 2, env.stockOf(t, "PAD-7"))
	assertMoney(t, "160.00", jc.PartsSubtotal)
	assertMoney(t, "5.00", jc.LaborSubtotal)
	assertMoney(t, "189.75", jc.TotalDue)

	// Omitting line_items keeps the current lines.
	jc, err = env.jobCardSvc.UpdateJobCard(ctx, jc.ID, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)
	assert.Len(t, jc.LineItems, 2)
	assert.Equal(t, models.JobStatusOpen, jc.Status)
	assert.Equal(t, 2, env.stockOf(t, "PAD-7"))

	// An empty list clears them.
	jc, err = env.jobCardSvc.ReplaceLineItems(ctx, jc.ID, []LineItemRequest{})
	require.NoError(t, err)
	assert.Empty(t, jc.LineItems)
	assert.Equal(t, 4, env.stockOf(t, "PAD-7"))
	assertMoney(t, "0.00", jc.TotalDue)
}

func TestDeleteJobCardRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "OIL123", 10)

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("OIL123", "3", "50.00"), partLine("OIL123", "1", "50.00")},
	})
	require.NoError(t, err)
	_, _, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec("20.00"), PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, 6, env.stockOf(t, "OIL123"))

	require.NoError(t, env.jobCardSvc.DeleteJobCard(ctx, jc.ID))
	assert.Equal(t, 10, env.stockOf(t, "OIL123"))

	_, err = env.jobCardSvc.GetJobCard(ctx, jc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	payments, err := env.payments.GetPaymentsByJobCardID(ctx, env.db, jc.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	err = env.jobCardSvc.DeleteJobCard(ctx, jc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobNumbersFollowCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")

	var numbers []string
	for i := 0; i < 3; i++ {
		jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
		require.NoError(t, err)
		numbers = append(numbers, jc.JobNumber)
	}
	assert.Equal(t, []string{"J000001", "J000002", "J000003"}, numbers)
	assert.Equal(t, "J001234", JobNumber(1234))
}

func TestUpdateStatusAcceptsAnyEnumeratedStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	// No transition table: jump forward, back and out of terminal states.
	for _, status := range []string{models.JobStatusPaid, models.JobStatusDraft, models.JobStatusCanceled, models.JobStatusInspect} {
		jc, err = env.jobCardSvc.UpdateStatus(ctx, jc.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, jc.Status)
	}

	_, err = env.jobCardSvc.UpdateStatus(ctx, jc.ID, "ARCHIVED")
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "status", fieldErr.Field)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.jobCardSvc.UpdateStatus(ctx, 9999, models.JobStatusOpen)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecalculateTotalsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("X-1", "1.5", "33.33"), laborLine("2.25", "47.10")},
	})
	require.NoError(t, err)

	first, err := env.jobCardSvc.RecalculateTotals(ctx, jc.ID)
	require.NoError(t, err)
	second, err := env.jobCardSvc.RecalculateTotals(ctx, jc.ID)
	require.NoError(t, err)
	assert.True(t, first.Totals().Equal(second.Totals()))
	assert.True(t, jc.Totals().Equal(first.Totals()))
}

func TestTotalsInvariantOverRandomCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	rng := rand.New(rand.NewSource(7))
	types := []string{models.LineItemPart, models.LineItemLabor, models.LineItemFee}

	for i := 0; i < 10; i++ {
		var lines []LineItemRequest
		for j := 0; j < 1+rng.Intn(5); j++ {
			lines = append(lines, LineItemRequest{
				ItemType:    types[rng.Intn(len(types))],
				Description: fmt.Sprintf("line %d", j),
				Quantity:    decPtr(fmt.Sprintf("%d.%02d", rng.Intn(5), 1+rng.Intn(99))),
				UnitPrice:   dec(fmt.Sprintf("%d.%02d", 1+rng.Intn(300), rng.Intn(100))),
			})
		}
		jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID, LineItems: lines})
		require.NoError(t, err)
		for k := 0; k < rng.Intn(3); k++ {
			_, jc, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{
				Amount: dec(fmt.Sprintf("%d.%02d", 1+rng.Intn(100), rng.Intn(100))), PaymentMethod: models.PaymentTransfer,
			})
			require.NoError(t, err)
		}

		assertTotalsConsistent(t, jc)
		subtotal := jc.PartsSubtotal.Add(jc.LaborSubtotal)
		assert.True(t, jc.TotalDue.Equal(subtotal.Add(jc.TaxAmount)))
		assert.True(t, jc.TaxAmount.Equal(subtotal.Mul(testTaxRate).Round(2)))
		assertMoney(t, jc.TotalDue.StringFixed(2), subtotal.Mul(dec("1.15")).Round(2))
	}
}

func TestClampHoldsForAnyOperationSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "CLAMP", 2)
	rng := rand.New(rand.NewSource(42))

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		qty := fmt.Sprintf("%d", 1+rng.Intn(4))
		switch {
		case len(jc.LineItems) == 0 || rng.Intn(3) == 0:
			jc, err = env.jobCardSvc.AddLineItem(ctx, jc.ID, partLine("CLAMP", qty, "9.99"))
		case rng.Intn(2) == 0:
			jc, err = env.jobCardSvc.UpdateLineItem(ctx, jc.ID, jc.LineItems[0].ID, partLine("CLAMP", qty, "9.99"))
		default:
			jc, err = env.jobCardSvc.RemoveLineItem(ctx, jc.ID, jc.LineItems[len(jc.LineItems)-1].ID)
		}
		require.NoError(t, err)
		assert.GreaterOrEqual(t, env.stockOf(t, "CLAMP"), 0)
	}
}

func TestLineItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   LineItemRequest
		field string
	}{
		{"zero price", LineItemRequest{ItemType: "PART", Description: "x", UnitPrice: dec("0")}, "unit_price"},
		{"negative price", LineItemRequest{ItemType: "LABOR", Description: "x", UnitPrice: dec("-1")}, "unit_price"},
		{"sub-cent price", LineItemRequest{ItemType: "LABOR", Description: "x", UnitPrice: dec("1.005")}, "unit_price"},
		{"zero quantity", LineItemRequest{ItemType: "FEE", Description: "x", Quantity: decPtr("0"), UnitPrice: dec("1")}, "quantity"},
		{"unknown type", LineItemRequest{ItemType: "TIP", Description: "x", UnitPrice: dec("1")}, "item_type"},
		{"blank description", LineItemRequest{ItemType: "FEE", Description: "  ", UnitPrice: dec("1")}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.jobCardSvc.AddLineItem(ctx, jc.ID, tt.req)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{laborLine("1", "10"), {ItemType: "PART", Description: "bad", UnitPrice: dec("0")}},
	})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "line_items[1].unit_price", fieldErr.Field)
}

func TestCreateJobCardChecksReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	other, err := env.clientSvc.CreateClient(ctx, ClientRequest{ClientType: models.ClientTypeCompany, CompanyName: strPtr("Acme")})
	require.NoError(t, err)

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: 999, VehicleID: vehicle.ID})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Resource)

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: 999})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "vehicle", nf.Resource)

	tech := int64(999)
	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID, TechnicianID: &tech})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "technician", nf.Resource)

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: other.ID, VehicleID: vehicle.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID, Status: strPtr("LOST")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJobCardShowsTechnicianAndClientNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	tech, err := env.authSvc.CreateUser(ctx, CreateUserRequest{
		Username: "mike", Password: "wrench-1234", FullName: strPtr("Mike Mechanic"), Role: models.RoleTechnician,
	})
	require.NoError(t, err)

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID, TechnicianID: &tech.ID})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", jc.ClientName)
	assert.Equal(t, "2019 Toyota Corolla (ABC-352)", jc.VehicleInfo)
	require.NotNil(t, jc.TechnicianName)
	assert.Equal(t, "Mike Mechanic", *jc.TechnicianName)
}

func TestRecordPaymentValidationAndLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID, LineItems: []LineItemRequest{laborLine("1", "100.00")},
	})
	require.NoError(t, err)

	_, _, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec("0"), PaymentMethod: models.PaymentCash})
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec("10"), PaymentMethod: "BITCOIN"})
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = env.jobCardSvc.RecordPayment(ctx, 404, PaymentRequest{Amount: dec("10"), PaymentMethod: models.PaymentCash})
	assert.ErrorIs(t, err, ErrNotFound)

	amounts := []string{"50.00", "40.10", "24.90"}
	for _, a := range amounts {
		_, jc, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec(a), PaymentMethod: models.PaymentCard, TransactionRef: strPtr(" ref ")})
		require.NoError(t, err)
	}
	assertMoney(t, "115.00", jc.TotalPaid)
	assertMoney(t, "0.00", jc.BalanceDue)

	payments, err := env.jobCardSvc.ListPayments(ctx, jc.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, "ref", *payments[0].TransactionRef)

	_, err = env.jobCardSvc.ListPayments(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobCardsFiltersAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	for i := 0; i < 3; i++ {
		_, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
		require.NoError(t, err)
	}
	_, err := env.jobCardSvc.UpdateStatus(ctx, 2, models.JobStatusOpen)
	require.NoError(t, err)

	all, total, err := env.jobCardSvc.ListJobCards(ctx, models.JobCardFilters{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 2)

	open := models.JobStatusOpen
	filtered, total, err := env.jobCardSvc.ListJobCards(ctx, models.JobCardFilters{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "J000002", filtered[0].JobNumber)

	for _, term := range []string{"j000003", "doe", "abc-352", "a004352"} {
		found, _, err := env.jobCardSvc.ListJobCards(ctx, models.JobCardFilters{Search: strPtr(term)})
		require.NoError(t, err)
		assert.NotEmpty(t, found, term)
	}

	_, _, err = env.jobCardSvc.ListJobCards(ctx, models.JobCardFilters{Status: strPtr("nope")})
	assert.ErrorIs(t, err, ErrValidation)
}

// failingPayments breaks the recompute step after the line item and stock
// writes have already happened inside the transaction.
type failingPayments struct {
	repositories.PaymentRepository
}

func (failingPayments) GetPaymentsByJobCardID(context.Context, repositories.SQLExecutor, int64) ([]models.Payment, error) {
	return nil, errors.New("boom")
}

func TestMutationRollsBackStockOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "OIL123", 10)
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	broken := NewJobCardService(env.db, env.jobCards, failingPayments{env.payments}, env.clients, env.vehicles, env.users, env.stock, testTaxRate)
	_, err = broken.AddLineItem(ctx, jc.ID, partLine("OIL123", "4", "50.00"))
	require.Error(t, err)

	assert.Equal(t, 10, env.stockOf(t, "OIL123"))
	assert.Empty(t, env.movementsFor(t, "OIL123"))
	reloaded, err := env.jobCardSvc.GetJobCard(ctx, jc.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.LineItems)
}

func TestValuesBeyondColumnRangeAreRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   LineItemRequest
		field string
	}{
		{"huge quantity", LineItemRequest{ItemType: "FEE", Description: "x", Quantity: decPtr("100000000000000000000"), UnitPrice: dec("1000000000")}, "quantity"},
		{"huge price", LineItemRequest{ItemType: "FEE", Description: "x", UnitPrice: dec("100000000")}, "unit_price"},
		{"huge line total", LineItemRequest{ItemType: "LABOR", Description: "x", Quantity: decPtr("10000"), UnitPrice: dec("10000")}, "line_total"},
		{"too many labor hours", LineItemRequest{ItemType: "LABOR", Description: "x", UnitPrice: dec("1"), LaborTimeHrs: decimal.NewNullDecimal(dec("1000"))}, "labor_time_hrs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.jobCardSvc.AddLineItem(ctx, jc.ID, tt.req)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}

	// The largest value that fits is still accepted.
	jc, err = env.jobCardSvc.AddLineItem(ctx, jc.ID, LineItemRequest{ItemType: "FEE", Description: "x", UnitPrice: models.MaxAmount.Div(dec("2")).Round(2)})
	require.NoError(t, err)
	require.Len(t, jc.LineItems, 1)

	_, _, err = env.jobCardSvc.RecordPayment(ctx, jc.ID, PaymentRequest{Amount: dec("100000000"), PaymentMethod: models.PaymentCash})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "amount", fieldErr.Field)
}

func TestTotalsBeyondColumnRangeRollBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "ENG-1", 5)
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("ENG-1", "1", "50000000.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, env.stockOf(t, "ENG-1"))

	// Each line fits on its own but the taxed total does not.
	_, err = env.jobCardSvc.AddLineItem(ctx, jc.ID, laborLine("1", "45000000.00"))
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "total_due", fieldErr.Field)

	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("ENG-1", "1", "60000000.00"), partLine("ENG-1", "1", "60000000.00")},
	})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "parts_subtotal", fieldErr.Field)

	assert.Equal(t, 4, env.stockOf(t, "ENG-1"))
	reloaded, err := env.jobCardSvc.GetJobCard(ctx, jc.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.LineItems, 1)
	assertTotalsConsistent(t, reloaded)
}

// overflowingJobCards reports a numeric column overflow from the database.
type overflowingJobCards struct {
	repositories.JobCardRepository
}

func (overflowingJobCards) UpdateTotals(context.Context, repositories.SQLExecutor, int64, models.Totals) error {
	return fmt.Errorf("%w: updating totals: numeric field overflow", repositories.ErrValueOutOfRange)
}

func TestColumnOverflowFromDatabaseIsValidationError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	broken := NewJobCardService(env.db, overflowingJobCards{env.jobCards}, env.payments, env.clients, env.vehicles, env.users, env.stock, testTaxRate)
	_, err = broken.AddLineItem(ctx, jc.ID, laborLine("1", "10.00"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = broken.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReplaceLineItemsInAnySKUOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	env.seedPart(t, "AAA-1", 3)
	env.seedPart(t, "ZZZ-9", 3)

	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{
		ClientID: client.ID, VehicleID: vehicle.ID,
		LineItems: []LineItemRequest{partLine("ZZZ-9", "3", "10.00"), partLine("AAA-1", "3", "10.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.stockOf(t, "AAA-1"))
	assert.Equal(t, 0, env.stockOf(t, "ZZZ-9"))

	// The returned units are back before the new lines take them again, so
	// nothing is lost to the zero clamp.
	jc, err = env.jobCardSvc.ReplaceLineItems(ctx, jc.ID, []LineItemRequest{partLine("ZZZ-9", "2", "10.00"), partLine("AAA-1", "3", "10.00")})
	require.NoError(t, err)
	assert.Equal(t, 0, env.stockOf(t, "AAA-1"))
	assert.Equal(t, 1, env.stockOf(t, "ZZZ-9"))
	assertTotalsConsistent(t, jc)

	for _, sku := range []string{"AAA-1", "ZZZ-9"} {
		for _, m := range env.movementsFor(t, sku) {
			assert.Equal(t, m.RequestedChange, m.AppliedChange, "%s %s clamped", sku, m.MovementType)
		}
	}
}
