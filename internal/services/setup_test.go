package services

import (
	"context"
	"database/sql"
	"testing"

	"garage_backend/internal/database/testdb"
	"garage_backend/internal/models"
	"garage_backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTaxRate = decimal.RequireFromString("0.15")

type testEnv struct {
	db        *sql.DB
	jobCards  repositories.JobCardRepository
	payments  repositories.PaymentRepository
	clients   repositories.ClientRepository
	vehicles  repositories.VehicleRepository
	users     repositories.AuthRepository
	parts     repositories.InventoryRepository
	catalog   repositories.CatalogRepository
	movements repositories.StockMovementRepository
	stock     *StockSynchronizer

	jobCardSvc   JobCardService
	inventorySvc InventoryService
	clientSvc    ClientService
	vehicleSvc   VehicleService
	catalogSvc   CatalogService
	authSvc      AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:        testdb.Open(t),
		jobCards:  repositories.NewJobCardRepository(),
		payments:  repositories.NewPaymentRepository(),
		clients:   repositories.NewClientRepository(),
		vehicles:  repositories.NewVehicleRepository(),
		users:     repositories.NewAuthRepository(),
		parts:     repositories.NewInventoryRepository(),
		catalog:   repositories.NewCatalogRepository(),
		movements: repositories.NewStockMovementRepository(),
	}
	env.stock = NewStockSynchronizer(env.parts, env.movements)
	env.jobCardSvc = NewJobCardService(env.db, env.jobCards, env.payments, env.clients, env.vehicles, env.users, env.stock, testTaxRate)
	env.inventorySvc = NewInventoryService(env.parts, env.catalog, env.movements, env.stock, env.db)
	env.clientSvc = NewClientService(env.clients, env.vehicles, env.db)
	env.vehicleSvc = NewVehicleService(env.vehicles, env.clients, env.db)
	env.catalogSvc = NewCatalogService(env.catalog, env.db)
	env.authSvc = NewAuthService(env.users, env.db)
	return env
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// assertMoney compares a decimal against its two-place rendering.
func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

// seedClientVehicle creates an individual client owning one vehicle.
func (e *testEnv) seedClientVehicle(t *testing.T, vin string) (*models.Client, *models.Vehicle) {
	t.Helper()
	ctx := context.Background()
	client, err := e.clientSvc.CreateClient(ctx, ClientRequest{FirstName: strPtr("John"), LastName: strPtr("Doe")})
	require.NoError(t, err)
	vehicle, err := e.vehicleSvc.CreateVehicle(ctx, VehicleRequest{
		ClientID: client.ID, VIN: vin, LicensePlate: strPtr("ABC-" + vin[len(vin)-3:]),
		Make: "Toyota", Model: "Corolla", Year: 2019, Odometer: 42000,
	})
	require.NoError(t, err)
	return client, vehicle
}

func (e *testEnv) seedPart(t *testing.T, sku string, stock int) *models.InventoryPart {
	t.Helper()
	part, err := e.inventorySvc.CreatePart(context.Background(), PartRequest{
		SKU: sku, Name: "Part " + sku, CostPrice: dec("20.00"), SalePrice: dec("50.00"), StockQty: stock,
	})
	require.NoError(t, err)
	return part
}

func (e *testEnv) stockOf(t *testing.T, sku string) int {
	t.Helper()
	part, err := e.parts.GetPartBySKU(context.Background(), e.db, sku)
	require.NoError(t, err)
	return part.StockQty
}

func (e *testEnv) movementsFor(t *testing.T, sku string) []models.StockMovement {
	t.Helper()
	movements, _, err := e.movements.GetMovements(context.Background(), e.db, models.MovementFilters{SKU: &sku})
	require.NoError(t, err)
	return movements
}

func partLine(sku, qty, price string) LineItemRequest {
	return LineItemRequest{ItemType: models.LineItemPart, Description: "Part " + sku, SKU: strPtr(sku), Quantity: decPtr(qty), UnitPrice: dec(price)}
}

func laborLine(qty, price string) LineItemRequest {
	return LineItemRequest{ItemType: models.LineItemLabor, Description: "Labor", Quantity: decPtr(qty), UnitPrice: dec(price)}
}

// assertTotalsConsistent checks the stored totals against a fresh computation
// from the card's children.
func assertTotalsConsistent(t *testing.T, jc *models.JobCard) {
	t.Helper()
	want := CalculateTotals(jc.LineItems, jc.Payments, testTaxRate)
	assert.True(t, want.Equal(jc.Totals()), "stored totals %+v differ from computed %+v", jc.Totals(), want)
	assert.True(t, jc.BalanceDue.Equal(jc.TotalDue.Sub(jc.TotalPaid)), "balance_due must equal total_due - total_paid")
}
