package services

import (
	"context"
	"testing"

	"garage_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   ClientRequest
		field string
	}{
		{"individual without names", ClientRequest{ClientType: models.ClientTypeIndividual}, "first_name"},
		{"company without name", ClientRequest{ClientType: models.ClientTypeCompany, FirstName: strPtr("Ann")}, "company_name"},
		{"unknown type", ClientRequest{ClientType: "Alien", FirstName: strPtr("Zed")}, "client_type"},
		{"bad email", ClientRequest{FirstName: strPtr("Ann"), Email: strPtr("not-an-email")}, "email"},
		{"bad phone", ClientRequest{FirstName: strPtr("Ann"), PhoneNumber: strPtr("12345")}, "phone_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.clientSvc.CreateClient(ctx, tt.req)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestClientTypeDropsForeignNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	company, err := env.clientSvc.CreateClient(ctx, ClientRequest{
		ClientType: models.ClientTypeCompany, CompanyName: strPtr(" Acme Fleet "), FirstName: strPtr("Ignored"),
		PhoneNumber: strPtr("+77711234567"),
	})
	require.NoError(t, err)
	assert.Nil(t, company.FirstName)
	assert.Equal(t, "Acme Fleet", *company.CompanyName)
	assert.Equal(t, "Acme Fleet", company.FullName)
	assert.True(t, company.IsActive)
}

func TestClientEmailIsUniqueCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.clientSvc.CreateClient(ctx, ClientRequest{FirstName: strPtr("Ann"), Email: strPtr("Ann@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", *first.Email)

	_, err = env.clientSvc.CreateClient(ctx, ClientRequest{FirstName: strPtr("Other"), Email: strPtr("ANN@example.com")})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "email", conflictErr.Field)

	// Clients without email never collide.
	_, err = env.clientSvc.CreateClient(ctx, ClientRequest{FirstName: strPtr("A")})
	require.NoError(t, err)
	_, err = env.clientSvc.CreateClient(ctx, ClientRequest{FirstName: strPtr("B")})
	require.NoError(t, err)
}

func TestClientUpdateAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, _ := env.seedClientVehicle(t, "1HGCM82633A004352")

	updated, err := env.clientSvc.UpdateClient(ctx, client.ID, ClientRequest{FirstName: strPtr("Jane"), LastName: strPtr("Roe"), City: strPtr("Almaty")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", updated.FullName)

	found, total, err := env.clientSvc.GetClients(ctx, models.ClientFilters{Search: strPtr("roe")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, client.ID, found[0].ID)

	withVehicles, err := env.clientSvc.GetClientByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, withVehicles.Vehicles, 1)

	_, err = env.clientSvc.UpdateClient(ctx, 999, ClientRequest{FirstName: strPtr("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	require.NoError(t, env.clientSvc.DeleteClient(ctx, client.ID))
	_, err := env.vehicleSvc.GetVehicleByID(ctx, vehicle.ID)
	assert.ErrorIs(t, err, ErrNotFound, "vehicles go with their client")

	busy, busyVehicle := env.seedClientVehicle(t, "2HGCM82633A004353")
	_, err = env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: busy.ID, VehicleID: busyVehicle.ID})
	require.NoError(t, err)
	err = env.clientSvc.DeleteClient(ctx, busy.ID)
	assert.ErrorIs(t, err, ErrConflict)

	assert.ErrorIs(t, env.clientSvc.DeleteClient(ctx, 999), ErrNotFound)
}

func TestVehicleValidationAndConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	assert.Equal(t, "1HGCM82633A004352", vehicle.VIN)

	base := VehicleRequest{ClientID: client.ID, VIN: "3FADP4BJ7DM123456", Make: "Ford", Model: "Fiesta", Year: 2013}

	short := base
	short.VIN = "SHORT"
	_, err := env.vehicleSvc.CreateVehicle(ctx, short)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "vin", fieldErr.Field)

	ancient := base
	ancient.Year = 1700
	_, err = env.vehicleSvc.CreateVehicle(ctx, ancient)
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "year", fieldErr.Field)

	orphan := base
	orphan.ClientID = 999
	_, err = env.vehicleSvc.CreateVehicle(ctx, orphan)
	assert.ErrorIs(t, err, ErrNotFound)

	dupVIN := base
	dupVIN.VIN = "1hgcm82633a004352"
	_, err = env.vehicleSvc.CreateVehicle(ctx, dupVIN)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "vin", conflictErr.Field)

	dupPlate := base
	dupPlate.LicensePlate = strPtr("abc-352")
	_, err = env.vehicleSvc.CreateVehicle(ctx, dupPlate)
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "license_plate", conflictErr.Field)

	created, err := env.vehicleSvc.CreateVehicle(ctx, base)
	require.NoError(t, err)
	list, total, err := env.vehicleSvc.GetVehicles(ctx, models.VehicleFilters{ClientID: &client.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	base.Odometer = 99000
	updated, err := env.vehicleSvc.UpdateVehicle(ctx, created.ID, base)
	require.NoError(t, err)
	assert.Equal(t, 99000, updated.Odometer)
}

func TestDeleteVehicleReferencedByJobCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client, vehicle := env.seedClientVehicle(t, "1HGCM82633A004352")
	jc, err := env.jobCardSvc.CreateJobCard(ctx, JobCardRequest{ClientID: client.ID, VehicleID: vehicle.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, env.vehicleSvc.DeleteVehicle(ctx, vehicle.ID), ErrConflict)

	require.NoError(t, env.jobCardSvc.DeleteJobCard(ctx, jc.ID))
	require.NoError(t, env.vehicleSvc.DeleteVehicle(ctx, vehicle.ID))
	assert.ErrorIs(t, env.vehicleSvc.DeleteVehicle(ctx, vehicle.ID), ErrNotFound)
}
