package repository_test

import (
	"context"
	"testing"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/repository/repotest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store        *repository.Store
	departmentID int64
	villageID    int64
	ownerID      int64
	estateID     int64
	siteID       int64
	plotID       int64
}

// seedPlot creates the territorial chain down to one plot of 4 ha in a 10 ha estate
func seedPlot(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store, _ := repotest.NewStore(t)
	f := fixture{store: store}

	var err error
	f.departmentID, err = repository.NewSQLDepartmentRepository(store).Create(ctx, &domain.Department{DaneCode: "05", Name: "Antioquia"})
	require.NoError(t, err)
	municipalityID, err := repository.NewSQLMunicipalityRepository(store).Create(ctx,
		&domain.Municipality{DepartmentID: f.departmentID, DaneCode: "05001", Name: "Medellín"})
	require.NoError(t, err)
	f.villageID, err = repository.NewSQLVillageRepository(store).Create(ctx,
		&domain.Village{MunicipalityID: municipalityID, DaneCode: "05001001", Name: "Santa Elena"})
	require.NoError(t, err)

	f.ownerID, err = repository.NewSQLOwnerRepository(store, zap.NewNop()).Create(ctx,
		&domain.Owner{User: domain.User{IdentificationNumber: "70123456", Name: "Rosa", LastName: "Gómez"}})
	require.NoError(t, err)

	f.estateID, err = repository.NewSQLEstateRepository(store).Create(ctx, &domain.Estate{
		OwnerID: f.ownerID, VillageID: f.villageID, CadastralNumber: "05001-0001", Address: "Km 5 vía Santa Elena", Area: 10,
	})
	require.NoError(t, err)

	f.siteID, err = repository.NewSQLProductionSiteRepository(store).Create(ctx, &domain.ProductionSite{
		EstateID: f.estateID, ICACode: "ICA-0501-001", Name: "Finca La Esperanza",
	})
	require.NoError(t, err)

	f.plotID, err = repository.NewSQLPlotRepository(store).Create(ctx, &domain.Plot{
		ProductionSiteID: f.siteID, Number: "L1", Area: 4,
	})
	require.NoError(t, err)
	return f
}
