package service

import (
	"context"
	"sync"
	"testing"

	"fitosanitario/internal/alert"
	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository/repotest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type raised struct {
	kind, description, severity string
	entityID                    int64
}

type recordingRaiser struct {
	mu     sync.Mutex
	alerts []raised
}

func (r *recordingRaiser) Raise(_ context.Context, kind, description, severity string, entityID int64) (*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, raised{kind, description, severity, entityID})
	return &alert.Alert{ID: int64(len(r.alerts)), Type: kind, Description: description, Severity: severity, EntityID: entityID}, nil
}

func (r *recordingRaiser) all() []raised {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]raised(nil), r.alerts...)
}

// env every service over one SQLite database
type env struct {
	raiser      *recordingRaiser
	territory   TerritoryService
	sites       SiteService
	plots       PlotService
	crops       CropService
	pests       PestService
	inspections InspectionService
	results     TechnicalResultService
	users       UserService
	producers   ProducerService
	owners      OwnerService
	assistants  TechnicalAssistantService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, _ := repotest.NewStore(t)

	raiser := &recordingRaiser{}
	set := NewSet(store, raiser, zap.NewNop())
	return &env{
		raiser:      raiser,
		territory:   set.Territory,
		sites:       set.Sites,
		plots:       set.Plots,
		crops:       set.Crops,
		pests:       set.Pests,
		inspections: set.Inspections,
		results:     set.Results,
		users:       set.Users,
		producers:   set.Producers,
		owners:      set.Owners,
		assistants:  set.Assistants,
	}
}

// seedSite builds department, municipality, village, owner, a 10 ha estate
// and a production site; returns the site id
func (e *env) seedSite(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()

	deptID, err := e.territory.CreateDepartment(ctx, &domain.Department{DaneCode: "05", Name: "Antioquia"})
	require.NoError(t, err)
	munID, err := e.territory.CreateMunicipality(ctx, &domain.Municipality{DepartmentID: deptID, DaneCode: "05001", Name: "Medellín"})
	require.NoError(t, err)
	vilID, err := e.territory.CreateVillage(ctx, &domain.Village{MunicipalityID: munID, DaneCode: "0500101", Name: "Santa Elena"})
	require.NoError(t, err)
	ownerID, err := e.owners.Create(ctx, &domain.Owner{User: domain.User{IdentificationNumber: "70123456", Name: "Rosa"}})
	require.NoError(t, err)
	estateID, err := e.sites.CreateEstate(ctx, &domain.Estate{
		OwnerID: ownerID, VillageID: vilID, CadastralNumber: "05001-0001", Area: 10,
	})
	require.NoError(t, err)
	siteID, err := e.sites.CreateSite(ctx, &domain.ProductionSite{EstateID: estateID, ICACode: "ICA-0501", Name: "La Esperanza"})
	require.NoError(t, err)
	return siteID
}

// seedPlot adds a 4 ha plot to a fresh site
func (e *env) seedPlot(t *testing.T) int64 {
	t.Helper()
	siteID := e.seedSite(t)
	plotID, err := e.plots.Create(context.Background(), &domain.Plot{ProductionSiteID: siteID, Number: "L1", Area: 4})
	require.NoError(t, err)
	return plotID
}

// seedLargeSite adds a 100 ha estate with its own site next to siteID
func (e *env) seedLargeSite(t *testing.T, siteID int64) int64 {
	t.Helper()
	ctx := context.Background()

	site, err := e.sites.GetSite(ctx, siteID)
	require.NoError(t, err)
	estate, err := e.sites.GetEstate(ctx, site.EstateID)
	require.NoError(t, err)

	largeID, err := e.sites.CreateEstate(ctx, &domain.Estate{
		OwnerID: estate.OwnerID, VillageID: estate.VillageID, CadastralNumber: "05001-0100", Area: 100,
	})
	require.NoError(t, err)
	id, err := e.sites.CreateSite(ctx, &domain.ProductionSite{EstateID: largeID, ICACode: "ICA-0599", Name: "El Porvenir"})
	require.NoError(t, err)
	return id
}
