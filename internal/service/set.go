package service

import (
	"fitosanitario/internal/repository"

	"go.uber.org/zap"
)

// Set every entity service over one store
type Set struct {
	Territory   TerritoryService
	Sites       SiteService
	Plots       PlotService
	Crops       CropService
	Pests       PestService
	Inspections InspectionService
	Results     TechnicalResultService
	Users       UserService
	Producers   ProducerService
	Owners      OwnerService
	Assistants  TechnicalAssistantService
}

// NewSet builds the repositories over store and the services on top of
// them. alerts may be nil.
func NewSet(store *repository.Store, alerts AlertRaiser, logger *zap.Logger) Set {
	departments := repository.NewSQLDepartmentRepository(store)
	municipalities := repository.NewSQLMunicipalityRepository(store)
	villages := repository.NewSQLVillageRepository(store)
	users := repository.NewSQLUserRepository(store)
	producers := repository.NewSQLProducerRepository(store, logger)
	owners := repository.NewSQLOwnerRepository(store, logger)
	assistants := repository.NewSQLTechnicalAssistantRepository(store, logger)
	estates := repository.NewSQLEstateRepository(store)
	sites := repository.NewSQLProductionSiteRepository(store)
	plots := repository.NewSQLPlotRepository(store)
	crops := repository.NewSQLCropRepository(store)
	pests := repository.NewSQLPestRepository(store)
	inspections := repository.NewSQLInspectionRepository(store)
	results := repository.NewSQLTechnicalResultRepository(store)

	return Set{
		Territory:   NewTerritoryService(departments, municipalities, villages, logger),
		Sites:       NewSiteService(estates, sites, owners, producers, assistants, logger),
		Plots:       NewPlotService(plots, sites, logger),
		Crops:       NewCropService(crops, plots, logger),
		Pests:       NewPestService(pests, logger),
		Inspections: NewInspectionService(inspections, plots, pests, assistants, alerts, logger),
		Results:     NewTechnicalResultService(results, inspections, alerts, logger),
		Users:       NewUserService(users, logger),
		Producers:   NewProducerService(producers, users, logger),
		Owners:      NewOwnerService(owners, users, logger),
		Assistants:  NewTechnicalAssistantService(assistants, users, logger),
	}
}
