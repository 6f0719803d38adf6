package service

import (
	"context"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// SiteService predios and lugares de produccion
type SiteService interface {
	GetEstate(ctx context.Context, id int64) (*domain.Estate, error)
	ListEstates(ctx context.Context) ([]domain.Estate, error)
	ListEstatesByOwner(ctx context.Context, ownerID int64) ([]domain.Estate, error)
	ListEstatesByVillage(ctx context.Context, villageID int64) ([]domain.Estate, error)
	CreateEstate(ctx context.Context, e *domain.Estate) (int64, error)
	UpdateEstate(ctx context.Context, e *domain.Estate) error
	DeleteEstate(ctx context.Context, id int64) error

	GetSite(ctx context.Context, id int64) (*domain.ProductionSite, error)
	ListSites(ctx context.Context) ([]domain.ProductionSite, error)
	ListSitesByEstate(ctx context.Context, estateID int64) ([]domain.ProductionSite, error)
	ListSitesByProducer(ctx context.Context, producerID int64) ([]domain.ProductionSite, error)
	ListSitesByAssistant(ctx context.Context, assistantID int64) ([]domain.ProductionSite, error)
	CreateSite(ctx context.Context, p *domain.ProductionSite) (int64, error)
	UpdateSite(ctx context.Context, p *domain.ProductionSite) error
	DeleteSite(ctx context.Context, id int64) error
}

type siteService struct {
	estates    repository.EstateRepository
	sites      repository.ProductionSiteRepository
	owners     repository.OwnerRepository
	producers  repository.ProducerRepository
	assistants repository.TechnicalAssistantRepository
	est, site  boundary
}

func NewSiteService(
	estates repository.EstateRepository,
	sites repository.ProductionSiteRepository,
	owners repository.OwnerRepository,
	producers repository.ProducerRepository,
	assistants repository.TechnicalAssistantRepository,
	logger *zap.Logger,
) SiteService {
	return &siteService{
		estates:    estates,
		sites:      sites,
		owners:     owners,
		producers:  producers,
		assistants: assistants,
		est:        newBoundary(logger, "predio", "predios"),
		site:       newBoundary(logger, "lugar de produccion", "lugares de produccion"),
	}
}

// --- predio ---

func (s *siteService) GetEstate(ctx context.Context, id int64) (*domain.Estate, error) {
	return getByID(ctx, s.est, id, s.estates.Get)
}

func (s *siteService) ListEstates(ctx context.Context) ([]domain.Estate, error) {
	return list(ctx, s.est, s.estates.List)
}

func (s *siteService) ListEstatesByOwner(ctx context.Context, ownerID int64) ([]domain.Estate, error) {
	return listBy(ctx, s.est, "idPropietario", ownerID, s.estates.ListByOwner)
}

func (s *siteService) ListEstatesByVillage(ctx context.Context, villageID int64) ([]domain.Estate, error) {
	return listBy(ctx, s.est, "idVereda", villageID, s.estates.ListByVillage)
}

func (s *siteService) CreateEstate(ctx context.Context, e *domain.Estate) (int64, error) {
	if err := s.validateEstate(ctx, e); err != nil {
		return 0, s.est.createFailed(err)
	}
	id, err := s.estates.Create(ctx, e)
	if err != nil {
		return 0, s.est.createFailed(err)
	}
	e.ID = id
	return id, nil
}

func (s *siteService) UpdateEstate(ctx context.Context, e *domain.Estate) error {
	if err := s.validateEstate(ctx, e); err != nil {
		return s.est.updateFailed(err)
	}
	if err := validation.Positive("id", e.ID)(); err != nil {
		return s.est.updateFailed(err)
	}
	return s.est.updateFailed(s.estates.Update(ctx, e))
}

func (s *siteService) DeleteEstate(ctx context.Context, id int64) error {
	return remove(ctx, s.est, id, s.estates.Delete)
}

func (s *siteService) validateEstate(ctx context.Context, e *domain.Estate) error {
	if err := validation.NotNil("predio", e)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idPropietario", e.OwnerID),
		validation.Positive("idVereda", e.VillageID),
		validation.NotEmpty("numeroPredial", e.CadastralNumber),
		validation.MaxLength("numeroPredial", e.CadastralNumber, 30),
		validation.Positive("area", e.Area),
	); err != nil {
		return err
	}
	owner, err := exists(ctx, "idPropietario", e.OwnerID, s.owners.Get)
	if err != nil {
		return err
	}
	if !owner.Active {
		return validation.Fail("idPropietario", "Propietario inactivo")
	}
	return nil
}

// --- lugar_produccion ---

func (s *siteService) GetSite(ctx context.Context, id int64) (*domain.ProductionSite, error) {
	return getByID(ctx, s.site, id, s.sites.Get)
}

func (s *siteService) ListSites(ctx context.Context) ([]domain.ProductionSite, error) {
	return list(ctx, s.site, s.sites.List)
}

func (s *siteService) ListSitesByEstate(ctx context.Context, estateID int64) ([]domain.ProductionSite, error) {
	return listBy(ctx, s.site, "idPredio", estateID, s.sites.ListByEstate)
}

func (s *siteService) ListSitesByProducer(ctx context.Context, producerID int64) ([]domain.ProductionSite, error) {
	return listBy(ctx, s.site, "idProductor", producerID, s.sites.ListByProducer)
}

func (s *siteService) ListSitesByAssistant(ctx context.Context, assistantID int64) ([]domain.ProductionSite, error) {
	return listBy(ctx, s.site, "idAsistenteTecnico", assistantID, s.sites.ListByAssistant)
}

func (s *siteService) CreateSite(ctx context.Context, p *domain.ProductionSite) (int64, error) {
	if err := s.validateSite(ctx, p); err != nil {
		return 0, s.site.createFailed(err)
	}
	id, err := s.sites.Create(ctx, p)
	if err != nil {
		return 0, s.site.createFailed(err)
	}
	p.ID = id
	return id, nil
}

func (s *siteService) UpdateSite(ctx context.Context, p *domain.ProductionSite) error {
	if err := s.validateSite(ctx, p); err != nil {
		return s.site.updateFailed(err)
	}
	if err := validation.Positive("id", p.ID)(); err != nil {
		return s.site.updateFailed(err)
	}
	return s.site.updateFailed(s.sites.Update(ctx, p))
}

func (s *siteService) DeleteSite(ctx context.Context, id int64) error {
	return remove(ctx, s.site, id, s.sites.Delete)
}

func (s *siteService) validateSite(ctx context.Context, p *domain.ProductionSite) error {
	if err := validation.NotNil("lugarProduccion", p)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idPredio", p.EstateID),
		validation.NotEmpty("codigoICA", p.ICACode),
		validation.MaxLength("codigoICA", p.ICACode, 30),
		validation.NotEmpty("nombre", p.Name),
	); err != nil {
		return err
	}
	if _, err := exists(ctx, "idPredio", p.EstateID, s.estates.Get); err != nil {
		return err
	}
	if p.ProducerID != nil {
		if _, err := exists(ctx, "idProductor", *p.ProducerID, s.producers.Get); err != nil {
			return err
		}
	}
	if p.AssistantID != nil {
		if _, err := exists(ctx, "idAsistenteTecnico", *p.AssistantID, s.assistants.Get); err != nil {
			return err
		}
	}
	return nil
}
