package service

import (
	"context"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// PlotService lotes. A plot never exceeds the area of the estate that
// contains its production site.
type PlotService interface {
	Get(ctx context.Context, id int64) (*domain.Plot, error)
	List(ctx context.Context) ([]domain.Plot, error)
	ListBySite(ctx context.Context, siteID int64) ([]domain.Plot, error)
	Create(ctx context.Context, p *domain.Plot) (int64, error)
	Update(ctx context.Context, p *domain.Plot) error
	Delete(ctx context.Context, id int64) error
	// ValidateArea checks a plot against the containing area in hectares
	ValidateArea(p *domain.Plot, siteArea float64) error
}

type plotService struct {
	plots  repository.PlotRepository
	sites  repository.ProductionSiteRepository
	b      boundary
	logger *zap.Logger
}

func NewPlotService(plots repository.PlotRepository, sites repository.ProductionSiteRepository, logger *zap.Logger) PlotService {
	return &plotService{
		plots:  plots,
		sites:  sites,
		b:      newBoundary(logger, "lote", "lotes"),
		logger: logger,
	}
}

func (s *plotService) Get(ctx context.Context, id int64) (*domain.Plot, error) {
	return getByID(ctx, s.b, id, s.plots.Get)
}

func (s *plotService) List(ctx context.Context) ([]domain.Plot, error) {
	return list(ctx, s.b, s.plots.List)
}

func (s *plotService) ListBySite(ctx context.Context, siteID int64) ([]domain.Plot, error) {
	return listBy(ctx, s.b, "idLugarProduccion", siteID, s.plots.ListBySite)
}

func (s *plotService) Create(ctx context.Context, p *domain.Plot) (int64, error) {
	if err := s.validate(ctx, p); err != nil {
		return 0, s.b.createFailed(err)
	}
	id, err := s.plots.Create(ctx, p)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	p.ID = id
	return id, nil
}

// Update keeps the plot under its stored production site; the area is
// checked against that site's estate
func (s *plotService) Update(ctx context.Context, p *domain.Plot) error {
	if err := validation.NotNil("lote", p)(); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := stored(ctx, "lote", p.ID, s.plots.Get)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if p.ProductionSiteID, err = keepParent("idLugarProduccion", p.ProductionSiteID, current.ProductionSiteID); err != nil {
		return s.b.updateFailed(err)
	}
	if err := s.validate(ctx, p); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.plots.Update(ctx, p))
}

func (s *plotService) Delete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.plots.Delete)
}

func (s *plotService) ValidateArea(p *domain.Plot, siteArea float64) error {
	if err := validation.NotNil("lote", p)(); err != nil {
		return s.b.wrap(err, CodeValidation, "")
	}
	if err := rules.CheckPlotArea(&p.Area, siteArea); err != nil {
		return s.b.wrap(err, CodeValidation, "")
	}
	s.logger.Debug("Area del lote validada", zap.Float64("area", p.Area), zap.Float64("area_predio", siteArea))
	return nil
}

func (s *plotService) validate(ctx context.Context, p *domain.Plot) error {
	if err := validation.NotNil("lote", p)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idLugarProduccion", p.ProductionSiteID),
		validation.MaxLength("numeroLote", p.Number, 20),
		validation.Positive("area", p.Area),
	); err != nil {
		return err
	}
	if p.SowingDate != nil && p.RemovalDate != nil && p.RemovalDate.Before(*p.SowingDate) {
		return validation.Fail("fechaEliminacion", "No puede ser anterior a la fecha de siembra")
	}

	siteArea, err := s.sites.ContainingArea(ctx, p.ProductionSiteID)
	if err != nil {
		return err
	}
	if siteArea == nil {
		return validation.Fail("idLugarProduccion", "No existe")
	}
	return rules.CheckPlotArea(&p.Area, *siteArea)
}
