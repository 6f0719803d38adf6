package service

import (
	"context"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// CropService cultivos. List returns ACTIVO crops only.
type CropService interface {
	Get(ctx context.Context, id int64) (*domain.Crop, error)
	List(ctx context.Context) ([]domain.Crop, error)
	ListByPlot(ctx context.Context, plotID int64) ([]domain.Crop, error)
	Create(ctx context.Context, c *domain.Crop) (int64, error)
	Update(ctx context.Context, c *domain.Crop) error
	ChangeStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	// ValidateArea cultivated area must be positive and fit in the plot
	ValidateArea(cropArea, plotArea float64) error
}

type cropService struct {
	crops repository.CropRepository
	plots repository.PlotRepository
	b     boundary
}

func NewCropService(crops repository.CropRepository, plots repository.PlotRepository, logger *zap.Logger) CropService {
	return &cropService{
		crops: crops,
		plots: plots,
		b:     newBoundary(logger, "cultivo", "cultivos"),
	}
}

func (s *cropService) Get(ctx context.Context, id int64) (*domain.Crop, error) {
	return getByID(ctx, s.b, id, s.crops.Get)
}

func (s *cropService) List(ctx context.Context) ([]domain.Crop, error) {
	return list(ctx, s.b, s.crops.List)
}

func (s *cropService) ListByPlot(ctx context.Context, plotID int64) ([]domain.Crop, error) {
	return listBy(ctx, s.b, "idLote", plotID, s.crops.ListByPlot)
}

func (s *cropService) Create(ctx context.Context, c *domain.Crop) (int64, error) {
	if err := s.validate(ctx, c); err != nil {
		return 0, s.b.createFailed(err)
	}
	if c.Status == "" {
		c.Status = domain.CropActive
	}
	id, err := s.crops.Create(ctx, c)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	c.ID = id
	return id, nil
}

// Update the crop stays on its stored plot; status changes go through ChangeStatus
func (s *cropService) Update(ctx context.Context, c *domain.Crop) error {
	if err := validation.NotNil("cultivo", c)(); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := stored(ctx, "cultivo", c.ID, s.crops.Get)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if c.PlotID, err = keepParent("idLote", c.PlotID, current.PlotID); err != nil {
		return s.b.updateFailed(err)
	}
	c.Status = current.Status
	if err := s.validate(ctx, c); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.crops.Update(ctx, c))
}

func (s *cropService) ChangeStatus(ctx context.Context, id int64, status string) error {
	if err := validation.First(
		validation.Positive("id", id),
		validation.InSet("estado", status, domain.CropActive, domain.CropInactive),
	); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.crops.ChangeStatus(ctx, id, status))
}

func (s *cropService) Delete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.crops.Delete)
}

func (s *cropService) ValidateArea(cropArea, plotArea float64) error {
	return s.b.wrap(rules.CheckCropArea(cropArea, plotArea), CodeValidation, "")
}

func (s *cropService) validate(ctx context.Context, c *domain.Crop) error {
	if err := validation.NotNil("cultivo", c)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idLote", c.PlotID),
		validation.NotEmpty("nombreComun", c.CommonName),
		validation.MaxLength("nombreComun", c.CommonName, 100),
		validation.When(c.Status != "", validation.InSet("estado", c.Status, domain.CropActive, domain.CropInactive)),
	); err != nil {
		return err
	}
	plot, err := exists(ctx, "idLote", c.PlotID, s.plots.Get)
	if err != nil {
		return err
	}
	return rules.CheckCropArea(c.CultivatedArea, plot.Area)
}
