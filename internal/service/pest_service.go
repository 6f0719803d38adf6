package service

import (
	"context"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// PestService plagas catalogue
type PestService interface {
	Get(ctx context.Context, id int64) (*domain.Pest, error)
	List(ctx context.Context) ([]domain.Pest, error)
	Create(ctx context.Context, p *domain.Pest) (int64, error)
	Update(ctx context.Context, p *domain.Pest) error
	Delete(ctx context.Context, id int64) error
	// RequiresAlert true for CRITICA and CUARENTENARIA
	RequiresAlert(severity string) (bool, error)
}

type pestService struct {
	pests repository.PestRepository
	b     boundary
}

func NewPestService(pests repository.PestRepository, logger *zap.Logger) PestService {
	return &pestService{pests: pests, b: newBoundary(logger, "plaga", "plagas")}
}

func (s *pestService) Get(ctx context.Context, id int64) (*domain.Pest, error) {
	return getByID(ctx, s.b, id, s.pests.Get)
}

func (s *pestService) List(ctx context.Context) ([]domain.Pest, error) {
	return list(ctx, s.b, s.pests.List)
}

func (s *pestService) Create(ctx context.Context, p *domain.Pest) (int64, error) {
	if err := validatePest(p); err != nil {
		return 0, s.b.createFailed(err)
	}
	id, err := s.pests.Create(ctx, p)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	p.ID = id
	return id, nil
}

func (s *pestService) Update(ctx context.Context, p *domain.Pest) error {
	if err := validatePest(p); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.Positive("id", p.ID)(); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.pests.Update(ctx, p))
}

func (s *pestService) Delete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.pests.Delete)
}

func (s *pestService) RequiresAlert(severity string) (bool, error) {
	ok, err := rules.RequiresAlert(severity)
	if err != nil {
		return false, s.b.wrap(err, CodeValidation, "")
	}
	return ok, nil
}

func validatePest(p *domain.Pest) error {
	if err := validation.NotNil("plaga", p)(); err != nil {
		return err
	}
	return validation.First(
		validation.NotEmpty("nombreComun", p.CommonName),
		validation.MaxLength("nombreComun", p.CommonName, 100),
		validation.MaxLength("nombreCientifico", p.ScientificName, 150),
		validation.InSet("nivelPeligrosidad", p.Severity, rules.PestSeverities...),
	)
}
