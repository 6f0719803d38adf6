package service

import (
	"context"
	"fmt"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// TechnicalAssistantService asistentes tecnicos
type TechnicalAssistantService interface {
	Get(ctx context.Context, id int64) (*domain.TechnicalAssistant, error)
	GetByIdentification(ctx context.Context, number string) (*domain.TechnicalAssistant, error)
	List(ctx context.Context) ([]domain.TechnicalAssistant, error)
	Create(ctx context.Context, a *domain.TechnicalAssistant) (int64, error)
	Update(ctx context.Context, a *domain.TechnicalAssistant) error
	SoftDelete(ctx context.Context, id int64) error
}

type technicalAssistantService struct {
	assistants repository.TechnicalAssistantRepository
	users      repository.UserRepository
	b          boundary
}

func NewTechnicalAssistantService(assistants repository.TechnicalAssistantRepository, users repository.UserRepository, logger *zap.Logger) TechnicalAssistantService {
	return &technicalAssistantService{
		assistants: assistants,
		users:      users,
		b:          newBoundary(logger, "asistente tecnico", "asistentes"),
	}
}

func (s *technicalAssistantService) Get(ctx context.Context, id int64) (*domain.TechnicalAssistant, error) {
	return getByID(ctx, s.b, id, s.assistants.Get)
}

func (s *technicalAssistantService) GetByIdentification(ctx context.Context, number string) (*domain.TechnicalAssistant, error) {
	if err := validation.First(
		validation.NotEmpty("cedula", number),
		validation.Numeric("cedula", number),
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	a, err := s.assistants.GetByIdentification(ctx, number)
	if err != nil {
		return nil, s.b.searchFailed(err)
	}
	return a, nil
}

func (s *technicalAssistantService) List(ctx context.Context) ([]domain.TechnicalAssistant, error) {
	return list(ctx, s.b, s.assistants.List)
}

func (s *technicalAssistantService) Create(ctx context.Context, a *domain.TechnicalAssistant) (int64, error) {
	if err := s.validate(a); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := checkUnique(ctx, s.users, &a.User, 0); err != nil {
		return 0, s.b.createFailed(err)
	}
	id, err := s.assistants.Create(ctx, a)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	a.ID = id
	a.Active = true
	return id, nil
}

func (s *technicalAssistantService) Update(ctx context.Context, a *domain.TechnicalAssistant) error {
	if err := s.validate(a); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.Positive("id", a.ID)(); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := s.assistants.Get(ctx, a.ID)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if current == nil {
		return s.b.updateFailed(fmt.Errorf("asistente_tecnico %d: %w", a.ID, repository.ErrNotFound))
	}
	if err := checkUnique(ctx, s.users, &a.User, current.User.ID); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.assistants.Update(ctx, a))
}

func (s *technicalAssistantService) SoftDelete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.assistants.SoftDelete)
}

func (s *technicalAssistantService) validate(a *domain.TechnicalAssistant) error {
	if err := validation.NotNil("asistente", a)(); err != nil {
		return err
	}
	if err := validateUser(&a.User, "asistente", false); err != nil {
		return err
	}
	return validation.MaxLength("numeroTarjetaProfesional", a.ProfessionalCardNumber, 30)()
}
