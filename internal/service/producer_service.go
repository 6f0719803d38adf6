package service

import (
	"context"
	"fmt"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// ProducerService productores. Lookup by identification runs as a query.
type ProducerService interface {
	Get(ctx context.Context, id int64) (*domain.Producer, error)
	GetByIdentification(ctx context.Context, number string) (*domain.Producer, error)
	List(ctx context.Context) ([]domain.Producer, error)
	Create(ctx context.Context, p *domain.Producer) (int64, error)
	Update(ctx context.Context, p *domain.Producer) error
	SoftDelete(ctx context.Context, id int64) error
}

type producerService struct {
	producers repository.ProducerRepository
	users     repository.UserRepository
	b         boundary
}

func NewProducerService(producers repository.ProducerRepository, users repository.UserRepository, logger *zap.Logger) ProducerService {
	return &producerService{producers: producers, users: users, b: newBoundary(logger, "productor", "productores")}
}

func (s *producerService) Get(ctx context.Context, id int64) (*domain.Producer, error) {
	return getByID(ctx, s.b, id, s.producers.Get)
}

func (s *producerService) GetByIdentification(ctx context.Context, number string) (*domain.Producer, error) {
	if err := validation.First(
		validation.NotEmpty("cedula", number),
		validation.Numeric("cedula", number),
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	p, err := s.producers.GetByIdentification(ctx, number)
	if err != nil {
		return nil, s.b.searchFailed(err)
	}
	return p, nil
}

func (s *producerService) List(ctx context.Context) ([]domain.Producer, error) {
	return list(ctx, s.b, s.producers.List)
}

func (s *producerService) Create(ctx context.Context, p *domain.Producer) (int64, error) {
	if err := validation.NotNil("productor", p)(); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := validateUser(&p.User, "productor", true); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := checkUnique(ctx, s.users, &p.User, 0); err != nil {
		return 0, s.b.createFailed(err)
	}
	id, err := s.producers.Create(ctx, p)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	p.ID = id
	p.Active = true
	return id, nil
}

func (s *producerService) Update(ctx context.Context, p *domain.Producer) error {
	if err := validation.NotNil("productor", p)(); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.First(
		validation.Positive("id", p.ID),
		func() error { return validateUser(&p.User, "productor", true) },
	); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := s.producers.Get(ctx, p.ID)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if current == nil {
		return s.b.updateFailed(fmt.Errorf("productor %d: %w", p.ID, repository.ErrNotFound))
	}
	if err := checkUnique(ctx, s.users, &p.User, current.User.ID); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.producers.Update(ctx, p))
}

func (s *producerService) SoftDelete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.producers.SoftDelete)
}
