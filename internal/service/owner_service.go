package service

import (
	"context"
	"fmt"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// OwnerService propietarios
type OwnerService interface {
	Get(ctx context.Context, id int64) (*domain.Owner, error)
	GetByIdentification(ctx context.Context, number string) (*domain.Owner, error)
	List(ctx context.Context) ([]domain.Owner, error)
	Create(ctx context.Context, o *domain.Owner) (int64, error)
	Update(ctx context.Context, o *domain.Owner) error
	SoftDelete(ctx context.Context, id int64) error
}

type ownerService struct {
	owners repository.OwnerRepository
	users  repository.UserRepository
	b      boundary
}

func NewOwnerService(owners repository.OwnerRepository, users repository.UserRepository, logger *zap.Logger) OwnerService {
	return &ownerService{owners: owners, users: users, b: newBoundary(logger, "propietario", "propietarios")}
}

func (s *ownerService) Get(ctx context.Context, id int64) (*domain.Owner, error) {
	return getByID(ctx, s.b, id, s.owners.Get)
}

func (s *ownerService) GetByIdentification(ctx context.Context, number string) (*domain.Owner, error) {
	if err := validation.First(
		validation.NotEmpty("cedula", number),
		validation.Numeric("cedula", number),
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	o, err := s.owners.GetByIdentification(ctx, number)
	if err != nil {
		return nil, s.b.searchFailed(err)
	}
	return o, nil
}

func (s *ownerService) List(ctx context.Context) ([]domain.Owner, error) {
	return list(ctx, s.b, s.owners.List)
}

func (s *ownerService) Create(ctx context.Context, o *domain.Owner) (int64, error) {
	if err := validation.NotNil("propietario", o)(); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := validateUser(&o.User, "propietario", false); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := checkUnique(ctx, s.users, &o.User, 0); err != nil {
		return 0, s.b.createFailed(err)
	}
	id, err := s.owners.Create(ctx, o)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	o.ID = id
	o.Active = true
	return id, nil
}

func (s *ownerService) Update(ctx context.Context, o *domain.Owner) error {
	if err := validation.NotNil("propietario", o)(); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.First(
		validation.Positive("id", o.ID),
		func() error { return validateUser(&o.User, "propietario", false) },
	); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := s.owners.Get(ctx, o.ID)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if current == nil {
		return s.b.updateFailed(fmt.Errorf("propietario %d: %w", o.ID, repository.ErrNotFound))
	}
	if err := checkUnique(ctx, s.users, &o.User, current.User.ID); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.owners.Update(ctx, o))
}

func (s *ownerService) SoftDelete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.owners.SoftDelete)
}
