package service

import (
	"context"
	"strings"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// UserService usuarios. Role specific users are created through the
// producer, owner and technical assistant services; Create here only
// registers administrators.
type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIdentification(ctx context.Context, number string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	CreateAdmin(ctx context.Context, u *domain.User) (int64, error)
	Update(ctx context.Context, u *domain.User) error
	SoftDelete(ctx context.Context, id int64) error
}

// UserRoles every usuario.rol value
var UserRoles = []string{domain.RoleAdmin, domain.RoleProducer, domain.RoleOwner, domain.RoleAssistant}

type userService struct {
	users  repository.UserRepository
	b      boundary
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{users: users, b: newBoundary(logger, "usuario", "usuarios"), logger: logger}
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := getByID(ctx, s.b, id, s.users.Get)
	if err == nil && u == nil {
		s.logger.Debug("Usuario no encontrado", zap.Int64("id", id))
	}
	return u, err
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := validation.First(
		validation.NotEmpty("email", email),
		validation.Email(email),
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.b.wrap(err, CodeSearch, "Error buscando por email")
	}
	return u, nil
}

func (s *userService) GetByIdentification(ctx context.Context, number string) (*domain.User, error) {
	if err := validation.First(
		validation.NotEmpty("cedula", number),
		validation.Numeric("cedula", number),
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	u, err := s.users.GetByIdentification(ctx, number)
	if err != nil {
		return nil, s.b.wrap(err, CodeSearch, "Error buscando por cedula")
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := list(ctx, s.b, s.users.List)
	if err == nil {
		s.logger.Debug("Usuarios obtenidos", zap.Int("count", len(users)))
	}
	return users, err
}

func (s *userService) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if err := validation.InSet("rol", role, UserRoles...)(); err != nil {
		return nil, s.b.searchFailed(err)
	}
	out, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, s.b.searchFailed(err)
	}
	return out, nil
}

func (s *userService) CreateAdmin(ctx context.Context, u *domain.User) (int64, error) {
	if err := validateUser(u, "usuario", true); err != nil {
		return 0, s.b.createFailed(err)
	}
	if err := checkUnique(ctx, s.users, u, 0); err != nil {
		return 0, s.b.createFailed(err)
	}
	u.Role = domain.RoleAdmin
	id, err := s.users.Create(ctx, u)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	u.ID = id
	u.Active = true
	return id, nil
}

func (s *userService) Update(ctx context.Context, u *domain.User) error {
	if err := validateUser(u, "usuario", false); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.Positive("id", u.ID)(); err != nil {
		return s.b.updateFailed(err)
	}
	if err := checkUnique(ctx, s.users, u, u.ID); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.users.Update(ctx, u))
}

func (s *userService) SoftDelete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.users.SoftDelete)
}

// validateUser common usuario checks; lastName makes apellidos mandatory
func validateUser(u *domain.User, entity string, lastName bool) error {
	if err := validation.NotNil(entity, u)(); err != nil {
		return err
	}
	return validation.First(
		validation.NotEmpty("numeroIdentificacion", u.IdentificationNumber),
		validation.Cedula(u.IdentificationNumber),
		validation.NotEmpty("nombre", u.Name),
		validation.MaxLength("nombre", u.Name, 100),
		validation.When(lastName, validation.NotEmpty("apellidos", u.LastName)),
		validation.When(strings.TrimSpace(u.Phone) != "", validation.Phone(u.Phone)),
		validation.When(strings.TrimSpace(u.Email) != "", validation.Email(u.Email)),
	)
}

// checkUnique rejects an identification number or email already used by
// a user other than self
func checkUnique(ctx context.Context, users repository.UserRepository, u *domain.User, self int64) error {
	found, err := users.GetByIdentification(ctx, u.IdentificationNumber)
	if err != nil {
		return err
	}
	if found != nil && found.ID != self {
		return validation.Fail("numeroIdentificacion", "Ya se encuentra registrado")
	}
	if strings.TrimSpace(u.Email) == "" {
		return nil
	}
	found, err = users.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if found != nil && found.ID != self {
		return validation.Fail("email", "Ya se encuentra registrado")
	}
	return nil
}
