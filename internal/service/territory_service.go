package service

import (
	"context"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// TerritoryService departamento, municipio and vereda catalogue
type TerritoryService interface {
	GetDepartment(ctx context.Context, id int64) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, d *domain.Department) (int64, error)
	UpdateDepartment(ctx context.Context, d *domain.Department) error
	DeleteDepartment(ctx context.Context, id int64) error

	GetMunicipality(ctx context.Context, id int64) (*domain.Municipality, error)
	ListMunicipalities(ctx context.Context, departmentID int64) ([]domain.Municipality, error)
	CreateMunicipality(ctx context.Context, m *domain.Municipality) (int64, error)
	UpdateMunicipality(ctx context.Context, m *domain.Municipality) error
	DeleteMunicipality(ctx context.Context, id int64) error

	GetVillage(ctx context.Context, id int64) (*domain.Village, error)
	ListVillages(ctx context.Context, municipalityID int64) ([]domain.Village, error)
	CreateVillage(ctx context.Context, v *domain.Village) (int64, error)
	UpdateVillage(ctx context.Context, v *domain.Village) error
	DeleteVillage(ctx context.Context, id int64) error
}

type territoryService struct {
	departments    repository.DepartmentRepository
	municipalities repository.MunicipalityRepository
	villages       repository.VillageRepository
	dept, mun, vil boundary
}

func NewTerritoryService(
	departments repository.DepartmentRepository,
	municipalities repository.MunicipalityRepository,
	villages repository.VillageRepository,
	logger *zap.Logger,
) TerritoryService {
	return &territoryService{
		departments:    departments,
		municipalities: municipalities,
		villages:       villages,
		dept:           newBoundary(logger, "departamento", "departamentos"),
		mun:            newBoundary(logger, "municipio", "municipios"),
		vil:            newBoundary(logger, "vereda", "veredas"),
	}
}

func validateDane(code, name string) error {
	return validation.First(
		validation.NotEmpty("codigoDane", code),
		validation.Numeric("codigoDane", code),
		validation.NotEmpty("nombre", name),
		validation.MaxLength("nombre", name, 100),
	)
}

// --- departamento ---

func (s *territoryService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	return getByID(ctx, s.dept, id, s.departments.Get)
}

func (s *territoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return list(ctx, s.dept, s.departments.List)
}

func (s *territoryService) CreateDepartment(ctx context.Context, d *domain.Department) (int64, error) {
	if err := validation.NotNil("departamento", d)(); err != nil {
		return 0, s.dept.createFailed(err)
	}
	if err := validateDane(d.DaneCode, d.Name); err != nil {
		return 0, s.dept.createFailed(err)
	}
	id, err := s.departments.Create(ctx, d)
	if err != nil {
		return 0, s.dept.createFailed(err)
	}
	d.ID = id
	return id, nil
}

func (s *territoryService) UpdateDepartment(ctx context.Context, d *domain.Department) error {
	if err := validation.First(
		validation.NotNil("departamento", d),
		func() error { return validation.Positive("id", d.ID)() },
		func() error { return validateDane(d.DaneCode, d.Name) },
	); err != nil {
		return s.dept.updateFailed(err)
	}
	return s.dept.updateFailed(s.departments.Update(ctx, d))
}

func (s *territoryService) DeleteDepartment(ctx context.Context, id int64) error {
	return remove(ctx, s.dept, id, s.departments.Delete)
}

// --- municipio ---

func (s *territoryService) GetMunicipality(ctx context.Context, id int64) (*domain.Municipality, error) {
	return getByID(ctx, s.mun, id, s.municipalities.Get)
}

func (s *territoryService) ListMunicipalities(ctx context.Context, departmentID int64) ([]domain.Municipality, error) {
	return listBy(ctx, s.mun, "idDepartamento", departmentID, s.municipalities.ListByDepartment)
}

func (s *territoryService) CreateMunicipality(ctx context.Context, m *domain.Municipality) (int64, error) {
	if err := s.validateMunicipality(ctx, m); err != nil {
		return 0, s.mun.createFailed(err)
	}
	id, err := s.municipalities.Create(ctx, m)
	if err != nil {
		return 0, s.mun.createFailed(err)
	}
	m.ID = id
	return id, nil
}

func (s *territoryService) UpdateMunicipality(ctx context.Context, m *domain.Municipality) error {
	if err := s.validateMunicipality(ctx, m); err != nil {
		return s.mun.updateFailed(err)
	}
	if err := validation.Positive("id", m.ID)(); err != nil {
		return s.mun.updateFailed(err)
	}
	return s.mun.updateFailed(s.municipalities.Update(ctx, m))
}

func (s *territoryService) DeleteMunicipality(ctx context.Context, id int64) error {
	return remove(ctx, s.mun, id, s.municipalities.Delete)
}

func (s *territoryService) validateMunicipality(ctx context.Context, m *domain.Municipality) error {
	if err := validation.NotNil("municipio", m)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idDepartamento", m.DepartmentID),
		func() error { return validateDane(m.DaneCode, m.Name) },
	); err != nil {
		return err
	}
	_, err := exists(ctx, "idDepartamento", m.DepartmentID, s.departments.Get)
	return err
}

// --- vereda ---

func (s *territoryService) GetVillage(ctx context.Context, id int64) (*domain.Village, error) {
	return getByID(ctx, s.vil, id, s.villages.Get)
}

func (s *territoryService) ListVillages(ctx context.Context, municipalityID int64) ([]domain.Village, error) {
	return listBy(ctx, s.vil, "idMunicipio", municipalityID, s.villages.ListByMunicipality)
}

func (s *territoryService) CreateVillage(ctx context.Context, v *domain.Village) (int64, error) {
	if err := s.validateVillage(ctx, v); err != nil {
		return 0, s.vil.createFailed(err)
	}
	id, err := s.villages.Create(ctx, v)
	if err != nil {
		return 0, s.vil.createFailed(err)
	}
	v.ID = id
	return id, nil
}

func (s *territoryService) UpdateVillage(ctx context.Context, v *domain.Village) error {
	if err := s.validateVillage(ctx, v); err != nil {
		return s.vil.updateFailed(err)
	}
	if err := validation.Positive("id", v.ID)(); err != nil {
		return s.vil.updateFailed(err)
	}
	return s.vil.updateFailed(s.villages.Update(ctx, v))
}

func (s *territoryService) DeleteVillage(ctx context.Context, id int64) error {
	return remove(ctx, s.vil, id, s.villages.Delete)
}

func (s *territoryService) validateVillage(ctx context.Context, v *domain.Village) error {
	if err := validation.NotNil("vereda", v)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idMunicipio", v.MunicipalityID),
		func() error { return validateDane(v.DaneCode, v.Name) },
	); err != nil {
		return err
	}
	_, err := exists(ctx, "idMunicipio", v.MunicipalityID, s.municipalities.Get)
	return err
}
