package repository

import (
	"context"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/domain"
)

// DepartmentRepository departamento persistence
type DepartmentRepository interface {
	Get(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	Create(ctx context.Context, d *domain.Department) (int64, error)
	Update(ctx context.Context, d *domain.Department) error
	Delete(ctx context.Context, id int64) error
}

// MunicipalityRepository municipio persistence
type MunicipalityRepository interface {
	Get(ctx context.Context, id int64) (*domain.Municipality, error)
	List(ctx context.Context) ([]domain.Municipality, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Municipality, error)
	Create(ctx context.Context, m *domain.Municipality) (int64, error)
	Update(ctx context.Context, m *domain.Municipality) error
	Delete(ctx context.Context, id int64) error
}

// VillageRepository vereda persistence
type VillageRepository interface {
	Get(ctx context.Context, id int64) (*domain.Village, error)
	List(ctx context.Context) ([]domain.Village, error)
	ListByMunicipality(ctx context.Context, municipalityID int64) ([]domain.Village, error)
	Create(ctx context.Context, v *domain.Village) (int64, error)
	Update(ctx context.Context, v *domain.Village) error
	Delete(ctx context.Context, id int64) error
}

// --- departamento ---

const departmentColumns = "id_departamento, codigo_dane, nombre"

type SQLDepartmentRepository struct {
	tpl *dao.Template[domain.Department]
}

func NewSQLDepartmentRepository(s *Store) *SQLDepartmentRepository {
	return &SQLDepartmentRepository{tpl: newTemplate(s, mapDepartment)}
}

var _ DepartmentRepository = (*SQLDepartmentRepository)(nil)

func mapDepartment(row dao.Row) (domain.Department, error) {
	var d domain.Department
	err := row.Scan(&d.ID, &d.DaneCode, &d.Name)
	return d, err
}

func (r *SQLDepartmentRepository) Get(ctx context.Context, id int64) (*domain.Department, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+departmentColumns+" FROM departamento WHERE id_departamento = ?", dao.Long(id))
}

func (r *SQLDepartmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+departmentColumns+" FROM departamento ORDER BY nombre")
}

func (r *SQLDepartmentRepository) Create(ctx context.Context, d *domain.Department) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO departamento (codigo_dane, nombre) VALUES (?, ?)", "id_departamento",
		dao.String(d.DaneCode), dao.String(d.Name))
}

func (r *SQLDepartmentRepository) Update(ctx context.Context, d *domain.Department) error {
	n, err := r.tpl.Execute(ctx, "UPDATE departamento SET codigo_dane = ?, nombre = ? WHERE id_departamento = ?",
		dao.String(d.DaneCode), dao.String(d.Name), dao.Long(d.ID))
	return expectOne(n, err, "departamento", d.ID)
}

func (r *SQLDepartmentRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM departamento WHERE id_departamento = ?", dao.Long(id))
	return expectOne(n, err, "departamento", id)
}

// --- municipio ---

const municipalityColumns = "id_municipio, id_departamento, codigo_dane, nombre"

type SQLMunicipalityRepository struct {
	tpl *dao.Template[domain.Municipality]
}

func NewSQLMunicipalityRepository(s *Store) *SQLMunicipalityRepository {
	return &SQLMunicipalityRepository{tpl: newTemplate(s, mapMunicipality)}
}

var _ MunicipalityRepository = (*SQLMunicipalityRepository)(nil)

func mapMunicipality(row dao.Row) (domain.Municipality, error) {
	var m domain.Municipality
	err := row.Scan(&m.ID, &m.DepartmentID, &m.DaneCode, &m.Name)
	return m, err
}

func (r *SQLMunicipalityRepository) Get(ctx context.Context, id int64) (*domain.Municipality, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+municipalityColumns+" FROM municipio WHERE id_municipio = ?", dao.Long(id))
}

func (r *SQLMunicipalityRepository) List(ctx context.Context) ([]domain.Municipality, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+municipalityColumns+" FROM municipio ORDER BY nombre")
}

func (r *SQLMunicipalityRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Municipality, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+municipalityColumns+" FROM municipio WHERE id_departamento = ? ORDER BY nombre", dao.Long(departmentID))
}

func (r *SQLMunicipalityRepository) Create(ctx context.Context, m *domain.Municipality) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO municipio (id_departamento, codigo_dane, nombre) VALUES (?, ?, ?)", "id_municipio",
		dao.Long(m.DepartmentID), dao.String(m.DaneCode), dao.String(m.Name))
}

func (r *SQLMunicipalityRepository) Update(ctx context.Context, m *domain.Municipality) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE municipio SET id_departamento = ?, codigo_dane = ?, nombre = ? WHERE id_municipio = ?",
		dao.Long(m.DepartmentID), dao.String(m.DaneCode), dao.String(m.Name), dao.Long(m.ID))
	return expectOne(n, err, "municipio", m.ID)
}

func (r *SQLMunicipalityRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM municipio WHERE id_municipio = ?", dao.Long(id))
	return expectOne(n, err, "municipio", id)
}

// --- vereda ---

const villageColumns = "id_vereda, id_municipio, codigo_dane, nombre"

type SQLVillageRepository struct {
	tpl *dao.Template[domain.Village]
}

func NewSQLVillageRepository(s *Store) *SQLVillageRepository {
	return &SQLVillageRepository{tpl: newTemplate(s, mapVillage)}
}

var _ VillageRepository = (*SQLVillageRepository)(nil)

func mapVillage(row dao.Row) (domain.Village, error) {
	var v domain.Village
	err := row.Scan(&v.ID, &v.MunicipalityID, &v.DaneCode, &v.Name)
	return v, err
}

func (r *SQLVillageRepository) Get(ctx context.Context, id int64) (*domain.Village, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+villageColumns+" FROM vereda WHERE id_vereda = ?", dao.Long(id))
}

func (r *SQLVillageRepository) List(ctx context.Context) ([]domain.Village, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+villageColumns+" FROM vereda ORDER BY nombre")
}

func (r *SQLVillageRepository) ListByMunicipality(ctx context.Context, municipalityID int64) ([]domain.Village, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+villageColumns+" FROM vereda WHERE id_municipio = ? ORDER BY nombre", dao.Long(municipalityID))
}

func (r *SQLVillageRepository) Create(ctx context.Context, v *domain.Village) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO vereda (id_municipio, codigo_dane, nombre) VALUES (?, ?, ?)", "id_vereda",
		dao.Long(v.MunicipalityID), dao.String(v.DaneCode), dao.String(v.Name))
}

func (r *SQLVillageRepository) Update(ctx context.Context, v *domain.Village) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE vereda SET id_municipio = ?, codigo_dane = ?, nombre = ? WHERE id_vereda = ?",
		dao.Long(v.MunicipalityID), dao.String(v.DaneCode), dao.String(v.Name), dao.Long(v.ID))
	return expectOne(n, err, "vereda", v.ID)
}

func (r *SQLVillageRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM vereda WHERE id_vereda = ?", dao.Long(id))
	return expectOne(n, err, "vereda", id)
}
