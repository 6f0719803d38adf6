package repository

import (
	"context"
	"database/sql"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/domain"
)

// CropRepository cultivo persistence. List only returns ACTIVO crops.
type CropRepository interface {
	Get(ctx context.Context, id int64) (*domain.Crop, error)
	List(ctx context.Context) ([]domain.Crop, error)
	ListByPlot(ctx context.Context, plotID int64) ([]domain.Crop, error)
	Create(ctx context.Context, c *domain.Crop) (int64, error)
	Update(ctx context.Context, c *domain.Crop) error
	ChangeStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// PestRepository plaga persistence
type PestRepository interface {
	Get(ctx context.Context, id int64) (*domain.Pest, error)
	List(ctx context.Context) ([]domain.Pest, error)
	Create(ctx context.Context, p *domain.Pest) (int64, error)
	Update(ctx context.Context, p *domain.Pest) error
	Delete(ctx context.Context, id int64) error
}

// --- cultivo ---

const cropColumns = "id_cultivo, id_lote, nombre_variedad, nombre_comun, nombre_cientifico, descripcion, area_cultivada, estado"

type SQLCropRepository struct {
	tpl *dao.Template[domain.Crop]
}

func NewSQLCropRepository(s *Store) *SQLCropRepository {
	return &SQLCropRepository{tpl: newTemplate(s, mapCrop)}
}

var _ CropRepository = (*SQLCropRepository)(nil)

func mapCrop(row dao.Row) (domain.Crop, error) {
	var c domain.Crop
	var variety, scientific, description sql.NullString
	err := row.Scan(&c.ID, &c.PlotID, &variety, &c.CommonName, &scientific, &description, &c.CultivatedArea, &c.Status)
	c.VarietyName = variety.String
	c.ScientificName = scientific.String
	c.Description = description.String
	return c, err
}

func (r *SQLCropRepository) Get(ctx context.Context, id int64) (*domain.Crop, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+cropColumns+" FROM cultivo WHERE id_cultivo = ?", dao.Long(id))
}

func (r *SQLCropRepository) List(ctx context.Context) ([]domain.Crop, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+cropColumns+" FROM cultivo WHERE estado = ? ORDER BY id_cultivo", dao.String(domain.CropActive))
}

func (r *SQLCropRepository) ListByPlot(ctx context.Context, plotID int64) ([]domain.Crop, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+cropColumns+" FROM cultivo WHERE id_lote = ? ORDER BY id_cultivo", dao.Long(plotID))
}

func (r *SQLCropRepository) Create(ctx context.Context, c *domain.Crop) (int64, error) {
	status := c.Status
	if status == "" {
		status = domain.CropActive
	}
	return r.tpl.ExecuteReturningID(ctx,
		`INSERT INTO cultivo (id_lote, nombre_variedad, nombre_comun, nombre_cientifico, descripcion, area_cultivada, estado)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"id_cultivo",
		dao.Long(c.PlotID), dao.String(c.VarietyName), dao.String(c.CommonName), dao.String(c.ScientificName),
		dao.String(c.Description), dao.Double(c.CultivatedArea), dao.String(status))
}

func (r *SQLCropRepository) Update(ctx context.Context, c *domain.Crop) error {
	n, err := r.tpl.Execute(ctx,
		`UPDATE cultivo SET nombre_variedad = ?, nombre_comun = ?, nombre_cientifico = ?, descripcion = ?, area_cultivada = ?
		 WHERE id_cultivo = ?`,
		dao.String(c.VarietyName), dao.String(c.CommonName), dao.String(c.ScientificName),
		dao.String(c.Description), dao.Double(c.CultivatedArea), dao.Long(c.ID))
	return expectOne(n, err, "cultivo", c.ID)
}

func (r *SQLCropRepository) ChangeStatus(ctx context.Context, id int64, status string) error {
	n, err := r.tpl.Execute(ctx, "UPDATE cultivo SET estado = ? WHERE id_cultivo = ?", dao.String(status), dao.Long(id))
	return expectOne(n, err, "cultivo", id)
}

func (r *SQLCropRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM cultivo WHERE id_cultivo = ?", dao.Long(id))
	return expectOne(n, err, "cultivo", id)
}

// --- plaga ---

const pestColumns = "id_plaga, nombre_comun, nombre_cientifico, descripcion, nivel_peligrosidad"

type SQLPestRepository struct {
	tpl *dao.Template[domain.Pest]
}

func NewSQLPestRepository(s *Store) *SQLPestRepository {
	return &SQLPestRepository{tpl: newTemplate(s, mapPest)}
}

var _ PestRepository = (*SQLPestRepository)(nil)

func mapPest(row dao.Row) (domain.Pest, error) {
	var p domain.Pest
	var scientific, description sql.NullString
	err := row.Scan(&p.ID, &p.CommonName, &scientific, &description, &p.Severity)
	p.ScientificName = scientific.String
	p.Description = description.String
	return p, err
}

func (r *SQLPestRepository) Get(ctx context.Context, id int64) (*domain.Pest, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+pestColumns+" FROM plaga WHERE id_plaga = ?", dao.Long(id))
}

func (r *SQLPestRepository) List(ctx context.Context) ([]domain.Pest, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+pestColumns+" FROM plaga ORDER BY nombre_comun")
}

func (r *SQLPestRepository) Create(ctx context.Context, p *domain.Pest) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO plaga (nombre_comun, nombre_cientifico, descripcion, nivel_peligrosidad) VALUES (?, ?, ?, ?)",
		"id_plaga",
		dao.String(p.CommonName), dao.String(p.ScientificName), dao.String(p.Description), dao.String(p.Severity))
}

func (r *SQLPestRepository) Update(ctx context.Context, p *domain.Pest) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE plaga SET nombre_comun = ?, nombre_cientifico = ?, descripcion = ?, nivel_peligrosidad = ? WHERE id_plaga = ?",
		dao.String(p.CommonName), dao.String(p.ScientificName), dao.String(p.Description), dao.String(p.Severity), dao.Long(p.ID))
	return expectOne(n, err, "plaga", p.ID)
}

func (r *SQLPestRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM plaga WHERE id_plaga = ?", dao.Long(id))
	return expectOne(n, err, "plaga", id)
}
