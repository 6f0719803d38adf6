package repository

import (
	"context"
	"database/sql"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/domain"
)

// EstateRepository predio persistence
type EstateRepository interface {
	Get(ctx context.Context, id int64) (*domain.Estate, error)
	List(ctx context.Context) ([]domain.Estate, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Estate, error)
	ListByVillage(ctx context.Context, villageID int64) ([]domain.Estate, error)
	Create(ctx context.Context, e *domain.Estate) (int64, error)
	Update(ctx context.Context, e *domain.Estate) error
	Delete(ctx context.Context, id int64) error
}

// ProductionSiteRepository lugar_produccion persistence
type ProductionSiteRepository interface {
	Get(ctx context.Context, id int64) (*domain.ProductionSite, error)
	List(ctx context.Context) ([]domain.ProductionSite, error)
	ListByEstate(ctx context.Context, estateID int64) ([]domain.ProductionSite, error)
	ListByAssistant(ctx context.Context, assistantID int64) ([]domain.ProductionSite, error)
	ListByProducer(ctx context.Context, producerID int64) ([]domain.ProductionSite, error)
	Create(ctx context.Context, p *domain.ProductionSite) (int64, error)
	Update(ctx context.Context, p *domain.ProductionSite) error
	Delete(ctx context.Context, id int64) error
	// ContainingArea area of the estate that holds the site
	ContainingArea(ctx context.Context, siteID int64) (*float64, error)
}

// PlotRepository lote persistence
type PlotRepository interface {
	Get(ctx context.Context, id int64) (*domain.Plot, error)
	List(ctx context.Context) ([]domain.Plot, error)
	ListBySite(ctx context.Context, siteID int64) ([]domain.Plot, error)
	Create(ctx context.Context, p *domain.Plot) (int64, error)
	Update(ctx context.Context, p *domain.Plot) error
	Delete(ctx context.Context, id int64) error
}

// --- predio ---

const estateColumns = "id_predio, id_propietario, id_vereda, numero_predial, direccion, area_hectareas"

type SQLEstateRepository struct {
	tpl *dao.Template[domain.Estate]
}

func NewSQLEstateRepository(s *Store) *SQLEstateRepository {
	return &SQLEstateRepository{tpl: newTemplate(s, mapEstate)}
}

var _ EstateRepository = (*SQLEstateRepository)(nil)

func mapEstate(row dao.Row) (domain.Estate, error) {
	var e domain.Estate
	var address sql.NullString
	err := row.Scan(&e.ID, &e.OwnerID, &e.VillageID, &e.CadastralNumber, &address, &e.Area)
	e.Address = address.String
	return e, err
}

func (r *SQLEstateRepository) Get(ctx context.Context, id int64) (*domain.Estate, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+estateColumns+" FROM predio WHERE id_predio = ?", dao.Long(id))
}

func (r *SQLEstateRepository) List(ctx context.Context) ([]domain.Estate, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+estateColumns+" FROM predio ORDER BY id_predio")
}

func (r *SQLEstateRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Estate, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+estateColumns+" FROM predio WHERE id_propietario = ? ORDER BY id_predio", dao.Long(ownerID))
}

func (r *SQLEstateRepository) ListByVillage(ctx context.Context, villageID int64) ([]domain.Estate, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+estateColumns+" FROM predio WHERE id_vereda = ? ORDER BY id_predio", dao.Long(villageID))
}

func (r *SQLEstateRepository) Create(ctx context.Context, e *domain.Estate) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO predio (id_propietario, id_vereda, numero_predial, direccion, area_hectareas) VALUES (?, ?, ?, ?, ?)",
		"id_predio",
		dao.Long(e.OwnerID), dao.Long(e.VillageID), dao.String(e.CadastralNumber), dao.String(e.Address), dao.Double(e.Area))
}

func (r *SQLEstateRepository) Update(ctx context.Context, e *domain.Estate) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE predio SET numero_predial = ?, direccion = ?, area_hectareas = ? WHERE id_predio = ?",
		dao.String(e.CadastralNumber), dao.String(e.Address), dao.Double(e.Area), dao.Long(e.ID))
	return expectOne(n, err, "predio", e.ID)
}

func (r *SQLEstateRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM predio WHERE id_predio = ?", dao.Long(id))
	return expectOne(n, err, "predio", id)
}

// --- lugar_produccion ---

const siteColumns = "id_lugar_produccion, id_predio, id_productor, id_asistente_tecnico, codigo_ica, nombre"

type SQLProductionSiteRepository struct {
	tpl  *dao.Template[domain.ProductionSite]
	area *dao.Template[float64]
}

func NewSQLProductionSiteRepository(s *Store) *SQLProductionSiteRepository {
	return &SQLProductionSiteRepository{
		tpl: newTemplate(s, mapProductionSite),
		area: newTemplate(s, func(row dao.Row) (float64, error) {
			var a float64
			err := row.Scan(&a)
			return a, err
		}),
	}
}

var _ ProductionSiteRepository = (*SQLProductionSiteRepository)(nil)

func mapProductionSite(row dao.Row) (domain.ProductionSite, error) {
	var p domain.ProductionSite
	var producer, assistant nullableID
	err := row.Scan(&p.ID, &p.EstateID, &producer, &assistant, &p.ICACode, &p.Name)
	p.ProducerID = producer.ptr()
	p.AssistantID = assistant.ptr()
	return p, err
}

func (r *SQLProductionSiteRepository) Get(ctx context.Context, id int64) (*domain.ProductionSite, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+siteColumns+" FROM lugar_produccion WHERE id_lugar_produccion = ?", dao.Long(id))
}

func (r *SQLProductionSiteRepository) List(ctx context.Context) ([]domain.ProductionSite, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+siteColumns+" FROM lugar_produccion ORDER BY id_lugar_produccion")
}

func (r *SQLProductionSiteRepository) ListByEstate(ctx context.Context, estateID int64) ([]domain.ProductionSite, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+siteColumns+" FROM lugar_produccion WHERE id_predio = ? ORDER BY id_lugar_produccion", dao.Long(estateID))
}

func (r *SQLProductionSiteRepository) ListByAssistant(ctx context.Context, assistantID int64) ([]domain.ProductionSite, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+siteColumns+" FROM lugar_produccion WHERE id_asistente_tecnico = ? ORDER BY id_lugar_produccion", dao.Long(assistantID))
}

func (r *SQLProductionSiteRepository) ListByProducer(ctx context.Context, producerID int64) ([]domain.ProductionSite, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+siteColumns+" FROM lugar_produccion WHERE id_productor = ? ORDER BY id_lugar_produccion", dao.Long(producerID))
}

func (r *SQLProductionSiteRepository) Create(ctx context.Context, p *domain.ProductionSite) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO lugar_produccion (id_predio, id_productor, id_asistente_tecnico, codigo_ica, nombre) VALUES (?, ?, ?, ?, ?)",
		"id_lugar_produccion",
		dao.Long(p.EstateID), optionalID(p.ProducerID), optionalID(p.AssistantID), dao.String(p.ICACode), dao.String(p.Name))
}

func (r *SQLProductionSiteRepository) Update(ctx context.Context, p *domain.ProductionSite) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE lugar_produccion SET id_productor = ?, id_asistente_tecnico = ?, codigo_ica = ?, nombre = ? WHERE id_lugar_produccion = ?",
		optionalID(p.ProducerID), optionalID(p.AssistantID), dao.String(p.ICACode), dao.String(p.Name), dao.Long(p.ID))
	return expectOne(n, err, "lugar_produccion", p.ID)
}

func (r *SQLProductionSiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM lugar_produccion WHERE id_lugar_produccion = ?", dao.Long(id))
	return expectOne(n, err, "lugar_produccion", id)
}

func (r *SQLProductionSiteRepository) ContainingArea(ctx context.Context, siteID int64) (*float64, error) {
	return r.area.FetchOne(ctx,
		`SELECT p.area_hectareas FROM lugar_produccion lp
		 JOIN predio p ON p.id_predio = lp.id_predio
		 WHERE lp.id_lugar_produccion = ?`, dao.Long(siteID))
}

// --- lote ---

const plotColumns = "id_lote, id_lugar_produccion, numero_lote, area_hectareas, fecha_siembra, fecha_eliminacion"

type SQLPlotRepository struct {
	tpl *dao.Template[domain.Plot]
}

func NewSQLPlotRepository(s *Store) *SQLPlotRepository {
	return &SQLPlotRepository{tpl: newTemplate(s, mapPlot)}
}

var _ PlotRepository = (*SQLPlotRepository)(nil)

func mapPlot(row dao.Row) (domain.Plot, error) {
	var p domain.Plot
	var number sql.NullString
	var sown, removed dao.NullTime
	err := row.Scan(&p.ID, &p.ProductionSiteID, &number, &p.Area, &sown, &removed)
	p.Number = number.String
	p.SowingDate = sown.Ptr()
	p.RemovalDate = removed.Ptr()
	return p, err
}

func (r *SQLPlotRepository) Get(ctx context.Context, id int64) (*domain.Plot, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+plotColumns+" FROM lote WHERE id_lote = ?", dao.Long(id))
}

func (r *SQLPlotRepository) List(ctx context.Context) ([]domain.Plot, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+plotColumns+" FROM lote ORDER BY id_lote")
}

func (r *SQLPlotRepository) ListBySite(ctx context.Context, siteID int64) ([]domain.Plot, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+plotColumns+" FROM lote WHERE id_lugar_produccion = ? ORDER BY id_lote", dao.Long(siteID))
}

func (r *SQLPlotRepository) Create(ctx context.Context, p *domain.Plot) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		"INSERT INTO lote (id_lugar_produccion, numero_lote, area_hectareas, fecha_siembra, fecha_eliminacion) VALUES (?, ?, ?, ?, ?)",
		"id_lote",
		dao.Long(p.ProductionSiteID), dao.String(p.Number), dao.Double(p.Area), optionalDate(p.SowingDate), optionalDate(p.RemovalDate))
}

func (r *SQLPlotRepository) Update(ctx context.Context, p *domain.Plot) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE lote SET numero_lote = ?, area_hectareas = ?, fecha_siembra = ?, fecha_eliminacion = ? WHERE id_lote = ?",
		dao.String(p.Number), dao.Double(p.Area), optionalDate(p.SowingDate), optionalDate(p.RemovalDate), dao.Long(p.ID))
	return expectOne(n, err, "lote", p.ID)
}

func (r *SQLPlotRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM lote WHERE id_lote = ?", dao.Long(id))
	return expectOne(n, err, "lote", id)
}
