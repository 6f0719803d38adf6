package repository

import (
	"context"
	"database/sql"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/domain"
)

// InspectionRepository inspeccion_fitosanitaria persistence
type InspectionRepository interface {
	Get(ctx context.Context, id int64) (*domain.Inspection, error)
	List(ctx context.Context) ([]domain.Inspection, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Inspection, error)
	ListByPlot(ctx context.Context, plotID int64) ([]domain.Inspection, error)
	ListByAssistant(ctx context.Context, assistantID int64) ([]domain.Inspection, error)
	Create(ctx context.Context, i *domain.Inspection) (int64, error)
	Update(ctx context.Context, i *domain.Inspection) error
	ChangeStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// TechnicalResultRepository resultado_tecnico persistence
type TechnicalResultRepository interface {
	Get(ctx context.Context, id int64) (*domain.TechnicalResult, error)
	List(ctx context.Context) ([]domain.TechnicalResult, error)
	ListByInspection(ctx context.Context, inspectionID int64) ([]domain.TechnicalResult, error)
	Create(ctx context.Context, r *domain.TechnicalResult) (int64, error)
	Update(ctx context.Context, r *domain.TechnicalResult) error
	Delete(ctx context.Context, id int64) error
}

// --- inspeccion_fitosanitaria ---

const inspectionColumns = `id_inspeccion, id_lote, id_plaga, id_asistente_tecnico, fecha_inspeccion, tipo_inspeccion, estado,
	plantas_afectadas, plantas_muestreadas, indice_infestacion, observaciones, recomendaciones`

type SQLInspectionRepository struct {
	tpl *dao.Template[domain.Inspection]
}

func NewSQLInspectionRepository(s *Store) *SQLInspectionRepository {
	return &SQLInspectionRepository{tpl: newTemplate(s, mapInspection)}
}

var _ InspectionRepository = (*SQLInspectionRepository)(nil)

func mapInspection(row dao.Row) (domain.Inspection, error) {
	var i domain.Inspection
	var pest, assistant nullableID
	var date dao.NullTime
	var kind, observations, recommendations sql.NullString
	err := row.Scan(&i.ID, &i.PlotID, &pest, &assistant, &date, &kind, &i.Status,
		&i.AffectedPlants, &i.SampledPlants, &i.Index, &observations, &recommendations)
	i.PestID = pest.ptr()
	i.AssistantID = assistant.ptr()
	i.Date = date.Time
	i.Type = kind.String
	i.Observations = observations.String
	i.Recommendations = recommendations.String
	return i, err
}

func (r *SQLInspectionRepository) Get(ctx context.Context, id int64) (*domain.Inspection, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+inspectionColumns+" FROM inspeccion_fitosanitaria WHERE id_inspeccion = ?", dao.Long(id))
}

func (r *SQLInspectionRepository) List(ctx context.Context) ([]domain.Inspection, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+inspectionColumns+" FROM inspeccion_fitosanitaria ORDER BY fecha_inspeccion DESC, id_inspeccion")
}

func (r *SQLInspectionRepository) ListByStatus(ctx context.Context, status string) ([]domain.Inspection, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+inspectionColumns+" FROM inspeccion_fitosanitaria WHERE estado = ? ORDER BY fecha_inspeccion DESC, id_inspeccion",
		dao.String(status))
}

func (r *SQLInspectionRepository) ListByPlot(ctx context.Context, plotID int64) ([]domain.Inspection, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+inspectionColumns+" FROM inspeccion_fitosanitaria WHERE id_lote = ? ORDER BY fecha_inspeccion DESC, id_inspeccion",
		dao.Long(plotID))
}

func (r *SQLInspectionRepository) ListByAssistant(ctx context.Context, assistantID int64) ([]domain.Inspection, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+inspectionColumns+" FROM inspeccion_fitosanitaria WHERE id_asistente_tecnico = ? ORDER BY fecha_inspeccion DESC, id_inspeccion",
		dao.Long(assistantID))
}

func (r *SQLInspectionRepository) Create(ctx context.Context, i *domain.Inspection) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		`INSERT INTO inspeccion_fitosanitaria (id_lote, id_plaga, id_asistente_tecnico, fecha_inspeccion, tipo_inspeccion, estado,
		 plantas_afectadas, plantas_muestreadas, indice_infestacion, observaciones, recomendaciones)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"id_inspeccion",
		dao.Long(i.PlotID), optionalID(i.PestID), optionalID(i.AssistantID), dao.Date(i.Date), dao.String(i.Type),
		dao.String(i.Status), dao.Int(i.AffectedPlants), dao.Int(i.SampledPlants), dao.Double(i.Index),
		dao.String(i.Observations), dao.String(i.Recommendations))
}

// Update rewrites the inspection data; status changes go through ChangeStatus
func (r *SQLInspectionRepository) Update(ctx context.Context, i *domain.Inspection) error {
	n, err := r.tpl.Execute(ctx,
		`UPDATE inspeccion_fitosanitaria SET id_plaga = ?, id_asistente_tecnico = ?, fecha_inspeccion = ?, tipo_inspeccion = ?,
		 plantas_afectadas = ?, plantas_muestreadas = ?, indice_infestacion = ?, observaciones = ?, recomendaciones = ?
		 WHERE id_inspeccion = ?`,
		optionalID(i.PestID), optionalID(i.AssistantID), dao.Date(i.Date), dao.String(i.Type),
		dao.Int(i.AffectedPlants), dao.Int(i.SampledPlants), dao.Double(i.Index),
		dao.String(i.Observations), dao.String(i.Recommendations), dao.Long(i.ID))
	return expectOne(n, err, "inspeccion", i.ID)
}

func (r *SQLInspectionRepository) ChangeStatus(ctx context.Context, id int64, status string) error {
	n, err := r.tpl.Execute(ctx, "UPDATE inspeccion_fitosanitaria SET estado = ? WHERE id_inspeccion = ?", dao.String(status), dao.Long(id))
	return expectOne(n, err, "inspeccion", id)
}

func (r *SQLInspectionRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM inspeccion_fitosanitaria WHERE id_inspeccion = ?", dao.Long(id))
	return expectOne(n, err, "inspeccion", id)
}

// --- resultado_tecnico ---

const resultColumns = "id_resultado, id_inspeccion, total_plantas_evaluadas, plantas_afectadas, observaciones, recomendaciones, fecha_registro"

type SQLTechnicalResultRepository struct {
	tpl *dao.Template[domain.TechnicalResult]
}

func NewSQLTechnicalResultRepository(s *Store) *SQLTechnicalResultRepository {
	return &SQLTechnicalResultRepository{tpl: newTemplate(s, mapTechnicalResult)}
}

var _ TechnicalResultRepository = (*SQLTechnicalResultRepository)(nil)

func mapTechnicalResult(row dao.Row) (domain.TechnicalResult, error) {
	var r domain.TechnicalResult
	var observations, recommendation sql.NullString
	var recorded dao.NullTime
	err := row.Scan(&r.ID, &r.InspectionID, &r.TotalEvaluated, &r.Affected, &observations, &recommendation, &recorded)
	r.Observations = observations.String
	r.Recommendation = recommendation.String
	r.RecordedAt = recorded.Time
	return r, err
}

func (r *SQLTechnicalResultRepository) Get(ctx context.Context, id int64) (*domain.TechnicalResult, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+resultColumns+" FROM resultado_tecnico WHERE id_resultado = ?", dao.Long(id))
}

func (r *SQLTechnicalResultRepository) List(ctx context.Context) ([]domain.TechnicalResult, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+resultColumns+" FROM resultado_tecnico ORDER BY id_resultado")
}

func (r *SQLTechnicalResultRepository) ListByInspection(ctx context.Context, inspectionID int64) ([]domain.TechnicalResult, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+resultColumns+" FROM resultado_tecnico WHERE id_inspeccion = ? ORDER BY id_resultado", dao.Long(inspectionID))
}

func (r *SQLTechnicalResultRepository) Create(ctx context.Context, res *domain.TechnicalResult) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		`INSERT INTO resultado_tecnico (id_inspeccion, total_plantas_evaluadas, plantas_afectadas, observaciones, recomendaciones, fecha_registro)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"id_resultado",
		dao.Long(res.InspectionID), dao.Int(res.TotalEvaluated), dao.Int(res.Affected),
		dao.String(res.Observations), dao.String(res.Recommendation), dao.Timestamp(res.RecordedAt))
}

func (r *SQLTechnicalResultRepository) Update(ctx context.Context, res *domain.TechnicalResult) error {
	n, err := r.tpl.Execute(ctx,
		`UPDATE resultado_tecnico SET total_plantas_evaluadas = ?, plantas_afectadas = ?, observaciones = ?, recomendaciones = ?
		 WHERE id_resultado = ?`,
		dao.Int(res.TotalEvaluated), dao.Int(res.Affected), dao.String(res.Observations), dao.String(res.Recommendation), dao.Long(res.ID))
	return expectOne(n, err, "resultado_tecnico", res.ID)
}

func (r *SQLTechnicalResultRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "DELETE FROM resultado_tecnico WHERE id_resultado = ?", dao.Long(id))
	return expectOne(n, err, "resultado_tecnico", id)
}
