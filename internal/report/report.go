// Package report builds the inspection and crop reports. Rows are read
// through the record-access template and written as CSV or XLSX files.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// Format output file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Report headers
var (
	InspectionHeader = []string{"ID", "Fecha", "Plaga", "Plantas Afectadas", "Plantas Muestreadas", "Indice %"}
	CropHeader       = []string{"ID", "Cultivo", "Variedad", "Area Total (ha)"}
)

const fileTimestamp = "2006-01-02_150405"

// InspectionRow one line of the inspection report
type InspectionRow struct {
	ID       int64
	Date     time.Time
	Pest     string
	Affected int
	Sampled  int
}

// Index recomputed from the plant counts
func (r InspectionRow) Index() float64 {
	return rules.Incidence(r.Affected, r.Sampled)
}

// CropRow one line of the crop report
type CropRow struct {
	ID        int64
	Name      string
	Variety   string
	TotalArea float64
}

// Table header plus typed cells; float64 cells print with two decimals
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

const (
	inspectionQuery = `SELECT i.id_inspeccion, i.fecha_inspeccion, COALESCE(p.nombre_comun, ''),
		i.plantas_afectadas, i.plantas_muestreadas
		FROM inspeccion_fitosanitaria i
		LEFT JOIN plaga p ON i.id_plaga = p.id_plaga
		WHERE i.id_lote = ?
		ORDER BY i.fecha_inspeccion DESC, i.id_inspeccion`

	cropQuery = `SELECT c.id_cultivo, c.nombre_comun, COALESCE(c.nombre_variedad, ''), SUM(l.area_hectareas)
		FROM cultivo c
		INNER JOIN lote l ON c.id_lote = l.id_lote
		GROUP BY c.id_cultivo, c.nombre_comun, c.nombre_variedad
		ORDER BY c.id_cultivo`
)

// Generator read-only consumer of the inspection and crop tables
type Generator struct {
	inspections *dao.Template[InspectionRow]
	crops       *dao.Template[CropRow]
	logger      *zap.Logger
	now         func() time.Time
}

// NewGenerator opts are the template options shared with the repositories
func NewGenerator(acq dao.Acquirer, logger *zap.Logger, opts ...dao.Option) *Generator {
	return &Generator{
		inspections: dao.New(acq, mapInspectionRow, opts...),
		crops:       dao.New(acq, mapCropRow, opts...),
		logger:      logger,
		now:         time.Now,
	}
}

func mapInspectionRow(row dao.Row) (InspectionRow, error) {
	var r InspectionRow
	var date dao.NullTime
	err := row.Scan(&r.ID, &date, &r.Pest, &r.Affected, &r.Sampled)
	r.Date = date.Time
	return r, err
}

func mapCropRow(row dao.Row) (CropRow, error) {
	var r CropRow
	var area sql.NullFloat64
	err := row.Scan(&r.ID, &r.Name, &r.Variety, &area)
	r.TotalArea = area.Float64
	return r, err
}

// Inspections rows for one plot, newest first
func (g *Generator) Inspections(ctx context.Context, plotID int64) ([]InspectionRow, error) {
	if err := validation.Positive("idLote", plotID)(); err != nil {
		return nil, err
	}
	return g.inspections.FetchMany(ctx, inspectionQuery, dao.Long(plotID))
}

// Crops every crop with the area of the plots it occupies
func (g *Generator) Crops(ctx context.Context) ([]CropRow, error) {
	return g.crops.FetchMany(ctx, cropQuery)
}

// InspectionTable renders inspection rows
func InspectionTable(rows []InspectionRow) Table {
	t := Table{Sheet: "Inspecciones", Header: InspectionHeader, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Date, r.Pest, r.Affected, r.Sampled, r.Index()})
	}
	return t
}

// CropTable renders crop rows
func CropTable(rows []CropRow) Table {
	t := Table{Sheet: "Cultivos", Header: CropHeader, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Name, r.Variety, r.TotalArea})
	}
	return t
}

// InspectionReport writes reporte_inspecciones_<timestamp>.<format> into dir
// and returns its path
func (g *Generator) InspectionReport(ctx context.Context, plotID int64, dir string, format Format) (string, error) {
	rows, err := g.Inspections(ctx, plotID)
	if err != nil {
		g.logger.Error("Error generando reporte", zap.String("reporte", "inspecciones"), zap.Int64("id_lote", plotID), zap.Error(err))
		return "", fmt.Errorf("failed to query inspections for plot %d: %w", plotID, err)
	}
	return g.write(dir, "reporte_inspecciones", format, InspectionTable(rows))
}

// CropReport writes reporte_cultivos_<timestamp>.<format> into dir
func (g *Generator) CropReport(ctx context.Context, dir string, format Format) (string, error) {
	rows, err := g.Crops(ctx)
	if err != nil {
		g.logger.Error("Error generando reporte", zap.String("reporte", "cultivos"), zap.Error(err))
		return "", fmt.Errorf("failed to query crops: %w", err)
	}
	return g.write(dir, "reporte_cultivos", format, CropTable(rows))
}

// FileName report file name for the given instant
func FileName(prefix string, format Format, at time.Time) string {
	return prefix + "_" + at.Format(fileTimestamp) + "." + string(format)
}

func (g *Generator) write(dir, prefix string, format Format, t Table) (string, error) {
	if format == "" {
		format = FormatCSV
	}
	if err := validation.InSet("formato", string(format), string(FormatCSV), string(FormatXLSX))(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(prefix, format, g.now()))

	var err error
	switch format {
	case FormatXLSX:
		var data []byte
		if data, err = XLSX(t); err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
	default:
		err = writeCSVFile(path, t)
	}
	if err != nil {
		g.logger.Error("Error generando reporte", zap.String("path", path), zap.Error(err))
		return "", err
	}
	g.logger.Info("Reporte generado", zap.String("path", path), zap.Int("filas", len(t.Rows)))
	return path, nil
}
