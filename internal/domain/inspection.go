package domain

import (
	"time"

	"fitosanitario/internal/rules"
)

// Inspection inspeccion fitosanitaria of a plot
type Inspection struct {
	ID              int64     `json:"id"`
	PlotID          int64     `json:"id_lote"`
	PestID          *int64    `json:"id_plaga,omitempty"`
	AssistantID     *int64    `json:"id_asistente_tecnico,omitempty"`
	Date            time.Time `json:"fecha_inspeccion"`
	Type            string    `json:"tipo_inspeccion"`
	Status          string    `json:"estado"`
	AffectedPlants  int       `json:"plantas_afectadas"`
	SampledPlants   int       `json:"plantas_muestreadas"`
	Index           float64   `json:"indice_infestacion"`
	Observations    string    `json:"observaciones"`
	Recommendations string    `json:"recomendaciones"`
}

// TechnicalResult resultado tecnico recorded for an inspection
type TechnicalResult struct {
	ID             int64     `json:"id"`
	InspectionID   int64     `json:"id_inspeccion"`
	TotalEvaluated int       `json:"total_plantas_evaluadas"`
	Affected       int       `json:"plantas_afectadas"`
	Observations   string    `json:"observaciones"`
	Recommendation string    `json:"recomendaciones"`
	RecordedAt     time.Time `json:"fecha_registro"`
}

// Incidence percentage of affected plants
func (r TechnicalResult) Incidence() float64 {
	return rules.Incidence(r.Affected, r.TotalEvaluated)
}

// AlertLevel BAJO, MEDIO, ALTO or CRÍTICO derived from the incidence
func (r TechnicalResult) AlertLevel() string {
	return rules.AlertLevelFor(r.Incidence())
}
