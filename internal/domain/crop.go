package domain

// Crop statuses
const (
	CropActive   = "ACTIVO"
	CropInactive = "INACTIVO"
)

// Crop cultivo planted on a plot
type Crop struct {
	ID             int64   `json:"id"`
	PlotID         int64   `json:"id_lote"`
	VarietyName    string  `json:"nombre_variedad"`
	CommonName     string  `json:"nombre_comun"`
	ScientificName string  `json:"nombre_cientifico"`
	Description    string  `json:"descripcion"`
	CultivatedArea float64 `json:"area_cultivada"`
	Status         string  `json:"estado"`
}

// Pest plaga
type Pest struct {
	ID             int64  `json:"id"`
	CommonName     string `json:"nombre_comun"`
	ScientificName string `json:"nombre_cientifico"`
	Description    string `json:"descripcion"`
	// Severity ALTA, CRITICA or CUARENTENARIA
	Severity string `json:"nivel_peligrosidad"`
}
