package domain

import "time"

// Estate predio: land parcel registered to an owner inside a village
type Estate struct {
	ID              int64   `json:"id"`
	OwnerID         int64   `json:"id_propietario"`
	VillageID       int64   `json:"id_vereda"`
	CadastralNumber string  `json:"numero_predial"`
	Address         string  `json:"direccion"`
	Area            float64 `json:"area_hectareas"`
}

// ProductionSite lugar de produccion registered with the ICA
type ProductionSite struct {
	ID          int64  `json:"id"`
	EstateID    int64  `json:"id_predio"`
	ProducerID  *int64 `json:"id_productor,omitempty"`
	AssistantID *int64 `json:"id_asistente_tecnico,omitempty"`
	ICACode     string `json:"codigo_ica"`
	Name        string `json:"nombre"`
}

// Plot lote inside a production site
type Plot struct {
	ID               int64      `json:"id"`
	ProductionSiteID int64      `json:"id_lugar_produccion"`
	Number           string     `json:"numero_lote"`
	Area             float64    `json:"area_hectareas"`
	SowingDate       *time.Time `json:"fecha_siembra,omitempty"`
	RemovalDate      *time.Time `json:"fecha_eliminacion,omitempty"`
}
