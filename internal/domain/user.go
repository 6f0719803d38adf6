package domain

// User roles as stored in usuario.rol
const (
	RoleAdmin     = "ADMIN"
	RoleProducer  = "PRODUCTOR"
	RoleOwner     = "PROPIETARIO"
	RoleAssistant = "ASISTENTE_TECNICO"
)

// User usuario
type User struct {
	ID                   int64  `json:"id"`
	IdentificationNumber string `json:"numero_identificacion"`
	Role                 string `json:"rol"`
	Name                 string `json:"nombre"`
	LastName             string `json:"apellidos"`
	Phone                string `json:"telefono_contacto"`
	Email                string `json:"correo_electronico"`
	Active               bool   `json:"activo"`
}

// Producer productor
type Producer struct {
	ID     int64 `json:"id"`
	User   User  `json:"usuario"`
	Active bool  `json:"activo"`
}

// Owner propietario
type Owner struct {
	ID     int64 `json:"id"`
	User   User  `json:"usuario"`
	Active bool  `json:"activo"`
}

// TechnicalAssistant asistente tecnico
type TechnicalAssistant struct {
	ID                     int64  `json:"id"`
	User                   User   `json:"usuario"`
	ProfessionalCardNumber string `json:"numero_tarjeta_profesional"`
	Specialty              string `json:"especialidad"`
	Active                 bool   `json:"activo"`
}
