package domain

// Department departamento
type Department struct {
	ID       int64  `json:"id"`
	DaneCode string `json:"codigo_dane"`
	Name     string `json:"nombre"`
}

// Municipality municipio, belongs to a department
type Municipality struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"id_departamento"`
	DaneCode     string `json:"codigo_dane"`
	Name         string `json:"nombre"`
}

// Village vereda, belongs to a municipality
type Village struct {
	ID             int64  `json:"id"`
	MunicipalityID int64  `json:"id_municipio"`
	DaneCode       string `json:"codigo_dane"`
	Name           string `json:"nombre"`
}
