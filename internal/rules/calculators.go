package rules

import (
	"fmt"
	"math"
	"strings"

	"fitosanitario/internal/validation"
)

// Rule names
const (
	RuleInfestationIndex = "IndiceInfestacion"
	RulePlotArea         = "AreaLote"
	RuleStatusTransition = "TransicionInspeccion"
)

// Severity labels, inspection scale
const (
	SeverityLow      = "BAJA"
	SeverityMedium   = "MEDIA"
	SeverityHigh     = "ALTA"
	SeverityCritical = "CRITICA"
	// SeverityQuarantine pest-only severity
	SeverityQuarantine = "CUARENTENARIA"
)

// Alert levels, technical result scale
const (
	AlertLow      = "BAJO"
	AlertMedium   = "MEDIO"
	AlertHigh     = "ALTO"
	AlertCritical = "CRÍTICO"
)

// PestSeverities allowed pest severity values
var PestSeverities = []string{SeverityHigh, SeverityCritical, SeverityQuarantine}

// InfestationIndex affected / sampled * 100.
// sampled <= 0 or affected < 0 is a validation error; affected > sampled
// is a rule violation.
func InfestationIndex(affected, sampled int) (float64, error) {
	if sampled <= 0 {
		return 0, validation.Fail("plantasMuestreadas", "Debe ser mayor a cero")
	}
	if affected < 0 {
		return 0, validation.Fail("plantasAfectadas", "No puede ser negativo")
	}
	if affected > sampled {
		return 0, Violate(RuleInfestationIndex, "", "Plantas afectadas no puede exceder plantas muestreadas")
	}
	return float64(affected) / float64(sampled) * 100, nil
}

// InspectionSeverity classifies an index in [0,100]:
// <10 BAJA, <30 MEDIA, <60 ALTA, otherwise CRITICA
func InspectionSeverity(index float64) (string, error) {
	if err := validation.Range("indice", index, 0, 100)(); err != nil {
		return "", err
	}
	switch {
	case index < 10:
		return SeverityLow, nil
	case index < 30:
		return SeverityMedium, nil
	case index < 60:
		return SeverityHigh, nil
	default:
		return SeverityCritical, nil
	}
}

// AlertLevelFor classifies an incidence percentage, top-down with
// inclusive lower bounds: >=80 CRÍTICO, >=50 ALTO, >=20 MEDIO, else BAJO
func AlertLevelFor(incidence float64) string {
	switch {
	case incidence >= 80:
		return AlertCritical
	case incidence >= 50:
		return AlertHigh
	case incidence >= 20:
		return AlertMedium
	default:
		return AlertLow
	}
}

// Incidence affected / evaluated * 100; zero evaluated plants yields 0
func Incidence(affected, evaluated int) float64 {
	if evaluated <= 0 {
		return 0
	}
	return float64(affected) / float64(evaluated) * 100
}

// CheckTechnicalResult 0 <= affected <= evaluated
func CheckTechnicalResult(affected, evaluated int) error {
	if err := validation.First(
		validation.Positive("totalPlantasEvaluadas", evaluated),
		func() error {
			if affected < 0 {
				return validation.Fail("plantasAfectadas", "No puede ser negativo")
			}
			return nil
		},
	); err != nil {
		return err
	}
	if affected > evaluated {
		return Violate(RuleInfestationIndex, "ResultadoTecnico", "Plantas afectadas no puede exceder plantas evaluadas")
	}
	return nil
}

// CheckPlotArea a plot may not exceed the area of the site that contains it.
// Equal areas pass.
func CheckPlotArea(plotArea *float64, siteArea float64) error {
	if err := validation.NotNil("area", plotArea)(); err != nil {
		return err
	}
	if err := validation.Positive("area", *plotArea)(); err != nil {
		return err
	}
	if *plotArea > siteArea {
		return Violate(RulePlotArea, "Lote",
			fmt.Sprintf("El area del lote (%s ha) excede el area del predio (%s ha)", formatArea(*plotArea), formatArea(siteArea)))
	}
	return nil
}

// CheckCropArea cultivated area must be positive and fit in the plot
func CheckCropArea(cropArea, plotArea float64) error {
	if math.IsNaN(cropArea) || cropArea <= 0 {
		return validation.Fail("areaCultivada", "Debe ser mayor a cero")
	}
	if cropArea > plotArea {
		return validation.Fail("areaCultivada", fmt.Sprintf("No puede exceder el area del lote (%s ha)", formatArea(plotArea)))
	}
	return nil
}

// RequiresAlert reports whether a pest severity calls for an alert.
// Only CRITICA and CUARENTENARIA do; the value must be a known pest severity.
func RequiresAlert(severity string) (bool, error) {
	if err := validation.First(
		validation.NotEmpty("nivelSeveridad", severity),
		validation.InSet("nivelSeveridad", severity, PestSeverities...),
	); err != nil {
		return false, err
	}
	return severity == SeverityCritical || severity == SeverityQuarantine, nil
}

// Recommendation guidance text for a severity and crop type.
// Unknown severities get the generic technical evaluation text.
func Recommendation(severity, cropType string) (string, error) {
	if err := validation.First(
		validation.NotEmpty("severidad", severity),
		validation.NotEmpty("tipoCultivo", cropType),
	); err != nil {
		return "", err
	}

	var b strings.Builder
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case SeverityLow:
		b.WriteString("Monitoreo preventivo. ")
		b.WriteString("Revision semanal del cultivo de " + cropType + ". ")
	case SeverityMedium:
		b.WriteString("Control moderado. ")
		b.WriteString("Aplicar tratamiento preventivo en " + cropType + ". ")
	case SeverityHigh:
		b.WriteString("ATENCION: Control inmediato. ")
		b.WriteString("Aplicar tratamiento curativo urgente. ")
	case SeverityCritical:
		b.WriteString("ALERTA MAXIMA: Aislamiento de area afectada. ")
		b.WriteString("Posible erradicacion del cultivo. ")
		b.WriteString("Notificar al ICA inmediatamente. ")
	default:
		b.WriteString("Evaluacion tecnica requerida. ")
	}
	return b.String(), nil
}

// formatArea prints whole hectares without decimals
func formatArea(a float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", a), "0"), ".")
}
