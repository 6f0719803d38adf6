package rules

import (
	"fmt"
	"strings"

	"fitosanitario/internal/validation"
)

// Inspection statuses
const (
	StatusPending    = "PENDIENTE"
	StatusInProgress = "EN_PROCESO"
	StatusCompleted  = "COMPLETADA"
	StatusCancelled  = "CANCELADA"
)

// InspectionStatuses every valid status
var InspectionStatuses = []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

var transitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

// IsTerminal completed and cancelled inspections accept no transitions
func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return ok && len(next) == 0
}

// CheckStatus validates a status value
func CheckStatus(status string) error {
	return validation.InSet("estado", status, InspectionStatuses...)()
}

// CheckTransition PENDIENTE -> EN_PROCESO -> COMPLETADA, with CANCELADA
// reachable from any non-terminal status
func CheckTransition(from, to string) error {
	if err := validation.First(
		func() error { return CheckStatus(from) },
		func() error { return CheckStatus(to) },
	); err != nil {
		return err
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	allowed := "ninguno"
	if next := transitions[from]; len(next) > 0 {
		allowed = strings.Join(next, ", ")
	}
	return Violate(RuleStatusTransition, "Inspeccion",
		fmt.Sprintf("No se permite pasar de %s a %s (permitidos: %s)", from, to, allowed))
}
