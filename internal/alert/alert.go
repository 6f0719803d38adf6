// Package alert keeps phytosanitary alerts raised by the services and
// forwards them to the configured notifiers.
package alert

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound the alert is not active
var ErrNotFound = errors.New("alert not found")

// Alert an active phytosanitary alert
type Alert struct {
	ID          int64     `json:"id"`
	Type        string    `json:"tipo"`
	Description string    `json:"descripcion"`
	Severity    string    `json:"nivel_severidad"`
	EntityID    int64     `json:"entidad_afectada"`
	CreatedAt   time.Time `json:"fecha_creacion"`
}

// Store persists active alerts. Each store owns its id sequence.
type Store interface {
	// Create assigns the next id to a and stores it
	Create(ctx context.Context, a *Alert) error
	// Active returns active alerts ordered by id
	Active(ctx context.Context) ([]Alert, error)
	// Close removes an active alert; ErrNotFound when it is not active
	Close(ctx context.Context, id int64) error
}
