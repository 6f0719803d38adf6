package alert

import (
	"context"
	"time"

	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service raises, lists and closes alerts
type Service struct {
	store     Store
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, logger *zap.Logger, notifiers ...Notifier) *Service {
	return &Service{
		store:     store,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

// Raise stores a new alert and notifies every notifier. Notifier
// failures are logged and do not fail the call.
func (s *Service) Raise(ctx context.Context, kind, description, severity string, entityID int64) (*Alert, error) {
	if err := validation.First(
		validation.NotEmpty("tipo", kind),
		validation.NotEmpty("nivelSeveridad", severity),
	); err != nil {
		return nil, err
	}

	a := &Alert{
		Type:        kind,
		Description: description,
		Severity:    severity,
		EntityID:    entityID,
		CreatedAt:   s.now(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Warn("ALERTA CREADA",
		zap.Int64("id", a.ID),
		zap.String("tipo", a.Type),
		zap.String("descripcion", a.Description),
		zap.String("nivel_severidad", a.Severity),
		zap.Int64("entidad_afectada", a.EntityID),
	)

	ev := Event{EventID: uuid.NewString(), RaisedAt: a.CreatedAt, Alert: *a}
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			s.logger.Error("Failed to notify alert",
				zap.String("notifier", n.Name()),
				zap.String("event_id", ev.EventID),
				zap.Int64("id", a.ID),
				zap.Error(err),
			)
		}
	}
	return a, nil
}

// Active all open alerts
func (s *Service) Active(ctx context.Context) ([]Alert, error) {
	return s.store.Active(ctx)
}

// Critical open alerts with severity CRITICA
func (s *Service) Critical(ctx context.Context) ([]Alert, error) {
	all, err := s.store.Active(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Alert, 0, len(all))
	for _, a := range all {
		if a.Severity == rules.SeverityCritical {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Close(ctx context.Context, id int64) error {
	if err := s.store.Close(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Alerta cerrada", zap.Int64("id", id))
	return nil
}

// CountByType number of open alerts of one type
func (s *Service) CountByType(ctx context.Context, kind string) (int, error) {
	all, err := s.store.Active(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range all {
		if a.Type == kind {
			n++
		}
	}
	return n, nil
}
