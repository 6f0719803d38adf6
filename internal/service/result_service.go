package service

import (
	"context"
	"fmt"
	"time"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// TechnicalResultService resultados tecnicos of inspections
type TechnicalResultService interface {
	Get(ctx context.Context, id int64) (*domain.TechnicalResult, error)
	List(ctx context.Context) ([]domain.TechnicalResult, error)
	ListByInspection(ctx context.Context, inspectionID int64) ([]domain.TechnicalResult, error)
	// Record stores a result and raises an alert when its level is CRÍTICO
	Record(ctx context.Context, r *domain.TechnicalResult) (int64, error)
	Update(ctx context.Context, r *domain.TechnicalResult) error
	Delete(ctx context.Context, id int64) error
	Recommendation(severity, cropType string) (string, error)
}

type technicalResultService struct {
	results     repository.TechnicalResultRepository
	inspections repository.InspectionRepository
	alerts      AlertRaiser
	b           boundary
	logger      *zap.Logger
	now         func() time.Time
}

// NewTechnicalResultService alerts may be nil
func NewTechnicalResultService(
	results repository.TechnicalResultRepository,
	inspections repository.InspectionRepository,
	alerts AlertRaiser,
	logger *zap.Logger,
) TechnicalResultService {
	return &technicalResultService{
		results:     results,
		inspections: inspections,
		alerts:      alerts,
		b:           newBoundary(logger, "resultado", "resultados"),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *technicalResultService) Get(ctx context.Context, id int64) (*domain.TechnicalResult, error) {
	return getByID(ctx, s.b, id, s.results.Get)
}

func (s *technicalResultService) List(ctx context.Context) ([]domain.TechnicalResult, error) {
	return list(ctx, s.b, s.results.List)
}

func (s *technicalResultService) ListByInspection(ctx context.Context, inspectionID int64) ([]domain.TechnicalResult, error) {
	return listBy(ctx, s.b, "idInspeccion", inspectionID, s.results.ListByInspection)
}

func (s *technicalResultService) Record(ctx context.Context, r *domain.TechnicalResult) (int64, error) {
	if err := s.validate(ctx, r); err != nil {
		return 0, s.b.createFailed(err)
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now()
	}
	id, err := s.results.Create(ctx, r)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	r.ID = id

	if level := r.AlertLevel(); level == rules.AlertCritical && s.alerts != nil {
		description := fmt.Sprintf("Incidencia de %.2f%% en la inspeccion %d (nivel %s)", r.Incidence(), r.InspectionID, level)
		if _, err := s.alerts.Raise(ctx, AlertTypeResult, description, rules.SeverityCritical, r.InspectionID); err != nil {
			s.logger.Error("Failed to raise technical result alert", zap.Int64("id_resultado", id), zap.Error(err))
		}
	}
	return id, nil
}

func (s *technicalResultService) Update(ctx context.Context, r *domain.TechnicalResult) error {
	if err := s.validate(ctx, r); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.Positive("id", r.ID)(); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.results.Update(ctx, r))
}

func (s *technicalResultService) Delete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.results.Delete)
}

func (s *technicalResultService) Recommendation(severity, cropType string) (string, error) {
	text, err := rules.Recommendation(severity, cropType)
	if err != nil {
		return "", s.b.wrap(err, CodeValidation, "")
	}
	return text, nil
}

func (s *technicalResultService) validate(ctx context.Context, r *domain.TechnicalResult) error {
	if err := validation.NotNil("resultado", r)(); err != nil {
		return err
	}
	if err := validation.First(
		validation.Positive("idInspeccion", r.InspectionID),
		func() error { return rules.CheckTechnicalResult(r.Affected, r.TotalEvaluated) },
	); err != nil {
		return err
	}
	_, err := exists(ctx, "idInspeccion", r.InspectionID, s.inspections.Get)
	return err
}
