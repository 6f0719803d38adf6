package service

import (
	"context"
	"fmt"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// Alert types raised by the services
const (
	AlertTypePest       = "PLAGA"
	AlertTypeInspection = "INSPECCION"
	AlertTypeResult     = "RESULTADO_TECNICO"
)

// InspectionService inspecciones fitosanitarias
type InspectionService interface {
	Get(ctx context.Context, id int64) (*domain.Inspection, error)
	List(ctx context.Context) ([]domain.Inspection, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Inspection, error)
	ListByPlot(ctx context.Context, plotID int64) ([]domain.Inspection, error)
	ListByAssistant(ctx context.Context, assistantID int64) ([]domain.Inspection, error)
	// Create computes the infestation index from the plant counts
	Create(ctx context.Context, i *domain.Inspection) (int64, error)
	Update(ctx context.Context, i *domain.Inspection) error
	ChangeStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	InfestationIndex(affected, sampled int) (float64, error)
	EvaluateSeverity(index float64) (string, error)
}

type inspectionService struct {
	inspections repository.InspectionRepository
	plots       repository.PlotRepository
	pests       repository.PestRepository
	assistants  repository.TechnicalAssistantRepository
	alerts      AlertRaiser
	b           boundary
	logger      *zap.Logger
}

// NewInspectionService alerts may be nil
func NewInspectionService(
	inspections repository.InspectionRepository,
	plots repository.PlotRepository,
	pests repository.PestRepository,
	assistants repository.TechnicalAssistantRepository,
	alerts AlertRaiser,
	logger *zap.Logger,
) InspectionService {
	return &inspectionService{
		inspections: inspections,
		plots:       plots,
		pests:       pests,
		assistants:  assistants,
		alerts:      alerts,
		b:           newBoundary(logger, "inspeccion", "inspecciones"),
		logger:      logger,
	}
}

func (s *inspectionService) Get(ctx context.Context, id int64) (*domain.Inspection, error) {
	return getByID(ctx, s.b, id, s.inspections.Get)
}

func (s *inspectionService) List(ctx context.Context) ([]domain.Inspection, error) {
	return list(ctx, s.b, s.inspections.List)
}

func (s *inspectionService) ListByStatus(ctx context.Context, status string) ([]domain.Inspection, error) {
	if err := validation.First(
		validation.NotEmpty("estado", status),
		func() error { return rules.CheckStatus(status) },
	); err != nil {
		return nil, s.b.searchFailed(err)
	}
	out, err := s.inspections.ListByStatus(ctx, status)
	if err != nil {
		return nil, s.b.wrap(err, CodeSearch, "Error buscando inspecciones")
	}
	return out, nil
}

func (s *inspectionService) ListByPlot(ctx context.Context, plotID int64) ([]domain.Inspection, error) {
	return listBy(ctx, s.b, "idLote", plotID, s.inspections.ListByPlot)
}

func (s *inspectionService) ListByAssistant(ctx context.Context, assistantID int64) ([]domain.Inspection, error) {
	return listBy(ctx, s.b, "idAsistenteTecnico", assistantID, s.inspections.ListByAssistant)
}

func (s *inspectionService) Create(ctx context.Context, i *domain.Inspection) (int64, error) {
	if err := validation.NotNil("inspeccion", i)(); err != nil {
		return 0, s.b.createFailed(err)
	}
	if i.Status == "" {
		i.Status = rules.StatusPending
	}
	pest, err := s.validate(ctx, i)
	if err != nil {
		return 0, s.b.createFailed(err)
	}

	id, err := s.inspections.Create(ctx, i)
	if err != nil {
		return 0, s.b.createFailed(err)
	}
	i.ID = id
	s.raiseAlerts(ctx, i, pest)
	return id, nil
}

func (s *inspectionService) Update(ctx context.Context, i *domain.Inspection) error {
	if err := validation.NotNil("inspeccion", i)(); err != nil {
		return s.b.updateFailed(err)
	}
	if err := validation.Positive("id", i.ID)(); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := s.inspections.Get(ctx, i.ID)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if current == nil {
		return s.b.updateFailed(fmt.Errorf("inspeccion %d: %w", i.ID, repository.ErrNotFound))
	}
	if rules.IsTerminal(current.Status) {
		return s.b.updateFailed(rules.Violate(rules.RuleStatusTransition, "Inspeccion",
			fmt.Sprintf("La inspeccion %d esta %s y no admite cambios", i.ID, current.Status)))
	}
	if i.PlotID, err = keepParent("idLote", i.PlotID, current.PlotID); err != nil {
		return s.b.updateFailed(err)
	}
	i.Status = current.Status
	if _, err := s.validate(ctx, i); err != nil {
		return s.b.updateFailed(err)
	}
	return s.b.updateFailed(s.inspections.Update(ctx, i))
}

func (s *inspectionService) ChangeStatus(ctx context.Context, id int64, status string) error {
	if err := validation.First(
		validation.Positive("id", id),
		validation.NotEmpty("estado", status),
		func() error { return rules.CheckStatus(status) },
	); err != nil {
		return s.b.updateFailed(err)
	}
	current, err := s.inspections.Get(ctx, id)
	if err != nil {
		return s.b.updateFailed(err)
	}
	if current == nil {
		return s.b.updateFailed(fmt.Errorf("inspeccion %d: %w", id, repository.ErrNotFound))
	}
	if err := rules.CheckTransition(current.Status, status); err != nil {
		return s.b.updateFailed(err)
	}
	if err := s.inspections.ChangeStatus(ctx, id, status); err != nil {
		return s.b.updateFailed(err)
	}
	s.logger.Info("Inspection status changed",
		zap.Int64("id_inspeccion", id), zap.String("from", current.Status), zap.String("to", status))
	return nil
}

func (s *inspectionService) Delete(ctx context.Context, id int64) error {
	return remove(ctx, s.b, id, s.inspections.Delete)
}

func (s *inspectionService) InfestationIndex(affected, sampled int) (float64, error) {
	index, err := rules.InfestationIndex(affected, sampled)
	if err != nil {
		return 0, s.b.wrap(err, CodeValidation, "")
	}
	return index, nil
}

func (s *inspectionService) EvaluateSeverity(index float64) (string, error) {
	severity, err := rules.InspectionSeverity(index)
	if err != nil {
		return "", s.b.wrap(err, CodeValidation, "")
	}
	return severity, nil
}

// validate checks references and recomputes i.Index; returns the pest when set
func (s *inspectionService) validate(ctx context.Context, i *domain.Inspection) (*domain.Pest, error) {
	if err := validation.First(
		validation.Positive("idLote", i.PlotID),
		func() error {
			if i.Date.IsZero() {
				return validation.Fail("fechaInspeccion", "Cannot be null")
			}
			return nil
		},
		validation.MaxLength("tipoInspeccion", i.Type, 50),
		func() error { return rules.CheckStatus(i.Status) },
	); err != nil {
		return nil, err
	}

	index, err := rules.InfestationIndex(i.AffectedPlants, i.SampledPlants)
	if err != nil {
		return nil, err
	}
	i.Index = index

	if _, err := exists(ctx, "idLote", i.PlotID, s.plots.Get); err != nil {
		return nil, err
	}
	var pest *domain.Pest
	if i.PestID != nil {
		if pest, err = exists(ctx, "idPlaga", *i.PestID, s.pests.Get); err != nil {
			return nil, err
		}
	}
	if i.AssistantID != nil {
		if _, err := exists(ctx, "idAsistenteTecnico", *i.AssistantID, s.assistants.Get); err != nil {
			return nil, err
		}
	}
	return pest, nil
}

// raiseAlerts alert-worthy pests found on the plot win over a critical index
func (s *inspectionService) raiseAlerts(ctx context.Context, i *domain.Inspection, pest *domain.Pest) {
	if s.alerts == nil {
		return
	}
	var kind, description, severity string
	if pest != nil && i.AffectedPlants > 0 {
		if ok, err := rules.RequiresAlert(pest.Severity); err == nil && ok {
			kind, severity = AlertTypePest, pest.Severity
			description = fmt.Sprintf("Plaga %s detectada en el lote %d (indice %.2f%%)", pest.CommonName, i.PlotID, i.Index)
		}
	}
	if kind == "" {
		if level, err := rules.InspectionSeverity(i.Index); err == nil && level == rules.SeverityCritical {
			kind, severity = AlertTypeInspection, rules.SeverityCritical
			description = fmt.Sprintf("Indice de infestacion %.2f%% en el lote %d", i.Index, i.PlotID)
		}
	}
	if kind == "" {
		return
	}
	if _, err := s.alerts.Raise(ctx, kind, description, severity, i.ID); err != nil {
		s.logger.Error("Failed to raise inspection alert", zap.Int64("id_inspeccion", i.ID), zap.Error(err))
	}
}
