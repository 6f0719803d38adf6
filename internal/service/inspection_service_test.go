package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInspectionService_Calculators(t *testing.T) {
	svc := NewInspectionService(nil, nil, nil, nil, nil, zap.NewNop())

	index, err := svc.InfestationIndex(20, 100)
	require.NoError(t, err)
	assert.Equal(t, 20.0, index)

	index, err = svc.InfestationIndex(0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, index)

	_, err = svc.InfestationIndex(50, 40)
	assert.Equal(t, CodeBusinessRule, CodeOf(err))
	_, ok := rules.AsViolation(err)
	assert.True(t, ok)

	_, err = svc.InfestationIndex(5, 0)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'plantasMuestreadas': Debe ser mayor a cero")

	for in, want := range map[float64]string{9.9: "BAJA", 10.0: "MEDIA", 59.99: "ALTA", 60.0: "CRITICA"} {
		got, err := svc.EvaluateSeverity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "index %v", in)
	}
	_, err = svc.EvaluateSeverity(100.5)
	assert.Equal(t, CodeValidation, CodeOf(err))
	level, err := svc.EvaluateSeverity(math.NaN())
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Empty(t, level)
}

func TestInspectionService_CreateComputesIndex(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	insp := &domain.Inspection{PlotID: plotID, Date: time.Now(), AffectedPlants: 12, SampledPlants: 48, Index: 99}
	id, err := e.inspections.Create(ctx, insp)
	require.NoError(t, err)
	assert.Equal(t, rules.StatusPending, insp.Status)

	got, err := e.inspections.Get(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got.Index, 1e-9)
	assert.Empty(t, e.raiser.all())

	pending, err := e.inspections.ListByStatus(ctx, rules.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestInspectionService_CreateRejects(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	_, err := e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, Date: time.Now(), AffectedPlants: 60, SampledPlants: 50})
	assert.Equal(t, CodeBusinessRule, CodeOf(err))

	_, err = e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, SampledPlants: 50})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'fechaInspeccion': Cannot be null")

	_, err = e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID + 50, Date: time.Now(), SampledPlants: 50})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'idLote': No existe")

	_, err = e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, Date: time.Now(), SampledPlants: 5, Status: "ABIERTA"})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = e.inspections.Create(ctx, nil)
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'inspeccion': Cannot be null")
}

func TestInspectionService_Alerts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	broca, err := e.pests.Create(ctx, &domain.Pest{CommonName: "Broca", Severity: "CUARENTENARIA"})
	require.NoError(t, err)
	roya, err := e.pests.Create(ctx, &domain.Pest{CommonName: "Roya", Severity: "ALTA"})
	require.NoError(t, err)

	// alert-worthy pest
	id1, err := e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, PestID: &broca, Date: time.Now(), AffectedPlants: 2, SampledPlants: 100})
	require.NoError(t, err)
	// ALTA pest with a critical index
	id2, err := e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, PestID: &roya, Date: time.Now(), AffectedPlants: 70, SampledPlants: 100})
	require.NoError(t, err)
	// ALTA pest, low index
	_, err = e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, PestID: &roya, Date: time.Now(), AffectedPlants: 1, SampledPlants: 100})
	require.NoError(t, err)

	got := e.raiser.all()
	require.Len(t, got, 2)
	assert.Equal(t, raised{AlertTypePest, fmt.Sprintf("Plaga Broca detectada en el lote %d (indice 2.00%%)", plotID), "CUARENTENARIA", id1}, got[0])
	assert.Equal(t, AlertTypeInspection, got[1].kind)
	assert.Equal(t, "CRITICA", got[1].severity)
	assert.Equal(t, id2, got[1].entityID)
}

func TestInspectionService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	id, err := e.inspections.Create(ctx, &domain.Inspection{PlotID: plotID, Date: time.Now(), SampledPlants: 10})
	require.NoError(t, err)

	err = e.inspections.ChangeStatus(ctx, id, rules.StatusCompleted)
	assert.Equal(t, CodeBusinessRule, CodeOf(err))
	assert.Contains(t, err.Error(), "No se permite pasar de PENDIENTE a COMPLETADA")

	require.NoError(t, e.inspections.ChangeStatus(ctx, id, rules.StatusInProgress))
	require.NoError(t, e.inspections.ChangeStatus(ctx, id, rules.StatusCompleted))

	err = e.inspections.ChangeStatus(ctx, id, rules.StatusCancelled)
	assert.Equal(t, CodeBusinessRule, CodeOf(err))
	assert.Contains(t, err.Error(), "(permitidos: ninguno)")

	err = e.inspections.Update(ctx, &domain.Inspection{ID: id, PlotID: plotID, Date: time.Now(), SampledPlants: 10})
	assert.Equal(t, CodeBusinessRule, CodeOf(err))

	err = e.inspections.ChangeStatus(ctx, id+10, rules.StatusCancelled)
	assert.Equal(t, CodeUpdate, CodeOf(err))

	err = e.inspections.ChangeStatus(ctx, id, "CERRADA")
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestInspectionService_UpdateKeepsStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	insp := &domain.Inspection{PlotID: plotID, Date: time.Now(), AffectedPlants: 1, SampledPlants: 10}
	id, err := e.inspections.Create(ctx, insp)
	require.NoError(t, err)
	require.NoError(t, e.inspections.ChangeStatus(ctx, id, rules.StatusInProgress))

	insp.Status = rules.StatusCompleted
	insp.AffectedPlants = 5
	require.NoError(t, e.inspections.Update(ctx, insp))

	got, err := e.inspections.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rules.StatusInProgress, got.Status)
	assert.InDelta(t, 50.0, got.Index, 1e-9)
}

func TestInspectionService_UpdateStaysOnStoredPlot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)
	plot, err := e.plots.Get(ctx, plotID)
	require.NoError(t, err)
	otherPlotID, err := e.plots.Create(ctx, &domain.Plot{ProductionSiteID: plot.ProductionSiteID, Number: "L2", Area: 2})
	require.NoError(t, err)

	insp := &domain.Inspection{PlotID: plotID, Date: time.Now(), AffectedPlants: 1, SampledPlants: 10}
	id, err := e.inspections.Create(ctx, insp)
	require.NoError(t, err)

	insp.PlotID = otherPlotID
	err = e.inspections.Update(ctx, insp)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Contains(t, err.Error(), "Campo 'idLote': No se puede cambiar en una actualizacion")

	require.NoError(t, e.inspections.Update(ctx, &domain.Inspection{ID: id, Date: time.Now(), AffectedPlants: 2, SampledPlants: 10}))
	got, err := e.inspections.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, plotID, got.PlotID)
	assert.Equal(t, 2, got.AffectedPlants)
}
