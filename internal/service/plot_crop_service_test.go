package service

import (
	"context"
	"math"
	"testing"
	"time"

	"fitosanitario/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlotService_ValidateArea(t *testing.T) {
	svc := NewPlotService(nil, nil, zap.NewNop())

	err := svc.ValidateArea(&domain.Plot{Area: 15}, 10)
	assert.Equal(t, CodeBusinessRule, CodeOf(err))
	assert.Contains(t, err.Error(), "El area del lote (15 ha) excede el area del predio (10 ha)")

	assert.NoError(t, svc.ValidateArea(&domain.Plot{Area: 10}, 10))
	assert.NoError(t, svc.ValidateArea(&domain.Plot{Area: 2.5}, 10))

	err = svc.ValidateArea(&domain.Plot{Area: 0}, 10)
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'area': Must be positive")

	err = svc.ValidateArea(nil, 10)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestPlotService_Create(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	siteID := e.seedSite(t)

	_, err := e.plots.Create(ctx, &domain.Plot{ProductionSiteID: siteID, Number: "L9", Area: 10.5})
	assert.Equal(t, CodeBusinessRule, CodeOf(err))

	_, err = e.plots.Create(ctx, &domain.Plot{ProductionSiteID: siteID, Number: "L9", Area: math.NaN()})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'area': Must be a finite number")

	_, err = e.plots.Create(ctx, &domain.Plot{ProductionSiteID: siteID + 7, Number: "L9", Area: 1})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'idLugarProduccion': No existe")

	sowed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	removed := sowed.AddDate(0, 0, -1)
	_, err = e.plots.Create(ctx, &domain.Plot{ProductionSiteID: siteID, Number: "L9", Area: 1, SowingDate: &sowed, RemovalDate: &removed})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'fechaEliminacion': No puede ser anterior a la fecha de siembra")

	id, err := e.plots.Create(ctx, &domain.Plot{ProductionSiteID: siteID, Number: "L9", Area: 10, SowingDate: &sowed})
	require.NoError(t, err)

	bySite, err := e.plots.ListBySite(ctx, siteID)
	require.NoError(t, err)
	require.Len(t, bySite, 1)
	assert.Equal(t, id, bySite[0].ID)

	require.NoError(t, e.plots.Delete(ctx, id))
	err = e.plots.Delete(ctx, id)
	assert.Equal(t, CodeDelete, CodeOf(err))

	_, err = e.plots.Get(ctx, 0)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestCropService_ValidateArea(t *testing.T) {
	svc := NewCropService(nil, nil, zap.NewNop())

	assert.NoError(t, svc.ValidateArea(4, 4))
	assert.EqualError(t, svc.ValidateArea(0, 4), "[VALIDATION_ERROR] Campo 'areaCultivada': Debe ser mayor a cero")
	assert.EqualError(t, svc.ValidateArea(4.5, 4), "[VALIDATION_ERROR] Campo 'areaCultivada': No puede exceder el area del lote (4 ha)")
}

func TestCropService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)

	cafe := &domain.Crop{PlotID: plotID, CommonName: "Café", VarietyName: "Castillo", CultivatedArea: 3}
	cafeID, err := e.crops.Create(ctx, cafe)
	require.NoError(t, err)
	assert.Equal(t, domain.CropActive, cafe.Status)

	platano, err := e.crops.Create(ctx, &domain.Crop{PlotID: plotID, CommonName: "Plátano", CultivatedArea: 1})
	require.NoError(t, err)

	_, err = e.crops.Create(ctx, &domain.Crop{PlotID: plotID, CommonName: "Maíz", CultivatedArea: 5})
	assert.Equal(t, CodeValidation, CodeOf(err))

	require.NoError(t, e.crops.ChangeStatus(ctx, platano, domain.CropInactive))
	err = e.crops.ChangeStatus(ctx, platano, "COSECHADO")
	assert.Equal(t, CodeValidation, CodeOf(err))

	active, err := e.crops.List(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, cafeID, active[0].ID)

	onPlot, err := e.crops.ListByPlot(ctx, plotID)
	require.NoError(t, err)
	assert.Len(t, onPlot, 2)
}

func TestPlotService_UpdateStaysUnderStoredSite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)
	plot, err := e.plots.Get(ctx, plotID)
	require.NoError(t, err)
	largeSiteID := e.seedLargeSite(t, plot.ProductionSiteID)

	err = e.plots.Update(ctx, &domain.Plot{ID: plotID, ProductionSiteID: largeSiteID, Number: "L1", Area: 50})
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Contains(t, err.Error(), "Campo 'idLugarProduccion': No se puede cambiar en una actualizacion")

	// omitted site: the stored one (10 ha estate) still caps the area
	err = e.plots.Update(ctx, &domain.Plot{ID: plotID, Number: "L1", Area: 50})
	assert.Equal(t, CodeBusinessRule, CodeOf(err))

	require.NoError(t, e.plots.Update(ctx, &domain.Plot{ID: plotID, Number: "L1-B", Area: 9}))
	got, err := e.plots.Get(ctx, plotID)
	require.NoError(t, err)
	assert.Equal(t, plot.ProductionSiteID, got.ProductionSiteID)
	assert.Equal(t, 9.0, got.Area)
	assert.Equal(t, "L1-B", got.Number)

	err = e.plots.Update(ctx, &domain.Plot{ID: plotID + 100, Number: "L1", Area: 1})
	assert.Equal(t, CodeUpdate, CodeOf(err))
	assert.Equal(t, CodeValidation, CodeOf(e.plots.Update(ctx, nil)))
}

func TestCropService_UpdateStaysOnStoredPlot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	plotID := e.seedPlot(t)
	plot, err := e.plots.Get(ctx, plotID)
	require.NoError(t, err)
	bigPlotID, err := e.plots.Create(ctx, &domain.Plot{ProductionSiteID: e.seedLargeSite(t, plot.ProductionSiteID), Number: "L2", Area: 80})
	require.NoError(t, err)

	cropID, err := e.crops.Create(ctx, &domain.Crop{PlotID: plotID, CommonName: "Café", CultivatedArea: 3})
	require.NoError(t, err)

	err = e.crops.Update(ctx, &domain.Crop{ID: cropID, PlotID: bigPlotID, CommonName: "Café", CultivatedArea: 60})
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Contains(t, err.Error(), "Campo 'idLote': No se puede cambiar en una actualizacion")

	err = e.crops.Update(ctx, &domain.Crop{ID: cropID, CommonName: "Café", CultivatedArea: 60})
	assert.EqualError(t, err, "[VALIDATION_ERROR] Campo 'areaCultivada': No puede exceder el area del lote (4 ha)")

	require.NoError(t, e.crops.Update(ctx, &domain.Crop{ID: cropID, PlotID: plotID, CommonName: "Café", VarietyName: "Cenicafé 1", CultivatedArea: 4}))
	got, err := e.crops.Get(ctx, cropID)
	require.NoError(t, err)
	assert.Equal(t, plotID, got.PlotID)
	assert.Equal(t, 4.0, got.CultivatedArea)
	assert.Equal(t, domain.CropActive, got.Status)
}
