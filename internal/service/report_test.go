package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frotalog/fleet-api/internal/repository"
)

func fuelRec(km, liters, cost float64) *repository.FuelRecord {
	return &repository.FuelRecord{KM: km, Liters: liters, TotalCost: cost}
}

func TestConsumption(t *testing.T) {
	report := Consumption([]*repository.FuelRecord{
		fuelRec(100, 0, 0),
		fuelRec(200, 25, 150),
		fuelRec(400, 40, 260),
	})

	require.Empty(t, report.Message)
	require.Len(t, report.Records, 2)

	first := report.Records[0]
	assert.Equal(t, "100km - 200km", first.Period)
	assert.Equal(t, float64(100), first.KMDriven)
	assert.Equal(t, float64(25), first.Liters)
	assert.Equal(t, 4.0, first.KMPerLiter)
	assert.Equal(t, 1.5, first.CostPerKM)

	second := report.Records[1]
	assert.Equal(t, "200km - 400km", second.Period)
	assert.Equal(t, float64(200), second.KMDriven)
	assert.Equal(t, 5.0, second.KMPerLiter)
	assert.Equal(t, 1.3, second.CostPerKM)

	assert.Equal(t, 4.5, report.AverageKMPerLiter)
}

func TestConsumptionSortsByOdometer(t *testing.T) {
	// Same data, unsorted input.
	report := Consumption([]*repository.FuelRecord{
		fuelRec(400, 40, 260),
		fuelRec(100, 0, 0),
		fuelRec(200, 25, 150),
	})
	require.Len(t, report.Records, 2)
	assert.Equal(t, "100km - 200km", report.Records[0].Period)
	assert.Equal(t, "200km - 400km", report.Records[1].Period)
}

func TestConsumptionInsufficientData(t *testing.T) {
	assert.Equal(t, "insufficient data to calculate consumption", Consumption(nil).Message)
	assert.Equal(t, "insufficient data to calculate consumption",
		Consumption([]*repository.FuelRecord{fuelRec(100, 50, 300)}).Message)

	// Two records at the same odometer reading yield no usable interval.
	report := Consumption([]*repository.FuelRecord{
		fuelRec(100, 50, 300),
		fuelRec(100, 30, 180),
	})
	assert.Equal(t, "insufficient data to calculate consumption", report.Message)
	assert.Empty(t, report.Records)
}

func TestConsumptionSkipsZeroLiterFills(t *testing.T) {
	report := Consumption([]*repository.FuelRecord{
		fuelRec(100, 50, 300),
		fuelRec(200, 0, 0),
		fuelRec(300, 20, 120),
	})
	require.Len(t, report.Records, 1)
	assert.Equal(t, "200km - 300km", report.Records[0].Period)
	assert.Equal(t, 5.0, report.Records[0].KMPerLiter)
}

func maintRec(typ string, cost float64) *repository.MaintenanceRecord {
	return &repository.MaintenanceRecord{Type: typ, TotalCost: cost}
}

func TestMaintenanceSummary(t *testing.T) {
	stats := MaintenanceSummary([]*repository.MaintenanceRecord{
		maintRec("Preventiva", 500),
		maintRec("Pneus", 1200.50),
		maintRec("Preventiva", 300.25),
	})

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2000.75, stats.TotalSpent)
	require.Len(t, stats.ByType, 2)
	assert.Equal(t, TypeStats{Count: 2, TotalSpent: 800.25}, stats.ByType["Preventiva"])
	assert.Equal(t, TypeStats{Count: 1, TotalSpent: 1200.50}, stats.ByType["Pneus"])
}

func TestMaintenanceSummaryEmpty(t *testing.T) {
	stats := MaintenanceSummary(nil)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.TotalSpent)
	assert.Empty(t, stats.ByType)
}
