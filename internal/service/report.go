package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/frotalog/fleet-api/internal/repository"
)

// ConsumptionInterval describes fuel efficiency between two consecutive
// odometer readings of the same truck.
type ConsumptionInterval struct {
	Period     string  `json:"periodo"`
	KMDriven   float64 `json:"km_rodados"`
	Liters     float64 `json:"litros"`
	KMPerLiter float64 `json:"km_por_litro"`
	CostPerKM  float64 `json:"custo_por_km"`
}

// ConsumptionReport is the derived fuel-efficiency summary for one truck.
type ConsumptionReport struct {
	Message           string                `json:"message,omitempty"`
	Records           []ConsumptionInterval `json:"records,omitempty"`
	AverageKMPerLiter float64               `json:"average_km_per_liter,omitempty"`
}

// Consumption computes per-interval km/L and cost/km from a truck's fuel
// records. Records are sorted by odometer reading; each interval pairs a
// reading with its predecessor and attributes the later fill-up's liters
// and cost to the distance covered. Fewer than two usable readings yield
// only an explanatory message.
func Consumption(records []*repository.FuelRecord) ConsumptionReport {
	if len(records) < 2 {
		return ConsumptionReport{Message: "insufficient data to calculate consumption"}
	}

	sorted := make([]*repository.FuelRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].KM < sorted[j].KM })

	var intervals []ConsumptionInterval
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		kmDiff := curr.KM - prev.KM
		if kmDiff <= 0 || curr.Liters <= 0 {
			// identical odometer readings produce no interval
			continue
		}
		intervals = append(intervals, ConsumptionInterval{
			Period:     fmt.Sprintf("%gkm - %gkm", prev.KM, curr.KM),
			KMDriven:   kmDiff,
			Liters:     curr.Liters,
			KMPerLiter: round2(kmDiff / curr.Liters),
			CostPerKM:  round2(curr.TotalCost / kmDiff),
		})
	}
	if len(intervals) == 0 {
		return ConsumptionReport{Message: "insufficient data to calculate consumption"}
	}

	var sum float64
	for _, iv := range intervals {
		sum += iv.KMPerLiter
	}
	return ConsumptionReport{
		Records:           intervals,
		AverageKMPerLiter: round2(sum / float64(len(intervals))),
	}
}

// TypeStats aggregates maintenance spend for one maintenance type.
type TypeStats struct {
	Count      int     `json:"count"`
	TotalSpent float64 `json:"total_spent"`
}

// MaintenanceStats is the derived spend summary for one truck.
type MaintenanceStats struct {
	TotalSpent float64              `json:"total_spent"`
	Count      int                  `json:"maintenance_count"`
	ByType     map[string]TypeStats `json:"by_type"`
}

// MaintenanceSummary reduces a truck's maintenance records to total spend,
// record count and a per-type breakdown. No records yield zero stats.
func MaintenanceSummary(records []*repository.MaintenanceRecord) MaintenanceStats {
	stats := MaintenanceStats{ByType: map[string]TypeStats{}}
	for _, rec := range records {
		stats.TotalSpent += rec.TotalCost
		stats.Count++
		ts := stats.ByType[rec.Type]
		ts.Count++
		ts.TotalSpent = round2(ts.TotalSpent + rec.TotalCost)
		stats.ByType[rec.Type] = ts
	}
	stats.TotalSpent = round2(stats.TotalSpent)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
