package counting

import (
	"math"
	"sort"

	"mahzen-backend/internal/models"
)

type VarianceLine struct {
	ProductID       uint    `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Unit            string  `json:"unit"`
	Expected        float64 `json:"expected"`
	Counted         float64 `json:"counted"`
	Variance        float64 `json:"variance"`
	VariancePercent float64 `json:"variance_percent"`
	IsHighVariance  bool    `json:"is_high_variance"`
}

type VarianceReport struct {
	Lines                  []VarianceLine `json:"lines"`
	TotalExpected          float64        `json:"total_expected"`
	TotalCounted           float64        `json:"total_counted"`
	OverallVariancePercent float64        `json:"overall_variance_percent"`
	HighVarianceCount      int            `json:"high_variance_count"`
}

// CalculateVariance: Beklenen stok baseline'ı ile sayım defterini
// karşılaştırır. Saf bir projeksiyondur: her çağrıda ExpectedStockLine +
// CountEntry'den yeniden hesaplanır, hiçbir yerde kalıcı tutulmaz
// (bayatlamış varyans diye bir şey olamaz). Her iki tarafta da görünen
// tüm ürünler rapora girer; tek tarafta olan için diğer taraf 0 sayılır.
func CalculateVariance(expected []models.ExpectedStockLine, counts []models.CountEntry, threshold float64) VarianceReport {
	type side struct {
		expected float64
		counted  float64
		name     string
		unit     string
		hasCount bool
	}

	byProduct := make(map[uint]*side)

	get := func(productID uint) *side {
		s, ok := byProduct[productID]
		if !ok {
			s = &side{}
			byProduct[productID] = s
		}
		return s
	}

	for _, line := range expected {
		s := get(line.ProductID)
		s.expected = line.ExpectedAmount
		if line.Product.ID != 0 {
			s.name = line.Product.Name
			s.unit = line.Product.Unit
		}
	}

	for _, entry := range counts {
		s := get(entry.ProductID)
		s.counted = TotalUnits(entry.UnitsClosed, entry.PartialVolume, entry.Product.BottleVolume)
		s.hasCount = true
		if entry.Product.ID != 0 {
			s.name = entry.Product.Name
			s.unit = entry.Product.Unit
		}
	}

	report := VarianceReport{Lines: make([]VarianceLine, 0, len(byProduct))}

	for productID, s := range byProduct {
		variance := s.counted - s.expected

		var percent float64
		switch {
		case s.expected > 0:
			percent = (variance / s.expected) * 100
		case s.counted > 0:
			percent = 100
		default:
			percent = 0
		}

		line := VarianceLine{
			ProductID:       productID,
			ProductName:     s.name,
			Unit:            s.unit,
			Expected:        s.expected,
			Counted:         s.counted,
			Variance:        variance,
			VariancePercent: percent,
			IsHighVariance:  math.Abs(percent) > threshold,
		}

		report.Lines = append(report.Lines, line)
		report.TotalExpected += s.expected
		report.TotalCounted += s.counted
		if line.IsHighVariance {
			report.HighVarianceCount++
		}
	}

	if report.TotalExpected > 0 {
		report.OverallVariancePercent = ((report.TotalCounted - report.TotalExpected) / report.TotalExpected) * 100
	}

	// Deterministik çıktı için ürün ID'sine göre sırala
	sort.Slice(report.Lines, func(i, j int) bool {
		return report.Lines[i].ProductID < report.Lines[j].ProductID
	})

	return report
}
