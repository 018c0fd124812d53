package counting

import "fmt"

// Measurement: Açık şişe ölçümü. Ya hazır kadeh (preset_id) ya da
// doğrudan litre değeri gelir; ikisi birden gelirse litre kazanır.
type Measurement struct {
	PresetID *uint    `json:"preset_id"`
	Litres   *float64 `json:"litres"`
}

// ReconcilePartialVolume: Heterojen açık şişe ölçümlerini kanonik litre
// toplamına indirger. Her ölçüm [0, bottleVolume] aralığına kırpılır —
// bir açık şişede şişe hacminden fazla içki olamaz. Tüm hacim aritmetiği
// litre üzerinden yapılır; kesir-mi-litre-mi gösterimi sunum katmanının işi.
func ReconcilePartialVolume(measurements []Measurement, presets map[uint]float64, bottleVolume float64) (float64, error) {
	if bottleVolume < 0 {
		return 0, fmt.Errorf("%w: şişe hacmi negatif olamaz", ErrValidation)
	}

	total := 0.0
	for i, m := range measurements {
		var litres float64
		switch {
		case m.Litres != nil:
			litres = *m.Litres
		case m.PresetID != nil:
			v, ok := presets[*m.PresetID]
			if !ok {
				return 0, fmt.Errorf("%w: kadeh preset'i bulunamadı (id: %d)", ErrNotFound, *m.PresetID)
			}
			litres = v
		default:
			return 0, fmt.Errorf("%w: ölçüm %d için preset_id veya litres gerekli", ErrValidation, i+1)
		}

		if litres < 0 {
			return 0, fmt.Errorf("%w: ölçüm negatif olamaz (%v)", ErrValidation, litres)
		}
		if litres > bottleVolume {
			litres = bottleVolume
		}
		total += litres
	}

	return total, nil
}

// PartialFraction: Açık hacmin şişe cinsinden karşılığı
func PartialFraction(partialVolume, bottleVolume float64) float64 {
	if bottleVolume <= 0 {
		return 0
	}
	return partialVolume / bottleVolume
}

// TotalUnits: Kapalı şişe + açık şişelerin kesirli karşılığı
func TotalUnits(unitsClosed int, partialVolume, bottleVolume float64) float64 {
	return float64(unitsClosed) + PartialFraction(partialVolume, bottleVolume)
}

// TotalVolume: Toplam içki hacmi (litre)
func TotalVolume(unitsClosed int, partialVolume, bottleVolume float64) float64 {
	return float64(unitsClosed)*bottleVolume + partialVolume
}
