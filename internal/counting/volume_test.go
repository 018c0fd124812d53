package counting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilePartialVolumeRoundTrip(t *testing.T) {
	// 2 kapalı şişe + 125ml ve 250ml açık, 0.75L şişede
	measurements := []Measurement{
		{Litres: f64(0.125)},
		{Litres: f64(0.25)},
	}

	partial, err := ReconcilePartialVolume(measurements, nil, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.375, partial, 1e-9)

	assert.InDelta(t, 2.5, TotalUnits(2, partial, 0.75), 1e-9)
	assert.InDelta(t, 1.875, TotalVolume(2, partial, 0.75), 1e-9)
}

func TestReconcilePartialVolumePresets(t *testing.T) {
	presets := map[uint]float64{1: 0.125, 2: 0.175}

	partial, err := ReconcilePartialVolume([]Measurement{
		{PresetID: u(1)},
		{PresetID: u(2)},
		{Litres: f64(0.1)},
	}, presets, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, partial, 1e-9)
}

func TestReconcilePartialVolumeLitresWinsOverPreset(t *testing.T) {
	presets := map[uint]float64{1: 0.125}

	partial, err := ReconcilePartialVolume([]Measurement{
		{PresetID: u(1), Litres: f64(0.3)},
	}, presets, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, partial, 1e-9)
}

func TestReconcilePartialVolumeClampsToBottle(t *testing.T) {
	// Şişe hacminden büyük ölçüm şişe hacmine kırpılır, hata değil
	partial, err := ReconcilePartialVolume([]Measurement{
		{Litres: f64(1.2)},
	}, nil, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, partial, 1e-9)

	// Sınır değeri aynen geçer
	partial, err = ReconcilePartialVolume([]Measurement{
		{Litres: f64(0.75)},
	}, nil, 0.75)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, partial, 1e-9)
}

func TestReconcilePartialVolumeRejectsInvalid(t *testing.T) {
	_, err := ReconcilePartialVolume([]Measurement{{Litres: f64(-0.1)}}, nil, 0.75)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ReconcilePartialVolume([]Measurement{{}}, nil, 0.75)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ReconcilePartialVolume([]Measurement{{PresetID: u(99)}}, map[uint]float64{}, 0.75)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ReconcilePartialVolume(nil, nil, -0.75)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPartialFractionZeroBottle(t *testing.T) {
	assert.Equal(t, 0.0, PartialFraction(0.3, 0))
	assert.Equal(t, 2.0, TotalUnits(2, 0.3, 0))
}

func u(v uint) *uint { return &v }
