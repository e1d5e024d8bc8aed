package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// SpectrumPoints is the uniform resampling length used before the FFT.
const SpectrumPoints = 256

// Resample interpolates series linearly onto n evenly spaced times.
func Resample(time, series []float64, n int) (grid, values []float64, err error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(time, series); err != nil {
		return nil, nil, err
	}
	grid = make([]float64, n)
	floats.Span(grid, time[0], time[len(time)-1])
	values = make([]float64, n)
	for i, t := range grid {
		values[i] = pl.Predict(t)
	}
	return grid, values, nil
}

// PowerSpectrum returns |X_k| for k = 0..n/2 of a real series.
func PowerSpectrum(series []float64) []float64 {
	fft := fourier.NewFFT(len(series))
	coeff := fft.Coefficients(nil, series)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod resamples series onto a uniform grid, removes its mean and
// returns the period of the strongest non-DC frequency. A flat or too short
// series yields 0.
func DominantPeriod(time, series []float64) float64 {
	if len(time) < 4 || len(time) != len(series) {
		return 0
	}
	grid, values, err := Resample(time, series, SpectrumPoints)
	if err != nil {
		return 0
	}
	mean := floats.Sum(values) / float64(len(values))
	floats.AddConst(-mean, values)
	if floats.Norm(values, math.Inf(1)) < 1e-12 {
		return 0
	}

	ps := PowerSpectrum(values)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	dt := grid[1] - grid[0]
	return float64(len(values)) * dt / float64(best)
}
