package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is a one-sided power spectrum. Freq is in Hz.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

// PowerSpectrum returns |X_k|^2/N for k = 0..N/2 of a trace sampled every
// dt milliseconds. The mean is removed first so the DC bin reflects drift
// only.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := len(data)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	s := Spectrum{
		Freq:  make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		s.Freq[k] = float64(k) * 1000 / (float64(n) * dt)
		a := cmplx.Abs(coeffs[k])
		s.Power[k] = a * a / float64(n)
	}
	return s
}

// Dominant returns the frequency with the most power, ignoring DC.
func (s Spectrum) Dominant() (freq, power float64) {
	power = math.Inf(-1)
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freq[k], s.Power[k]
		}
	}
	if math.IsInf(power, -1) {
		return 0, 0
	}
	return freq, power
}
