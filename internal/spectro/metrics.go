package spectro

import "gonum.org/v1/gonum/stat"

// noiseFraction classifies a sample as noise when its intensity falls
// below this fraction of the maximum.
const noiseFraction = 0.1

// ComputeMetrics derives the summary metrics from the spectrum in
// acquisition order. It is a pure function of its input and recomputes
// everything from scratch on each call; the O(n) per-sample cost is fine
// at serial instrument data rates.
//
// FWHM and AUC assume the instrument sweeps wavelengths monotonically.
// Out-of-order input is scanned and integrated as received rather than
// sorted; the instrument contract does not define what reordering would
// mean.
func ComputeMetrics(samples []Sample) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	wavelengths := make([]float64, len(samples))
	intensities := make([]float64, len(samples))
	for i, s := range samples {
		wavelengths[i] = float64(s.Wavelength)
		intensities[i] = float64(s.Intensity)
	}

	maxIntensity := intensities[0]
	peakIdx := 0
	var total, weighted float64
	for i, v := range intensities {
		// strict > keeps the first index attaining the maximum
		if v > maxIntensity {
			maxIntensity = v
			peakIdx = i
		}
		total += v
		weighted += wavelengths[i] * v
	}

	m := Metrics{
		PeakValue:    wavelengths[peakIdx],
		MaxIntensity: maxIntensity,
	}
	if total > 0 {
		m.Centroid = weighted / total
	}
	m.FWHM = fwhm(wavelengths, intensities, maxIntensity)
	m.AUC = trapezoid(wavelengths, intensities)
	m.SNR = snr(intensities, maxIntensity)
	return m
}

// fwhm returns the wavelength span between the first and last samples whose
// intensity strictly exceeds half the maximum, or 0 when fewer than two
// samples do.
func fwhm(wavelengths, intensities []float64, maxIntensity float64) float64 {
	half := maxIntensity / 2
	left, right := -1, -1
	for i, v := range intensities {
		if v > half {
			if left < 0 {
				left = i
			}
			right = i
		}
	}
	if left < 0 || right <= left {
		return 0
	}
	return wavelengths[right] - wavelengths[left]
}

// trapezoid integrates intensity over wavelength in acquisition order.
// gonum's integrate.Trapezoidal is deliberately not used here: it requires
// a strictly increasing abscissa, and this integral must follow the
// spectrum as received.
func trapezoid(wavelengths, intensities []float64) float64 {
	if len(wavelengths) < 2 {
		return 0
	}
	var area float64
	for i := 1; i < len(wavelengths); i++ {
		area += 0.5 * (intensities[i] + intensities[i-1]) * (wavelengths[i] - wavelengths[i-1])
	}
	return area
}

// snr returns the maximum intensity over the population standard deviation
// of the noise region, or 0 when fewer than two samples qualify as noise
// or the noise is perfectly flat.
func snr(intensities []float64, maxIntensity float64) float64 {
	threshold := maxIntensity * noiseFraction
	var noise []float64
	for _, v := range intensities {
		if v < threshold {
			noise = append(noise, v)
		}
	}
	if len(noise) < 2 {
		return 0
	}
	std := stat.PopStdDev(noise, nil)
	if std <= 0 {
		return 0
	}
	return maxIntensity / std
}
