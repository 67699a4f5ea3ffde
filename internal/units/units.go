// Package units provides shared constants and display formatting for
// spectral quantities. The core keeps metrics as raw numbers; everything
// user-facing formats through here.
package units

import (
	"fmt"

	"github.com/banshee-data/spectrum.report/internal/spectro"
)

// Nanometre is the unit every wavelength-valued quantity is reported in.
const Nanometre = "nm"

// FormatWavelength renders a wavelength-valued quantity for display.
func FormatWavelength(v float64) string {
	return fmt.Sprintf("%.2f %s", v, Nanometre)
}

// MetricsText returns the display string for each metric, keyed by metric
// name. Wavelength-valued metrics carry the nm suffix; intensity-derived
// ones are dimensionless.
func MetricsText(m spectro.Metrics) map[string]string {
	return map[string]string{
		"peak_value":    fmt.Sprintf("PV is %.2f %s", m.PeakValue, Nanometre),
		"centroid":      fmt.Sprintf("C is %.2f %s", m.Centroid, Nanometre),
		"max_intensity": fmt.Sprintf("MaxI is %.0f", m.MaxIntensity),
		"fwhm":          fmt.Sprintf("FWHM is %.2f %s", m.FWHM, Nanometre),
		"snr":           fmt.Sprintf("SNR is %.1f", m.SNR),
		"auc":           fmt.Sprintf("AUC is %.0f", m.AUC),
	}
}
