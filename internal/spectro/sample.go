// Package spectro implements the spectrometer acquisition core: decoding of
// the instrument's line protocol, the scan lifecycle state machine, the
// accumulated spectrum, and the summary metrics derived from it.
package spectro

// Sample is a single (wavelength, intensity) reading from the instrument.
// Samples are immutable and kept in acquisition order; the instrument is
// trusted to sweep wavelengths in a sensible order and nothing here
// reorders or deduplicates them.
type Sample struct {
	Wavelength int `json:"wavelength"`
	Intensity  int `json:"intensity"`
}

// Metrics summarises the accumulated spectrum. All fields are zero when
// the spectrum is empty. A Metrics value always corresponds to a complete
// recomputation over one spectrum snapshot, never a partial update.
type Metrics struct {
	// PeakValue is the wavelength of the first sample attaining the
	// maximum intensity.
	PeakValue float64 `json:"peak_value"`

	// Centroid is the intensity-weighted mean wavelength.
	Centroid float64 `json:"centroid"`

	// MaxIntensity is the highest intensity observed.
	MaxIntensity float64 `json:"max_intensity"`

	// FWHM is the wavelength span between the first and last samples whose
	// intensity exceeds half the maximum.
	FWHM float64 `json:"fwhm"`

	// SNR is the maximum intensity over the population standard deviation
	// of the low-intensity noise region.
	SNR float64 `json:"snr"`

	// AUC is the trapezoidal integral of intensity over wavelength in
	// acquisition order.
	AUC float64 `json:"auc"`
}
