// Package export renders spectrum snapshots for external consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/spectrum.report/internal/spectro"
)

// WriteCSV writes the spectrum as a two-column table: a header row of
// Wavelength, Intensity followed by one row per sample in acquisition
// order.
func WriteCSV(w io.Writer, samples []spectro.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Wavelength", "Intensity"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range samples {
		row := []string{strconv.Itoa(s.Wavelength), strconv.Itoa(s.Intensity)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
