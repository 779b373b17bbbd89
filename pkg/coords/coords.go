// Package coords converts between plane-local pixels, canvas pixels and
// sexagesimal text.
package coords

import (
	"fmt"
	"math"
)

// Canvas maps a plane-local coordinate to the full canvas:
// round(min + c*factor). Apply it per axis with that axis's own min.
func Canvas(min, c, factor float64) int {
	return int(math.Round(min + c*factor))
}

// ToDMS renders degrees as "DdMmSs", e.g. -1.5 -> "-1d30m0s". Seconds are
// rounded and carried into minutes and degrees.
func ToDMS(v float64) string {
	abs := math.Abs(v)
	deg := math.Floor(abs)
	minutes := math.Floor((abs - deg) * 60)
	sec := math.Round(((abs-deg)*60 - minutes) * 60)

	if sec == 60 {
		minutes++
		sec = 0
	}
	if minutes == 60 {
		deg++
		minutes = 0
	}

	sign := ""
	if v < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%dd%dm%ds", sign, int64(deg), int64(minutes), int64(sec))
}

// Location composes the read-only location string shown for marks and
// labels: "<coord_sys>: <lon>, <lat>".
func Location(coordSys string, lat, lon float64) string {
	return fmt.Sprintf("%s: %s, %s", coordSys, ToDMS(lon), ToDMS(lat))
}

// FlipY converts a screen y (origin top-left) to the backend's image y
// (origin bottom-left) for a canvas of the given height.
func FlipY(height, y float64) float64 {
	return height - y
}
