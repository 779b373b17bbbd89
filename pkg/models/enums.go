package models

import "strings"

// CoordSys is a sky coordinate system identifier. The backend sometimes
// sends display labels ("Equ J2000") instead of keys, so unknown values are
// kept as-is.
type CoordSys string

const (
	CoordEquJ2000 CoordSys = "eqj2000"
	CoordEquB1950 CoordSys = "eqb1950"
	CoordGalactic CoordSys = "gal"
	CoordEclJ2000 CoordSys = "ecj2000"
	CoordEclB1950 CoordSys = "ecb1950"
)

var coordSysLabels = map[CoordSys]string{
	CoordEquJ2000: "Equ J2000",
	CoordEquB1950: "Equ B1950",
	CoordGalactic: "Galactic",
	CoordEclJ2000: "Ecl J2000",
	CoordEclB1950: "Ecl B1950",
}

// CoordSystems lists the selectable coordinate systems in dropdown order.
func CoordSystems() []CoordSys {
	return []CoordSys{CoordEquJ2000, CoordEquB1950, CoordGalactic, CoordEclJ2000, CoordEclB1950}
}

// Label returns the display label, or the raw value if it is not a known key.
func (c CoordSys) Label() string {
	if l, ok := coordSysLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the known keys.
func (c CoordSys) Valid() bool {
	_, ok := coordSysLabels[c]
	return ok
}

// SymbolType is the marker shape used by catalog and mark overlays.
type SymbolType string

const (
	SymbolTriangle SymbolType = "triangle"
	SymbolBox      SymbolType = "box"
	SymbolSquare   SymbolType = "square"
	SymbolDiamond  SymbolType = "diamond"
	SymbolPentagon SymbolType = "pentagon"
	SymbolHexagon  SymbolType = "hexagon"
	SymbolSeptagon SymbolType = "septagon"
	SymbolOctagon  SymbolType = "octagon"
	SymbolCircle   SymbolType = "circle"
)

// SymbolTypes lists the selectable shapes in dropdown order.
func SymbolTypes() []SymbolType {
	return []SymbolType{
		SymbolTriangle, SymbolBox, SymbolSquare, SymbolDiamond, SymbolPentagon,
		SymbolHexagon, SymbolSeptagon, SymbolOctagon, SymbolCircle,
	}
}

func (s SymbolType) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func (s SymbolType) Valid() bool {
	for _, known := range SymbolTypes() {
		if s == known {
			return true
		}
	}
	return false
}

// DataType selects how a catalog column scales the symbol size.
type DataType string

const (
	DataMag    DataType = "mag"
	DataLinear DataType = "lin"
	DataLog    DataType = "log"
	DataLogLog DataType = "loglog"
)

var dataTypeLabels = map[DataType]string{
	DataMag:    "Mag",
	DataLinear: "Linear",
	DataLog:    "Log",
	DataLogLog: "Log*log",
}

// DataTypes lists the selectable scalings in dropdown order.
func DataTypes() []DataType {
	return []DataType{DataMag, DataLinear, DataLog, DataLogLog}
}

func (d DataType) Label() string {
	if l, ok := dataTypeLabels[d]; ok {
		return l
	}
	return string(d)
}

func (d DataType) Valid() bool {
	_, ok := dataTypeLabels[d]
	return ok
}
