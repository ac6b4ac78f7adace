package meshcode

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for unsupported modes, levels, and inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedCode is returned when a mesh code cannot be parsed. It wraps
	// ErrInvalidArgument.
	ErrMalformedCode = fmt.Errorf("%w: malformed mesh code", ErrInvalidArgument)
)

// Level is the nesting depth of a mesh cell, 1 (coarsest) through 6.
type Level int

const (
	MinLevel Level = 1
	MaxLevel Level = 6
)

// codeLengths maps a level to the length of its complete code.
var codeLengths = [...]int{0, 4, 6, 8, 9, 10, 11}

// Valid reports whether l is within 1..6.
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// CodeLength returns the number of digits in a complete code at this level,
// or 0 for an invalid level.
func (l Level) CodeLength() int {
	if !l.Valid() {
		return 0
	}
	return codeLengths[l]
}

// LevelOf returns the level of a complete code of the given length.
func LevelOf(code string) (Level, error) {
	for l := MinLevel; l <= MaxLevel; l++ {
		if codeLengths[l] == len(code) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: length %d matches no level", ErrMalformedCode, len(code))
}

func checkLevel(l Level) error {
	if !l.Valid() {
		return fmt.Errorf("%w: level %d outside %d..%d", ErrInvalidArgument, l, MinLevel, MaxLevel)
	}
	return nil
}

// Mode selects the shape of a decoded record.
type Mode string

const (
	ModeSW     Mode = "sw"
	ModeCenter Mode = "center"
	ModeBBox   Mode = "bbox"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSW, ModeCenter, ModeBBox:
		return m, nil
	default:
		return "", fmt.Errorf("%w: mode %q", ErrInvalidArgument, s)
	}
}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is the rectangular extent of a mesh cell.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether c lies in the box, including the south and west
// edges and excluding the north and east edges.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat < b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon < b.MaxLon
}

func (b BoundingBox) Height() float64 { return b.MaxLat - b.MinLat }
func (b BoundingBox) Width() float64  { return b.MaxLon - b.MinLon }

func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		Lat: b.MinLat + b.Height()/2,
		Lon: b.MinLon + b.Width()/2,
	}
}

// Cell is a decoded mesh cell: its south-west corner and its size.
type Cell struct {
	Code     string
	Level    Level
	Lat      float64
	Lon      float64
	LatDelta float64
	LonDelta float64
}

func (c Cell) SouthWest() Coordinate {
	return Coordinate{Lat: c.Lat, Lon: c.Lon}
}

func (c Cell) Center() Coordinate {
	return Coordinate{Lat: c.Lat + c.LatDelta/2, Lon: c.Lon + c.LonDelta/2}
}

func (c Cell) BBox() BoundingBox {
	return BoundingBox{
		MinLat: c.Lat,
		MinLon: c.Lon,
		MaxLat: c.Lat + c.LatDelta,
		MaxLon: c.Lon + c.LonDelta,
	}
}

// Result is one decoded record shaped by its Mode. Point is set for ModeSW and
// ModeCenter, BBox for ModeBBox.
type Result struct {
	Mode  Mode
	Point Coordinate
	BBox  BoundingBox
}

// Result shapes the cell as a decoded record in the given mode.
func (c Cell) Result(mode Mode) (Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Result{}, err
	}
	return project(c, mode), nil
}

// project shapes a cell for the given mode. The mode must already be valid.
func project(c Cell, mode Mode) Result {
	switch mode {
	case ModeCenter:
		return Result{Mode: mode, Point: c.Center()}
	case ModeBBox:
		return Result{Mode: mode, BBox: c.BBox()}
	default:
		return Result{Mode: mode, Point: c.SouthWest()}
	}
}

// MarshalJSON emits {lat, lon} for point modes and the four bbox fields for
// ModeBBox.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Mode == ModeBBox {
		return json.Marshal(r.BBox)
	}
	return json.Marshal(r.Point)
}
