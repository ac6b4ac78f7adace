package meshcode

import (
	"fmt"
	"math"
)

// Level-1 index bounds. Two digits per axis.
const maxPrimaryIndex = 99

// edgeTolerance is how far below an integer, in units of the cell being
// split, a scaled coordinate may fall and still count as on that edge.
// Decoded south-west corners carry rounding error of this order, and the
// south and west edges belong to the cell.
const edgeTolerance = 1e-9

// Encode returns the mesh code of the cell containing (lat, lon) at level.
func Encode(lat, lon float64, level Level) (string, error) {
	if err := checkLevel(level); err != nil {
		return "", err
	}
	return encode(lat, lon, level)
}

// encode assumes level has been validated.
func encode(lat, lon float64, level Level) (string, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return "", fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidArgument, lat, lon)
	}

	tLat := snapToEdge(lat * 1.5)
	tLon := snapToEdge(lon - 100.0)
	idxLat := math.Floor(tLat)
	idxLon := math.Floor(tLon)
	if idxLat < 0 || idxLat > maxPrimaryIndex || idxLon < 0 || idxLon > maxPrimaryIndex {
		return "", fmt.Errorf("%w: coordinate (%v, %v) outside the mesh range", ErrInvalidArgument, lat, lon)
	}

	buf := make([]byte, 0, level.CodeLength())
	buf = appendTwoDigits(buf, int(idxLat))
	buf = appendTwoDigits(buf, int(idxLon))
	if level == 1 {
		return string(buf), nil
	}

	remLat := tLat - idxLat
	remLon := tLon - idxLon

	var dLat, dLon int
	dLat, remLat = subdivide(remLat, 8)
	dLon, remLon = subdivide(remLon, 8)
	buf = append(buf, digit(dLat), digit(dLon))
	if level == 2 {
		return string(buf), nil
	}

	dLat, remLat = subdivide(remLat, 10)
	dLon, remLon = subdivide(remLon, 10)
	buf = append(buf, digit(dLat), digit(dLon))

	for l := Level(4); l <= level; l++ {
		dLat, remLat = subdivide(remLat, 2)
		dLon, remLon = subdivide(remLon, 2)
		buf = append(buf, digit(dLat*2+dLon+1))
	}
	return string(buf), nil
}

// subdivide scales a [0,1) remainder into n parts and returns the part index
// and the remainder within that part.
func subdivide(rem float64, n int) (int, float64) {
	t := snapToEdge(rem * float64(n))
	idx := math.Floor(t)
	if idx >= float64(n) {
		idx = float64(n - 1)
	}
	return int(idx), t - idx
}

// snapToEdge rounds t up to the next integer when it sits within
// edgeTolerance below it.
func snapToEdge(t float64) float64 {
	if c := math.Ceil(t); c-t < edgeTolerance {
		return c
	}
	return t
}

func digit(d int) byte {
	return byte('0' + d)
}

func appendTwoDigits(buf []byte, v int) []byte {
	return append(buf, digit(v/10), digit(v%10))
}
