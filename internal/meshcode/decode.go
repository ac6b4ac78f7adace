package meshcode

import (
	"fmt"
	"strconv"
)

// Level-1 cell size in degrees.
const (
	primaryLatDelta = 2.0 / 3.0
	primaryLonDelta = 1.0
)

// Decode parses code and returns the record selected by mode.
func Decode(code string, mode Mode) (Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Result{}, err
	}
	cell, err := DecodeCell(code)
	if err != nil {
		return Result{}, err
	}
	return cell.Result(mode)
}

// DecodeNumber decodes a code held as an integer, e.g. a KEY_CODE column read
// as a number.
func DecodeNumber(code uint64, mode Mode) (Result, error) {
	return Decode(strconv.FormatUint(code, 10), mode)
}

// DecodeCell parses code left to right, refining the south-west corner and
// the cell size at each level present.
func DecodeCell(code string) (Cell, error) {
	n := len(code)
	if n < codeLengths[MinLevel] || n > codeLengths[MaxLevel] {
		return Cell{}, fmt.Errorf("%w: %q has length %d", ErrMalformedCode, code, n)
	}
	for i := 0; i < n; i++ {
		if code[i] < '0' || code[i] > '9' {
			return Cell{}, fmt.Errorf("%w: %q has non-digit at position %d", ErrMalformedCode, code, i+1)
		}
	}

	latDelta := primaryLatDelta
	lonDelta := primaryLonDelta
	lat := float64(twoDigits(code[0:2])) * latDelta
	lon := float64(twoDigits(code[2:4])) + 100.0
	level := Level(1)

	if n >= 6 {
		dLat, dLon := int(code[4]-'0'), int(code[5]-'0')
		if dLat > 7 || dLon > 7 {
			return Cell{}, fmt.Errorf("%w: %q has level-2 digit above 7", ErrMalformedCode, code)
		}
		latDelta /= 8
		lonDelta /= 8
		lat += float64(dLat) * latDelta
		lon += float64(dLon) * lonDelta
		level = 2
	}

	if n >= 8 {
		latDelta /= 10
		lonDelta /= 10
		lat += float64(code[6]-'0') * latDelta
		lon += float64(code[7]-'0') * lonDelta
		level = 3
	}

	for i := 8; i < n; i++ {
		q := code[i] - '0'
		if q < 1 || q > 4 {
			return Cell{}, fmt.Errorf("%w: %q has quadrant digit %d at position %d", ErrMalformedCode, code, q, i+1)
		}
		latDelta /= 2
		lonDelta /= 2
		if q == 3 || q == 4 {
			lat += latDelta
		}
		if q == 2 || q == 4 {
			lon += lonDelta
		}
		level++
	}

	return Cell{
		Code:     code[:level.CodeLength()],
		Level:    level,
		Lat:      lat,
		Lon:      lon,
		LatDelta: latDelta,
		LonDelta: lonDelta,
	}, nil
}

func twoDigits(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

// Truncate returns the code of the ancestor cell at level. The code must be
// at least as fine as level.
func Truncate(code string, level Level) (string, error) {
	if err := checkLevel(level); err != nil {
		return "", err
	}
	cell, err := DecodeCell(code)
	if err != nil {
		return "", err
	}
	if cell.Level < level {
		return "", fmt.Errorf("%w: %q is level %d, coarser than %d", ErrInvalidArgument, code, cell.Level, level)
	}
	return cell.Code[:level.CodeLength()], nil
}

// Parent returns the code one level up. Level-1 codes have no parent.
func Parent(code string) (string, error) {
	cell, err := DecodeCell(code)
	if err != nil {
		return "", err
	}
	if cell.Level == MinLevel {
		return "", fmt.Errorf("%w: %q is level 1", ErrInvalidArgument, code)
	}
	return cell.Code[:(cell.Level - 1).CodeLength()], nil
}
