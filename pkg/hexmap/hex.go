// Package hexmap implements the hex-grid map model: hex identifiers,
// terrain movement costs, adjacency, and A* pathfinding for armies and
// fleets.
package hexmap

import (
	"errors"
	"fmt"
)

// ErrMalformedHexID is returned when an identifier is not a run of
// letters followed by a run of digits (e.g. "AB12").
var ErrMalformedHexID = errors.New("malformed hex id")

// ColumnToIndex converts spreadsheet-style column letters to a zero-based
// index: A=0, Z=25, AA=26, AB=27.
func ColumnToIndex(letters string) int {
	index := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		index = index*26 + int(c-'A') + 1
	}
	return index - 1
}

// IndexToColumn is the exact inverse of ColumnToIndex.
func IndexToColumn(index int) string {
	var buf [8]byte
	i := len(buf)
	for index >= 0 {
		i--
		buf[i] = byte('A' + index%26)
		index = index/26 - 1
	}
	return string(buf[i:])
}

// SplitHexID splits a hex identifier into its column letters and row
// digits. The identifier must be a run of letters followed by a run of
// digits with nothing else.
func SplitHexID(id string) (letters, digits string, err error) {
	i := 0
	for i < len(id) && isLetter(id[i]) {
		i++
	}
	j := i
	for j < len(id) && isDigit(id[j]) {
		j++
	}
	if i == 0 || j == i || j != len(id) {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedHexID, id)
	}
	return id[:i], id[i:], nil
}

// ToCoordinates converts a hex identifier to (column index, row).
func ToCoordinates(id string) (col, row int, err error) {
	letters, digits, err := SplitHexID(id)
	if err != nil {
		return 0, 0, err
	}
	for i := 0; i < len(digits); i++ {
		row = row*10 + int(digits[i]-'0')
	}
	return ColumnToIndex(letters), row, nil
}

// FormatHexID builds a hex identifier from coordinates. Rows are
// zero-padded to two digits to match the map sheet convention.
func FormatHexID(col, row int) string {
	return fmt.Sprintf("%s%02d", IndexToColumn(col), row)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
