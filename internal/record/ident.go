package record

import "strings"

// NormalizeStudentID trims a scanned or typed student identifier. The QR
// payload format is an external contract, so no shape is imposed beyond
// non-emptiness.
func NormalizeStudentID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrInvalidIdentifier
	}
	return id, nil
}
