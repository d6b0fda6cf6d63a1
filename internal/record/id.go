package record

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	idPrefix = "reference_"
	fileExt  = ".json"
)

// ID returns the stable identifier for a citation line, e.g. "reference_0042".
func ID(lineNum int) string {
	return fmt.Sprintf("%s%04d", idPrefix, lineNum)
}

// FileName returns the record file name for a citation line.
func FileName(lineNum int) string {
	return ID(lineNum) + fileExt
}

// ParseFileName extracts the line number from a record file name.
// Returns false for names that are not record files.
func ParseFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, idPrefix) || !strings.HasSuffix(name, fileExt) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, idPrefix), fileExt)
	if len(digits) < 4 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
