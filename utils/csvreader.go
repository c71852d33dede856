package utils

import (
	"bufio"
	"encoding/csv"
	"io"
)

// ParseCSV reads every record. Rows may have differing field counts and a
// leading UTF-8 byte order mark is dropped.
func ParseCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		br.Discard(3)
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}
