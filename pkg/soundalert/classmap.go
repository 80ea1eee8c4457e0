package soundalert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ClassMap maps model output indices to display names.
type ClassMap []string

// LoadClassMap parses a class map CSV with the columns
// index,mid,display_name. The header row is skipped.
func LoadClassMap(r io.Reader) (ClassMap, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header := true
	var names ClassMap
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("soundalert: class map: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 3 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("soundalert: class map line %d: want 3 fields, got %d", line, len(rec))
		}
		names = append(names, rec[2])
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("soundalert: class map is empty")
	}
	return names, nil
}

// LoadClassMapFile reads a class map from path.
func LoadClassMapFile(path string) (ClassMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("soundalert: open class map: %w", err)
	}
	defer f.Close()
	return LoadClassMap(f)
}

// Name returns the display name for index i.
func (m ClassMap) Name(i int) (string, error) {
	if i < 0 || i >= len(m) {
		return "", fmt.Errorf("%w: %d of %d", ErrClassIndex, i, len(m))
	}
	return m[i], nil
}
