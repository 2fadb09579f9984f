package presets

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CustomFile is the optional CSV read from the data directory.
const CustomFile = "custom_presets.csv"

// LoadFromDataDir returns the builtin presets followed by any rows of
// dataDir/custom_presets.csv. A missing file is not an error.
func LoadFromDataDir(dataDir string) ([]Preset, error) {
	all := Builtin()
	f := filepath.Join(dataDir, CustomFile)
	if _, err := os.Stat(f); err != nil {
		return all, nil
	}
	ps, err := loadSingleCSV(f)
	if err != nil {
		return all, fmt.Errorf("loading %s: %w", f, err)
	}
	return append(all, ps...), nil
}

func loadSingleCSV(path string) ([]Preset, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"name", "width", "height"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("csv %s: missing column %q", path, need)
		}
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Preset{}
	for n, row := range rows[1:] {
		p := Preset{Name: get(row, "name"), Kind: strings.ToLower(get(row, "kind"))}
		if p.Name == "" {
			continue
		}
		if p.Kind == "" {
			p.Kind = KindMerge
		}
		if p.Kind != KindMerge && p.Kind != KindResize {
			return nil, fmt.Errorf("csv %s row %d: unknown kind %q", path, n+2, p.Kind)
		}
		if p.Width, err = parseSide(get(row, "width")); err != nil {
			return nil, fmt.Errorf("csv %s row %d: width: %w", path, n+2, err)
		}
		if p.Height, err = parseSide(get(row, "height")); err != nil {
			return nil, fmt.Errorf("csv %s row %d: height: %w", path, n+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// parseSide reads a non-negative pixel size; "" and "-" mean 0 (free).
func parseSide(s string) (int, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative size %d", v)
	}
	return v, nil
}
