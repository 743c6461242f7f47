// Package airports loads the fixed airport reference table from CSV and
// serves read-only lookups by code.
package airports

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solar-scout/internal/model"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Registry is the immutable airport table, loaded once at startup.
type Registry struct {
	list   []model.Airport
	byCode map[string]model.Airport
}

// LoadFile reads the airport CSV at path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "airports: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load parses airport reference data from CSV with a header row containing
// at least code, name, state, lat, lon (city optional, any column order).
func Load(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "airports: read header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"code", "name", "state", "lat", "lon"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("airports: missing column %q", required)
		}
	}

	reg := &Registry{byCode: make(map[string]model.Airport)}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, eris.Wrapf(err, "airports: read row %d", row)
		}

		field := func(name string) string {
			i := col[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		code := strings.ToUpper(field("code"))
		if !codePattern.MatchString(code) {
			return nil, eris.Errorf("airports: row %d: invalid code %q", row, code)
		}
		if _, dup := reg.byCode[code]; dup {
			return nil, eris.Errorf("airports: row %d: duplicate code %q", row, code)
		}

		lat, err := strconv.ParseFloat(field("lat"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "airports: row %d: parse lat", row)
		}
		lon, err := strconv.ParseFloat(field("lon"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "airports: row %d: parse lon", row)
		}

		a := model.Airport{
			Code:  code,
			Name:  field("name"),
			State: field("state"),
			Lat:   lat,
			Lon:   lon,
		}
		if _, ok := col["city"]; ok {
			a.City = field("city")
		}

		reg.list = append(reg.list, a)
		reg.byCode[code] = a
	}

	zap.L().Debug("airports loaded", zap.Int("count", len(reg.list)))
	return reg, nil
}

// Get returns the airport for a code (case-insensitive).
func (r *Registry) Get(code string) (model.Airport, bool) {
	a, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

// All returns a copy of the airport list in file order.
func (r *Registry) All() []model.Airport {
	out := make([]model.Airport, len(r.list))
	copy(out, r.list)
	return out
}

// Len returns the number of airports.
func (r *Registry) Len() int { return len(r.list) }
