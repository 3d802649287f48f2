package tier

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Source loads a limits table from a configuration backing.
type Source interface {
	Load(ctx context.Context) (Table, error)
}

// inMemSource serves a fixed table, primarily for tests.
type inMemSource struct {
	table Table
}

// NewInMemSource returns a Source serving a deep copy of the given table.
func NewInMemSource(table Table) Source {
	return &inMemSource{table: table.Clone()}
}

func (s *inMemSource) Load(ctx context.Context) (Table, error) {
	return s.table.Clone(), nil
}

// fileSource loads the limits table from a YAML file of the form:
//
//	free:
//	  assets: 10
//	  users: 3
//	starter:
//	  assets: 100
//	  ...
//
// Tiers missing from the file fall back to the built-in defaults, so a
// deployment can override a single row without restating the whole table.
type fileSource struct {
	path string
}

// NewFileSource returns a Source reading YAML overrides from path.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (Table, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTable, err)
	}

	var parsed map[string]map[string]int64
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Join(ErrFailedToLoadTable, err)
	}

	table := Defaults()
	for name, row := range parsed {
		t, ok := Parse(name)
		if !ok {
			return nil, errors.Join(ErrInvalidTable, errors.New("unknown tier "+name))
		}
		limits := make(Limits, len(row))
		for res, limit := range row {
			limits[Resource(res)] = limit
		}
		table[t] = limits
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
