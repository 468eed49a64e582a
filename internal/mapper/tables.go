package mapper

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/richslow/vnmarket/internal/model"
)

//go:embed fieldspecs.yaml
var defaultTables []byte

// Tables holds the per-kind canonical field specs. The embedded defaults
// track the provider schemas as last verified; an external YAML file can
// override them when upstream columns drift.
type Tables struct {
	specs map[model.StatementKind][]FieldSpec
}

// LoadTables parses field tables from path, or from the embedded defaults
// when path is empty.
func LoadTables(path string) (*Tables, error) {
	data := defaultTables
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "mapper: read field tables %s", path)
		}
		data = b
	}

	var doc struct {
		Tables map[model.StatementKind][]FieldSpec `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "mapper: parse field tables")
	}

	for kind, specs := range doc.Tables {
		if !kind.Valid() {
			return nil, eris.Errorf("mapper: unknown statement kind %q in field tables", kind)
		}
		for i, spec := range specs {
			if spec.Name == "" {
				return nil, eris.Errorf("mapper: unnamed field in %s table", kind)
			}
			if len(spec.Keys) == 0 {
				return nil, eris.Errorf("mapper: field %s.%s has no candidate keys", kind, spec.Name)
			}
			if spec.Type == "" {
				specs[i].Type = TypeNumber
			}
		}
	}

	return &Tables{specs: doc.Tables}, nil
}

// Fields returns the canonical field specs for a statement kind, in table
// order.
func (t *Tables) Fields(kind model.StatementKind) []FieldSpec {
	return t.specs[kind]
}

// Spec looks up one canonical field by name.
func (t *Tables) Spec(kind model.StatementKind, name string) (FieldSpec, bool) {
	for _, spec := range t.specs[kind] {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}
