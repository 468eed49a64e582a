package mapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richslow/vnmarket/internal/model"
)

func TestLoadTables_EmbeddedDefaults(t *testing.T) {
	t.Parallel()

	tables, err := LoadTables("")
	require.NoError(t, err)

	for _, kind := range model.Kinds {
		specs := tables.Fields(kind)
		require.NotEmpty(t, specs, "kind %s", kind)
		for _, spec := range specs {
			assert.NotEmpty(t, spec.Name)
			assert.NotEmpty(t, spec.Keys, "field %s", spec.Name)
			assert.Equal(t, TypeNumber, spec.Type, "field %s", spec.Name)
		}
	}

	// The flattened Vietnamese ratio keys must be fallback candidates.
	spec, ok := tables.Spec(model.KindRatio, "pe_ratio")
	require.True(t, ok)
	assert.Equal(t, []string{"P/E", "Chỉ tiêu định giá_P/E", "priceToEarning"}, spec.Keys)
}

func TestLoadTables_Override(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	doc := `
tables:
  income:
    - name: revenue
      keys: ["Income_Revenue", "revenue"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	specs := tables.Fields(model.KindIncome)
	require.Len(t, specs, 1)
	assert.Equal(t, "revenue", specs[0].Name)
	assert.Equal(t, TypeNumber, specs[0].Type)

	// Hierarchical flatten output feeds straight into the override table.
	var rec TwoLevelRecord
	rec.Set("Income", "Revenue", 1234.0)
	got := ExtractFloat(Flatten(rec, "_"), specs[0])
	require.NotNil(t, got)
	assert.Equal(t, 1234.0, *got)
}

func TestLoadTables_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	badKind := filepath.Join(dir, "badkind.yaml")
	require.NoError(t, os.WriteFile(badKind, []byte("tables:\n  bogus:\n    - name: x\n      keys: [\"k\"]\n"), 0o644))
	_, err := LoadTables(badKind)
	assert.Error(t, err)

	noKeys := filepath.Join(dir, "nokeys.yaml")
	require.NoError(t, os.WriteFile(noKeys, []byte("tables:\n  income:\n    - name: x\n      keys: []\n"), 0o644))
	_, err = LoadTables(noKeys)
	assert.Error(t, err)

	_, err = LoadTables(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
