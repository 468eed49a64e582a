package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
)

func loadTables(t *testing.T) *mapper.Tables {
	t.Helper()
	tables, err := mapper.LoadTables("")
	require.NoError(t, err)
	return tables
}

func TestNormalize_CompletenessBothNil(t *testing.T) {
	t.Parallel()

	n := New(loadTables(t))

	for _, kind := range model.Kinds {
		stmt := n.Normalize("FPT", nil, nil, kind)

		want := len(loadTables(t).Fields(kind))
		require.Len(t, stmt.Fields, want, "kind %s", kind)
		for name, v := range stmt.Fields {
			assert.Nil(t, v, "field %s must be null, not missing", name)
		}
	}
}

func TestNormalize_HierarchicalFallback(t *testing.T) {
	t.Parallel()

	n := New(loadTables(t))

	// Provider A has no revenue key at all; provider B carries it under its
	// verified English column, wrapped in an empty group.
	var rawB mapper.TwoLevelRecord
	rawB.Set("", "yearReport", 2023)
	rawB.Set("", "Revenue (Bn. VND)", 62849.0)

	stmt := n.Normalize("FPT", mapper.RawRecord{"year": 2023}, &rawB, model.KindIncome)

	require.NotNil(t, stmt.Fields["revenue"])
	assert.Equal(t, 62849.0, *stmt.Fields["revenue"])
	assert.Equal(t, 2023, stmt.Period.Year)
}

func TestNormalize_PrimaryPreference(t *testing.T) {
	t.Parallel()

	rawA := mapper.RawRecord{"year": 2023, "grossProfit": 111.0}
	var rawB mapper.TwoLevelRecord
	rawB.Set("", "yearReport", 2023)
	rawB.Set("", "Gross Profit", 222.0)

	// Default: VCI primary.
	n := New(loadTables(t))
	stmt := n.Normalize("FPT", rawA, &rawB, model.KindIncome)
	require.NotNil(t, stmt.Fields["gross_profit"])
	assert.Equal(t, 222.0, *stmt.Fields["gross_profit"])

	// Flipped: TCBS primary for income.
	n = New(loadTables(t), WithPrimary(model.KindIncome, SourceTCBS))
	stmt = n.Normalize("FPT", rawA, &rawB, model.KindIncome)
	require.NotNil(t, stmt.Fields["gross_profit"])
	assert.Equal(t, 111.0, *stmt.Fields["gross_profit"])
}

func TestNormalize_SecondaryFillsPrimaryNulls(t *testing.T) {
	t.Parallel()

	n := New(loadTables(t))

	// VCI (primary) lacks interest expense; TCBS supplies it.
	rawA := mapper.RawRecord{"year": 2022, "interestExpense": -50.0}
	var rawB mapper.TwoLevelRecord
	rawB.Set("", "yearReport", 2022)
	rawB.Set("", "Revenue (Bn. VND)", 1000.0)

	stmt := n.Normalize("HPG", rawA, &rawB, model.KindIncome)
	require.NotNil(t, stmt.Fields["interest_expenses"])
	assert.Equal(t, -50.0, *stmt.Fields["interest_expenses"])
	require.NotNil(t, stmt.Fields["revenue"])
	assert.Equal(t, 1000.0, *stmt.Fields["revenue"])
}

func TestSeries_AscendingAndMergedPeriods(t *testing.T) {
	t.Parallel()

	n := New(loadTables(t))

	rowsA := []mapper.RawRecord{
		{"year": 2023, "quarter": 2, "grossProfit": 23.2},
		{"year": 2022, "quarter": 4, "grossProfit": 22.4},
	}

	var b1 mapper.TwoLevelRecord
	b1.Set("", "yearReport", 2023)
	b1.Set("", "lengthReport", 1)
	b1.Set("", "Revenue (Bn. VND)", 231.0)
	var b2 mapper.TwoLevelRecord
	b2.Set("", "yearReport", 2023)
	b2.Set("", "lengthReport", 2)
	b2.Set("", "Revenue (Bn. VND)", 232.0)

	series := n.Series("FPT", rowsA, []mapper.TwoLevelRecord{b1, b2}, model.KindIncome)

	require.Len(t, series, 3)
	assert.Equal(t, model.Period{Year: 2022, Quarter: 4}, series[0].Period)
	assert.Equal(t, model.Period{Year: 2023, Quarter: 1}, series[1].Period)
	assert.Equal(t, model.Period{Year: 2023, Quarter: 2}, series[2].Period)

	// 2023Q2 exists on both sides and must merge into one record.
	q2 := series[2]
	require.NotNil(t, q2.Fields["revenue"])
	assert.Equal(t, 232.0, *q2.Fields["revenue"])
	require.NotNil(t, q2.Fields["gross_profit"])
	assert.Equal(t, 23.2, *q2.Fields["gross_profit"])
}

func TestSeries_AnnualSortsAfterQuarters(t *testing.T) {
	t.Parallel()

	n := New(loadTables(t))

	rowsA := []mapper.RawRecord{
		{"year": 2023}, // annual, quarter absent
		{"year": 2023, "quarter": 4},
		{"year": 2023, "quarter": 1},
	}

	series := n.Series("VNM", rowsA, nil, model.KindBalance)
	require.Len(t, series, 3)
	assert.Equal(t, model.Period{Year: 2023, Quarter: 1}, series[0].Period)
	assert.Equal(t, model.Period{Year: 2023, Quarter: 4}, series[1].Period)
	assert.Equal(t, model.Period{Year: 2023, Quarter: 0}, series[2].Period)
}
