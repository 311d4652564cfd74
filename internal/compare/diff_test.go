package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/schemer/internal/compare"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

func TestDiffColumnsPositional(t *testing.T) {
	master := []schema.ColumnDescriptor{{"Field": "id", "Type": "int"}}
	peer := []schema.ColumnDescriptor{{"Field": "id", "Type": "varchar"}}

	diffs := compare.DiffColumns(master, peer, compare.Options{})
	assert.Equal(t, []compare.ColumnDifference{{
		Column:      "id",
		Attribute:   "Type",
		MasterValue: "int",
		PeerValue:   "varchar",
	}}, diffs)
}

func TestDiffColumnsIgnoresPeerOnlyAttributes(t *testing.T) {
	master := []schema.ColumnDescriptor{{"Field": "x", "Type": "int"}}
	peer := []schema.ColumnDescriptor{{"Field": "x", "Type": "int", "Extra": "auto_increment"}}

	assert.Empty(t, compare.DiffColumns(master, peer, compare.Options{}))
}

func TestDiffColumnsMissingPeerAttribute(t *testing.T) {
	master := []schema.ColumnDescriptor{{"Field": "x", "Type": "int", "Default": nil}}
	peer := []schema.ColumnDescriptor{{"Field": "x", "Type": "int"}}

	diffs := compare.DiffColumns(master, peer, compare.Options{})
	require.Len(t, diffs, 1)
	assert.Equal(t, "Default", diffs[0].Attribute)
	assert.Nil(t, diffs[0].MasterValue)
	assert.Nil(t, diffs[0].PeerValue)
}

func TestDiffColumnsEqualInputs(t *testing.T) {
	cols := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int", "Null": "NO"},
		{"Field": "name", "Type": "text", "Null": "YES"},
	}
	assert.Empty(t, compare.DiffColumns(cols, cols, compare.Options{}))
	assert.Empty(t, compare.DiffColumns(cols, cols, compare.Options{Mode: compare.ModeByName}))
}

func TestDiffColumnsUsesValueEquality(t *testing.T) {
	master := []schema.ColumnDescriptor{{"Field": "id", "Length": 11, "Flags": []string{"a", "b"}}}
	peer := []schema.ColumnDescriptor{{"Field": "id", "Length": 11, "Flags": []string{"a", "b"}}}

	assert.Empty(t, compare.DiffColumns(master, peer, compare.Options{}))
}

func TestDiffColumnsStopsAtShorterList(t *testing.T) {
	master := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int"},
		{"Field": "name", "Type": "text"},
		{"Field": "email", "Type": "text"},
	}
	peer := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "bigint"},
	}

	diffs := compare.DiffColumns(master, peer, compare.Options{})
	require.Len(t, diffs, 1)
	assert.Equal(t, "id", diffs[0].Column)

	assert.Len(t, compare.DiffColumns(peer, master, compare.Options{}), 1)
}

func TestDiffColumnsPositionalShift(t *testing.T) {
	master := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int"},
		{"Field": "name", "Type": "text"},
	}
	peer := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int"},
		{"Field": "inserted", "Type": "int"},
		{"Field": "name", "Type": "text"},
	}

	positional := compare.DiffColumns(master, peer, compare.Options{})
	assert.Equal(t, []compare.ColumnDifference{
		{Column: "name", Attribute: "Field", MasterValue: "name", PeerValue: "inserted"},
		{Column: "name", Attribute: "Type", MasterValue: "text", PeerValue: "int"},
	}, positional)

	assert.Empty(t, compare.DiffColumns(master, peer, compare.Options{Mode: compare.ModeByName}))
}

func TestDiffColumnsByNameReportsMissingColumn(t *testing.T) {
	master := []schema.ColumnDescriptor{
		{"Field": "id", "Type": "int"},
		{"Field": "email", "Type": "text"},
	}
	peer := []schema.ColumnDescriptor{
		{"Field": "email", "Type": "varchar"},
	}

	diffs := compare.DiffColumns(master, peer, compare.Options{Mode: compare.ModeByName})
	assert.Equal(t, []compare.ColumnDifference{
		{Column: "id", Attribute: "Field", MasterValue: "id", PeerValue: nil},
		{Column: "email", Attribute: "Type", MasterValue: "text", PeerValue: "varchar"},
	}, diffs)
}

func TestDiffColumnsCustomIdentity(t *testing.T) {
	master := []schema.ColumnDescriptor{{"column_name": "id", "data_type": "integer"}}
	peer := []schema.ColumnDescriptor{{"column_name": "id", "data_type": "bigint"}}

	diffs := compare.DiffColumns(master, peer, compare.Options{IdentityAttribute: "column_name", Mode: compare.ModeByName})
	require.Len(t, diffs, 1)
	assert.Equal(t, "id", diffs[0].Column)
	assert.Equal(t, "data_type", diffs[0].Attribute)
}

func TestDiffColumnsIdentityFallback(t *testing.T) {
	master := []schema.ColumnDescriptor{{"name": "id", "type": "INTEGER"}, {"type": "TEXT"}}
	peer := []schema.ColumnDescriptor{{"name": "id", "type": "TEXT"}, {"type": "BLOB"}}

	diffs := compare.DiffColumns(master, peer, compare.Options{})
	require.Len(t, diffs, 2)
	assert.Equal(t, "id", diffs[0].Column)
	assert.Equal(t, "#2", diffs[1].Column)
}

func TestDiffColumnsDeterministicAttributeOrder(t *testing.T) {
	master := []schema.ColumnDescriptor{{"Field": "id", "Type": "int", "Null": "NO", "Key": "PRI", "Extra": "auto_increment"}}
	peer := []schema.ColumnDescriptor{{"Field": "id", "Type": "bigint", "Null": "YES", "Key": "", "Extra": ""}}

	diffs := compare.DiffColumns(master, peer, compare.Options{})
	var attrs []string
	for _, d := range diffs {
		attrs = append(attrs, d.Attribute)
	}
	assert.Equal(t, []string{"Extra", "Key", "Null", "Type"}, attrs)
}

func TestParseMode(t *testing.T) {
	cases := map[string]compare.Mode{
		"":           compare.ModePositional,
		"positional": compare.ModePositional,
		"Name":       compare.ModeByName,
		"by-name":    compare.ModeByName,
	}
	for input, want := range cases {
		got, err := compare.ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := compare.ParseMode("fuzzy")
	require.Error(t, err)
}
