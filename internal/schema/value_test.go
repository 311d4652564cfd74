package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kadirbelkuyu/schemer/internal/schema"
)

func TestNormalizeValue(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{[]byte("varchar(32)"), "varchar(32)"},
		{"NO", "NO"},
		{int64(11), "11"},
		{int32(4), "4"},
		{7, "7"},
		{1.5, "1.5"},
		{true, "true"},
		{at, "2024-03-01T12:00:00Z"},
		{uint8(3), "3"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, schema.NormalizeValue(tc.in))
	}
}

func TestNormalizedLeavesOriginalUntouched(t *testing.T) {
	col := schema.ColumnDescriptor{"Field": "id", "Length": 11}

	normalized := col.Normalized()

	assert.Equal(t, "11", normalized["Length"])
	assert.Equal(t, 11, col["Length"])
	assert.Nil(t, schema.ColumnDescriptor(nil).Normalized())
}
