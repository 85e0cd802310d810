package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/wukong/types"
)

func TestParseSchema(t *testing.T) {
	raw := map[string]any{
		"name":      "cities",
		"version":   1.6,
		"uniqueKey": "id",
		"fields": []any{
			map[string]any{"name": "id", "type": "string", "required": true, "stored": true},
			map[string]any{"name": "tags", "type": "string", "multiValued": "true"},
			map[string]any{"name": "_version_", "type": "plong", "indexed": false},
		},
		"dynamicFields": []any{
			map[string]any{"name": "*_i", "type": "pint"},
		},
		"fieldTypes": []any{},
	}

	s, err := ParseSchema(raw)
	require.NoError(t, err)

	assert.Equal(t, "id", s.UniqueKey)
	assert.Equal(t, []string{"id", "tags", "_version_"}, s.FieldNames())

	tags, ok := s.Field("tags")
	require.True(t, ok)
	assert.True(t, tags.MultiValued)

	id, ok := s.Field("id")
	require.True(t, ok)
	assert.True(t, id.Required)
	require.NotNil(t, id.Stored)
	assert.True(t, *id.Stored)

	version, ok := s.Field("_version_")
	require.True(t, ok)
	require.NotNil(t, version.Indexed)
	assert.False(t, *version.Indexed)

	assert.True(t, s.HasField("count_i"))
	assert.False(t, s.HasField("count_s"))
}

func TestParseSchemaInvalid(t *testing.T) {
	_, err := ParseSchema(map[string]any{"fields": "not a list"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchema)
}

func TestSchemaMissingFields(t *testing.T) {
	s := testSchema()

	missing := s.MissingFields([]Field{
		{Name: "name", Type: "string"},
		{Name: "country", Type: "string"},
		{Name: "city_txt", Type: "text_general"},
	})

	require.Len(t, missing, 2)
	assert.Equal(t, "country", missing[0].Name)
	assert.Equal(t, "city_txt", missing[1].Name)
	assert.Empty(t, s.MissingFields([]Field{{Name: "id"}}))
}

func TestIsList(t *testing.T) {
	assert.True(t, IsList([]string{"a"}))
	assert.True(t, IsList([]any{}))
	assert.True(t, IsList([2]int{1, 2}))
	assert.False(t, IsList("abc"))
	assert.False(t, IsList(nil))
	assert.False(t, IsList(map[string]any{}))
}
