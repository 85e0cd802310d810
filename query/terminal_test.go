package query

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/wukong/document"
	"github.com/arloliu/wukong/types"
)

// fakeBackend answers selects from canned results and records indexing calls.
type fakeBackend struct {
	mu sync.Mutex

	schema  *document.Schema
	result  *Result
	err     error
	selects []Params
	indexed [][]*document.Document
	commits []bool
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		schema: &document.Schema{
			UniqueKey: "id",
			Fields: []document.Field{
				{Name: "id", Type: "string"},
				{Name: "name", Type: "string"},
				{Name: "tags", Type: "string", MultiValued: true},
			},
		},
		result: &Result{Docs: []map[string]any{}},
	}
}

func (f *fakeBackend) Select(_ context.Context, params Params, sections ...Section) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selects = append(f.selects, params)
	if f.err != nil {
		return nil, f.err
	}

	res := &Result{Docs: f.result.Docs, Total: f.result.Total}
	for _, s := range sections {
		switch s {
		case SectionGroups:
			res.Groups = f.result.Groups
		case SectionFacets:
			res.Facets = f.result.Facets
		case SectionStats:
			res.Stats = f.result.Stats
		}
	}

	return res, nil
}

func (f *fakeBackend) Schema(context.Context) (*document.Schema, error) {
	return f.schema, nil
}

func (f *fakeBackend) Index(_ context.Context, docs []*document.Document, commit bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.indexed = append(f.indexed, docs)
	f.commits = append(f.commits, commit)

	return nil
}

func TestTerminalWithoutBackend(t *testing.T) {
	_, err := NewManager(nil).Raw(t.Context())
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConfiguration))
}

func TestRawMergesExtraParams(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{Docs: []map[string]any{{"id": "1"}}, Total: 1}

	res, err := NewManager(b).Limit(3).Raw(t.Context(), Params{"debug": "true"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	require.Len(t, b.selects, 1)
	assert.Equal(t, 3, b.selects[0]["rows"])
	assert.Equal(t, "true", b.selects[0]["debug"])
}

func TestAllMapsDocuments(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{Docs: []map[string]any{
		{"id": "1", "name": "a", "_version_": 17},
		{"id": "2", "name": "b"},
	}, Total: 2}

	docs, err := NewManager(b).All(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, docs.Len())
	assert.Equal(t, "1", docs.At(0).UniqueValue())
	assert.Equal(t, "b", docs.At(1).Get("name"))

	_, ok := docs.At(0).Lookup("_version_")
	assert.False(t, ok)
}

func TestOneUsesSingleRow(t *testing.T) {
	b := newFakeBackend()

	doc, err := NewManager(b).One(t.Context())
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 1, b.selects[0]["rows"])

	b.result = &Result{Docs: []map[string]any{{"id": "1", "name": "a"}}, Total: 1}
	doc, err = NewManager(b).Get(t.Context(), K("id__eq", "1"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "a", doc.Get("name"))
	assert.Equal(t, `id:"1"`, b.selects[1]["q"])
}

func TestMissingSections(t *testing.T) {
	b := newFakeBackend()
	m := NewManager(b)

	_, err := m.Groups(t.Context())
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindMissingSection))

	_, err = m.Facets(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingSection)

	_, err = m.StatsResult(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingSection)

	b.result = &Result{}
	_, err = m.All(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingSection)
}

func TestSectionsReturned(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{
		Docs:   []map[string]any{},
		Groups: map[string]any{"city": map[string]any{"ngroups": 2}},
		Facets: map[string]any{"facet_fields": map[string]any{}},
		Stats:  map[string]any{"stats_fields": map[string]any{}},
	}
	m := NewManager(b)

	groups, err := m.Groups(t.Context())
	require.NoError(t, err)
	assert.Contains(t, groups, "city")

	facets, err := m.Facets(t.Context())
	require.NoError(t, err)
	assert.Contains(t, facets, "facet_fields")

	stats, err := m.StatsResult(t.Context())
	require.NoError(t, err)
	assert.Contains(t, stats, "stats_fields")
}

func TestBackendErrorPropagates(t *testing.T) {
	b := newFakeBackend()
	b.err = types.NewError(types.KindTransport, "Unable to fetch from any SOLR nodes")

	_, err := NewManager(b).All(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTransport))
}

func TestCreate(t *testing.T) {
	b := newFakeBackend()

	doc, err := NewManager(b).Create(t.Context(), map[string]any{"id": "9", "name": "new"})
	require.NoError(t, err)
	assert.Equal(t, "9", doc.UniqueValue())

	require.Len(t, b.indexed, 1)
	assert.True(t, b.commits[0])
	assert.Equal(t, doc, b.indexed[0][0])
	assert.Equal(t, `id:"9"`, b.selects[0]["q"])
}

func TestCreateDuplicate(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{Docs: []map[string]any{{"id": "9", "name": "old"}}, Total: 1}

	_, err := NewManager(b).Create(t.Context(), map[string]any{"id": "9", "name": "new"})
	require.Error(t, err)
	assert.Equal(t, "The unique key 9 already exists", err.Error())
	assert.ErrorIs(t, err, types.ErrDuplicateKey)
	assert.Empty(t, b.indexed)
}

func TestCreateInvalidDocument(t *testing.T) {
	b := newFakeBackend()

	_, err := NewManager(b).Create(t.Context(), map[string]any{"name": "no key"})
	require.Error(t, err)
	assert.Equal(t, "Unique key is not specified", err.Error())
	assert.Empty(t, b.selects)
}

func TestUpdate(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{Docs: []map[string]any{{"id": "9", "name": "old"}}, Total: 1}

	doc, err := NewManager(b).Update(t.Context(), map[string]any{"id": "9", "name": "renamed"})
	require.NoError(t, err)
	assert.True(t, doc.IsPartialUpdate())

	require.Len(t, b.indexed, 1)
	assert.True(t, b.commits[0])

	data, err := b.indexed[0][0].Data()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":   "9",
		"name": map[string]any{"set": "renamed"},
	}, data)
}

func TestUpdateNotFound(t *testing.T) {
	b := newFakeBackend()

	_, err := NewManager(b).Update(t.Context(), map[string]any{"id": "404", "name": "x"})
	require.Error(t, err)
	assert.Equal(t, "The document with unique key 404 does not exist", err.Error())
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, b.indexed)
}

func TestUpdateDoesNotMutateOptions(t *testing.T) {
	b := newFakeBackend()
	b.result = &Result{Docs: []map[string]any{{"id": "1"}}, Total: 1}

	opts := make([]document.Option, 0, 4)
	opts = append(opts, document.WithFieldWeights(map[string]float64{"name": 2}))

	_, err := NewManager(b).Update(t.Context(), map[string]any{"id": "1", "name": "x"}, opts...)
	require.NoError(t, err)

	assert.Len(t, opts, 1)
	assert.Nil(t, opts[:2][1])
}
