package wukong_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/wukong"
	"github.com/arloliu/wukong/document"
	"github.com/arloliu/wukong/query"
	"github.com/arloliu/wukong/test/testutil"
	"github.com/arloliu/wukong/types"
)

const citiesSchema = `{"schema":{
  "uniqueKey":"id",
  "fields":[
    {"name":"id","type":"string","required":true},
    {"name":"name","type":"text_general"},
    {"name":"population","type":"plong"},
    {"name":"tags","type":"string","multiValued":true}],
  "dynamicFields":[{"name":"*_txt","type":"text_general"}]}}`

const citiesSelect = `{
  "response":{"numFound":12,"start":0,"docs":[
    {"id":"1","name":"Taipei","population":2500000,"_version_":1},
    {"id":"2","name":"Tainan","tags":["south"],"_version_":2}]},
  "grouped":{"country":{"matches":2}},
  "facet_counts":{"facet_fields":{"country":{"TW":2}}},
  "stats":{"stats_fields":{"population":{"max":2500000}}}}`

// routes answers by path relative to solr1; unknown paths answer 404.
func routes(paths map[string]testutil.NodeHandler) testutil.NodeHandler {
	return func(req *types.TransportRequest) (*types.TransportResponse, error) {
		h, ok := paths[strings.TrimPrefix(req.URL, solr1)]
		if !ok {
			return testutil.Respond(http.StatusNotFound, "not found")(req)
		}

		return h(req)
	}
}

func newTestCollection(t *testing.T, paths map[string]testutil.NodeHandler) (*wukong.Collection, *testutil.MockTransport) {
	t.Helper()

	transport := testutil.NewMockTransport().On(solr1, routes(paths))
	router, _ := newTestRouter(t, []string{solr1}, transport)

	c, err := wukong.NewCollection("cities", router)
	require.NoError(t, err)

	return c, transport
}

func requestsTo(transport *testutil.MockTransport, path string) []*types.TransportRequest {
	var out []*types.TransportRequest
	for _, r := range transport.Requests() {
		if r.URL == solr1+path {
			out = append(out, r)
		}
	}

	return out
}

func TestNewCollectionValidation(t *testing.T) {
	router, _ := newTestRouter(t, []string{solr1}, testutil.NewMockTransport())

	_, err := wukong.NewCollection("", router)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConfiguration))

	_, err = wukong.NewCollection("cities", nil)
	require.Error(t, err)
}

func TestOpenUsesCollectionAsResource(t *testing.T) {
	source := testutil.NewMockMembership("solr1:8983")

	c, err := wukong.Open("cities", nil,
		wukong.WithMembershipSource(source),
		wukong.WithTransport(testutil.NewMockTransport()),
	)
	require.NoError(t, err)

	assert.Equal(t, "cities", c.Name())
	assert.Equal(t, []string{"cities"}, source.Resources())
	assert.Equal(t, []string{solr1}, c.Router().Pool().Addresses())
}

func TestCollectionSelectSections(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/select": testutil.RespondJSON(citiesSelect),
	})

	params := query.Params{"q": "*:*"}
	res, err := c.Select(t.Context(), params, query.SectionGroups, query.SectionStats)
	require.NoError(t, err)

	assert.Len(t, res.Docs, 2)
	assert.Equal(t, int64(12), res.Total)
	assert.NotNil(t, res.Groups)
	assert.NotNil(t, res.Stats)
	assert.Nil(t, res.Facets, "facets were not requested")

	req := transport.LastRequest()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "*:*", req.Params.Get("q"))
}

func TestCollectionSelectWithoutDocs(t *testing.T) {
	c, _ := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/select": testutil.RespondJSON(`{"grouped":{}}`),
	})

	res, err := c.Select(t.Context(), query.Params{}, query.SectionGroups)
	require.NoError(t, err)
	assert.Nil(t, res.Docs)
	assert.Equal(t, int64(0), res.Total)
	assert.NotNil(t, res.Groups)
}

func TestCollectionDocumentsAllCachesSchema(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/select": testutil.RespondJSON(citiesSelect),
		"cities/schema": testutil.RespondJSON(citiesSchema),
	})

	m, err := c.Documents().Filter(query.K("name__eq", "Tai*"))
	require.NoError(t, err)

	docs, err := m.All(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, docs.Len())
	assert.Equal(t, "Taipei", docs.At(0).Get("name"))
	_, hasVersion := docs.At(0).Lookup("_version_")
	assert.False(t, hasVersion)

	_, err = m.All(t.Context())
	require.NoError(t, err)

	assert.Len(t, requestsTo(transport, "cities/schema"), 1)
	assert.Len(t, requestsTo(transport, "cities/select"), 2)
}

func TestCollectionUpdate(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/update/json": testutil.RespondJSON(`{}`),
	})

	require.NoError(t, c.Update(t.Context(), nil, true))
	assert.Empty(t, transport.Requests(), "empty update sends nothing")

	err := c.Update(t.Context(), []map[string]any{{"id": "1", "name": "Taipei"}}, true)
	require.NoError(t, err)

	req := transport.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "true", req.Params.Get("commit"))
	assert.JSONEq(t, `[{"id":"1","name":"Taipei"}]`, string(req.Body))
}

func TestCollectionIndexThenCommit(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/update/json": testutil.RespondJSON(`{}`),
		"cities/schema":      testutil.RespondJSON(citiesSchema),
	})

	schema, err := c.Schema(t.Context())
	require.NoError(t, err)

	doc, err := document.New(schema, map[string]any{"id": "1", "tags": []any{"north"}})
	require.NoError(t, err)

	require.NoError(t, c.Index(t.Context(), []*document.Document{doc}, true))

	updates := requestsTo(transport, "cities/update/json")
	require.Len(t, updates, 2)
	assert.Empty(t, updates[0].Params.Get("commit"))
	assert.JSONEq(t, `[{"id":"1","tags":["north"]}]`, string(updates[0].Body))
	assert.Equal(t, "true", updates[1].Params.Get("commit"))
	assert.Nil(t, updates[1].Body)
}

func TestCollectionDelete(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/update/json": testutil.RespondJSON(`{}`),
		"cities/schema":      testutil.RespondJSON(citiesSchema),
	})

	require.NoError(t, c.Delete(t.Context(), "id", 7, false))
	req := transport.LastRequest()
	assert.JSONEq(t, `{"delete":{"query":"id:7"}}`, string(req.Body))
	assert.Empty(t, req.Params.Get("commit"))

	schema, err := c.Schema(t.Context())
	require.NoError(t, err)

	d1, err := document.New(schema, map[string]any{"id": "1"})
	require.NoError(t, err)
	d2, err := document.New(schema, map[string]any{"id": "2"})
	require.NoError(t, err)
	docs, err := document.NewDocs(d1, d2)
	require.NoError(t, err)

	require.NoError(t, c.DeleteDocs(t.Context(), docs, true))
	req = transport.LastRequest()
	assert.JSONEq(t, `{"delete":{"query":"id:(1 2)"}}`, string(req.Body))
	assert.Equal(t, "true", req.Params.Get("commit"))
}

func TestCollectionAddSchemaFields(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/schema":        testutil.RespondJSON(citiesSchema),
		"cities/schema/fields": testutil.RespondJSON(`{}`),
	})

	added, err := c.AddSchemaFields(t.Context(), []document.Field{
		{Name: "name", Type: "text_general"},
		{Name: "country", Type: "string"},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "country", added[0].Name)

	posts := requestsTo(transport, "cities/schema/fields")
	require.Len(t, posts, 1)
	assert.JSONEq(t, `[{"name":"country","type":"string"}]`, string(posts[0].Body))

	_, err = c.Schema(t.Context())
	require.NoError(t, err)
	assert.Len(t, requestsTo(transport, "cities/schema"), 2, "schema is fetched again after an update")
}

func TestCollectionAddSchemaFieldsNothingMissing(t *testing.T) {
	c, transport := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/schema": testutil.RespondJSON(citiesSchema),
	})

	added, err := c.AddSchemaFields(t.Context(), []document.Field{{Name: "id"}})
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Empty(t, requestsTo(transport, "cities/schema/fields"))
}

func TestCollectionAddSchemaFieldsFailure(t *testing.T) {
	c, _ := newTestCollection(t, map[string]testutil.NodeHandler{
		"cities/schema":        testutil.RespondJSON(citiesSchema),
		"cities/schema/fields": testutil.Respond(http.StatusBadRequest, "bad field"),
	})

	_, err := c.AddSchemaFields(t.Context(), []document.Field{
		{Name: "color", Type: "string"},
		{Name: "size", Type: "pint"},
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindSchema))
	assert.Contains(t, err.Error(), "Unable to update SOLR schema for color, size")
	assert.ErrorIs(t, err, types.ErrTransport)
}

func TestCollectionIsAlive(t *testing.T) {
	state := func(citiesReplica, townsReplica string) testutil.NodeHandler {
		data := `{"cities":{"shards":{"shard1":{"replicas":{"r1":{"state":"active"},"r2":{"state":"` + citiesReplica + `"}}}}},` +
			`"towns":{"shards":{"shard1":{"replicas":{"r1":{"state":"` + townsReplica + `"}}}}}}`
		body := `{"znode":{"data":` + quote(data) + `}}`

		return testutil.RespondJSON(body)
	}

	tests := []struct {
		name    string
		handler testutil.NodeHandler
		want    bool
	}{
		{"all active", state("active", "active"), true},
		{"other collection down", state("active", "down"), true},
		{"replica recovering", state("recovering", "active"), false},
		{"invalid data", testutil.RespondJSON(`{"znode":{"data":"{"}}`), false},
		{"unreachable", testutil.Respond(http.StatusInternalServerError, ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, transport := newTestCollection(t, map[string]testutil.NodeHandler{"zookeeper": tt.handler})

			assert.Equal(t, tt.want, c.IsAlive(t.Context()))

			req := transport.LastRequest()
			assert.Equal(t, "true", req.Params.Get("detail"))
			assert.Equal(t, "/clusterstate.json", req.Params.Get("path"))
		})
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
