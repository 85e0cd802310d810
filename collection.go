package wukong

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/arloliu/wukong/document"
	"github.com/arloliu/wukong/query"
	"github.com/arloliu/wukong/types"
)

// Collection is the API of one Solr collection (or alias) over a Router.
//
// It implements query.Backend, so query managers created with Documents run
// against it. The collection schema is fetched lazily and cached.
type Collection struct {
	name   string
	router *Router

	mu     sync.Mutex
	schema *document.Schema
}

var _ query.Backend = (*Collection)(nil)

// NewCollection creates a collection API over an existing router.
//
// Parameters:
//   - name: Collection or alias name
//   - router: The router sending requests
//
// Returns:
//   - *Collection: The collection API
//   - error: KindConfiguration error if name is empty or router is nil
func NewCollection(name string, router *Router) (*Collection, error) {
	if name == "" {
		return nil, types.NewError(types.KindConfiguration, "collection name is empty")
	}

	if router == nil {
		return nil, types.NewError(types.KindConfiguration, "router is nil")
	}

	return &Collection{name: name, router: router}, nil
}

// Open creates a router for a collection and returns its API.
//
// The collection name is passed to the membership source as resource unless
// another resource is set through WithResource.
//
// Parameters:
//   - name: Collection or alias name
//   - addresses: Node addresses (may be empty with a membership source)
//   - opts: Router options
//
// Returns:
//   - *Collection: The collection API
//   - error: KindConfiguration error for invalid configuration
//
// Example:
//
//	zk, _ := membership.NewZooKeeper([]string{"zk1:2181"})
//	cities, err := wukong.Open("cities", nil, wukong.WithMembershipSource(zk))
//	if err != nil {
//	    return err
//	}
//	docs, err := cities.Documents().Filter(query.K("country__eq", "TW"))
func Open(name string, addresses []string, opts ...Option) (*Collection, error) {
	router, err := NewRouter(addresses, append([]Option{WithResource(name)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return NewCollection(name, router)
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Router returns the underlying router.
func (c *Collection) Router() *Router {
	return c.router
}

// Documents returns an empty query manager bound to the collection.
func (c *Collection) Documents() query.Manager {
	return query.NewManager(c)
}

func (c *Collection) path(p string) string {
	return c.name + "/" + p
}

// Select runs a select request and reformats the response.
//
// Parameters:
//   - ctx: Context for cancellation
//   - params: Compiled query parameters
//   - sections: Optional sections to extract (groups, facets, stats)
//
// Returns:
//   - *query.Result: Documents, total and the requested sections present in the response
//   - error: KindTransport or KindParse error
func (c *Collection) Select(ctx context.Context, params query.Params, sections ...query.Section) (*query.Result, error) {
	resp, err := c.router.Get(ctx, c.path("select"), params.Values())
	if err != nil {
		return nil, err
	}

	return parseSelect(resp, sections)
}

func parseSelect(resp map[string]any, sections []query.Section) (*query.Result, error) {
	res := &query.Result{}
	for _, s := range sections {
		switch s {
		case query.SectionGroups:
			res.Groups, _ = resp["grouped"].(map[string]any)
		case query.SectionFacets:
			res.Facets, _ = resp["facet_counts"].(map[string]any)
		case query.SectionStats:
			res.Stats, _ = resp["stats"].(map[string]any)
		}
	}

	body, ok := resp["response"].(map[string]any)
	if !ok {
		return res, nil
	}

	raw, ok := body["docs"].([]any)
	if !ok {
		return res, nil
	}

	res.Docs = make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, types.NewError(types.KindParse, fmt.Sprintf("Parsing Error: unexpected document %v", item))
		}
		res.Docs = append(res.Docs, doc)
	}

	res.Total = int64(len(res.Docs))
	if n, ok := body["numFound"].(json.Number); ok {
		total, err := n.Int64()
		if err != nil {
			return nil, types.WrapError(types.KindParse, "Parsing Error: numFound "+n.String(), err)
		}
		res.Total = total
	}

	return res, nil
}

// Update sends index payloads to the update handler.
//
// An empty payload list is a no-op.
//
// Parameters:
//   - ctx: Context for cancellation
//   - docs: Index payloads, e.g. from document.Document.Data
//   - commit: Whether Solr should commit the update
//
// Returns:
//   - error: KindTransport or KindParse error
func (c *Collection) Update(ctx context.Context, docs []map[string]any, commit bool) error {
	if len(docs) == 0 {
		return nil
	}

	body, err := json.Marshal(docs)
	if err != nil {
		return types.WrapError(types.KindConstruction, "unable to encode documents", err)
	}

	_, err = c.router.Post(ctx, c.path("update/json"), commitParams(commit), body)

	return err
}

// Index validates and indexes documents, then commits when requested.
func (c *Collection) Index(ctx context.Context, docs []*document.Document, commit bool) error {
	if len(docs) == 0 {
		return nil
	}

	data := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		payload, err := d.Data()
		if err != nil {
			return err
		}
		data = append(data, payload)
	}

	if err := c.Update(ctx, data, false); err != nil {
		return err
	}

	if commit {
		return c.Commit(ctx)
	}

	return nil
}

// Delete deletes the documents matching uniqueKey:value.
//
// Parameters:
//   - ctx: Context for cancellation
//   - uniqueKey: The unique key field
//   - value: The value, or a term list such as "(1 2 3)"
//   - commit: Whether Solr should commit the deletion
//
// Returns:
//   - error: KindTransport or KindParse error
func (c *Collection) Delete(ctx context.Context, uniqueKey string, value any, commit bool) error {
	body, err := json.Marshal(map[string]any{
		"delete": map[string]any{"query": fmt.Sprintf("%s:%v", uniqueKey, value)},
	})
	if err != nil {
		return types.WrapError(types.KindConstruction, "unable to encode delete query", err)
	}

	_, err = c.router.Post(ctx, c.path("update/json"), commitParams(commit), body)

	return err
}

// DeleteDocs deletes every document of docs with a single request.
func (c *Collection) DeleteDocs(ctx context.Context, docs *document.Docs, commit bool) error {
	if docs == nil || docs.Len() == 0 {
		return nil
	}

	return c.Delete(ctx, docs.Schema().UniqueKey, docs.UniqueValues(), commit)
}

// Commit hard-commits pending updates.
func (c *Collection) Commit(ctx context.Context) error {
	_, err := c.router.Post(ctx, c.path("update/json"), commitParams(true), nil)

	return err
}

// Schema returns the collection schema, fetching it on first use.
func (c *Collection) Schema(ctx context.Context) (*document.Schema, error) {
	c.mu.Lock()
	cached := c.schema
	c.mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	schema, err := c.FetchSchema(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.schema = schema
	c.mu.Unlock()

	return schema, nil
}

// FetchSchema reads the schema from Solr, bypassing the cache.
func (c *Collection) FetchSchema(ctx context.Context) (*document.Schema, error) {
	resp, err := c.router.Get(ctx, c.path("schema"), nil)
	if err != nil {
		return nil, err
	}

	raw, _ := resp["schema"].(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}

	return document.ParseSchema(raw)
}

// AddSchemaFields adds the fields that the schema does not declare yet.
//
// Parameters:
//   - ctx: Context for cancellation
//   - fields: Field definitions; already declared fields are skipped
//
// Returns:
//   - []document.Field: The fields that were added
//   - error: KindSchema error naming the fields when the schema API rejects them
func (c *Collection) AddSchemaFields(ctx context.Context, fields []document.Field) ([]document.Field, error) {
	schema, err := c.Schema(ctx)
	if err != nil {
		return nil, err
	}

	missing := schema.MissingFields(fields)
	if len(missing) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(missing)
	if err != nil {
		return nil, types.WrapError(types.KindConstruction, "unable to encode schema fields", err)
	}

	if _, err := c.router.Post(ctx, c.path("schema/fields"), nil, body); err != nil {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.Name
		}

		return nil, types.WrapError(types.KindSchema,
			"Unable to update SOLR schema for "+strings.Join(names, ", "), err)
	}

	c.mu.Lock()
	c.schema = nil
	c.mu.Unlock()

	return missing, nil
}

// IsAlive reports whether every replica of the collection is active, as seen
// by the node's ZooKeeper view of the legacy cluster state.
//
// Transport failures and unreadable state report false.
func (c *Collection) IsAlive(ctx context.Context) bool {
	params := url.Values{}
	params.Set("detail", "true")
	params.Set("path", "/clusterstate.json")

	resp, err := c.router.Get(ctx, "zookeeper", params)
	if err != nil {
		c.router.config.Logger.Warn("failed to check zookeeper",
			"collection", c.name,
			"error", err,
		)

		return false
	}

	znode, _ := resp["znode"].(map[string]any)
	data, _ := znode["data"].(string)

	var state map[string]struct {
		Shards map[string]struct {
			Replicas map[string]struct {
				State string `json:"state"`
			} `json:"replicas"`
		} `json:"shards"`
	}
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return false
	}

	for _, shard := range state[c.name].Shards {
		for _, replica := range shard.Replicas {
			if replica.State != "active" {
				return false
			}
		}
	}

	return true
}

func commitParams(commit bool) url.Values {
	if !commit {
		return nil
	}

	return url.Values{"commit": []string{"true"}}
}
