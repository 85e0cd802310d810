package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/arloliu/wukong/document"
	"github.com/arloliu/wukong/types"
)

// Section names an optional part of a select response.
type Section string

// Response sections.
const (
	SectionGroups Section = "groups"
	SectionFacets Section = "facets"
	SectionStats  Section = "stats"
)

// Result is the reformatted select response.
type Result struct {
	// Docs are the matched documents; nil when the response has no documents section.
	Docs []map[string]any `json:"docs"`

	// Total is the number of matches (numFound).
	Total int64 `json:"total"`

	// Groups is the "grouped" section; nil unless requested and present.
	Groups map[string]any `json:"groups,omitempty"`

	// Facets is the "facet_counts" section; nil unless requested and present.
	Facets map[string]any `json:"facets,omitempty"`

	// Stats is the "stats" section; nil unless requested and present.
	Stats map[string]any `json:"stats,omitempty"`
}

// Backend executes compiled queries. *wukong.Collection implements it.
type Backend interface {
	// Select runs a select request and extracts the requested sections.
	Select(ctx context.Context, params Params, sections ...Section) (*Result, error)

	// Schema returns the collection schema.
	Schema(ctx context.Context) (*document.Schema, error)

	// Index sends documents for indexing, optionally forcing a commit.
	Index(ctx context.Context, docs []*document.Document, commit bool) error
}

func (m Manager) requireBackend() error {
	if m.backend == nil {
		return types.NewError(types.KindConfiguration, "query manager has no backend")
	}

	return nil
}

func (m Manager) selectParams(extra []Params) (Params, error) {
	p, err := m.Params()
	if err != nil {
		return nil, err
	}

	for _, e := range extra {
		p = p.Merge(e)
	}

	return p, nil
}

func (m Manager) selectSections(ctx context.Context, extra []Params, sections ...Section) (*Result, error) {
	if err := m.requireBackend(); err != nil {
		return nil, err
	}

	p, err := m.selectParams(extra)
	if err != nil {
		return nil, err
	}

	return m.backend.Select(ctx, p, sections...)
}

// Raw runs the query and returns the reformatted response.
//
// Parameters:
//   - ctx: Context for cancellation
//   - extra: Additional request parameters, applied in order
//
// Returns:
//   - *Result: Documents and total
//   - error: Construction, transport or parse error
func (m Manager) Raw(ctx context.Context, extra ...Params) (*Result, error) {
	return m.selectSections(ctx, extra)
}

// Groups runs the query and returns the grouped section.
//
// A response without the section is an error; there is no default value.
func (m Manager) Groups(ctx context.Context, extra ...Params) (map[string]any, error) {
	res, err := m.selectSections(ctx, extra, SectionGroups)
	if err != nil {
		return nil, err
	}

	if res.Groups == nil {
		return nil, missingSection(SectionGroups)
	}

	return res.Groups, nil
}

// Facets runs the query and returns the facet counts section.
//
// A response without the section is an error; there is no default value.
func (m Manager) Facets(ctx context.Context, extra ...Params) (map[string]any, error) {
	res, err := m.selectSections(ctx, extra, SectionFacets)
	if err != nil {
		return nil, err
	}

	if res.Facets == nil {
		return nil, missingSection(SectionFacets)
	}

	return res.Facets, nil
}

// StatsResult runs the query and returns the stats section.
func (m Manager) StatsResult(ctx context.Context, extra ...Params) (map[string]any, error) {
	res, err := m.selectSections(ctx, extra, SectionStats)
	if err != nil {
		return nil, err
	}

	if res.Stats == nil {
		return nil, missingSection(SectionStats)
	}

	return res.Stats, nil
}

// All runs the query and maps every result to a document.
func (m Manager) All(ctx context.Context, extra ...Params) (*document.Docs, error) {
	res, err := m.Raw(ctx, extra...)
	if err != nil {
		return nil, err
	}

	if res.Docs == nil {
		return nil, missingSection("docs")
	}

	schema, err := m.backend.Schema(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := document.FromJSON(schema, res.Docs)
	if err != nil {
		return nil, err
	}

	return document.NewDocs(docs...)
}

// One runs the query limited to one row and returns the first document,
// or nil when nothing matches.
func (m Manager) One(ctx context.Context, extra ...Params) (*document.Document, error) {
	res, err := m.Limit(1).Raw(ctx, extra...)
	if err != nil {
		return nil, err
	}

	if res.Docs == nil {
		return nil, missingSection("docs")
	}

	if len(res.Docs) == 0 {
		return nil, nil //nolint:nilnil // no match is not an error
	}

	schema, err := m.backend.Schema(ctx)
	if err != nil {
		return nil, err
	}

	return document.New(schema, res.Docs[0])
}

// Get is Filter(terms...).One(ctx).
func (m Manager) Get(ctx context.Context, terms ...Term) (*document.Document, error) {
	f, err := m.Filter(terms...)
	if err != nil {
		return nil, err
	}

	return f.One(ctx)
}

// Create indexes a new document with a forced commit.
//
// Parameters:
//   - ctx: Context for cancellation
//   - fields: Field values of the document
//   - opts: Document options (e.g. document.WithFieldWeights)
//
// Returns:
//   - *document.Document: The indexed document
//   - error: KindDuplicateKey error if the unique key already exists
func (m Manager) Create(ctx context.Context, fields map[string]any, opts ...document.Option) (*document.Document, error) {
	if err := m.requireBackend(); err != nil {
		return nil, err
	}

	schema, err := m.backend.Schema(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := document.New(schema, fields, opts...)
	if err != nil {
		return nil, err
	}

	existing, err := m.Get(ctx, K(doc.UniqueKey()+keywordSeparator+string(OpEq), doc.UniqueValue()))
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, types.NewError(types.KindDuplicateKey,
			fmt.Sprintf("The unique key %v already exists", doc.UniqueValue()))
	}

	if err := m.backend.Index(ctx, []*document.Document{doc}, true); err != nil {
		return nil, err
	}

	return doc, nil
}

// Update applies a partial update to an existing document with a forced commit.
//
// Returns:
//   - *document.Document: The partial update document
//   - error: KindNotFound error if no document has the unique key
func (m Manager) Update(ctx context.Context, fields map[string]any, opts ...document.Option) (*document.Document, error) {
	if err := m.requireBackend(); err != nil {
		return nil, err
	}

	schema, err := m.backend.Schema(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := document.New(schema, fields, append(slices.Clone(opts), document.WithPartialUpdate())...)
	if err != nil {
		return nil, err
	}

	existing, err := m.Get(ctx, K(doc.UniqueKey()+keywordSeparator+string(OpEq), doc.UniqueValue()))
	if err != nil {
		return nil, err
	}

	if existing == nil || fmt.Sprint(existing.UniqueValue()) != fmt.Sprint(doc.UniqueValue()) {
		return nil, types.NewError(types.KindNotFound,
			fmt.Sprintf("The document with unique key %v does not exist", doc.UniqueValue()))
	}

	if err := m.backend.Index(ctx, []*document.Document{doc}, true); err != nil {
		return nil, err
	}

	return doc, nil
}

func missingSection(s Section) error {
	return types.NewError(types.KindMissingSection, "response has no "+string(s)+" section")
}
