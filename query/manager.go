package query

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// InfiniteRows is the default row limit: every matching document.
const InfiniteRows = 999999999

// matchAll is the query used when the filter tree renders empty.
const matchAll = "*:*"

// Options holds extra namespaced parameters for grouping and faceting,
// e.g. Options{"facet": "true"} becomes "group.facet=true" for GroupBy.
type Options map[string]any

// Manager is an immutable query builder.
//
// Every builder method returns a new Manager and leaves the receiver
// untouched; the filter tree is deep-copied on each call so earlier
// managers remain independently usable.
//
//	m, err := query.NewManager(collection).Filter(query.K("city__eq", "Taipei"))
//	if err != nil {
//	    return err
//	}
//	params, err := m.Only("id", "name").SortBy("-population").Limit(10).Params()
//
// Use NewManager to get the default row limit and weights. The zero Manager
// is an empty query without a backend; it is safe to use but returns no rows
// until Limit is set.
type Manager struct {
	backend Backend
	node    Node

	sort         string
	weights      map[string]float64
	fields       []string
	edismax      bool
	rows         int
	start        int
	facetFields  []string
	facetOptions Options
	mincount     int
	groupFields  []string
	groupLimit   int
	groupOptions Options
	boostFunc    string
	bfWeight     float64
	boostQuery   string
	bqWeight     float64
	minimumMatch string
	keywords     string
	statsFields  []string
}

// NewManager creates a Manager with no filters.
//
// Parameters:
//   - backend: Collaborator executing terminal operations (may be nil when
//     only Params is used)
//
// Returns:
//   - Manager: An empty query
func NewManager(backend Backend) Manager {
	return Manager{
		backend:  backend,
		node:     &Logic{kind: KindAnd},
		rows:     InfiniteRows,
		mincount: 1,
		bfWeight: 1,
		bqWeight: 1,
	}
}

// tree returns the filter tree, an empty AND for the zero Manager.
func (m Manager) tree() Node {
	if m.node == nil {
		return &Logic{kind: KindAnd}
	}

	return m.node
}

// clone returns a copy sharing no mutable state with m.
func (m Manager) clone() Manager {
	c := m
	c.node = m.tree().Clone()
	c.weights = maps.Clone(m.weights)
	c.fields = slices.Clone(m.fields)
	c.facetFields = slices.Clone(m.facetFields)
	c.facetOptions = maps.Clone(m.facetOptions)
	c.groupFields = slices.Clone(m.groupFields)
	c.groupOptions = maps.Clone(m.groupOptions)
	c.statsFields = slices.Clone(m.statsFields)

	return c
}

// Node returns a copy of the filter tree.
func (m Manager) Node() Node {
	return m.tree().Clone()
}

// Filter narrows the query with additional criteria, AND-ed with the
// existing ones.
//
// Example:
//
//	m.Filter(query.K("name__eq", "Test Name"))
//	m.Filter(query.K("name__eq", "Test Name"), query.K("city__wc", "Test*"))
//	m.Filter(query.Must(query.Or(query.K("name__eq", "a"), query.K("city__wc", "b*"))),
//	    query.K("population__ge", 300000))
//
// Returns:
//   - Manager: The narrowed query
//   - error: KindConstruction error for malformed keywords
func (m Manager) Filter(terms ...Term) (Manager, error) {
	items, err := buildItems(terms)
	if err != nil {
		return m, err
	}

	c := m.clone()

	root, ok := c.node.(*Logic)
	if !ok || root.kind != KindAnd {
		root = &Logic{kind: KindAnd, children: []Node{c.node}}
	}
	root.children = append(root.children, items...)

	if len(root.children) == 1 {
		c.node = root.children[0]
	} else {
		c.node = root
	}

	return c, nil
}

// SortBy sorts the results by a field. A leading "-" sorts descending.
//
//	m.SortBy("name")   // name asc
//	m.SortBy("-date")  // date desc
func (m Manager) SortBy(field string) Manager {
	c := m.clone()
	c.sort = field

	return c
}

// GroupBy groups results by fields, returning up to limit documents per group.
//
// Parameters:
//   - fields: Fields to group on
//   - limit: Documents per group
//   - options: Extra parameters emitted as "group.<key>"
//
// Returns:
//   - Manager: The grouped query
func (m Manager) GroupBy(fields []string, limit int, options Options) Manager {
	c := m.clone()
	c.groupFields = slices.Clone(fields)
	c.groupLimit = limit
	c.groupOptions = maps.Clone(options)

	return c
}

// Facet requests facet counts for fields.
//
// Parameters:
//   - fields: Fields to facet on
//   - mincount: Minimum count of a facet value to be returned
//   - options: Extra parameters emitted as "facet.<key>"
//
// Returns:
//   - Manager: The faceted query
func (m Manager) Facet(fields []string, mincount int, options Options) Manager {
	c := m.clone()
	c.facetFields = slices.Clone(fields)
	c.mincount = mincount
	c.facetOptions = maps.Clone(options)

	return c
}

// Stats requests field statistics.
func (m Manager) Stats(fields ...string) Manager {
	c := m.clone()
	c.statsFields = slices.Clone(fields)

	return c
}

// BoostByFunc boosts results with a function query, e.g. "{!func}geodist()".
func (m Manager) BoostByFunc(expr string, weight float64) Manager {
	c := m.clone()
	c.boostFunc = expr
	c.bfWeight = weight

	return c
}

// BoostByQuery boosts results matching a query, e.g. "id:100".
func (m Manager) BoostByQuery(expr string, weight float64) Manager {
	c := m.clone()
	c.boostQuery = expr
	c.bqWeight = weight

	return c
}

// Search switches to extended relevance search (edismax) over text.
//
// The filter tree moves to the filter query; text becomes the main query.
//
// Parameters:
//   - text: Keywords; whitespace runs are collapsed
//   - minimumMatch: Solr "mm" spec, "" to omit
//   - weights: Per-field weights emitted as "field^weight" in "qf"
//
// Returns:
//   - Manager: The search query
func (m Manager) Search(text, minimumMatch string, weights map[string]float64) Manager {
	c := m.clone()
	c.edismax = true
	c.keywords = text
	c.minimumMatch = minimumMatch
	c.weights = maps.Clone(weights)

	return c
}

// Only restricts the returned fields.
func (m Manager) Only(fields ...string) Manager {
	c := m.clone()
	c.fields = slices.Clone(fields)

	return c
}

// Limit sets the number of returned documents.
func (m Manager) Limit(rows int) Manager {
	c := m.clone()
	c.rows = rows

	return c
}

// Offset sets the index of the first returned document.
func (m Manager) Offset(start int) Manager {
	c := m.clone()
	c.start = start

	return c
}

// Params compiles the query into Solr request parameters.
//
// Returns:
//   - Params: The flat parameter map
//   - error: KindConstruction error raised while rendering the filter tree
func (m Manager) Params() (Params, error) {
	q, err := m.tree().Render()
	if err != nil {
		return nil, err
	}

	if q == "" {
		q = matchAll
	}

	p := Params{
		"rows":  m.rows,
		"start": m.start,
		"wt":    "json",
	}

	if m.edismax {
		p["defType"] = "edismax"
		p["fq"] = q
		text := strings.Join(strings.Fields(m.keywords), " ")
		if text == "" {
			text = matchAll
		}
		p["q"] = text
	} else {
		p["q"] = q
	}

	if len(m.weights) > 0 {
		parts := make([]string, 0, len(m.weights))
		for _, field := range slices.Sorted(maps.Keys(m.weights)) {
			parts = append(parts, field+"^"+formatWeight(m.weights[field]))
		}
		p["qf"] = strings.Join(parts, " ")
	}

	if m.minimumMatch != "" {
		p["mm"] = m.minimumMatch
	}

	if len(m.fields) > 0 {
		p["fl"] = strings.Join(m.fields, ",")
	}

	if m.sort != "" {
		if field, ok := strings.CutPrefix(m.sort, "-"); ok {
			p["sort"] = field + " desc"
		} else {
			p["sort"] = m.sort + " asc"
		}
	}

	if len(m.groupFields) > 0 {
		p["group"] = "on"
		p["group.ngroups"] = "true"
		p["group.field"] = slices.Clone(m.groupFields)
		p["group.limit"] = m.groupLimit
		for k, v := range m.groupOptions {
			p["group."+k] = v
		}
	}

	if len(m.facetFields) > 0 {
		p["facet"] = "on"
		p["facet.field"] = slices.Clone(m.facetFields)
		p["facet.mincount"] = m.mincount
		for k, v := range m.facetOptions {
			p["facet."+k] = v
		}
	}

	if len(m.statsFields) > 0 {
		p["stats"] = "true"
		p["stats.field"] = slices.Clone(m.statsFields)
	}

	if m.boostFunc != "" {
		p["bf"] = m.boostFunc + "^" + formatWeight(m.bfWeight)
	}

	if m.boostQuery != "" {
		p["bq"] = m.boostQuery + "^" + formatWeight(m.bqWeight)
	}

	return p, nil
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
