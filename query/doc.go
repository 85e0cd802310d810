// Package query builds Solr queries from a small boolean expression language.
//
// # Filters
//
// Leaf filters are keyword terms of the form "field__operator":
//
//	query.K("name__eq", "Test Name")        // name:"Test Name"
//	query.K("population__ge", 300000)       // population:[300000 TO *]
//	query.K("country__in", []string{"TW"})  // country:("TW")
//	query.K("city__wc", "Tai")              // city:*Tai*
//
// Supported operators: eq, ne, in, nin, wc, nwc, g, ge, l, le, ex, nex.
//
// Leaves are combined with [And], [Or] and [Not]:
//
//	f, err := query.Or(query.K("name__eq", "a"), query.K("city__wc", "b*"))
//	// (name:"a" OR city:b*)
//
// NOT accepts a single operand; more is a construction error.
//
// # Manager
//
// [Manager] is an immutable builder. Every method returns a new value, so a
// base query can be shared and specialized freely:
//
//	base, err := query.NewManager(collection).Filter(query.K("country__eq", "TW"))
//	if err != nil {
//	    return err
//	}
//	top := base.SortBy("-population").Limit(10)
//	names := base.Only("name")
//
//	docs, err := top.All(ctx)
//
// [Manager.Params] compiles the query into the flat Solr parameter map
// (q, fq, rows, start, sort, fl, group.*, facet.*, stats.*, bf, bq, qf, mm).
//
// # Errors
//
// Malformed keywords, unsupported operators, NOT with several operands and
// non-list values for in/nin fail with a types.KindConstruction error,
// either when the node is built or when it is rendered.
package query
