// Package document maps Solr documents to Go values.
//
// A [Document] is an explicit ordered field map bound to the [Schema] of its
// collection. Documents are validated when they are built and again right
// before they are serialized for indexing:
//
//	schema, _ := collection.Schema(ctx)
//	doc, err := document.New(schema, map[string]any{
//	    "id":   "city-1",
//	    "name": "Taipei",
//	    "tags": []string{"capital"},
//	})
//
// Partial updates only touch the provided fields:
//
//	doc, _ := document.New(schema, map[string]any{"id": "city-1", "name": "Taipei City"},
//	    document.WithPartialUpdate(),
//	)
//
// Results can be decoded into structs with the `solr` tag:
//
//	type City struct {
//	    ID   string `solr:"id"`
//	    Name string `solr:"name"`
//	}
//	var c City
//	_ = doc.Decode(&c)
package document
