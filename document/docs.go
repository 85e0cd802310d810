package document

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/wukong/types"
)

// Docs is an ordered collection of documents sharing one schema, used for
// batch indexing and deletion.
type Docs struct {
	docs   []*Document
	schema *Schema
}

// NewDocs creates a collection from documents.
//
// Returns:
//   - *Docs: The collection
//   - error: KindSchema error if the documents belong to different schemas
func NewDocs(docs ...*Document) (*Docs, error) {
	c := &Docs{}
	for _, d := range docs {
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Add appends a document. All documents must share the same schema.
func (c *Docs) Add(d *Document) error {
	if c.schema == nil {
		c.schema = d.schema
	} else if c.schema != d.schema {
		return types.NewError(types.KindSchema, "The types of documents in a container should be the same")
	}

	c.docs = append(c.docs, d)

	return nil
}

// Len returns the number of documents.
func (c *Docs) Len() int {
	return len(c.docs)
}

// At returns the i-th document.
func (c *Docs) At(i int) *Document {
	return c.docs[i]
}

// All iterates the documents in order.
func (c *Docs) All() iter.Seq2[int, *Document] {
	return func(yield func(int, *Document) bool) {
		for i, d := range c.docs {
			if !yield(i, d) {
				return
			}
		}
	}
}

// Documents returns a copy of the document list.
func (c *Docs) Documents() []*Document {
	return slices.Clone(c.docs)
}

// Schema returns the shared schema, or nil for an empty collection.
func (c *Docs) Schema() *Schema {
	return c.schema
}

// Data returns the indexing payload of every document.
func (c *Docs) Data() ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(c.docs))
	for _, d := range c.docs {
		data, err := d.Data()
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}

	return out, nil
}

// UniqueValues returns the unique key values rendered as a Solr term list,
// e.g. "(1 2 3)".
func (c *Docs) UniqueValues() string {
	values := make([]string, len(c.docs))
	for i, d := range c.docs {
		values[i] = fmt.Sprint(d.UniqueValue())
	}

	return "(" + strings.Join(values, " ") + ")"
}

// String implements fmt.Stringer.
func (c *Docs) String() string {
	return fmt.Sprintf("Docs(len=%d)", len(c.docs))
}
