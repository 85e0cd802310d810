package document

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/arloliu/wukong/types"
)

// versionField is maintained by Solr and never sent back on indexing.
const versionField = "_version_"

// Document is a Solr document: an ordered mapping from field name to value
// bound to the schema of its collection.
//
// Field order is the insertion order. Validation happens on construction and
// again before the document is serialized for indexing.
type Document struct {
	schema        *Schema
	keys          []string
	values        map[string]any
	partialUpdate bool
	weights       map[string]float64
}

// Option configures a Document.
type Option func(*Document)

// WithPartialUpdate marks the document as a partial (atomic) update.
//
// Non-key fields are then sent as {"set": value} so Solr only replaces the
// provided fields instead of the whole document.
func WithPartialUpdate() Option {
	return func(d *Document) {
		d.partialUpdate = true
	}
}

// WithFieldWeights sets per-field index-time boosts.
//
// Parameters:
//   - weights: Boost per field name
//
// Returns:
//   - Option: Configuration option
func WithFieldWeights(weights map[string]float64) Option {
	return func(d *Document) {
		if len(weights) > 0 {
			d.weights = maps.Clone(weights)
		}
	}
}

// New creates a document from field values and validates it against the schema.
//
// Nil values and the Solr-maintained _version_ field are skipped. Fields are
// inserted in lexical order of their names; use Set afterwards to control order.
//
// Parameters:
//   - schema: The collection schema
//   - fields: Field values keyed by name
//   - opts: Optional configuration options
//
// Returns:
//   - *Document: The validated document
//   - error: KindSchema error if validation fails
func New(schema *Schema, fields map[string]any, opts ...Option) (*Document, error) {
	if schema == nil {
		return nil, types.NewError(types.KindConfiguration, "document schema is nil")
	}

	d := &Document{
		schema: schema,
		values: make(map[string]any, len(fields)),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		value := fields[key]
		if value == nil || key == versionField {
			continue
		}
		d.Set(key, value)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// FromJSON converts documents decoded from a Solr select response.
//
// Parameters:
//   - schema: The collection schema
//   - docs: The "docs" array of the response
//
// Returns:
//   - []*Document: One document per entry, in response order
//   - error: KindSchema error if any entry fails validation
func FromJSON(schema *Schema, docs []map[string]any) ([]*Document, error) {
	out := make([]*Document, 0, len(docs))
	for _, raw := range docs {
		d, err := New(schema, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, nil
}

// Schema returns the schema the document is bound to.
func (d *Document) Schema() *Schema {
	return d.schema
}

// UniqueKey returns the name of the schema's unique key field.
func (d *Document) UniqueKey() string {
	return d.schema.UniqueKey
}

// UniqueValue returns the value of the unique key field, or nil.
func (d *Document) UniqueValue() any {
	return d.values[d.schema.UniqueKey]
}

// Get returns the value of a field, or nil when unset.
func (d *Document) Get(key string) any {
	return d.values[key]
}

// Lookup returns the value of a field and whether it is set.
func (d *Document) Lookup(key string) (any, bool) {
	v, ok := d.values[key]

	return v, ok
}

// Set sets the value of a field, appending it to the field order when new.
func (d *Document) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes a field. The unique key cannot be removed.
//
// Returns:
//   - error: KindSchema error when key is the unique key
func (d *Document) Delete(key string) error {
	if _, ok := d.values[key]; !ok {
		return nil
	}

	if key == d.schema.UniqueKey {
		return types.NewError(types.KindSchema, "The unique key "+key+" can not be deleted")
	}

	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })

	return nil
}

// Keys returns the field names in insertion order.
func (d *Document) Keys() []string {
	return slices.Clone(d.keys)
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.keys)
}

// Fields returns a copy of the field values.
func (d *Document) Fields() map[string]any {
	return maps.Clone(d.values)
}

// IsPartialUpdate reports whether the document is a partial update.
func (d *Document) IsPartialUpdate() bool {
	return d.partialUpdate
}

// SetPartialUpdate toggles partial update mode.
func (d *Document) SetPartialUpdate(v bool) {
	d.partialUpdate = v
}

// SetFieldWeight sets the index-time boost for a field.
func (d *Document) SetFieldWeight(field string, weight float64) {
	if d.weights == nil {
		d.weights = make(map[string]float64)
	}
	d.weights[field] = weight
}

// FieldWeight returns the index-time boost for a field.
func (d *Document) FieldWeight(field string) (float64, bool) {
	w, ok := d.weights[field]

	return w, ok
}

// Validate checks the document against its schema.
func (d *Document) Validate() error {
	return d.schema.Validate(d.values, d.keys)
}

// Data returns the JSON-ready representation used for indexing.
//
// The document is validated first. In partial update mode every non-key
// field is wrapped as {"set": value}; boosted fields are wrapped as
// {"value": value, "boost": weight}.
//
// Returns:
//   - map[string]any: The indexing payload
//   - error: KindSchema error if validation fails
func (d *Document) Data() (map[string]any, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	data := make(map[string]any, len(d.keys))
	for _, key := range d.keys {
		value := d.values[key]
		if d.partialUpdate && key != d.schema.UniqueKey {
			value = map[string]any{"set": value}
		}

		if w, ok := d.weights[key]; ok && w != 0 {
			value = map[string]any{"value": value, "boost": w}
		}

		data[key] = value
	}

	return data, nil
}

// Equal reports whether two documents hold the same field values.
func (d *Document) Equal(other *Document) bool {
	if other == nil {
		return false
	}

	return reflect.DeepEqual(d.values, other.values)
}

// Decode copies the fields into out, which must be a pointer to a struct or map.
//
// Struct fields are matched by their `solr` tag, falling back to a
// case-insensitive name match.
//
// Parameters:
//   - out: Destination pointer
//
// Returns:
//   - error: Decoding error, if any
func (d *Document) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "solr",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return dec.Decode(d.values)
}

// String returns the field values in insertion order.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", key, d.values[key])
	}
	b.WriteByte('}')

	return b.String()
}
