package document

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/arloliu/wukong/types"
)

// Field describes a (dynamic) field of a Solr collection schema.
type Field struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	MultiValued bool   `json:"multiValued,omitempty" yaml:"multi_valued,omitempty" mapstructure:"multiValued"`
	Indexed     *bool  `json:"indexed,omitempty" yaml:"indexed,omitempty" mapstructure:"indexed"`
	Stored      *bool  `json:"stored,omitempty" yaml:"stored,omitempty" mapstructure:"stored"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// Schema is the part of a Solr collection schema the mapping layer validates against.
type Schema struct {
	UniqueKey     string  `json:"uniqueKey" mapstructure:"uniqueKey"`
	Fields        []Field `json:"fields" mapstructure:"fields"`
	DynamicFields []Field `json:"dynamicFields" mapstructure:"dynamicFields"`

	once     sync.Once
	byName   map[string]Field
	patterns []*regexp.Regexp
}

// ParseSchema converts the "schema" object of a Solr schema API response.
//
// Unknown attributes are ignored. Boolean attributes sent as strings
// ("true") are accepted.
//
// Parameters:
//   - raw: The decoded JSON object
//
// Returns:
//   - *Schema: The parsed schema
//   - error: KindSchema error if the object cannot be decoded
func ParseSchema(raw map[string]any) (*Schema, error) {
	s := &Schema{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, types.WrapError(types.KindSchema, "Unable to decode SOLR schema", err)
	}

	if err := dec.Decode(raw); err != nil {
		return nil, types.WrapError(types.KindSchema, "Unable to decode SOLR schema", err)
	}

	return s, nil
}

func (s *Schema) index() {
	s.once.Do(func() {
		s.byName = make(map[string]Field, len(s.Fields))
		for _, f := range s.Fields {
			s.byName[f.Name] = f
		}

		s.patterns = make([]*regexp.Regexp, 0, len(s.DynamicFields))
		for _, df := range s.DynamicFields {
			s.patterns = append(s.patterns, globPattern(df.Name))
		}
	})
}

// globPattern turns a dynamic field name such as "*_txt" into an anchored regexp.
func globPattern(name string) *regexp.Regexp {
	parts := strings.Split(name, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}

	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// Field returns the declared (non-dynamic) field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	s.index()
	f, ok := s.byName[name]

	return f, ok
}

// HasField reports whether name is a declared field or matches a dynamic field.
func (s *Schema) HasField(name string) bool {
	if _, ok := s.Field(name); ok {
		return true
	}

	for _, p := range s.patterns {
		if p.MatchString(name) {
			return true
		}
	}

	return false
}

// FieldNames returns the names of the declared fields in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}

	return names
}

// MissingFields returns the fields that are not yet declared in the schema.
func (s *Schema) MissingFields(fields []Field) []Field {
	var missing []Field
	for _, f := range fields {
		if _, ok := s.Field(f.Name); !ok {
			missing = append(missing, f)
		}
	}

	return missing
}

// Validate checks field values against the schema.
//
// The unique key must be present and non-nil, multi-valued fields must hold
// lists, and every other field must be declared or match a dynamic field.
//
// Parameters:
//   - fields: Field values keyed by name
//   - order: Field names in the order to check them
//
// Returns:
//   - error: KindSchema error describing the first violation, or nil
func (s *Schema) Validate(fields map[string]any, order []string) error {
	if v, ok := fields[s.UniqueKey]; !ok || v == nil {
		return types.NewError(types.KindSchema, "Unique key is not specified")
	}

	for _, key := range order {
		value := fields[key]
		if f, ok := s.Field(key); ok {
			if f.MultiValued && !IsList(value) {
				return types.NewError(types.KindSchema, key+" is not list type")
			}

			continue
		}

		if !s.HasField(key) {
			return types.NewError(types.KindSchema, "Field ("+key+") is not in SOLR schema fields")
		}
	}

	return nil
}

// IsList reports whether v is a slice or an array.
func IsList(v any) bool {
	if v == nil {
		return false
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
