package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/wukong/types"
)

// Operator is a comparison operator of a keyword filter.
type Operator string

// Supported operators.
const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpIn       Operator = "in"
	OpNin      Operator = "nin"
	OpWildcard Operator = "wc"
	OpNotWild  Operator = "nwc"
	OpGt       Operator = "g"
	OpGe       Operator = "ge"
	OpLt       Operator = "l"
	OpLe       Operator = "le"
	OpExists   Operator = "ex"
	OpNotExist Operator = "nex"
)

// keywordSeparator splits a keyword filter into field and operator.
const keywordSeparator = "__"

// Term is an argument of the filter builders: either an already-built Node
// or a Keyword filter.
type Term interface {
	isTerm()
}

// Node is an expression tree node that renders to Solr query syntax.
//
// Nodes are immutable values; Clone returns an independent deep copy.
type Node interface {
	Term

	// Render returns the query syntax of the node.
	Render() (string, error)

	// Clone returns a deep copy of the node.
	Clone() Node
}

// Keyword is a "field__operator" filter with its value.
type Keyword struct {
	Key   string
	Value any
}

func (Keyword) isTerm() {}

// K creates a keyword filter term.
//
// Example:
//
//	query.K("name__eq", "Taipei")
//	query.K("population__ge", 300000)
//	query.K("country__in", []string{"TW", "JP"})
func K(key string, value any) Keyword {
	return Keyword{Key: key, Value: value}
}

// Comparator returns the comparator node for the keyword.
//
// Returns:
//   - *Comparator: The leaf node
//   - error: KindConstruction error if the key has no operator suffix
func (k Keyword) Comparator() (*Comparator, error) {
	field, op, ok := strings.Cut(k.Key, keywordSeparator)
	if !ok {
		return nil, types.NewError(types.KindConstruction, "The operator is not specified in "+k.Key)
	}

	return NewComparator(Operator(op), field, k.Value), nil
}

// Comparator is the leaf node translating one field/operator/value triple.
//
// An empty key renders as an empty string and acts as a no-op placeholder.
type Comparator struct {
	op    Operator
	key   string
	value any
}

var _ Node = (*Comparator)(nil)

// NewComparator creates a comparator node.
//
// The operator is checked when the node is rendered.
func NewComparator(op Operator, key string, value any) *Comparator {
	return &Comparator{op: op, key: key, value: cloneValue(value)}
}

func (*Comparator) isTerm() {}

// Operator returns the comparison operator.
func (c *Comparator) Operator() Operator {
	return c.op
}

// Key returns the field name.
func (c *Comparator) Key() string {
	return c.key
}

// Value returns the compared value.
func (c *Comparator) Value() any {
	return c.value
}

// Clone returns a deep copy of the comparator.
func (c *Comparator) Clone() Node {
	return &Comparator{op: c.op, key: c.key, value: cloneValue(c.value)}
}

// Render returns the query syntax for the comparator.
//
// Returns:
//   - string: The query fragment, "" when the key is empty
//   - error: KindConstruction error for unsupported operators or non-list in/nin values
func (c *Comparator) Render() (string, error) {
	if c.key == "" {
		return "", nil
	}

	key, value := c.key, c.value

	switch c.op {
	case OpEq:
		switch {
		case value == nil:
			return "-" + key + ":[* TO *]", nil
		case isQuoted(value):
			return key + `:"` + format(value) + `"`, nil
		default:
			return key + ":" + format(value), nil
		}

	case OpNe:
		switch {
		case value == nil:
			return key + ":*", nil
		case isQuoted(value):
			return "-" + key + `:"` + format(value) + `"`, nil
		default:
			return "-" + key + ":" + format(value), nil
		}

	case OpIn:
		list, ok := renderList(value)
		if !ok {
			return "", types.NewError(types.KindConstruction, "Operator:in only takes list type")
		}

		return key + ":" + list, nil

	case OpNin:
		list, ok := renderList(value)
		if !ok {
			return "", types.NewError(types.KindConstruction, "Operator:not in only takes list type")
		}

		return "-" + key + ":" + list, nil

	case OpWildcard:
		return renderWildcard("", key, value), nil

	case OpNotWild:
		return renderWildcard("-", key, value), nil

	case OpGt:
		return key + ":{" + rangeBound(value) + " TO *]", nil

	case OpGe:
		return key + ":[" + rangeBound(value) + " TO *]", nil

	case OpLt:
		return key + ":[* TO " + rangeBound(value) + "}", nil

	case OpLe:
		return key + ":[* TO " + rangeBound(value) + "]", nil

	case OpExists:
		return key + ":[* TO *]", nil

	case OpNotExist:
		return "-" + key + ":[* TO *]", nil
	}

	return "", types.NewError(types.KindConstruction, "The operator:"+string(c.op)+" is not supported")
}

// String implements fmt.Stringer.
func (c *Comparator) String() string {
	return fmt.Sprintf("Comparator(%s %s %v)", c.key, c.op, c.value)
}

func renderWildcard(prefix, key string, value any) string {
	text := ""
	if !isFalsy(value) {
		text = format(value)
	}

	var s string
	if strings.Contains(text, "*") {
		s = prefix + key + ":" + text
	} else {
		s = prefix + key + ":*" + text + "*"
	}

	return strings.ReplaceAll(s, "**", "*")
}

func renderList(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", false
	}

	items := make([]string, 0, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		if isNil(item) {
			continue
		}

		if isQuoted(item) {
			items = append(items, `"`+format(item)+`"`)
		} else {
			items = append(items, format(item))
		}
	}

	return "(" + strings.Join(items, " ") + ")", true
}

func rangeBound(value any) string {
	if isFalsy(value) {
		return "*"
	}

	return format(value)
}

// isQuoted reports whether the value is rendered inside double quotes.
func isQuoted(v any) bool {
	switch v.(type) {
	case string, time.Time:
		return true
	}

	return reflect.ValueOf(v).Kind() == reflect.String && !isNumber(v)
}

func isNumber(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}

	return false
}

// format renders a scalar value. Times use the Solr date format.
func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case time.Time:
		return x.UTC().Format("2006-01-02T15:04:05Z")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}

	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}

	return false
}

// isFalsy reports nil, empty strings and lists, zero numbers and false.
func isFalsy(v any) bool {
	if isNil(v) {
		return true
	}

	if t, ok := v.(time.Time); ok {
		return t.IsZero()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() == 0
	case reflect.Struct:
		return false
	}

	return rv.IsZero()
}

// cloneValue copies list values so a comparator never aliases caller memory.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}

	cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(cp, rv)

	return cp.Interface()
}
