package query

import (
	"strings"

	"github.com/arloliu/wukong/types"
)

// LogicKind is the boolean connective of a Logic node.
type LogicKind string

// Logic node kinds.
const (
	KindAnd LogicKind = "AND"
	KindOr  LogicKind = "OR"
	KindNot LogicKind = "NOT"
)

// Logic composes child nodes with AND, OR or NOT.
type Logic struct {
	kind     LogicKind
	children []Node
}

var _ Node = (*Logic)(nil)

// And creates an AND node.
//
// Nodes are used as-is; Keyword terms are converted to comparators.
//
// Returns:
//   - *Logic: The AND node
//   - error: KindConstruction error if a keyword lacks its operator suffix
func And(terms ...Term) (*Logic, error) {
	return newLogic(KindAnd, terms)
}

// Or creates an OR node.
//
// Returns:
//   - *Logic: The OR node
//   - error: KindConstruction error if a keyword lacks its operator suffix
func Or(terms ...Term) (*Logic, error) {
	return newLogic(KindOr, terms)
}

// Not creates a NOT node. NOT accepts at most one operand.
//
// Returns:
//   - *Logic: The NOT node
//   - error: KindConstruction error for more than one operand or a malformed keyword
func Not(terms ...Term) (*Logic, error) {
	n, err := newLogic(KindNot, terms)
	if err != nil {
		return nil, err
	}

	if len(n.children) > 1 {
		return nil, types.NewError(types.KindConstruction, "Logic node:NOT only supports one operand")
	}

	return n, nil
}

// Must panics if err is non-nil. It is intended for filter literals.
//
//	filter := query.Must(query.Or(query.K("city__eq", "Taipei"), query.K("city__eq", "Tokyo")))
func Must[N Node](n N, err error) N {
	if err != nil {
		panic(err)
	}

	return n
}

func newLogic(kind LogicKind, terms []Term) (*Logic, error) {
	children, err := buildItems(terms)
	if err != nil {
		return nil, err
	}

	return &Logic{kind: kind, children: children}, nil
}

// buildItems converts terms into nodes in argument order. Nil terms,
// including typed nil pointers, are skipped.
func buildItems(terms []Term) ([]Node, error) {
	items := make([]Node, 0, len(terms))
	for _, term := range terms {
		switch t := term.(type) {
		case nil:
			continue
		case Keyword:
			c, err := t.Comparator()
			if err != nil {
				return nil, err
			}
			items = append(items, c)
		case *Keyword:
			if t == nil {
				continue
			}
			c, err := t.Comparator()
			if err != nil {
				return nil, err
			}
			items = append(items, c)
		case *Comparator:
			if t != nil {
				items = append(items, t.Clone())
			}
		case *Logic:
			if t != nil {
				items = append(items, t.Clone())
			}
		}
	}

	return items, nil
}

func (*Logic) isTerm() {}

// Kind returns the connective.
func (l *Logic) Kind() LogicKind {
	return l.kind
}

// Children returns a copy of the child list.
func (l *Logic) Children() []Node {
	out := make([]Node, len(l.children))
	copy(out, l.children)

	return out
}

// Len returns the number of children.
func (l *Logic) Len() int {
	return len(l.children)
}

// Clone returns a deep copy of the node and its subtree.
func (l *Logic) Clone() Node {
	children := make([]Node, len(l.children))
	for i, c := range l.children {
		children[i] = c.Clone()
	}

	return &Logic{kind: l.kind, children: children}
}

// Render returns the query syntax for the node.
//
// AND/OR with no children render "", a single child renders inline, and
// several children are joined and parenthesized once. NOT renders "!(child)".
func (l *Logic) Render() (string, error) {
	if len(l.children) == 0 {
		return "", nil
	}

	if l.kind == KindNot {
		inner, err := l.children[0].Render()
		if err != nil {
			return "", err
		}

		return "!(" + inner + ")", nil
	}

	if len(l.children) == 1 {
		return l.children[0].Render()
	}

	parts := make([]string, len(l.children))
	for i, c := range l.children {
		s, err := c.Render()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}

	return "(" + strings.Join(parts, " "+string(l.kind)+" ") + ")", nil
}

// String implements fmt.Stringer. Render errors are reported inline.
func (l *Logic) String() string {
	s, err := l.Render()
	if err != nil {
		return string(l.kind) + "(" + err.Error() + ")"
	}

	return s
}
