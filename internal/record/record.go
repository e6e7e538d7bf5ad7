package record

import (
	"strconv"
	"strings"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	default:
		return "unknown"
	}
}

// Scalar is a leaf value of a record. Numbers keep their literal text so
// that "150.40" is not collapsed to "150.4".
type Scalar struct {
	Kind Kind
	Text string
	Bool bool
}

// String returns the scalar as it is compared against document text.
func (s Scalar) String() string {
	switch s.Kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(s.Bool)
	default:
		return s.Text
	}
}

// IsEmpty reports whether the scalar is null or blank. Empty scalars are not
// checkable against a document.
func (s Scalar) IsEmpty() bool {
	return s.Kind == KindNull || strings.TrimSpace(s.String()) == ""
}

// String builds a string scalar.
func String(v string) Scalar { return Scalar{Kind: KindString, Text: v} }

// Number builds a number scalar from its literal text.
func Number(literal string) Scalar { return Scalar{Kind: KindNumber, Text: literal} }

// Bool builds a boolean scalar.
func Bool(v bool) Scalar { return Scalar{Kind: KindBool, Bool: v} }

// Null is the null scalar.
var Null = Scalar{Kind: KindNull}

// Node is a record tree: a scalar, a map with ordered keys, or a sequence.
type Node struct {
	Scalar

	// Keys holds map keys in document order; Fields holds their values.
	Keys   []string
	Fields map[string]Node

	Items []Node
}

// Leaf wraps a scalar as a node.
func Leaf(s Scalar) Node { return Node{Scalar: s} }

// Map builds a map node. Pairs are key, value, key, value...
func Map(pairs ...any) Node {
	n := Node{Scalar: Scalar{Kind: KindMap}, Fields: make(map[string]Node)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		n.Set(key, toNode(pairs[i+1]))
	}
	return n
}

// Seq builds a sequence node.
func Seq(items ...any) Node {
	n := Node{Scalar: Scalar{Kind: KindSeq}}
	for _, it := range items {
		n.Items = append(n.Items, toNode(it))
	}
	return n
}

func toNode(v any) Node {
	switch t := v.(type) {
	case Node:
		return t
	case Scalar:
		return Leaf(t)
	case string:
		return Leaf(String(t))
	case bool:
		return Leaf(Bool(t))
	case int:
		return Leaf(Number(strconv.Itoa(t)))
	case float64:
		return Leaf(Number(strconv.FormatFloat(t, 'f', -1, 64)))
	case nil:
		return Leaf(Null)
	default:
		return Leaf(Null)
	}
}

// Set adds or replaces a key on a map node, keeping first-seen key order.
func (n *Node) Set(key string, v Node) {
	if n.Fields == nil {
		n.Fields = make(map[string]Node)
	}
	if _, exists := n.Fields[key]; !exists {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = v
}

// IsMap reports whether the node is a map.
func (n Node) IsMap() bool { return n.Kind == KindMap }

// IsSeq reports whether the node is a sequence.
func (n Node) IsSeq() bool { return n.Kind == KindSeq }
