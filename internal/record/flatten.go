package record

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Field is one scalar of a record addressed by its dotted path.
type Field struct {
	Path  string
	Value Scalar
}

// Flatten walks the record depth-first and returns every scalar with its
// path. Map keys contribute "key." and sequence elements "index."; the
// trailing separator is dropped at the leaf. Empty maps and sequences
// contribute nothing.
func Flatten(n Node) []Field {
	var out []Field
	flatten(n, "", &out)
	return out
}

func flatten(n Node, prefix string, out *[]Field) {
	switch n.Kind {
	case KindMap:
		for _, k := range n.Keys {
			flatten(n.Fields[k], prefix+k+".", out)
		}
	case KindSeq:
		for i, it := range n.Items {
			flatten(it, prefix+strconv.Itoa(i)+".", out)
		}
	default:
		*out = append(*out, Field{Path: strings.TrimSuffix(prefix, "."), Value: n.Scalar})
	}
}

// FieldName returns the last path segment that is not a sequence index,
// which is the key a value was declared under. "items.0.tax_rate" yields
// "tax_rate" and "dates.1" yields "dates".
func FieldName(path string) string {
	parts := strings.Split(path, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			return parts[i]
		}
	}
	return ""
}

// Canonical renders the record as compact JSON with map keys sorted, so two
// records with the same content produce the same bytes regardless of key order.
func Canonical(n Node) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, n)
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, n Node) {
	switch n.Kind {
	case KindMap:
		keys := append([]string(nil), n.Keys...)
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, n.Fields[k])
		}
		buf.WriteByte('}')
	case KindSeq:
		buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, it)
		}
		buf.WriteByte(']')
	case KindString:
		writeJSONString(buf, n.Text)
	case KindNumber:
		buf.WriteString(n.Text)
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.Bool))
	default:
		buf.WriteString("null")
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
