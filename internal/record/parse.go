package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"
)

// ErrUnparseable is returned when a label document cannot be read as a record.
var ErrUnparseable = errors.New("unparseable record")

// Parse decodes a JSON document into a Node. Object key order is preserved
// and number literals are kept verbatim. Strings and keys are folded to NFC
// so that composed and decomposed accents compare equal to extracted text.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return Node{}, fmt.Errorf("%w: trailing data after document", ErrUnparseable)
	}

	return n, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Node{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return Leaf(String(norm.NFC.String(t))), nil
	case json.Number:
		return Leaf(Number(t.String())), nil
	case bool:
		return Leaf(Bool(t)), nil
	case nil:
		return Leaf(Null), nil
	default:
		return Node{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	n := Node{Scalar: Scalar{Kind: KindMap}, Fields: make(map[string]Node)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		n.Set(norm.NFC.String(key), v)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return n, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	n := Node{Scalar: Scalar{Kind: KindSeq}}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		n.Items = append(n.Items, v)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return n, nil
}
