package consistency

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		records   []string
		documents []string
		onlyRec   []string
		onlyDoc   []string
	}{
		{
			name:      "one on each side",
			records:   []string{"a", "b"},
			documents: []string{"b", "c"},
			onlyRec:   []string{"a"},
			onlyDoc:   []string{"c"},
		},
		{
			name:      "identical sets",
			records:   []string{"x", "y"},
			documents: []string{"y", "x"},
			onlyRec:   []string{},
			onlyDoc:   []string{},
		},
		{
			name:      "duplicates and sorting",
			records:   []string{"z", "a", "z"},
			documents: nil,
			onlyRec:   []string{"a", "z"},
			onlyDoc:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.records, tt.documents)
			if !reflect.DeepEqual(r.OnlyInRecords, tt.onlyRec) {
				t.Errorf("Expected only in records %v, got %v", tt.onlyRec, r.OnlyInRecords)
			}
			if !reflect.DeepEqual(r.OnlyInDocuments, tt.onlyDoc) {
				t.Errorf("Expected only in documents %v, got %v", tt.onlyDoc, r.OnlyInDocuments)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Check([]string{"a"}, []string{"b"}).WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Records without a document (1):\n  a\n") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Documents without a record (1):\n  b\n") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	buf.Reset()
	if err := Check([]string{"a"}, []string{"a"}).WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if buf.String() != "Records and documents match.\n" {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}
