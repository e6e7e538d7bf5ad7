package dedupe

import (
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

func mustParse(t *testing.T, s string) record.Node {
	t.Helper()
	n, err := record.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", s, err)
	}
	return n
}

func TestFind(t *testing.T) {
	records := map[string]record.Node{
		"c": mustParse(t, `{"a": 1, "b": "x"}`),
		"a": mustParse(t, `{"b": "x", "a": 1}`),
		"b": mustParse(t, `{"a": 1,   "b": "x"}`),
		"d": mustParse(t, `{"a": 1.0, "b": "x"}`),
		"e": mustParse(t, `{"a": 2}`),
	}

	groups := Find(records)
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Keep != "a" {
		t.Errorf("Expected to keep a, got %s", g.Keep)
	}
	if !reflect.DeepEqual(g.Duplicates, []string{"b", "c"}) {
		t.Errorf("Expected duplicates [b c], got %v", g.Duplicates)
	}
	if g.Hash != Hash(records["a"]) {
		t.Errorf("Expected group hash to match record hash")
	}
}

func TestFindNoDuplicates(t *testing.T) {
	records := map[string]record.Node{
		"a": mustParse(t, `{"x": 1}`),
		"b": mustParse(t, `{"x": 2}`),
	}
	if groups := Find(records); len(groups) != 0 {
		t.Errorf("Expected no groups, got %+v", groups)
	}
}
