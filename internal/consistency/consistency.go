// Package consistency compares the identifiers of label records with the
// identifiers of source documents.
package consistency

import (
	"fmt"
	"io"
	"sort"
)

// Result lists the identifiers present on only one side. Both lists are sorted.
type Result struct {
	OnlyInRecords   []string `json:"only_in_records" yaml:"only_in_records"`
	OnlyInDocuments []string `json:"only_in_documents" yaml:"only_in_documents"`
}

// Consistent reports whether both sides hold the same identifiers.
func (r Result) Consistent() bool {
	return len(r.OnlyInRecords) == 0 && len(r.OnlyInDocuments) == 0
}

// Check returns the set difference of recordIDs and documentIDs in both
// directions. Duplicate identifiers are ignored.
func Check(recordIDs, documentIDs []string) Result {
	records := toSet(recordIDs)
	documents := toSet(documentIDs)

	return Result{
		OnlyInRecords:   difference(records, documents),
		OnlyInDocuments: difference(documents, records),
	}
}

// WriteText writes the result as a plain listing.
func (r Result) WriteText(w io.Writer) error {
	if r.Consistent() {
		_, err := fmt.Fprintln(w, "Records and documents match.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Records without a document (%d):\n", len(r.OnlyInRecords)); err != nil {
		return err
	}
	for _, id := range r.OnlyInRecords {
		if _, err := fmt.Fprintf(w, "  %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Documents without a record (%d):\n", len(r.OnlyInDocuments)); err != nil {
		return err
	}
	for _, id := range r.OnlyInDocuments {
		if _, err := fmt.Fprintf(w, "  %s\n", id); err != nil {
			return err
		}
	}
	return nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func difference(a, b map[string]struct{}) []string {
	out := []string{}
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
