// Package dedupe finds label records with identical content.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

// Group is a set of records sharing the same canonical content.
type Group struct {
	Hash       string   `json:"hash" yaml:"hash"`
	Keep       string   `json:"keep" yaml:"keep"`
	Duplicates []string `json:"duplicates" yaml:"duplicates"`
}

// Hash returns the hex SHA-256 of a record's canonical form, which ignores
// key order and whitespace.
func Hash(n record.Node) string {
	sum := sha256.Sum256(record.Canonical(n))
	return hex.EncodeToString(sum[:])
}

// Find groups records by content hash. Only groups with more than one
// member are returned; each keeps its alphabetically first id. Groups are
// ordered by that id.
func Find(records map[string]record.Node) []Group {
	byHash := make(map[string][]string)
	for id, n := range records {
		h := Hash(n)
		byHash[h] = append(byHash[h], id)
	}

	var groups []Group
	for h, ids := range byHash {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		groups = append(groups, Group{Hash: h, Keep: ids[0], Duplicates: ids[1:]})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Keep < groups[j].Keep })
	return groups
}
