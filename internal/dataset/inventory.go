package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// File is one file found by Inventory.
type File struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Ext  string `json:"ext" yaml:"ext"`
	Size int64  `json:"size" yaml:"size"`
}

// InventoryReport describes the files of a directory keyed by basename.
type InventoryReport struct {
	Dir   string         `json:"dir" yaml:"dir"`
	Files []File         `json:"files" yaml:"files"`
	ByExt map[string]int `json:"by_ext" yaml:"by_ext"`

	MinSize int64 `json:"min_size" yaml:"min_size"`
	MaxSize int64 `json:"max_size" yaml:"max_size"`
	AvgSize int64 `json:"avg_size" yaml:"avg_size"`

	// Shared maps a basename to the files sharing it, when there are several.
	Shared map[string][]string `json:"shared,omitempty" yaml:"shared,omitempty"`
}

// Inventory lists the regular files directly inside dir. When extensions
// are given (".pdf", ".json") only files with those extensions are counted.
// Hidden files are ignored.
func Inventory(dir string, extensions ...string) (*InventoryReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[strings.ToLower(e)] = true
	}

	report := &InventoryReport{Dir: dir, ByExt: make(map[string]int)}
	byID := make(map[string][]string)
	var total int64

	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if len(allowed) > 0 && !allowed[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		f := File{
			ID:   strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Ext:  ext,
			Size: info.Size(),
		}
		report.Files = append(report.Files, f)
		report.ByExt[ext]++
		byID[f.ID] = append(byID[f.ID], f.Name)

		total += f.Size
		if len(report.Files) == 1 || f.Size < report.MinSize {
			report.MinSize = f.Size
		}
		if f.Size > report.MaxSize {
			report.MaxSize = f.Size
		}
	}

	if n := len(report.Files); n > 0 {
		report.AvgSize = total / int64(n)
	}
	for id, names := range byID {
		if len(names) > 1 {
			if report.Shared == nil {
				report.Shared = make(map[string][]string)
			}
			report.Shared[id] = names
		}
	}
	return report, nil
}

// IDs returns the distinct basenames, sorted.
func (r *InventoryReport) IDs() []string {
	seen := make(map[string]bool, len(r.Files))
	ids := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if !seen[f.ID] {
			seen[f.ID] = true
			ids = append(ids, f.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// WriteText writes a short human-readable description of the directory.
func (r *InventoryReport) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d files\n", r.Dir, len(r.Files))

	exts := make([]string, 0, len(r.ByExt))
	for ext := range r.ByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		label := ext
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(&b, "  %-8s %d\n", label, r.ByExt[ext])
	}

	if len(r.Files) > 0 {
		fmt.Fprintf(&b, "  size: min %s, max %s, avg %s\n",
			humanize.Bytes(uint64(r.MinSize)),
			humanize.Bytes(uint64(r.MaxSize)),
			humanize.Bytes(uint64(r.AvgSize)),
		)
	}

	if len(r.Shared) > 0 {
		ids := make([]string, 0, len(r.Shared))
		for id := range r.Shared {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintf(&b, "  basenames shared by several files: %d\n", len(ids))
		for _, id := range ids {
			fmt.Fprintf(&b, "    %s: %s\n", id, strings.Join(r.Shared[id], ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
