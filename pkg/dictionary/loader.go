package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// Loader reads catalog files from a directory, or a single catalog file.
type Loader struct {
	path string
}

// FileInfo contains metadata about a catalog file found by a Loader
type FileInfo struct {
	Path   string
	Format FileFormat
	Size   int64
}

// LoaderStats summarizes the last LoadAll run
type LoaderStats struct {
	Files   int
	Entries int
	Skipped int
}

// NewLoader creates a loader rooted at a catalog file or directory.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Files lists the catalog files the loader would read, sorted by name.
// Files with an unrecognized extension are ignored.
func (l *Loader) Files() ([]FileInfo, error) {
	st, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}
	if !st.IsDir() {
		format, err := DetectFileFormat(l.path)
		if err != nil {
			return nil, err
		}
		return []FileInfo{{Path: l.path, Format: format, Size: st.Size()}}, nil
	}

	dirEntries, err := os.ReadDir(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for catalog files: %w", err)
	}
	var files []FileInfo
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		format, err := DetectFileFormat(de.Name())
		if err != nil {
			log.Debugf("Skipping %s: %v", de.Name(), err)
			continue
		}
		info, err := de.Info()
		if err != nil {
			log.Warnf("Failed to stat %s: %v", de.Name(), err)
			continue
		}
		files = append(files, FileInfo{
			Path:   filepath.Join(l.path, de.Name()),
			Format: format,
			Size:   info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// LoadAll concatenates the entries of every catalog file in name order. It
// does not validate the combined set; building a Dictionary does that.
func (l *Loader) LoadAll() ([]Entry, LoaderStats, error) {
	var stats LoaderStats
	files, err := l.Files()
	if err != nil {
		return nil, stats, err
	}
	if len(files) == 0 {
		return nil, stats, fmt.Errorf("no catalog files found in %s", l.path)
	}

	var all []Entry
	for _, f := range files {
		entries, err := LoadFile(f.Path)
		if err != nil {
			return nil, stats, err
		}
		if len(entries) == 0 {
			stats.Skipped++
			continue
		}
		stats.Files++
		all = append(all, entries...)
	}
	stats.Entries = len(all)
	log.Debugf("Loaded %d entries from %d catalog files", stats.Entries, stats.Files)
	return all, stats, nil
}
