package manager

import (
	"time"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/related"
	"github.com/bastiangx/acroserve/pkg/scanner"
	"github.com/bastiangx/acroserve/pkg/suggest"
)

// Snapshot is one published, immutable version of the dictionary together
// with the indexes built from it. All methods are safe for concurrent use.
type Snapshot struct {
	Version    uint64
	Dictionary *dictionary.Dictionary
	Scanner    *scanner.Scanner
	Engine     *suggest.Engine
	Graph      *related.Graph
	BuiltAt    time.Time
}

// Detect finds every acronym occurrence in text.
func (s *Snapshot) Detect(text string) []scanner.Match {
	return s.Scanner.Detect(text)
}

// Search ranks entries against a possibly misspelled query.
func (s *Snapshot) Search(query string, maxResults int, category dictionary.Category) []suggest.Result {
	return s.Engine.Search(query, maxResults, category)
}

// Related returns up to maxResults keys linked to key.
func (s *Snapshot) Related(key string, maxResults int) []string {
	return s.Graph.Related(key, maxResults)
}

// ForContext suggests keys for the topics a piece of text talks about.
func (s *Snapshot) ForContext(text string, maxResults int) []string {
	return s.Graph.ForContext(text, maxResults)
}

// Lookup resolves a key or alias to its entry, ignoring case.
func (s *Snapshot) Lookup(surface string) (dictionary.Entry, bool) {
	return s.Dictionary.Lookup(surface)
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	return s.Dictionary.Len()
}
