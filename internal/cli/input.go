// Package cli is an interactive console for trying detection, search and
// related-term lookups against a live dictionary.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
	"github.com/bastiangx/acroserve/pkg/scanner"
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	dimStyle = lipgloss.NewStyle().Faint(true)
)

const usage = `commands:
  <text>        detect acronyms in text
  ?<query>      fuzzy search (append " in <category>" to boost a category)
  @<key>        related terms
  =<key>        definition
  #<text>       suggestions for the topics of text
  :stats        snapshot stats`

// InputHandler reads commands line by line and prints results.
type InputHandler struct {
	mgr          *manager.Manager
	limit        int
	in           io.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler reads from stdin and prints to stderr.
func NewInputHandler(mgr *manager.Manager, limit int) *InputHandler {
	return NewInputHandlerWithIO(mgr, limit, os.Stdin, os.Stderr)
}

// NewInputHandlerWithIO is NewInputHandler with explicit streams.
func NewInputHandlerWithIO(mgr *manager.Manager, limit int, in io.Reader, out io.Writer) *InputHandler {
	if limit < 1 {
		limit = 10
	}
	return &InputHandler{
		mgr:   mgr,
		limit: limit,
		in:    in,
		out: log.NewWithOptions(out, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		}),
	}
}

// Start runs the loop until the input ends.
func (h *InputHandler) Start() error {
	h.out.Print("AcroServe CLI")
	h.out.Print(usage)

	lines := bufio.NewScanner(h.in)
	for {
		h.out.Print("> ")
		if !lines.Scan() {
			return lines.Err()
		}
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	snap := h.mgr.Current()
	start := time.Now()
	defer func() {
		log.Debugf("Took [ %v ] for %q (v%d)", time.Since(start), line, snap.Version)
	}()

	switch {
	case line == ":stats":
		for k, v := range h.mgr.Stats() {
			h.out.Printf("%-28s %d", k, v)
		}
	case strings.HasPrefix(line, "?"):
		h.search(snap, strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, "@"):
		h.related(snap, strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, "="):
		h.define(snap, strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, "#"):
		h.context(snap, strings.TrimSpace(line[1:]))
	default:
		h.detect(snap, line)
	}
}

func (h *InputHandler) detect(snap *manager.Snapshot, text string) {
	matches := snap.Detect(text)
	if len(matches) == 0 {
		h.out.Warnf("No acronyms found in: '%s'", text)
		return
	}
	h.out.Print(Highlight(text, matches, matchStyle))
	for _, m := range matches {
		e, _ := snap.Dictionary.Get(m.Key)
		h.out.Printf("  %-14s %s %s", keyStyle.Render(m.MatchedText), e.Definition, dimStyle.Render(fmt.Sprintf("[%d:%d]", m.Start, m.End)))
	}
}

func (h *InputHandler) search(snap *manager.Snapshot, query string) {
	var category dictionary.Category
	if q, cat, ok := strings.Cut(query, " in "); ok {
		if c, found := dictionary.ParseCategory(cat); found {
			query, category = q, c
		}
	}

	results := snap.Search(query, h.limit, category)
	if len(results) == 0 {
		h.out.Warnf("No suggestions found for: '%s'", query)
		return
	}
	h.out.Printf("Found %d suggestions for '%s':", len(results), query)
	for i, r := range results {
		e, _ := snap.Dictionary.Get(r.Key)
		h.out.Printf("%2d. %-14s %.3f %-16s %s", i+1, keyStyle.Render(r.Key), r.Score, r.MatchType, e.Definition)
	}
}

func (h *InputHandler) related(snap *manager.Snapshot, key string) {
	edges := snap.Graph.Edges(key, h.limit)
	if len(edges) == 0 {
		h.out.Warnf("No related terms for: '%s'", key)
		return
	}
	for i, e := range edges {
		h.out.Printf("%2d. %-14s %.2f", i+1, keyStyle.Render(e.Key), e.Weight)
	}
}

func (h *InputHandler) define(snap *manager.Snapshot, key string) {
	e, ok := snap.Lookup(key)
	if !ok {
		h.out.Warnf("Unknown acronym: '%s'", key)
		return
	}
	h.out.Print(keyStyle.Render(e.Key), "category", string(e.Category))
	h.out.Print("  " + e.Definition)
	if e.Pronunciation != "" {
		h.out.Print("  /" + e.Pronunciation + "/")
	}
	if len(e.Aliases) > 0 {
		h.out.Print("  aka " + strings.Join(e.Aliases, ", "))
	}
	if len(e.RelatedKeys) > 0 {
		h.out.Print("  see " + strings.Join(e.RelatedKeys, ", "))
	}
}

func (h *InputHandler) context(snap *manager.Snapshot, text string) {
	keys := snap.ForContext(text, h.limit)
	if len(keys) == 0 {
		h.out.Warnf("No topic suggestions for: '%s'", text)
		return
	}
	h.out.Print("Suggested: " + strings.Join(keys, ", "))
}

// Highlight renders every match of text with style, leaving the rest as is.
// Matches must be ordered and non-overlapping, as Detect returns them.
func Highlight(text string, matches []scanner.Match, style lipgloss.Style) string {
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m.Start < last || m.End > len(text) {
			continue
		}
		b.WriteString(text[last:m.Start])
		b.WriteString(style.Render(text[m.Start:m.End]))
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String()
}
