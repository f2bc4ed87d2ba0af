package dictionary

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat represents the supported catalog file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // array of entries, or the legacy acronyms/categories object
	FormatCSV                // header row + one entry per line
	FormatMsgpack            // msgpack array of entries
)

// FormatInfo contains metadata about a catalog file format
type FormatInfo struct {
	Format      FileFormat
	Name        string
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Name:        "json",
		Description: "JSON Catalog",
		Extensions:  []string{".json"},
		MinSize:     2, // "[]"
	},
	FormatCSV: {
		Format:      FormatCSV,
		Name:        "csv",
		Description: "CSV Catalog",
		Extensions:  []string{".csv"},
		MinSize:     1,
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Name:        "msgpack",
		Description: "MessagePack Catalog",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1,
	},
}

// ListSeparator joins list columns (aliases, related keys) in CSV files.
const ListSeparator = "|"

var csvHeader = []string{"key", "definition", "category", "aliases", "related_keys", "case_sensitive", "pronunciation"}

// legacyCatalog is the flat export shape of the original web tool.
type legacyCatalog struct {
	Acronyms   map[string]string   `json:"acronyms"`
	Categories map[string][]string `json:"categories"`
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Name
	}
	return "unknown"
}

// ParseFormat resolves a format name such as "json", "csv" or "msgpack".
func ParseFormat(name string) (FileFormat, error) {
	for f, info := range supportedFormats {
		if strings.EqualFold(name, info.Name) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown format %q", name)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ListSupportedFormats returns all supported formats ordered by enum value
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, f := range []FileFormat{FormatJSON, FormatCSV, FormatMsgpack} {
		formats = append(formats, supportedFormats[f])
	}
	return formats
}

// ValidateFileFormat checks size and extension of a file against a format
func ValidateFileFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	formatInfo, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("unknown format: %v", expected)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(formatInfo.Extensions, ext) {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}
	return nil
}

// DetectFileFormat picks the format from the file extension
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for f, info := range supportedFormats {
		if slices.Contains(info.Extensions, ext) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// LoadFile reads every entry of a catalog file.
func LoadFile(path string) ([]Entry, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateFileFormat(path, format); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ReadEntries(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	log.Debugf("Loaded %d entries from %s (%s)", len(entries), path, format)
	return entries, nil
}

// SaveFile writes entries to path in the format implied by its extension.
func SaveFile(path string, entries []Entry) error {
	format, err := DetectFileFormat(path)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, func(f *os.File) error {
		return WriteEntries(f, format, entries)
	})
}

// ReadEntries decodes entries and returns them canonicalized. Row-level CSV
// problems come back together as a ValidationErrors.
func ReadEntries(r io.Reader, format FileFormat) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	switch format {
	case FormatJSON:
		entries, err = readJSON(r)
	case FormatCSV:
		entries, err = readCSV(r)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&entries)
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i] = entries[i].Canonical()
	}
	return entries, nil
}

// WriteEntries encodes entries in the given format.
func WriteEntries(w io.Writer, format FileFormat, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(entries)
	}
	return fmt.Errorf("unsupported format: %v", format)
}

func readJSON(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty JSON document")
	}

	if data[0] == '{' {
		var legacy legacyCatalog
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("decode JSON catalog: %w", err)
		}
		if legacy.Acronyms == nil {
			return nil, errors.New(`JSON object has no "acronyms" table`)
		}
		return fromLegacy(legacy), nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode JSON catalog: %w", err)
	}
	return entries, nil
}

// fromLegacy converts the acronyms/categories shape. Keys come out sorted
// since the object carries no order; a key listed under several categories
// takes the first category name in sorted order.
func fromLegacy(legacy legacyCatalog) []Entry {
	catNames := make([]string, 0, len(legacy.Categories))
	for name := range legacy.Categories {
		catNames = append(catNames, name)
	}
	slices.Sort(catNames)
	catOf := make(map[string]Category)
	for _, name := range catNames {
		for _, key := range legacy.Categories[name] {
			if _, ok := catOf[key]; !ok {
				catOf[key] = Category(name)
			}
		}
	}

	keys := make([]string, 0, len(legacy.Acronyms))
	for k := range legacy.Acronyms {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		cat, ok := catOf[k]
		if !ok {
			cat = CategoryGeneral
		}
		entries = append(entries, Entry{Key: k, Definition: legacy.Acronyms[k], Category: cat})
	}
	return entries
}

func readCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("CSV catalog has no header row")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "acronym" {
			name = "key"
		}
		cols[name] = i
	}
	if _, ok := cols["key"]; !ok {
		return nil, errors.New(`CSV header lacks a "key" or "acronym" column`)
	}
	if _, ok := cols["definition"]; !ok {
		return nil, errors.New(`CSV header lacks a "definition" column`)
	}

	var (
		entries []Entry
		errs    ValidationErrors
	)
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", row+1, err)
		}
		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		e := Entry{
			Key:           field("key"),
			Definition:    field("definition"),
			Category:      Category(field("category")),
			Aliases:       splitList(field("aliases")),
			RelatedKeys:   splitList(field("related_keys")),
			Pronunciation: field("pronunciation"),
		}
		if e.Category == "" {
			e.Category = CategoryGeneral
		}
		if cs := field("case_sensitive"); cs != "" {
			b, err := strconv.ParseBool(cs)
			if err != nil {
				errs = append(errs, &ValidationError{
					Index: row, Key: e.Key, Field: "case_sensitive", Err: ErrMalformedEntry,
					Detail: fmt.Sprintf("%q is not a boolean", cs),
				})
			}
			e.CaseSensitive = b
		}
		entries = append(entries, e)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}

func writeCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Key,
			e.Definition,
			string(e.Category),
			strings.Join(e.Aliases, ListSeparator),
			strings.Join(e.RelatedKeys, ListSeparator),
			strconv.FormatBool(e.CaseSensitive),
			e.Pronunciation,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ListSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
