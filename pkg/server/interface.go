/*
Package server implements msgpack IPC for acronym detection and lookup.

The server reads a stream of msgpack maps from stdin and writes one msgpack map
per request to stdout. Logs go to stderr. The first message written is always

	{"status": "ready"}

and the loop ends cleanly when the client closes its end of the pipe.

# IPC

Every request carries an ID and an op; the remaining fields depend on the op.

	{"id": "r1", "op": "detect", "text": "Our gNB talks to the AMF"}
	{"id": "r2", "op": "detect_batch", "texts": ["...", "..."]}
	{"id": "r3", "op": "search", "q": "urlcc", "l": 5, "category": "Service Categories"}
	{"id": "r4", "op": "related", "key": "5G", "l": 5}
	{"id": "r5", "op": "related", "text": "secure core networks", "l": 4}
	{"id": "r6", "op": "define", "key": "nwdaf"}
	{"id": "r7", "op": "add", "entry": {"k": "ZTP", "d": "Zero Touch Provisioning", "c": "General"}}
	{"id": "r8", "op": "remove", "key": "ZTP"}
	{"id": "r9", "op": "export"}
	{"id": "r10", "op": "import", "entries": [...]}
	{"id": "r11", "op": "merge", "entries": [...]}
	{"id": "r12", "op": "stats"}
	{"id": "r13", "op": "health"}

Detection answers with byte offsets into the submitted text:

	{"id": "r1", "m": [{"s": 4, "e": 7, "k": "gNB", "x": "gNB"}, ...], "c": 2, "v": 1, "t": 38}

"t" is the handling time in microseconds and "v" the snapshot version that
answered. A batch is answered from a single snapshot.

Mutations answer with the published version. A rejected import lists every bad
record in "problems" and leaves the dictionary untouched:

	{"id": "r10", "error": "2 invalid records", "code": 422, "problems": [{"i": 17, "key": "K17", "field": "category", "error": "..."}]}
*/
package server

import (
	"github.com/bastiangx/acroserve/pkg/dictionary"
)

// Request is the union of all request fields; Op selects the handler.
type Request struct {
	ID       string             `msgpack:"id"`
	Op       string             `msgpack:"op"`
	Text     string             `msgpack:"text,omitempty"`
	Texts    []string           `msgpack:"texts,omitempty"`
	Query    string             `msgpack:"q,omitempty"`
	Limit    int                `msgpack:"l,omitempty"`
	Category string             `msgpack:"category,omitempty"`
	Key      string             `msgpack:"key,omitempty"`
	Entry    *dictionary.Entry  `msgpack:"entry,omitempty"`
	Entries  []dictionary.Entry `msgpack:"entries,omitempty"`
}

// Match is one detected acronym occurrence.
type Match struct {
	Start int    `msgpack:"s"`
	End   int    `msgpack:"e"`
	Key   string `msgpack:"k"`
	Text  string `msgpack:"x"`
}

// DetectResponse answers detect.
type DetectResponse struct {
	ID        string  `msgpack:"id"`
	Matches   []Match `msgpack:"m"`
	Count     int     `msgpack:"c"`
	Version   uint64  `msgpack:"v"`
	TimeTaken int64   `msgpack:"t"`
}

// BatchDetectResponse answers detect_batch; Results[i] belongs to texts[i].
type BatchDetectResponse struct {
	ID        string    `msgpack:"id"`
	Results   [][]Match `msgpack:"r"`
	Count     int       `msgpack:"c"`
	Version   uint64    `msgpack:"v"`
	TimeTaken int64     `msgpack:"t"`
}

// Suggestion is one ranked search hit.
type Suggestion struct {
	Key        string  `msgpack:"k"`
	Score      float64 `msgpack:"s"`
	MatchType  string  `msgpack:"m"`
	Definition string  `msgpack:"d,omitempty"`
}

// SearchResponse answers search.
type SearchResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	Version     uint64       `msgpack:"v"`
	TimeTaken   int64        `msgpack:"t"`
}

// RelatedResponse answers related, by key or by context text.
type RelatedResponse struct {
	ID        string   `msgpack:"id"`
	Keys      []string `msgpack:"k"`
	Count     int      `msgpack:"c"`
	Version   uint64   `msgpack:"v"`
	TimeTaken int64    `msgpack:"t"`
}

// DefineResponse answers define with the full entry.
type DefineResponse struct {
	ID        string           `msgpack:"id"`
	Entry     dictionary.Entry `msgpack:"entry"`
	Version   uint64           `msgpack:"v"`
	TimeTaken int64            `msgpack:"t"`
}

// MutationResponse answers add, remove, import and merge.
type MutationResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Count     int    `msgpack:"c"`
	Version   uint64 `msgpack:"v"`
	TimeTaken int64  `msgpack:"t"`
}

// ExportResponse answers export.
type ExportResponse struct {
	ID        string             `msgpack:"id"`
	Entries   []dictionary.Entry `msgpack:"entries"`
	Count     int                `msgpack:"c"`
	Version   uint64             `msgpack:"v"`
	TimeTaken int64              `msgpack:"t"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID        string         `msgpack:"id"`
	Status    string         `msgpack:"status"`
	State     string         `msgpack:"state"`
	Stats     map[string]int `msgpack:"stats"`
	Requests  int64          `msgpack:"requests"`
	TimeTaken int64          `msgpack:"t"`
}

// StatusResponse is the ready banner and the health answer.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// Problem is one rejected field of one submitted record.
type Problem struct {
	Index int    `msgpack:"i"`
	Key   string `msgpack:"key,omitempty"`
	Field string `msgpack:"field,omitempty"`
	Error string `msgpack:"error"`
}

// ErrorResponse holds error information for a failed request
type ErrorResponse struct {
	ID       string    `msgpack:"id"`
	Error    string    `msgpack:"error"`
	Code     int       `msgpack:"code"`
	Problems []Problem `msgpack:"problems,omitempty"`
}
