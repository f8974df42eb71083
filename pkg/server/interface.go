/*
Package server implements msgpack IPC for properties key completion.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per response to stdout. Logs go to stderr.

# IPC

Every request has an ID and an action. Responses echo the ID; since requests
are served by a worker pool, responses can come back in a different order
than the requests went out.

A completion request carries the whole document and the cursor, as the
editor sees them:

	{"id": "req_001", "action": "complete", "text": "# vscode_properties_completion_proposals=/etc/keys\nser", "line": 1, "character": 3}

The server answers with the matching keys, sorted:

	{"id": "req_001", "items": [{"label": "server.host", "detail": "Bind address", "kind": "keyword"}], "c": 1, "t": 145}

Other actions:

	{"id": "s1", "action": "stats"}
	{"id": "r1", "action": "reload", "source": "https://example.com/keys.properties"}
	{"id": "h1", "action": "health"}

A completion never fails: an unreadable dictionary is an empty item list.
Errors are reserved for malformed requests and unknown actions.
*/
package server

// Request is any incoming message
type Request struct {
	ID        string `msgpack:"id"`
	Action    string `msgpack:"action"`
	Text      string `msgpack:"text,omitempty"`
	Line      int    `msgpack:"line,omitempty"`
	Character int    `msgpack:"character,omitempty"`
	Source    string `msgpack:"source,omitempty"`
}

// CompletionItem - one suggested key
type CompletionItem struct {
	Label  string `msgpack:"label"`
	Detail string `msgpack:"detail"`
	Kind   string `msgpack:"kind"`
}

// CompletionResponse - completion response, t is in microseconds
type CompletionResponse struct {
	ID        string           `msgpack:"id"`
	Items     []CompletionItem `msgpack:"items"`
	Count     int              `msgpack:"c"`
	TimeTaken int64            `msgpack:"t"`
}

// StatusResponse - health, ready and reload answers
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// StatsResponse - cache counters
type StatsResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
