package types

import "encoding/json"

type OK struct {
	IsOK bool `json:"ok"`
}

type CouchDBError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BaseDocument carries the CouchDB document identity and MVCC revision.
// The revision is the compare-and-swap token: saving a stale revision fails
// with a conflict instead of overwriting a concurrent update.
type BaseDocument struct {
	ID      string `json:"_id,omitempty"`
	Rev     string `json:"_rev,omitempty"`
	Deleted bool   `json:"_deleted,omitempty"`
}

// CouchDBFindResponse is the envelope of a Mango _find query
type CouchDBFindResponse struct {
	Docs     []json.RawMessage `json:"docs"`
	Bookmark string            `json:"bookmark,omitempty"`
}

// CouchDBBulkResult is one entry of a _bulk_docs response. The call itself
// returns 201 even when individual documents fail, failures are reported here.
type CouchDBBulkResult struct {
	ID     string `json:"id"`
	Rev    string `json:"rev,omitempty"`
	OK     bool   `json:"ok,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}
