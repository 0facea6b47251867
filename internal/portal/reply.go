package portal

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// statusOK is the zt value the portal uses for success on every endpoint.
const statusOK = 1

// reply is a decoded {zt, info, text} envelope.
type reply struct {
	status  int64
	success bool
	info    gjson.Result
	text   gjson.Result
	root   gjson.Result
}

// decodeReply parses body. A body that is not JSON decodes to a reply with
// status 0, which callers treat as a rejection.
func decodeReply(body []byte) reply {
	if !gjson.ValidBytes(body) {
		return reply{}
	}
	root := gjson.ParseBytes(body)
	r := reply{
		info: root.Get("info"),
		text: root.Get("text"),
		root: root,
	}
	if zt := root.Get("zt"); zt.Type == gjson.Number {
		r.status = zt.Int()
		r.success = zt.Num == statusOK
	}
	return r
}

func (r reply) ok() bool {
	return r.success
}

// message returns info when it is a string.
func (r reply) message() string {
	if r.info.Type == gjson.String {
		return r.info.String()
	}
	return ""
}

func (r reply) rejected(op string) *RejectedError {
	return &RejectedError{Op: op, Status: r.status, Info: r.message()}
}

// records returns the elements of text, or nothing when text is not an array.
func (r reply) records() []gjson.Result {
	if !r.text.IsArray() {
		return nil
	}
	return r.text.Array()
}

// raw returns the JSON encoding of v, or null when v is absent.
func raw(v gjson.Result) json.RawMessage {
	if !v.Exists() || v.Raw == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(v.Raw)
}

func toFolder(rec gjson.Result) Folder {
	return Folder{
		Name:     rec.Get("name").String(),
		FolderID: raw(rec.Get("fol_id")),
		ParentID: raw(rec.Get("pid")),
	}
}

func toFileEntry(rec gjson.Result) FileEntry {
	return FileEntry{
		Name:     rec.Get("name_all").String(),
		ID:       raw(rec.Get("id")),
		Size:     raw(rec.Get("size")),
		Time:     raw(rec.Get("time")),
		Downs:    raw(rec.Get("downs")),
		IsFolder: !isRootSentinel(rec.Get("folder_id")),
	}
}

// isRootSentinel reports whether v is exactly the string "-1". A numeric -1
// or a missing field is not the sentinel.
func isRootSentinel(v gjson.Result) bool {
	return v.Type == gjson.String && v.Str == RootFolderID
}
