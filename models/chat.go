package models

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one entry of the conversation history supplied by the caller.
// The server is stateless, the full history comes with every request.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Source is a web grounding citation attached to a model reply.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ModelReply is the normalized answer of one chat or persona call.
// RelatedItemIDs is omitted when empty so the graceful-degradation reply
// serializes as {text, sources} only.
type ModelReply struct {
	Text           string   `json:"text"`
	RelatedItemIDs []string `json:"related_item_ids,omitempty"`
	Sources        []Source `json:"sources"`
}
