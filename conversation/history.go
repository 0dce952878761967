package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tailored-agentic-units/splitter/core/protocol"
)

// AppendHistory appends one message record to a serialized history list
// and returns the updated serialization. An empty or unparseable history
// is reset to an empty list first, so a corrupted record never blocks the
// append. The rest of the list is carried through byte-for-byte.
func AppendHistory(history string, msg protocol.Message) (string, error) {
	if history == "" || !gjson.Valid(history) || !gjson.Parse(history).IsArray() {
		history = "[]"
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode history record: %w", err)
	}

	updated, err := sjson.SetRaw(history, "-1", string(raw))
	if err != nil {
		return "", fmt.Errorf("append history record: %w", err)
	}
	return updated, nil
}

// Records decodes a serialized history list into messages. Unparseable
// history yields an empty slice, mirroring AppendHistory's recovery.
func Records(history string) []protocol.Message {
	if history == "" || !gjson.Valid(history) {
		return nil
	}

	parsed := gjson.Parse(history)
	if !parsed.IsArray() {
		return nil
	}

	var msgs []protocol.Message
	parsed.ForEach(func(_, value gjson.Result) bool {
		msgs = append(msgs, protocol.Message{
			Role:    protocol.Role(value.Get("role").String()),
			Content: value.Get("content").String(),
		})
		return true
	})
	return msgs
}
