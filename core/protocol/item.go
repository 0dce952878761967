// Package protocol defines the content model shared by the splitter
// subsystems: the polymorphic items that make up a reply, the ordered
// sequences they form, and the message shape used for conversation history.
package protocol

import "strings"

// Item is one unit of a reply sequence. Exactly two variants exist:
// Text, which is subject to clean and split patterns, and Opaque, which
// is carried through segmentation unmodified and in order.
type Item interface {
	item()
}

// Text is textual reply content.
type Text struct {
	Text string `json:"text"`
}

// Opaque is non-text reply content (image, voice record, structured
// payload). The splitter never inspects Kind or Payload; it only
// guarantees the item is never split and never reordered relative to
// its neighbors.
type Opaque struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

func (Text) item()   {}
func (Opaque) item() {}

// NewText creates a Text item.
func NewText(text string) Text {
	return Text{Text: text}
}

// Sequence is an ordered list of items: one reply as produced, or one
// delivery unit after segmentation. Order is significant end-to-end.
type Sequence []Item

// PlainText concatenates the text of every Text item in order, with no
// separators. Opaque items contribute nothing.
func (s Sequence) PlainText() string {
	var b strings.Builder
	for _, it := range s {
		if t, ok := it.(Text); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// IsEmpty reports whether the sequence contains no items.
func (s Sequence) IsEmpty() bool {
	return len(s) == 0
}
