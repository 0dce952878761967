package segment

import "github.com/tailored-agentic-units/splitter/core/protocol"

// Clean returns a new sequence with every clean-pattern match removed
// from each Text item. A Text item whose cleaned text is empty is
// omitted. Opaque items pass through unchanged and in order. With no
// clean pattern configured, the input is returned as-is.
//
// Removal is a single global non-overlapping substitution pass per item,
// so a zero-width pattern cannot loop.
func (r *Rules) Clean(seq protocol.Sequence) protocol.Sequence {
	if r.clean == nil {
		return seq
	}

	cleaned := make(protocol.Sequence, 0, len(seq))
	for _, it := range seq {
		t, ok := it.(protocol.Text)
		if !ok {
			cleaned = append(cleaned, it)
			continue
		}

		text := r.clean.ReplaceAllString(t.Text, "")
		if text != "" {
			cleaned = append(cleaned, protocol.NewText(text))
		}
	}
	return cleaned
}
