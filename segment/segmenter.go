package segment

import "github.com/tailored-agentic-units/splitter/core/protocol"

// Split partitions a sequence into ordered delivery units at split-pattern
// boundaries. Text items are split internally at non-overlapping pattern
// matches (matches are discarded); Opaque items are atomic and attach to
// whichever unit is accumulating when they appear.
//
// The accumulating unit closes whenever a Text item splits: its first
// fragment (if non-empty) joins the closing unit, each interior fragment
// becomes a singleton unit, and the last fragment seeds the next unit so
// it can still absorb subsequent items. Empty fragments from adjacent
// matches are dropped; no returned unit is empty and no Text item within
// a unit carries an empty string.
//
// A sequence with no matches yields exactly one unit holding every item.
func (r *Rules) Split(seq protocol.Sequence) []protocol.Sequence {
	var units []protocol.Sequence
	var current protocol.Sequence

	for _, it := range seq {
		t, ok := it.(protocol.Text)
		if !ok {
			current = append(current, it)
			continue
		}

		parts := r.split.Split(t.Text, -1)
		if len(parts) == 1 {
			current = append(current, it)
			continue
		}

		if parts[0] != "" {
			current = append(current, protocol.NewText(parts[0]))
		}
		if len(current) > 0 {
			units = append(units, current)
			current = nil
		}

		for _, mid := range parts[1 : len(parts)-1] {
			if mid != "" {
				units = append(units, protocol.Sequence{protocol.NewText(mid)})
			}
		}

		if last := parts[len(parts)-1]; last != "" {
			current = append(current, protocol.NewText(last))
		}
	}

	if len(current) > 0 {
		units = append(units, current)
	}

	return units
}
