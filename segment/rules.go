// Package segment implements the reply segmentation core: removing
// unwanted substrings from text items and partitioning an ordered item
// sequence into delivery units at split-pattern boundaries.
package segment

import (
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors for pattern compilation.
var (
	ErrBadPattern   = errors.New("invalid pattern")
	ErrEmptyPattern = errors.New("empty split pattern")
)

// Rules holds the compiled split and clean patterns for one splitter
// instance. A nil clean pattern means cleaning is disabled. Rules are
// immutable after Compile and safe for concurrent use.
type Rules struct {
	split *regexp.Regexp
	clean *regexp.Regexp
}

// Compile builds Rules from the configured pattern strings. An empty
// cleanPattern disables cleaning. A malformed pattern is a configuration
// error; it is returned here, at load time, never deferred to processing.
func Compile(splitPattern, cleanPattern string) (*Rules, error) {
	if splitPattern == "" {
		return nil, ErrEmptyPattern
	}

	split, err := regexp.Compile(splitPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: split %q: %v", ErrBadPattern, splitPattern, err)
	}

	r := &Rules{split: split}

	if cleanPattern != "" {
		clean, err := regexp.Compile(cleanPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: clean %q: %v", ErrBadPattern, cleanPattern, err)
		}
		r.clean = clean
	}

	return r, nil
}

// Cleaning reports whether a clean pattern is active. The dispatch
// decision treats any pass with an active clean pattern as modified,
// even when no split occurs.
func (r *Rules) Cleaning() bool {
	return r.clean != nil
}
