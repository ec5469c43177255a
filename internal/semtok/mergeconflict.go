package semtok

import (
	"strings"

	"github.com/lsl-tools/lslintel/internal/position"
)

// hunkState tracks which section of a 3-way conflict block the scanner is
// currently inside.
type hunkState int

const (
	outsideHunk hunkState = iota
	inOurs
	inBase
	inTheirs
)

const (
	markerOurs   = "<<<<<<< "
	markerBase   = "||||||| "
	markerSep    = "======="
	markerTheirs = ">>>>>>> "
)

// ConflictScan is the result of the merge-conflict pre-pass (spec §4.6).
// It runs over raw source bytes before any lexing, so a hunk's content
// need not be syntactically valid LSL.
type ConflictScan struct {
	// Markers are the <<<<<<<, |||||||, =======, and >>>>>>> lines; each
	// is classified as TypeRegexp rather than suppressed.
	Markers []position.Span

	// Suppressed are the ours/base/theirs content lines inside a hunk;
	// no semantic token may originate from within one of these spans.
	Suppressed []position.Span
}

// IsSuppressed reports whether offset falls inside conflict content.
func (c *ConflictScan) IsSuppressed(offset int) bool {
	for _, s := range c.Suppressed {
		if s.Contains(offset) {
			return true
		}
	}

	return false
}

// MarkerAt returns the marker span containing offset, if any.
func (c *ConflictScan) MarkerAt(offset int) (position.Span, bool) {
	for _, s := range c.Markers {
		if s.Contains(offset) {
			return s, true
		}
	}

	return position.Span{}, false
}

// ScanConflicts finds 3-way Git merge-conflict hunks line by line. An
// unclosed hunk (no trailing >>>>>>> line) is never popped back to
// outsideHunk, so every line from the opening marker to EOF lands in
// Suppressed — matching spec §4.6's "left uncolored beyond the opening
// marker" without this component ever emitting a diagnostic of its own.
func ScanConflicts(source string) *ConflictScan {
	scan := &ConflictScan{}
	state := outsideHunk

	lineStart := 0
	for lineStart < len(source) {
		end := lineStart
		for end < len(source) && source[end] != '\n' {
			end++
		}

		line := source[lineStart:end]
		span := position.NewSpan(lineStart, end)

		switch {
		case state == outsideHunk && strings.HasPrefix(line, markerOurs):
			scan.Markers = append(scan.Markers, span)
			state = inOurs
		case state == inOurs && strings.HasPrefix(line, markerBase):
			scan.Markers = append(scan.Markers, span)
			state = inBase
		case (state == inOurs || state == inBase) && line == markerSep:
			scan.Markers = append(scan.Markers, span)
			state = inTheirs
		case state == inTheirs && strings.HasPrefix(line, markerTheirs):
			scan.Markers = append(scan.Markers, span)
			state = outsideHunk
		case state != outsideHunk:
			scan.Suppressed = append(scan.Suppressed, span)
		}

		if end >= len(source) {
			break
		}

		lineStart = end + 1
	}

	return scan
}
