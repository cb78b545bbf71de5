package blockedit

import (
	"strings"
)

const (
	markerKeySeparatorConstant = " - "
	newlineConstant            = "\n"
	carriageReturnConstant     = "\r"
	blockSeparatorConstant     = "\n\n"
	trailingWhitespaceConstant = " \t\r\n"
)

// MarkerSet holds the start and end prefixes shared by every block of one kind.
type MarkerSet struct {
	StartPrefix string
	EndPrefix   string
}

// Markers are the literal start and end lines of one keyed block.
type Markers struct {
	Start string
	End   string
}

// ForKey derives the markers of the block addressed by key.
func (markerSet MarkerSet) ForKey(key string) Markers {
	return Markers{
		Start: markerSet.StartPrefix + markerKeySeparatorConstant + key,
		End:   markerSet.EndPrefix + markerKeySeparatorConstant + key,
	}
}

// Render wraps body in the block markers.
func (markers Markers) Render(body string) string {
	return markers.Start + newlineConstant + strings.Trim(body, newlineConstant) + newlineConstant + markers.End
}

type blockSpan struct {
	start int
	end   int
}

// Editor applies block edits to in-memory contents.
type Editor struct {
	markerSet MarkerSet
}

// NewEditor constructs an Editor for one marker set.
func NewEditor(markerSet MarkerSet) Editor {
	return Editor{markerSet: markerSet}
}

// UpsertBlock removes every block for key and appends body, wrapped in markers, separated from
// preceding content by one blank line. A start marker with no end marker after it is left untouched.
func (editor Editor) UpsertBlock(contents string, key string, body string) string {
	markers := editor.markerSet.ForKey(key)
	remaining := strings.TrimRight(removeSpans(contents, findBlocks(contents, markers)), trailingWhitespaceConstant)
	renderedBlock := markers.Render(body)
	if len(remaining) == 0 {
		return renderedBlock + newlineConstant
	}
	return remaining + blockSeparatorConstant + renderedBlock + newlineConstant
}

// RemoveBlock removes every block for key and normalizes trailing whitespace to a single newline.
// Empty results stay empty.
func (editor Editor) RemoveBlock(contents string, key string) string {
	markers := editor.markerSet.ForKey(key)
	return normalizeTrailingWhitespace(removeSpans(contents, findBlocks(contents, markers)))
}

// HasBlock reports whether a complete block for key exists.
func (editor Editor) HasBlock(contents string, key string) bool {
	return len(findBlocks(contents, editor.markerSet.ForKey(key))) > 0
}

// findBlocks pairs each end marker with the closest start marker preceding it.
func findBlocks(contents string, markers Markers) []blockSpan {
	var spans []blockSpan
	searchOffset := 0
	for searchOffset <= len(contents) {
		endIndex := indexMarker(contents, markers.End, searchOffset)
		if endIndex < 0 {
			break
		}
		blockEnd := endIndex + len(markers.End)
		startIndex := lastIndexMarker(contents, markers.Start, searchOffset, endIndex)
		if startIndex >= 0 {
			spans = append(spans, blockSpan{start: startIndex, end: consumeLineBreak(contents, blockEnd)})
		}
		searchOffset = blockEnd
	}
	return spans
}

func removeSpans(contents string, spans []blockSpan) string {
	if len(spans) == 0 {
		return contents
	}
	var builder strings.Builder
	previousEnd := 0
	for _, span := range spans {
		builder.WriteString(contents[previousEnd:span.start])
		previousEnd = span.end
		if endsWithBlankLine(builder.String()) {
			previousEnd = consumeLineBreak(contents, previousEnd)
		}
	}
	builder.WriteString(contents[previousEnd:])
	return builder.String()
}

// indexMarker finds marker at or after offset where the marker is followed by a line break or the end of contents.
func indexMarker(contents string, marker string, offset int) int {
	for offset <= len(contents) {
		relativeIndex := strings.Index(contents[offset:], marker)
		if relativeIndex < 0 {
			return -1
		}
		absoluteIndex := offset + relativeIndex
		if endsAtLineBoundary(contents, absoluteIndex+len(marker)) {
			return absoluteIndex
		}
		offset = absoluteIndex + 1
	}
	return -1
}

// lastIndexMarker finds the last marker in contents[lowerBound:upperBound] that ends at a line boundary.
func lastIndexMarker(contents string, marker string, lowerBound int, upperBound int) int {
	window := contents[lowerBound:upperBound]
	for len(window) > 0 {
		relativeIndex := strings.LastIndex(window, marker)
		if relativeIndex < 0 {
			return -1
		}
		absoluteIndex := lowerBound + relativeIndex
		markerEnd := absoluteIndex + len(marker)
		if markerEnd == upperBound || endsAtLineBoundary(contents, markerEnd) {
			return absoluteIndex
		}
		window = window[:relativeIndex]
	}
	return -1
}

func endsAtLineBoundary(contents string, index int) bool {
	if index >= len(contents) {
		return true
	}
	return strings.HasPrefix(contents[index:], newlineConstant) || strings.HasPrefix(contents[index:], carriageReturnConstant)
}

func endsWithBlankLine(contents string) bool {
	return len(contents) == 0 || strings.HasSuffix(contents, blockSeparatorConstant) || strings.HasSuffix(contents, carriageReturnConstant+newlineConstant+carriageReturnConstant+newlineConstant)
}

func consumeLineBreak(contents string, index int) int {
	if strings.HasPrefix(contents[index:], carriageReturnConstant+newlineConstant) {
		return index + 2
	}
	if strings.HasPrefix(contents[index:], newlineConstant) {
		return index + 1
	}
	return index
}

func normalizeTrailingWhitespace(contents string) string {
	trimmed := strings.TrimRight(contents, trailingWhitespaceConstant)
	if len(trimmed) == 0 {
		return ""
	}
	return trimmed + newlineConstant
}
