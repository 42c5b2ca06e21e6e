package chunker

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators are tried in order: paragraph breaks, then line breaks,
// then sentence boundaries, then words. Text with none of these gets a hard
// character cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into segments of at most chunkSize characters with
// chunkOverlap characters carried between consecutive segments, preferring
// natural boundaries over hard cuts. Sizes count runes, not bytes, so
// multibyte text is never cut mid-character.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the given size and overlap.
// Overlap must be smaller than size; config validation enforces this.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the ordered segments of text. Leading/trailing whitespace is
// trimmed; empty input yields no segments.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.splitRecursive(text, s.separators)
}

func (s *Splitter) splitRecursive(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return s.hardSplit(text)
	}

	sep := separators[0]
	rest := separators[1:]
	if !strings.Contains(text, sep) {
		return s.splitRecursive(text, rest)
	}

	parts := strings.Split(text, sep)

	var chunks []string
	var pending []string
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		// Oversized fragment: flush what we have, then split it deeper.
		chunks = append(chunks, s.merge(pending, sep)...)
		pending = nil
		chunks = append(chunks, s.splitRecursive(part, rest)...)
	}
	chunks = append(chunks, s.merge(pending, sep)...)

	return chunks
}

// merge greedily packs fragments into chunks up to chunkSize, retaining a
// tail of fragments totalling at most chunkOverlap characters as the start
// of the next chunk. Overlap therefore snaps to fragment boundaries.
func (s *Splitter) merge(fragments []string, sep string) []string {
	var chunks []string
	var current []string
	total := 0
	sepLen := utf8.RuneCountInString(sep)

	joinedLen := func(n, fragLen int) int {
		if n == 0 {
			return fragLen
		}
		return fragLen + sepLen
	}

	for _, frag := range fragments {
		fragLen := utf8.RuneCountInString(frag)
		if total+joinedLen(len(current), fragLen) > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop fragments from the front until the retained tail fits the
			// overlap budget and the new fragment still fits the chunk.
			for len(current) > 0 &&
				(total > s.chunkOverlap || total+joinedLen(len(current), fragLen) > s.chunkSize) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, frag)
		total += fragLen
	}

	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// hardSplit cuts text into fixed rune windows stepping size-overlap
// characters. Last resort when no separator exists in the text.
func (s *Splitter) hardSplit(text string) []string {
	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = s.chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
