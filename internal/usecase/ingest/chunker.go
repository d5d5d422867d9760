package ingest

import (
	"strings"
)

// Chunker packs paragraphs into chunks of at most MaxChars runes.
// Consecutive chunks of one document share up to OverlapChars trailing runes.
type Chunker struct {
	MaxChars     int
	OverlapChars int
}

// Split breaks text into chunks. Blank input yields no chunks.
func (c Chunker) Split(text string) []string {
	var chunks []string
	var current []rune

	flush := func() {
		s := strings.TrimSpace(string(current))
		if s != "" {
			chunks = append(chunks, s)
		}
		current = nil
	}

	for _, para := range paragraphs(text) {
		runes := []rune(para)

		// Oversized paragraphs are cut into overlapping windows
		if len(runes) > c.MaxChars {
			flush()
			chunks = append(chunks, c.windows(runes)...)
			continue
		}

		switch {
		case len(current) == 0:
			current = runes
		case len(current)+2+len(runes) <= c.MaxChars:
			current = append(current, '\n', '\n')
			current = append(current, runes...)
		default:
			tail := c.tail(current)
			flush()
			if len(tail) > 0 && len(tail)+2+len(runes) <= c.MaxChars {
				current = append(tail, '\n', '\n')
				current = append(current, runes...)
			} else {
				current = runes
			}
		}
	}
	flush()

	return chunks
}

func (c Chunker) windows(runes []rune) []string {
	step := c.MaxChars - c.OverlapChars
	if step <= 0 {
		step = c.MaxChars
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+c.MaxChars, len(runes))
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func (c Chunker) tail(runes []rune) []rune {
	if c.OverlapChars <= 0 {
		return nil
	}
	if len(runes) <= c.OverlapChars {
		return append([]rune(nil), runes...)
	}
	return append([]rune(nil), runes[len(runes)-c.OverlapChars:]...)
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
