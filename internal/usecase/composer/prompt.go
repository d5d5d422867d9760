package composer

import (
	"strings"

	"github.com/futig/virtual-ta/internal/entity"
)

const (
	promptPrefix = "You are a helpful virtual TA for the TDS course. " +
		"Use the context below to answer the student's question.\n\nContext:\n"
	promptQuestion  = "\n\nQuestion:\n"
	promptGrounding = "\n\nAnswer only from the context above. " +
		"If the context does not contain the answer, say that you don't know.\n\nAnswer:"

	contextSeparator = "\n\n"
)

func buildContext(retrieved entity.RetrievalResult) string {
	texts := make([]string, len(retrieved))
	for i, sc := range retrieved {
		texts[i] = sc.Chunk.Text
	}
	return strings.Join(texts, contextSeparator)
}

func buildPrompt(question, context string) string {
	var b strings.Builder
	b.Grow(len(promptPrefix) + len(context) + len(promptQuestion) + len(question) + len(promptGrounding))
	b.WriteString(promptPrefix)
	b.WriteString(context)
	b.WriteString(promptQuestion)
	b.WriteString(question)
	b.WriteString(promptGrounding)
	return b.String()
}

// buildLinks cites every retrieved source once, in retrieval order
func buildLinks(retrieved entity.RetrievalResult) []entity.Link {
	links := make([]entity.Link, 0, len(retrieved))
	seen := make(map[string]struct{}, len(retrieved))

	for _, sc := range retrieved {
		url := strings.TrimSpace(sc.Chunk.URL)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}

		text := strings.TrimSpace(sc.Chunk.Title)
		if text == "" {
			text = entity.DefaultLinkText
		}
		links = append(links, entity.Link{URL: url, Text: text})
	}
	return links
}
