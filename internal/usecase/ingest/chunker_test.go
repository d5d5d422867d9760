package ingest_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/futig/virtual-ta/internal/usecase/ingest"
)

var _ = Describe("Chunker", func() {
	chunker := ingest.Chunker{MaxChars: 40, OverlapChars: 10}

	It("should yield nothing for blank text", func() {
		Expect(chunker.Split("  \n\n \n")).To(BeEmpty())
	})

	It("should keep short paragraphs together", func() {
		Expect(chunker.Split("one\n\ntwo")).To(Equal([]string{"one\n\ntwo"}))
	})

	It("should never exceed the size limit", func() {
		text := strings.Repeat("alpha beta gamma delta\n\n", 10) + strings.Repeat("x", 130)
		for _, c := range chunker.Split(text) {
			Expect(utf8.RuneCountInString(c)).To(BeNumerically("<=", 40))
		}
	})

	It("should cut long paragraphs into overlapping windows", func() {
		chunks := chunker.Split(strings.Repeat("a", 35) + strings.Repeat("b", 35))
		Expect(chunks).To(HaveLen(2))
		Expect(chunks[0]).To(HaveLen(40))
		Expect(chunks[1][:10]).To(Equal(chunks[0][30:]))
	})

	It("should carry the tail of the previous chunk", func() {
		chunks := chunker.Split("first paragraph here\n\nsecond one\n\nthird paragraph is longer")
		Expect(len(chunks)).To(BeNumerically(">=", 2))
		Expect(chunks[1]).To(HavePrefix(chunks[0][len(chunks[0])-10:]))
	})

	It("should count runes rather than bytes", func() {
		chunks := chunker.Split(strings.Repeat("é", 40))
		Expect(chunks).To(HaveLen(1))
	})
})
