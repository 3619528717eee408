package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhilipWidoff/SmartPDF/types"
)

func TestExtractPageMentions_OrderAndDistinct(t *testing.T) {
	citations := ExtractPageMentions("See page 12 for details, and on page 5 too. Page 12 again.")

	require.Len(t, citations, 2)
	assert.Equal(t, 12, citations[0].Page)
	assert.Equal(t, "Referenced on page 12", citations[0].Preview)
	assert.Equal(t, 5, citations[1].Page)
	assert.Equal(t, "Referenced on page 5", citations[1].Preview)
}

func TestExtractPageMentions_CaseInsensitive(t *testing.T) {
	citations := ExtractPageMentions("ON PAGE 7 the author argues otherwise")

	require.Len(t, citations, 1)
	assert.Equal(t, 7, citations[0].Page)
}

func TestExtractPageMentions_NoMentions(t *testing.T) {
	assert.Empty(t, ExtractPageMentions("nothing to cite here"))
}

func TestLocate_ExplicitMentionsWinOverContentOverlap(t *testing.T) {
	docs := newFakeDocumentStore()
	// Page 3's text contains the whole answer, so the fallback would cite
	// page 3. The explicit mention of page 12 must win without ever
	// touching the document.
	answer := "The rule is on page 12. Wizards move twice"
	docs.addDocument(t, "rules.pdf", "raw", []types.Page{
		{Number: 1, Text: "intro"},
		{Number: 3, Text: strings.ToLower(answer)},
	})
	locator := NewPageLocator(docs)

	citations := locator.Locate(context.Background(), "rules.pdf", answer)

	require.Len(t, citations, 1)
	assert.Equal(t, 12, citations[0].Page)
	assert.EqualValues(t, 0, docs.pageReads, "tier 2 must not run when tier 1 matched")
}

func TestLocate_ContentOverlapFallback(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.addDocument(t, "rules.pdf", "raw", []types.Page{
		{Number: 1, Text: "table of contents"},
		{Number: 2, Text: "The Wizard Moves Twice per turn and may pass through walls."},
		{Number: 3, Text: "index"},
	})
	locator := NewPageLocator(docs)

	citations := locator.Locate(context.Background(), "rules.pdf", "the wizard moves twice per turn. Nothing else matters")

	require.Len(t, citations, 1)
	assert.Equal(t, 2, citations[0].Page)
	assert.LessOrEqual(t, len(citations[0].Preview), 203)
	assert.True(t, strings.HasSuffix(citations[0].Preview, "..."))
}

func TestLocate_FallbackPreviewTruncatedAt200(t *testing.T) {
	docs := newFakeDocumentStore()
	longText := "needle " + strings.Repeat("x", 500)
	docs.addDocument(t, "big.pdf", "raw", []types.Page{
		{Number: 1, Text: longText},
	})
	locator := NewPageLocator(docs)

	citations := locator.Locate(context.Background(), "big.pdf", "needle")

	require.Len(t, citations, 1)
	assert.Len(t, citations[0].Preview, 203)
	assert.Equal(t, longText[:200]+"...", citations[0].Preview)
}

func TestLocate_FallbackMatchIsLiteralSubstring(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.addDocument(t, "rules.pdf", "raw", []types.Page{
		{Number: 1, Text: "the wizard moved twice"},
	})
	locator := NewPageLocator(docs)

	// "moves" is not a literal substring of "moved"; no stemming applies.
	citations := locator.Locate(context.Background(), "rules.pdf", "the wizard moves twice")
	assert.Empty(t, citations)
}

func TestLocate_DocumentReadFailureYieldsNoCitations(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.pagesErr = errors.New("disk gone")
	locator := NewPageLocator(docs)

	citations := locator.Locate(context.Background(), "missing.pdf", "an answer without page mentions")
	assert.Empty(t, citations)
}

func TestLocate_MultiplePagesInPageOrder(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.addDocument(t, "rules.pdf", "raw", []types.Page{
		{Number: 1, Text: "first fragment here"},
		{Number: 2, Text: "unrelated"},
		{Number: 3, Text: "second fragment here"},
	})
	locator := NewPageLocator(docs)

	citations := locator.Locate(context.Background(), "rules.pdf", "first fragment. second fragment")

	require.Len(t, citations, 2)
	assert.Equal(t, 1, citations[0].Page)
	assert.Equal(t, 3, citations[1].Page)
}
