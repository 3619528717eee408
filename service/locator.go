package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PhilipWidoff/SmartPDF/types"
)

// previewLength caps the page-text preview attached to content-overlap
// citations. The ellipsis marker comes on top of it.
const previewLength = 200

var pageMentionRe = regexp.MustCompile(`(?i)(?:on\s+)?page\s+(\d+)`)

// PageLocator resolves which pages an answer originates from. Citation is
// best-effort: a locator failure never fails the query, it just yields no
// citations.
type PageLocator struct {
	documents DocumentStore
}

func NewPageLocator(documents DocumentStore) *PageLocator {
	return &PageLocator{
		documents: documents,
	}
}

// Locate runs two strategies in priority order. When the answer itself names
// page numbers those win outright; only an answer without any page mention
// falls back to matching answer sentences against page text.
func (l *PageLocator) Locate(ctx context.Context, document, answerText string) []types.Citation {
	if citations := ExtractPageMentions(answerText); len(citations) > 0 {
		return citations
	}

	pages, err := l.documents.Pages(ctx, document)
	if err != nil {
		log.Printf("Citation lookup skipped for %s: %v", document, err)
		return nil
	}
	return matchFragments(answerText, pages)
}

// ExtractPageMentions scans answer text for explicit "page N" / "on page N"
// mentions (case-insensitive) and returns one citation per distinct page
// number, in order of first appearance.
func ExtractPageMentions(answerText string) []types.Citation {
	matches := pageMentionRe.FindAllStringSubmatch(answerText, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var citations []types.Citation
	for _, match := range matches {
		page, err := strconv.Atoi(match[1])
		if err != nil || seen[page] {
			continue
		}
		seen[page] = true
		citations = append(citations, types.Citation{
			Page:    page,
			Preview: fmt.Sprintf("Referenced on page %d", page),
		})
	}
	return citations
}

// matchFragments is the content-overlap fallback: the answer is split on
// periods into lower-cased fragments, and every page whose lower-cased text
// contains any fragment verbatim becomes a citation, in page order.
func matchFragments(answerText string, pages []types.Page) []types.Citation {
	var fragments []string
	for _, part := range strings.Split(answerText, ".") {
		fragment := strings.ToLower(strings.TrimSpace(part))
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	if len(fragments) == 0 {
		return nil
	}

	var citations []types.Citation
	for _, page := range pages {
		pageText := strings.ToLower(page.Text)
		for _, fragment := range fragments {
			if strings.Contains(pageText, fragment) {
				citations = append(citations, types.Citation{
					Page:    page.Number,
					Preview: previewOf(page.Text),
				})
				break
			}
		}
	}
	return citations
}

func previewOf(pageText string) string {
	if len(pageText) > previewLength {
		pageText = pageText[:previewLength]
	}
	return pageText + "..."
}
