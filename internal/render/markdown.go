package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

type byteRange struct {
	start int
	end   int
}

// codeRanges returns the byte ranges of inline code span contents in content.
func codeRanges(md goldmark.Markdown, content string) []byteRange {
	source := []byte(content)
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var ranges []byteRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		code, ok := n.(*ast.CodeSpan)
		if !ok {
			return ast.WalkContinue, nil
		}
		for child := code.FirstChild(); child != nil; child = child.NextSibling() {
			textNode, ok := child.(*ast.Text)
			if !ok {
				continue
			}
			seg := textNode.Segment
			if seg.IsEmpty() {
				continue
			}
			start, stop := seg.Start, seg.Stop
			if start < 0 {
				start = 0
			}
			if stop > len(source) {
				stop = len(source)
			}
			if start < stop {
				ranges = append(ranges, byteRange{start: start, end: stop})
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return ranges
}

// highlightCode splits line into spans, styling inline code contents with code.
func highlightCode(md goldmark.Markdown, line string, base, code lipgloss.Style) []Span {
	ranges := codeRanges(md, line)
	if len(ranges) == 0 {
		return []Span{{Text: line, Style: base}}
	}
	spans := make([]Span, 0, len(ranges)*2+1)
	pos := 0
	for _, r := range ranges {
		if r.start < pos {
			continue
		}
		if r.start > pos {
			spans = append(spans, Span{Text: line[pos:r.start], Style: base})
		}
		spans = append(spans, Span{Text: line[r.start:r.end], Style: code})
		pos = r.end
	}
	if pos < len(line) {
		spans = append(spans, Span{Text: line[pos:], Style: base})
	}
	return spans
}
