// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package article

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Render converts generated article HTML into readable plain text for
// terminal display: headings are underlined, list items get bullets,
// links keep their target in parentheses. Script and style bodies are
// dropped.
func Render(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing article HTML: %w", err)
	}

	doc.Find("script, style").Remove()

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if href != "" && text != "" && text != href {
			a.SetText(fmt.Sprintf("%s (%s)", text, href))
		}
	})

	var b strings.Builder
	blocks := doc.Find("h1, h2, h3, h4, p, li, blockquote, pre")
	if blocks.Length() == 0 {
		// No block structure; fall back to the flattened text.
		return collapse(doc.Text()), nil
	}

	blocks.Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(sel) {
		case "h1", "h2", "h3", "h4":
			b.WriteString(text)
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("-", min(len(text), 72)))
			b.WriteString("\n\n")
		case "li":
			b.WriteString("  - ")
			b.WriteString(text)
			b.WriteByte('\n')
		default:
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	})

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// RenderOrRaw renders the HTML, falling back to the raw input when it
// cannot be parsed. Display should never fail because a generated
// article is malformed.
func RenderOrRaw(html string) string {
	text, err := Render(html)
	if err != nil || strings.TrimSpace(text) == "" {
		return html
	}
	return text
}

// collapse squeezes all runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
