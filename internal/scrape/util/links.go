package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var mdLinkRe = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// ExtractLink pulls text and href out of a table cell. It understands
// markdown links and raw HTML anchors; anything else is returned as text.
func ExtractLink(cell string) (text, href string) {
	if m := mdLinkRe.FindStringSubmatch(cell); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if strings.Contains(cell, "<a") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
		if err == nil {
			a := doc.Find("a[href]").First()
			if href, ok := a.Attr("href"); ok {
				text := CleanText(a.Text())
				if text == "" {
					if img, ok := a.Find("img").Attr("alt"); ok {
						text = CleanText(img)
					}
				}
				return text, strings.TrimSpace(href)
			}
		}
	}
	return strings.TrimSpace(cell), ""
}

func StripBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
