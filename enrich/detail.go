package enrich

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/harvest/models"
)

// DetailPage holds the fields read from a company detail page.
type DetailPage struct {
	Website  *string
	Founders []models.Founder
}

// ParseDetail extracts the website and founders from detail-page HTML.
// The first matching website anchor wins; founders keep document order.
func ParseDetail(html string) (*DetailPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("enrich: parse detail page: %w", err)
	}

	page := &DetailPage{Founders: []models.Founder{}}
	if href, ok := doc.FindMatcher(selWebsite).First().Attr("href"); ok {
		page.Website = models.Text(href)
	}

	doc.FindMatcher(selFounderBlock).Each(func(_ int, block *goquery.Selection) {
		var f models.Founder
		if name := block.FindMatcher(selFounderName).First(); name.Length() > 0 {
			f.Name = models.Text(strings.TrimSpace(name.Text()))
		}
		if href, ok := block.FindMatcher(selFounderLink).First().Attr("href"); ok {
			f.LinkedIn = models.Text(href)
		}
		page.Founders = append(page.Founders, f)
	})
	return page, nil
}
