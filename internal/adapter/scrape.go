package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// firstText walks the selectors in preference order and returns the text
// of the first one that matches inside the card. The staffing sites churn
// their markup, so each field carries several candidate selectors.
func firstText(card *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if el := card.Find(sel).First(); el.Length() > 0 {
			return collapseSpace(el.Text())
		}
	}
	return ""
}

// cardLink returns the card's first link resolved against the listing URL.
func cardLink(card *goquery.Selection, base *url.URL) string {
	href, ok := card.Find("a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
