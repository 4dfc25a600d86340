package crawl

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/karthik/placementhub/internal/types"
)

// listingSelectors are tried in order to find opportunity entries on a
// listing page.
var listingSelectors = []string{
	".job-listing",
	".job-card",
	".opportunity",
	"[data-testid='job-card']",
	"li.job",
	"article",
}

// ExtractListings parses a listing page and returns the opportunities it
// advertises. Entries without a recognizable title are skipped. Each
// opportunity's ID is derived from its resolved link (or title when no link
// exists) so repeated crawls of the same posting produce the same ID.
func ExtractListings(html, baseURL string) ([]types.Opportunity, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %s: %w", baseURL, err)
	}

	var entries *goquery.Selection
	for _, sel := range listingSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			entries = s
			break
		}
	}
	if entries == nil {
		return nil, nil
	}

	var opps []types.Opportunity
	entries.Each(func(_ int, s *goquery.Selection) {
		title := firstText(s, "h1, h2, h3, .title, .job-title")
		if title == "" {
			return
		}
		company := firstText(s, ".company, .employer, .org")
		kind := firstText(s, ".type, .job-type")

		link := ""
		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			if u, err := url.Parse(href); err == nil {
				link = base.ResolveReference(u).String()
			}
		}

		var tags []string
		s.Find(".tag, .skill, .badge").Each(func(_ int, t *goquery.Selection) {
			if tag := strings.TrimSpace(t.Text()); tag != "" {
				tags = append(tags, tag)
			}
		})

		opps = append(opps, types.Opportunity{
			ID:        listingID(link, title),
			Title:     title,
			Company:   company,
			Type:      kind,
			Tags:      tags,
			SourceURL: link,
		})
	})
	return opps, nil
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// listingID derives a stable opportunity ID from the posting's link, falling
// back to its title. The "rt-" prefix marks records from the realtime crawl.
func listingID(link, title string) string {
	key := link
	if key == "" {
		key = title
	}
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("rt-%x", sum[:6])
}
