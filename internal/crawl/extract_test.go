package crawl

import (
	"strings"
	"testing"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<div class="job-card">
  <h3>Backend Engineer Intern</h3>
  <span class="company">Kongu Systems</span>
  <span class="type">Internship</span>
  <span class="tag">Go</span>
  <span class="tag">SQL</span>
  <a href="/jobs/backend-intern">Apply</a>
</div>
<div class="job-card">
  <h3>Data Analyst</h3>
  <span class="company">Northwind</span>
  <a href="https://other.example.com/jobs/42">View</a>
</div>
<div class="job-card">
  <span class="company">No Title Corp</span>
</div>
</body></html>`

func TestExtractListings(t *testing.T) {
	opps, err := ExtractListings(listingPage, "https://careers.example.com/listings")
	if err != nil {
		t.Fatalf("ExtractListings failed: %v", err)
	}
	if len(opps) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(opps))
	}

	first := opps[0]
	if first.Title != "Backend Engineer Intern" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Company != "Kongu Systems" {
		t.Errorf("company = %q", first.Company)
	}
	if first.Type != "Internship" {
		t.Errorf("type = %q", first.Type)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "Go" || first.Tags[1] != "SQL" {
		t.Errorf("tags = %v", first.Tags)
	}
	if first.SourceURL != "https://careers.example.com/jobs/backend-intern" {
		t.Errorf("relative link not resolved: %q", first.SourceURL)
	}
	if !strings.HasPrefix(first.ID, "rt-") {
		t.Errorf("ID missing realtime prefix: %q", first.ID)
	}

	if opps[1].SourceURL != "https://other.example.com/jobs/42" {
		t.Errorf("absolute link rewritten: %q", opps[1].SourceURL)
	}
}

func TestExtractListingsStableIDs(t *testing.T) {
	a, err := ExtractListings(listingPage, "https://careers.example.com/listings")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ExtractListings(listingPage, "https://careers.example.com/listings")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("ID for %q changed between crawls: %q vs %q", a[i].Title, a[i].ID, b[i].ID)
		}
	}
}

func TestExtractListingsNoEntries(t *testing.T) {
	opps, err := ExtractListings("<html><body><p>nothing here</p></body></html>", "https://careers.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities, got %d", len(opps))
	}
}

func TestShouldUseBrowser(t *testing.T) {
	if ShouldUseBrowser(listingPage) {
		t.Error("server-rendered listing flagged for browser fetch")
	}
	if !ShouldUseBrowser(`<html><body><div id="root"></div></body></html>`) {
		t.Error("empty SPA shell not flagged for browser fetch")
	}
}
