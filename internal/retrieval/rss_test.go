package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Business Wire</title>
    <item>
      <title>Acme launches new product line</title>
      <link>https://news.example.com/acme-launch</link>
      <description>&lt;b&gt;Acme Corp&lt;/b&gt; unveiled its latest offering.</description>
    </item>
    <item>
      <title>Unrelated market story</title>
      <link>https://news.example.com/other</link>
      <description>Nothing to see here.</description>
    </item>
    <item>
      <title>Analysts weigh in on acme earnings</title>
      <link>https://news.example.com/acme-earnings</link>
      <description>Mixed views.</description>
    </item>
  </channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer srv.Close()

	feed := Feed{Name: "test", URL: srv.URL}
	got, err := fetchFeed(context.Background(), gofeed.NewParser(), feed, "Acme", 10)
	if err != nil {
		t.Fatalf("fetchFeed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 company mentions: %+v", len(got), got)
	}
	if got[0].URL != "https://news.example.com/acme-launch" {
		t.Errorf("url = %q", got[0].URL)
	}
	if got[0].Source != "news.example.com" {
		t.Errorf("source = %q", got[0].Source)
	}
	// HTML tags in the description must be stripped from the snippet.
	if got[0].Snippet != "Acme Corp unveiled its latest offering." {
		t.Errorf("snippet = %q", got[0].Snippet)
	}
}

func TestFetchFeedLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer srv.Close()

	got, err := fetchFeed(context.Background(), gofeed.NewParser(), Feed{Name: "test", URL: srv.URL}, "acme", 1)
	if err != nil {
		t.Fatalf("fetchFeed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d candidates, want limit 1", len(got))
	}
}

func TestFetchFeedUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchFeed(context.Background(), gofeed.NewParser(), Feed{Name: "test", URL: srv.URL}, "acme", 5); err == nil {
		t.Fatal("expected error for failing feed")
	}
}
