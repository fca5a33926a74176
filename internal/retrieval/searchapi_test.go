package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"
)

func stubGet(body string, err error) (getFunc, *[]string) {
	var urls []string
	return func(_ context.Context, u string, _ map[string]string) (io.ReadCloser, error) {
		urls = append(urls, u)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(strings.NewReader(body)), nil
	}, &urls
}

func TestSearchClientConfigured(t *testing.T) {
	tests := []struct {
		name     string
		key, cx  string
		expected bool
	}{
		{"no credentials", "", "", false},
		{"key only", "k", "", false},
		{"engine only", "", "cx", false},
		{"both", "k", "cx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSearchClient("", tt.key, tt.cx)
			if got := c.Configured(); got != tt.expected {
				t.Errorf("Configured() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSearchClientDefaultEndpoint(t *testing.T) {
	c := NewSearchClient("", "k", "cx")
	if !strings.Contains(c.endpoint, "googleapis.com") {
		t.Errorf("default endpoint = %q", c.endpoint)
	}
}

func TestSearchQueryShape(t *testing.T) {
	body := `{"items":[]}`
	doGet, urls := stubGet(body, nil)

	c := NewSearchClient("https://search.test/v1", "the-key", "the-cx")
	c.doGet = doGet

	if _, err := c.Search(context.Background(), "Acme Corp", 7); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(*urls) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*urls))
	}

	u, err := url.Parse((*urls)[0])
	if err != nil {
		t.Fatalf("parse request URL: %v", err)
	}
	q := u.Query()
	if q.Get("key") != "the-key" || q.Get("cx") != "the-cx" {
		t.Errorf("credentials not passed: %v", q)
	}
	if q.Get("q") != "Acme Corp news" {
		t.Errorf("query = %q, want %q", q.Get("q"), "Acme Corp news")
	}
	if q.Get("num") != "7" {
		t.Errorf("num = %q, want 7", q.Get("num"))
	}
}

func TestSearchParsesItems(t *testing.T) {
	body := `{
	  "items": [
	    {"title": "Acme surges", "link": "https://news.example.com/1", "displayLink": "news.example.com", "snippet": "up 10%"},
	    {"title": "No link item", "link": ""},
	    {"title": "Acme dips", "link": "https://www.other.example.com/2"},
	    {"title": "Over the limit", "link": "https://news.example.com/3"}
	  ]
	}`
	doGet, _ := stubGet(body, nil)

	c := NewSearchClient("https://search.test/v1", "k", "cx")
	c.doGet = doGet

	got, err := c.Search(context.Background(), "acme", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want limit 2", len(got))
	}
	if got[0].Title != "Acme surges" || got[0].URL != "https://news.example.com/1" {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[0].Source != "news.example.com" {
		t.Errorf("source from displayLink = %q", got[0].Source)
	}
	// Missing displayLink falls back to the link's host.
	if got[1].Source != "other.example.com" {
		t.Errorf("derived source = %q", got[1].Source)
	}
}

func TestSearchErrors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		doGet, _ := stubGet("", fmt.Errorf("boom"))
		c := NewSearchClient("https://search.test/v1", "k", "cx")
		c.doGet = doGet

		if _, err := c.Search(context.Background(), "acme", 5); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		doGet, _ := stubGet("<html>definitely not json</html>", nil)
		c := NewSearchClient("https://search.test/v1", "k", "cx")
		c.doGet = doGet

		if _, err := c.Search(context.Background(), "acme", 5); err == nil {
			t.Fatal("expected decode error")
		}
	})
}
