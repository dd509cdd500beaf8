package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

const newsUpstream = "newsapi"

// maxArticles bounds the digest size per fetch.
const maxArticles = 5

// Article is one normalized headline.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// NewsDigest is the normalized news fetch result.
type NewsDigest struct {
	Query    string    `json:"query"`
	Articles []Article `json:"articles"`
}

// Summary renders the digest as plain text for the composer fallback.
func (n *NewsDigest) Summary() string {
	var b strings.Builder
	if n.Query == "" || n.Query == "latest" || n.Query == "general" {
		b.WriteString("Latest headlines:\n")
	} else {
		fmt.Fprintf(&b, "News about %q:\n", n.Query)
	}
	for i, a := range n.Articles {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, a.Title, a.Source)
		if a.Description != "" {
			fmt.Fprintf(&b, "   %s\n", a.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewsFetcher queries NewsAPI: top-headlines for general queries,
// the everything endpoint for topic searches.
type NewsFetcher struct {
	client  *http.Client
	apiKey  string
	baseURL string
	country string
}

// NewNewsFetcher creates a news fetcher. country selects the
// top-headlines region for general queries.
func NewNewsFetcher(apiKey, baseURL, country string, timeout time.Duration) *NewsFetcher {
	return &NewsFetcher{
		client:  newHTTPClient(timeout),
		apiKey:  apiKey,
		baseURL: baseURL,
		country: country,
	}
}

// Name implements Fetcher.
func (f *NewsFetcher) Name() string { return "get_news" }

// RequiredParams implements Fetcher. The query defaults to "general"
// when absent, so nothing is strictly required.
func (f *NewsFetcher) RequiredParams() []string { return nil }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch implements Fetcher with one call to NewsAPI.
func (f *NewsFetcher) Fetch(ctx context.Context, params map[string]string) (*Result, *Error) {
	if f.apiKey == "" {
		return nil, newError(apperrors.ErrUpstreamUnavailable, newsUpstream,
			"news API key not configured", apperrors.ErrUpstreamUnavailable)
	}

	query := strings.ToLower(cleanParam(params["query"]))
	if query == "" {
		query = "general"
	}

	var endpoint string
	q := url.Values{}
	q.Set("apiKey", f.apiKey)
	if query == "general" || query == "latest" {
		q.Set("country", f.country)
		endpoint = f.baseURL + "/v2/top-headlines?" + q.Encode()
	} else {
		q.Set("q", query)
		q.Set("sortBy", "publishedAt")
		q.Set("language", "en")
		endpoint = f.baseURL + "/v2/everything?" + q.Encode()
	}

	resp, ferr := getJSON(ctx, f.client, newsUpstream, endpoint)
	if ferr != nil {
		return nil, ferr
	}
	defer func() { _ = resp.Body.Close() }()

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, malformedError(newsUpstream, err)
	}
	if len(payload.Articles) == 0 {
		return nil, newError(apperrors.ErrInvalidInput, newsUpstream,
			fmt.Sprintf("no articles found for %q", query),
			apperrors.ErrInvalidInput)
	}

	articles := make([]Article, 0, maxArticles)
	for _, a := range payload.Articles {
		if len(articles) == maxArticles {
			break
		}
		description := truncateDescription(a.Description, 100)
		articles = append(articles, Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			Description: description,
		})
	}

	return &Result{
		Kind: intent.News,
		News: &NewsDigest{
			Query:    query,
			Articles: articles,
		},
	}, nil
}

// truncateDescription cuts s to at most limit runes, not bytes, so a
// multibyte description is never split mid-character.
func truncateDescription(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
