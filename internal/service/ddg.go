package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html"

var (
	ErrEmptyKeywords  = errors.New("keywords is mandatory")
	allowedTimelimits = []string{"d", "w", "m", "y"}
	userAgents        = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	}
)

type TextResult struct {
	Title string
	Href  string
	Body  string
}

type DuckDuckGoSearch struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewDuckDuckGoSearch(client *http.Client, rateLimit time.Duration) *DuckDuckGoSearch {
	if rateLimit == 0 {
		rateLimit = 1 * time.Second
	}
	return &DuckDuckGoSearch{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(rateLimit), 1),
		baseURL: duckDuckGoHTMLURL,
	}
}

func (d *DuckDuckGoSearch) getURL(ctx context.Context, method string, urlStr string, params url.Values) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://duckduckgo.com/")
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])

	resp, err := d.client.Do(req)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return nil, fmt.Errorf("%s timeout: %w", urlStr, err)
		}
		return nil, fmt.Errorf("%s request failed: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%s ratelimit: status %d", urlStr, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s failed: status %d", urlStr, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func normalizeURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}
	unescaped, err := url.QueryUnescape(urlStr)
	if err != nil {
		return urlStr
	}
	return strings.ReplaceAll(unescaped, " ", "+")
}

// resolveRedirect unwraps links of the form //duckduckgo.com/l/?uddg=<target>.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func (d *DuckDuckGoSearch) Text(
	ctx context.Context,
	keywords string,
	region string,
	timeLimit string,
	maxResults int,
) ([]TextResult, error) {
	if keywords == "" {
		return nil, ErrEmptyKeywords
	}

	if maxResults == 0 {
		maxResults = 3
	}

	payload := url.Values{
		"q":  []string{keywords},
		"b":  []string{""},
		"kl": []string{region},
	}
	if timeLimit == "" || slices.Contains(allowedTimelimits, timeLimit) {
		payload.Set("df", timeLimit)
	}

	seen := make(map[string]bool)
	var results []TextResult

	for range 5 {
		resp, err := d.getURL(ctx, http.MethodPost, d.baseURL, payload)
		if err != nil {
			return nil, err
		}

		if bytes.Contains(resp, []byte("No results.")) {
			return results, nil
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp))
		if err != nil {
			return nil, err
		}

		doc.Find("div.result").Each(func(i int, s *goquery.Selection) {
			if len(results) >= maxResults {
				return
			}
			link := s.Find("a.result__a")
			href, exists := link.Attr("href")
			if !exists {
				return
			}
			href = resolveRedirect(href)

			if href != "" && !seen[href] &&
				!strings.HasPrefix(href, "http://www.google.com/search?q=") &&
				!strings.HasPrefix(href, "https://duckduckgo.com/y.js?ad_domain") {

				seen[href] = true
				results = append(results, TextResult{
					Title: normalize(link.Text()),
					Href:  normalizeURL(href),
					Body:  normalize(s.Find("a.result__snippet").Text()),
				})
			}
		})

		if len(results) >= maxResults {
			break
		}

		nextPage := doc.Find("div.nav-link").Last()
		if nextPage.Length() == 0 {
			break
		}

		nextPage.Find("input[type=hidden]").Each(func(i int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			value, _ := s.Attr("value")
			if name != "" {
				payload.Set(name, value)
			}
		})
	}

	return results, nil
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
