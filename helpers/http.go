package helpers

import (
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/dvoryanov/tipscraper/logger"
	scrapeerr "github.com/dvoryanov/tipscraper/pkg/errors"
)

// HTTP client and header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}
)

// Fetcher retrieves pages from the tips site. It keeps the login cookies in
// a jar and re-authenticates once when the site answers with 401/403; the
// extraction pipeline itself never sees any of this.
type Fetcher struct {
	client   *http.Client
	loginURL string
	email    string
	password string
	log      *logger.Logger

	mu sync.Mutex
}

// NewFetcher creates a fetcher. Credentials are optional; without them the
// fetcher only reaches the public pages.
func NewFetcher(loginURL, email, password string) *Fetcher {
	jar, _ := cookiejar.New(nil)
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		loginURL: loginURL,
		email:    email,
		password: password,
		log:      logger.ForFetcher(),
	}
}

// Fetch sends a GET request with browser-like headers and returns the body
// as a UTF-8 string.
func (f *Fetcher) Fetch(pageURL string) (string, error) {
	body, status, err := f.get(pageURL)
	if err != nil {
		return "", err
	}

	if (status == http.StatusUnauthorized || status == http.StatusForbidden) && f.email != "" {
		if err := f.login(); err != nil {
			return "", err
		}
		body, status, err = f.get(pageURL)
		if err != nil {
			return "", err
		}
	}

	if status != http.StatusOK {
		return "", scrapeerr.NewNetwork("fetcher",
			fmt.Sprintf("fetch %s unexpected status code: %d", pageURL, status), nil)
	}

	return body, nil
}

func (f *Fetcher) get(pageURL string) (string, int, error) {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", 0, scrapeerr.NewNetwork("fetcher", "failed to create request", err)
	}

	// Set browser-like headers
	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9,en-US;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("upgrade-insecure-requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, scrapeerr.NewNetwork("fetcher", "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := time.Minute
		if v := resp.Header.Get("Retry-After"); v != "" {
			if d, err := time.ParseDuration(v + "s"); err == nil {
				retryAfter = d
			}
		}
		return "", resp.StatusCode, scrapeerr.NewRateLimit("fetcher", retryAfter)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, scrapeerr.NewNetwork("fetcher", "failed to read response body", err)
	}

	body, err := toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

// toUTF8 converts a response body to UTF-8 based on the Content-Type header
// and the body content.
func toUTF8(bodyBytes []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, contentType)
	if strings.EqualFold(name, "utf-8") {
		return string(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return "", scrapeerr.NewNetwork("fetcher", "failed to read converted UTF-8 body", err)
	}
	return buf.String(), nil
}

// login posts the credentials form. The jar keeps whatever session cookies
// the site hands back.
func (f *Fetcher) login() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	form := url.Values{
		"email":    {f.email},
		"password": {f.password},
	}

	resp, err := f.client.PostForm(f.loginURL, form)
	if err != nil {
		return scrapeerr.NewAuth("fetcher", "login request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return scrapeerr.NewAuth("fetcher",
			fmt.Sprintf("login rejected with status %d", resp.StatusCode), nil)
	}

	f.log.Info().Msg("Logged in to tips site")
	return nil
}
