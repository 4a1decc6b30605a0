package quote

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// DefaultBaseURL is the public Tencent quote endpoint.
const DefaultBaseURL = "https://qt.gtimg.cn"

// TencentFetcher implements Fetcher using the Tencent real-time quote feed.
// One request covers every code; the body is GBK text with one
// `v_<code>="..."` assignment per answered code.
type TencentFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewTencentFetcher creates a fetcher with optional proxy support.
func NewTencentFetcher(baseURL, proxyURL string, timeout time.Duration) *TencentFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TencentFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *TencentFetcher) Name() string { return "tencent" }

// RequestURL builds the feed URL. The r parameter defeats caches.
func (f *TencentFetcher) RequestURL(codes []string) string {
	return fmt.Sprintf("%s/q=%s?r=%s", f.BaseURL, strings.Join(codes, ","),
		strconv.FormatFloat(rand.Float64(), 'f', -1, 64))
}

func (f *TencentFetcher) FetchQuotes(ctx context.Context, codes []string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.RequestURL(codes), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tencent fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tencent: status %d, body: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(simplifiedchinese.GBK.NewDecoder().Reader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("tencent read body: %w", err)
	}
	return ParseFeed(string(body)), nil
}
