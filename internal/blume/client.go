package blume

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Placeholder replaces byte sequences that cannot be decoded.
const Placeholder = "?"

// Client downloads daily measurement pages.
type Client struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

// NewClient returns a client with the given overall timeout and body size cap.
func NewClient(timeout time.Duration, sizeCap int64) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "blume-airquality-viewer/1.0",
	}
}

// FetchPage retrieves url and returns its body as UTF-8 text.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	var body io.Reader = resp.Body
	if c.sizeCap > 0 {
		body = io.LimitReader(resp.Body, c.sizeCap)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body %s: %w", url, err)
	}

	return DecodeBody(data, resp.Header.Get("Content-Type")), nil
}

// DecodeBody converts a page body to UTF-8. The charset comes from a BOM, the
// Content-Type header or the document's meta tags; without one the body is
// read as UTF-8. Undecodable input is replaced with Placeholder instead of
// failing.
func DecodeBody(data []byte, contentType string) string {
	enc, _, certain := charset.DetermineEncoding(data, contentType)
	if !certain {
		enc = unicode.UTF8
		if label := metaCharset(data); label != "" {
			if declared, _ := charset.Lookup(label); declared != nil {
				enc = declared
			}
		}
	}
	if decoded, _, err := transform.Bytes(enc.NewDecoder(), data); err == nil {
		data = decoded
	}
	text := strings.ToValidUTF8(string(data), Placeholder)
	return strings.ReplaceAll(text, "\uFFFD", Placeholder)
}

// meta charsets must appear within the first 1024 bytes.
const metaPrescanLen = 1024

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]*charset\s*=\s*["']?\s*([a-z0-9_:.\-]+)`)

func metaCharset(data []byte) string {
	if len(data) > metaPrescanLen {
		data = data[:metaPrescanLen]
	}
	m := metaCharsetRe.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}
