// Package pastebin fetches the public archive listing and raw entry bodies.
package pastebin

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	userAgent          = "pastechannel/1.0"
	maxArchiveBytes    = 4 << 20
)

var (
	// ErrUnavailable marks transport failures and error statuses. Callers
	// retry these after a delay.
	ErrUnavailable = errors.New("pastebin unavailable")
	// ErrNoEntries is returned when the archive parsed to an empty listing.
	ErrNoEntries = errors.New("archive listed no entries")
)

// Config describes where the site lives and how to reach it.
type Config struct {
	ArchiveURL string
	RawURL     string
	PageURL    string
	// Cache enables the on-disk cache of entry bodies.
	Cache      bool
	HTTPClient *http.Client
}

// Body is the decoded text of one entry.
type Body struct {
	Text string
	Size int
}

// Client talks to the pastebin site.
type Client struct {
	config Config
	http   *http.Client
	cache  *bodyCache
}

// New builds a client. The body cache is created lazily on disk when enabled.
func New(config Config) (*Client, error) {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	client := &Client{config: config, http: httpClient}
	if config.Cache {
		cache, err := newBodyCache(httpClient)
		if err != nil {
			return nil, err
		}
		client.cache = cache
	}
	return client, nil
}

// EntryURL is the human-facing page of an entry.
func (c *Client) EntryURL(id string) string {
	return c.config.PageURL + id
}

// FetchListing downloads and parses the archive page.
func (c *Client) FetchListing(ctx context.Context) (*Listing, error) {
	data, contentType, err := c.get(ctx, c.config.ArchiveURL, maxArchiveBytes)
	if err != nil {
		return nil, err
	}
	listing := ParseArchive(strings.NewReader(decodeBody(data, contentType)))
	if listing.Len() == 0 {
		return listing, errors.Wrapf(ErrNoEntries, "parse %s", c.config.ArchiveURL)
	}
	return listing, nil
}

// FetchEntry downloads the raw text of one entry, decoding it with the
// charset from the response when one is declared.
func (c *Client) FetchEntry(ctx context.Context, id string) (Body, error) {
	if id == "" {
		return Body{}, errors.New("entry id is empty")
	}
	url := c.config.RawURL + id

	if c.cache != nil {
		cached, err := c.cache.Fetch(ctx, url)
		if err != nil {
			return Body{}, err
		}
		return Body{Text: decodeBody(cached.data, cached.contentType), Size: len(cached.data)}, nil
	}

	data, contentType, err := c.get(ctx, url, maxBodyBytes)
	if err != nil {
		return Body{}, err
	}
	return Body{Text: decodeBody(data, contentType), Size: len(data)}, nil
}

func (c *Client) get(ctx context.Context, url string, limit int64) ([]byte, string, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(ErrUnavailable, "get %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", statusError(url, resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", errors.Wrapf(ErrUnavailable, "read %s: %v", url, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", url)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func statusError(url string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errors.Wrapf(ErrUnavailable, "get %s: %s (%s)", url, resp.Status, bytes.TrimSpace(body))
}

// decodeBody converts data to UTF-8 using the charset parameter of
// contentType. Anything it cannot decode is returned as is.
func decodeBody(data []byte, contentType string) string {
	if contentType == "" {
		return string(data)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(data)
	}
	name := params["charset"]
	if name == "" {
		return string(data)
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
