package pastebin

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	cacheEnvVar   = "PASTECHANNEL_CACHE_DIR"
	cacheSubdir   = "pastechannel/raw"
	cacheTTL      = 24 * time.Hour
	bodySuffix    = ".txt"
	metaSuffix    = ".meta"
	partialSuffix = ".part"
	maxBodyBytes  = 8 << 20
)

// bodyCache keeps raw entry bodies on disk. Bodies are revalidated with
// conditional requests once they are older than cacheTTL, and a stale copy is
// served when the network fails.
type bodyCache struct {
	dir    string
	client *http.Client
	now    func() time.Time
}

type bodyMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	ContentType  string    `json:"contentType"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

type cachedBody struct {
	data        []byte
	contentType string
}

func newBodyCache(client *http.Client) (*bodyCache, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "pastechannel-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache dir %s", dir)
	}
	return &bodyCache{dir: dir, client: client, now: time.Now}, nil
}

func (c *bodyCache) Fetch(ctx context.Context, url string) (cachedBody, error) {
	bodyPath, metaPath, partialPath := c.pathsFor(cacheKey(url))

	meta, metaErr := readMeta(metaPath)
	_, statErr := os.Stat(bodyPath)
	haveBody := statErr == nil && metaErr == nil
	if haveBody && c.now().Sub(meta.CachedAt) < cacheTTL {
		return c.readBody(bodyPath, meta)
	}

	body, err := c.download(ctx, url, bodyPath, metaPath, partialPath, meta, haveBody)
	if err == nil {
		return body, nil
	}
	if haveBody {
		return c.readBody(bodyPath, meta)
	}
	return cachedBody{}, err
}

func (c *bodyCache) download(ctx context.Context, url, bodyPath, metaPath, partialPath string, meta bodyMeta, haveBody bool) (cachedBody, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return cachedBody{}, err
	}
	if haveBody {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return cachedBody{}, errors.Wrapf(ErrUnavailable, "get %s: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && haveBody:
		meta.CachedAt = c.now().UTC()
		if err := writeMeta(metaPath, meta); err != nil {
			return cachedBody{}, err
		}
		return c.readBody(bodyPath, meta)
	case resp.StatusCode == http.StatusOK:
		return c.save(resp, bodyPath, metaPath, partialPath)
	default:
		return cachedBody{}, statusError(url, resp)
	}
}

func (c *bodyCache) save(resp *http.Response, bodyPath, metaPath, partialPath string) (cachedBody, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return cachedBody{}, errors.Wrapf(ErrUnavailable, "read body: %v", err)
	}
	if err := os.WriteFile(partialPath, data, 0o644); err != nil {
		return cachedBody{}, errors.Wrap(err, "failed to write cache body")
	}
	if err := os.Rename(partialPath, bodyPath); err != nil {
		return cachedBody{}, errors.Wrap(err, "failed to move cache body")
	}

	meta := bodyMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  resp.Header.Get("Content-Type"),
		CachedAt:     c.now().UTC(),
		Size:         int64(len(data)),
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return cachedBody{}, err
	}
	return cachedBody{data: data, contentType: meta.ContentType}, nil
}

func (c *bodyCache) readBody(path string, meta bodyMeta) (cachedBody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cachedBody{}, errors.Wrapf(err, "failed to read cached body %s", path)
	}
	return cachedBody{data: data, contentType: meta.ContentType}, nil
}

func (c *bodyCache) pathsFor(key string) (string, string, string) {
	base := filepath.Join(c.dir, key)
	return base + bodySuffix, base + metaSuffix, base + partialSuffix
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

func readMeta(path string) (bodyMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bodyMeta{}, err
	}
	var meta bodyMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return bodyMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta bodyMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache meta")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "failed to write %s", path)
}
