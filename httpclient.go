package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// newHTTPClient has no overall request timeout: an issued fetch runs until it
// succeeds, fails, or the program context is cancelled.
func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 5 * time.Minute
	transport.DisableCompression = true

	return &http.Client{
		Transport: transport,
	}
}

type bodyReader struct {
	io.Reader
	body io.Closer
}

func (b *bodyReader) Close() error {
	if c, ok := b.Reader.(io.Closer); ok {
		_ = c.Close()
	}
	return b.body.Close()
}

// decodeBody undoes the Content-Encoding we asked for in getJSON.
func decodeBody(res *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(res.Header.Get("Content-Encoding"))) {
	case "br":
		return &bodyReader{Reader: brotli.NewReader(res.Body), body: res.Body}, nil
	case "gzip":
		zr, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, err
		}
		return &bodyReader{Reader: zr, body: res.Body}, nil
	default:
		return res.Body, nil
	}
}

// getJSON issues req through the cache and decodes a 2xx JSON body into
// result. Every failure is reported as a *FetchError.
func getJSON(ctx context.Context, client *http.Client, rc *ReqCache, req *http.Request, result any) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")

	res, err := rc.CachedFetch(req, client)
	if err != nil {
		return transportError("failed to fetch", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return statusError(res)
	}

	body, err := decodeBody(res)
	if err != nil {
		return transportError("failed to decode response", err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(result); err != nil {
		return transportError("failed to decode response", err)
	}
	return nil
}
