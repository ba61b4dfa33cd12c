package main

import (
	"context"
	"fmt"
	"net/http"
)

type ImageData struct {
	Id         string `json:"id"`
	Tags       string `json:"tags"`
	Source     string `json:"source"`
	PageUrl    string `json:"pageUrl"`
	Artist     string `json:"artist"`
	PreviewUrl string `json:"previewUrl"`
	LargeUrl   string `json:"largeUrl"`
	Likes      int    `json:"likes"`
	Views      int    `json:"views"`
	Comments   int    `json:"comments"`
	Downloads  int    `json:"downloads"`
}

// ResultPage is one page of results as the session sees it. Total is the
// number of hits the provider is willing to page through.
type ResultPage struct {
	Items []ImageData
	Total int
}

// ImageSearcher is a single upstream provider with a fixed page size.
type ImageSearcher interface {
	Search(ctx context.Context, page int, query string) (ResultPage, error)
	Type() string
	PageSize() int
}

// ResultsFetcher fetches one session page.
type ResultsFetcher interface {
	Fetch(ctx context.Context, query string, page int, perPage int) (ResultPage, error)
}

// FetchError is returned for transport failures and non-2xx responses.
// StatusCode is 0 when no response was received or it could not be decoded.
type FetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected HTTP status: %d %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func statusError(res *http.Response) *FetchError {
	return &FetchError{
		StatusCode: res.StatusCode,
		Message:    http.StatusText(res.StatusCode),
	}
}

func transportError(msg string, err error) *FetchError {
	return &FetchError{Message: msg, Err: err}
}
