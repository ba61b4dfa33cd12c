package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const pixabayBaseUrl = "https://pixabay.com/api/"

type PixabaySearchItem struct {
	Id            int    `json:"id"`
	Tags          string `json:"tags"`
	WebFormatUrl  string `json:"webformatURL"`
	LargeImageUrl string `json:"largeImageURL"`
	PageUrl       string `json:"pageURL"`
	UserId        int    `json:"user_id"`
	User          string `json:"user"`
	Likes         int    `json:"likes"`
	Views         int    `json:"views"`
	Comments      int    `json:"comments"`
	Downloads     int    `json:"downloads"`
}

type PixabaySearchResult struct {
	Total     int                 `json:"total"`
	TotalHits int                 `json:"totalHits"`
	Hits      []PixabaySearchItem `json:"hits"`
}

type PixabayApi struct {
	Http     *http.Client
	cache    *ReqCache
	apiKey   string
	baseUrl  string
	pageSize int
	log      zerolog.Logger
}

func NewPixabayApi(cfg *Config, client *http.Client, cache *ReqCache) *PixabayApi {
	baseUrl := cfg.Pixabay.BaseUrl
	if baseUrl == "" {
		baseUrl = pixabayBaseUrl
	}
	return &PixabayApi{
		Http:     client,
		cache:    cache,
		apiKey:   cfg.Pixabay.Key,
		baseUrl:  baseUrl,
		pageSize: cfg.PerPage,
		log:      NewLogger("pixabay"),
	}
}

func (api *PixabayApi) Type() string {
	return "pixabay"
}

// PageSize follows the session page size so that every session page is
// exactly one upstream request.
func (api *PixabayApi) PageSize() int { return api.pageSize }

func (api *PixabayApi) Search(ctx context.Context, page int, query string) (ResultPage, error) {
	qParam := url.Values{}
	qParam.Set("key", api.apiKey)
	qParam.Set("q", query)
	qParam.Set("image_type", "photo")
	qParam.Set("orientation", "horizontal")
	qParam.Set("safesearch", "true")
	qParam.Set("per_page", strconv.Itoa(api.PageSize()))
	qParam.Set("page", strconv.Itoa(page))
	getReq, err := http.NewRequest(http.MethodGet, api.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		api.log.Err(err).Msg("failed to create http request")
		return ResultPage{}, transportError("failed to create request", err)
	}

	data := PixabaySearchResult{}
	if err := getJSON(ctx, api.Http, api.cache, getReq, &data); err != nil {
		api.log.Err(err).Str("query", query).Int("page", page).Msg("failed to fetch")
		return ResultPage{}, err
	}

	output := make([]ImageData, len(data.Hits))
	for i, el := range data.Hits {
		output[i].Id = "pixabay/" + strconv.Itoa(el.Id)
		output[i].Tags = el.Tags
		output[i].Source = "Pixabay"
		output[i].PageUrl = el.PageUrl
		output[i].Artist = el.User
		output[i].PreviewUrl = el.WebFormatUrl
		output[i].LargeUrl = el.LargeImageUrl
		output[i].Likes = el.Likes
		output[i].Views = el.Views
		output[i].Comments = el.Comments
		output[i].Downloads = el.Downloads
	}
	return ResultPage{Items: output, Total: data.TotalHits}, nil
}
