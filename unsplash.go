package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const unsplashBaseUrl = "https://api.unsplash.com/search/photos"

type UnsplashPhoto struct {
	Id          string             `json:"id"`
	Description string             `json:"description"`
	AltDesc     string             `json:"alt_description"`
	Likes       int                `json:"likes"`
	User        UnsplashUser       `json:"user"`
	Urls        UnsplashUrls       `json:"urls"`
	Links       UnsplashPhotoLinks `json:"links"`
}

type UnsplashUser struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type UnsplashPhotoLinks struct {
	Self     string `json:"self"`
	Html     string `json:"html"`
	Download string `json:"download"`
}

type UnsplashUrls struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
	Full    string `json:"full"`
}

type UnsplashSearchResult struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []UnsplashPhoto `json:"results"`
}

type UnsplashApi struct {
	Http      *http.Client
	cache     *ReqCache
	accessKey string
	baseUrl   string
	log       zerolog.Logger
}

func NewUnsplashApi(cfg *Config, client *http.Client, cache *ReqCache) *UnsplashApi {
	baseUrl := cfg.Unsplash.BaseUrl
	if baseUrl == "" {
		baseUrl = unsplashBaseUrl
	}
	return &UnsplashApi{
		Http:      client,
		cache:     cache,
		accessKey: cfg.Unsplash.AccessKey,
		baseUrl:   baseUrl,
		log:       NewLogger("unsplash"),
	}
}

func (unsp *UnsplashApi) Type() string {
	return "unsplash"
}

func (unsp *UnsplashApi) PageSize() int { return 30 }

func (unsp *UnsplashApi) Search(ctx context.Context, page int, query string) (ResultPage, error) {
	qParam := url.Values{}
	qParam.Set("query", query)
	qParam.Set("orientation", "landscape")
	qParam.Set("content_filter", "high")
	qParam.Set("page", strconv.Itoa(page))
	qParam.Set("per_page", strconv.Itoa(unsp.PageSize()))
	getReq, err := http.NewRequest(http.MethodGet, unsp.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		unsp.log.Err(err).Msg("failed to create http request")
		return ResultPage{}, transportError("failed to create request", err)
	}
	getReq.Header.Set("Accept-Version", "v1")
	getReq.Header.Set("Authorization", "Client-ID "+unsp.accessKey)

	data := UnsplashSearchResult{}
	if err := getJSON(ctx, unsp.Http, unsp.cache, getReq, &data); err != nil {
		unsp.log.Err(err).Str("query", query).Int("page", page).Msg("failed to fetch")
		return ResultPage{}, err
	}

	output := make([]ImageData, len(data.Results))
	for i, el := range data.Results {
		tags := el.Description
		if tags == "" {
			tags = el.AltDesc
		}
		output[i].Id = "unsplash/" + el.Id
		output[i].Tags = tags
		output[i].Source = "Unsplash"
		output[i].PageUrl = el.Links.Html
		output[i].Artist = el.User.Name
		output[i].PreviewUrl = el.Urls.Small
		output[i].LargeUrl = el.Urls.Regular
		output[i].Likes = el.Likes
	}
	return ResultPage{Items: output, Total: data.Total}, nil
}
