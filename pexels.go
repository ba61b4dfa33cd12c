package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const pexelsBaseUrl = "https://api.pexels.com/v1/search"

type PexelsPhoto struct {
	Id             int            `json:"id"`
	Url            string         `json:"url"`
	Alt            string         `json:"alt"`
	Photographer   string         `json:"photographer"`
	PhotographerId int            `json:"photographer_id"`
	Src            PexelsPhotoSrc `json:"src"`
}

type PexelsPhotoSrc struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
}

type PexelsSearchResult struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Photos       []PexelsPhoto `json:"photos"`
}

type PexelsApi struct {
	Http    *http.Client
	cache   *ReqCache
	apiKey  string
	baseUrl string
	log     zerolog.Logger
}

func NewPexelsApi(cfg *Config, client *http.Client, cache *ReqCache) *PexelsApi {
	baseUrl := cfg.Pexels.BaseUrl
	if baseUrl == "" {
		baseUrl = pexelsBaseUrl
	}
	return &PexelsApi{
		Http:    client,
		apiKey:  cfg.Pexels.Key,
		cache:   cache,
		baseUrl: baseUrl,
		log:     NewLogger("pexels"),
	}
}

func (api *PexelsApi) Type() string {
	return "pexels"
}

func (api *PexelsApi) PageSize() int { return 80 }

// Search mirrors the Pixabay filters; Pexels exposes no engagement counts.
func (api *PexelsApi) Search(ctx context.Context, page int, query string) (ResultPage, error) {
	qParam := url.Values{}
	qParam.Set("query", query)
	qParam.Set("orientation", "landscape")
	qParam.Set("page", strconv.Itoa(page))
	qParam.Set("per_page", strconv.Itoa(api.PageSize()))
	getReq, err := http.NewRequest(http.MethodGet, api.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		api.log.Err(err).Msg("failed to create http request")
		return ResultPage{}, transportError("failed to create request", err)
	}
	getReq.Header.Set("Authorization", api.apiKey)

	data := PexelsSearchResult{}
	if err := getJSON(ctx, api.Http, api.cache, getReq, &data); err != nil {
		api.log.Err(err).Str("query", query).Int("page", page).Msg("failed to fetch")
		return ResultPage{}, err
	}

	output := make([]ImageData, len(data.Photos))
	for i, el := range data.Photos {
		output[i].Id = "pexels/" + strconv.Itoa(el.Id)
		output[i].Tags = el.Alt
		output[i].Source = "Pexels"
		output[i].PageUrl = el.Url
		output[i].Artist = el.Photographer
		output[i].PreviewUrl = el.Src.Medium
		output[i].LargeUrl = el.Src.Large
	}
	return ResultPage{Items: output, Total: data.TotalResults}, nil
}
