package main

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/apibillme/cache"
	"github.com/rs/zerolog"
)

// ReqCache memoizes successful upstream responses in memory for a short
// while. A nil *ReqCache passes every request straight to the client.
type ReqCache struct {
	store cache.Cache
	log   zerolog.Logger
}

func NewReqCache(cfg *Config) *ReqCache {
	if cfg.Cache.Size <= 0 {
		return nil
	}
	return &ReqCache{
		store: cache.New(cfg.Cache.Size, cache.WithTTL(time.Duration(cfg.Cache.TTL)*time.Second)),
		log:   NewLogger("cache"),
	}
}

func requestKey(req *http.Request) string {
	reqBytes, _ := httputil.DumpRequest(req, true)
	md5Hash := md5.Sum(reqBytes)
	return hex.EncodeToString(md5Hash[:])
}

func (rc *ReqCache) CachedFetch(req *http.Request, client *http.Client) (*http.Response, error) {
	if rc == nil {
		return client.Do(req)
	}
	reqHash := requestKey(req)
	if data, ok := rc.store.Get(reqHash); ok {
		res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data.([]byte))), req)
		if err == nil {
			rc.log.Debug().Str("host", req.URL.Host).Msg("HIT")
			return res, nil
		}
		rc.log.Warn().Err(err).Msg("problems decoding cached result")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}
	respBytes, err := httputil.DumpResponse(resp, true)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	rc.log.Debug().Str("host", req.URL.Host).Msg("MISS")
	rc.store.Set(reqHash, respBytes)
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respBytes)), req)
}
