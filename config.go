package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultConfigFile = "conf/config.json"

type Config struct {
	Provider string `json:"provider"`
	PerPage  int    `json:"perPage"`
	Pexels   struct {
		Key     string `json:"key"`
		BaseUrl string `json:"baseUrl"`
	} `json:"pexels.com"`
	Unsplash struct {
		AccessKey string `json:"access"`
		SecretKey string `json:"secret"`
		BaseUrl   string `json:"baseUrl"`
	} `json:"unsplash.com"`
	Pixabay struct {
		Key     string `json:"key"`
		BaseUrl string `json:"baseUrl"`
	} `json:"pixabay.com"`
	Cache struct {
		Size int `json:"size"`
		TTL  int `json:"ttl"`
	} `json:"cache"`
	Trigger struct {
		Margin int `json:"margin"`
	} `json:"trigger"`
	Log struct {
		File  string `json:"file"`
		Debug bool   `json:"debug"`
	} `json:"log"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Provider: "pixabay",
		PerPage:  DefaultPerPage,
	}
	cfg.Cache.TTL = 3600
	cfg.Trigger.Margin = 6
	cfg.Log.File = "imgsearch.log"
	return cfg
}

// LoadConfig reads the JSON config at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := decodeConfig(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	err := json.Unmarshal(data, cfg)
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		pos := findPos(bufio.NewReader(bytes.NewReader(data)), int(syntaxErr.Offset))
		return fmt.Errorf("unable to decode configuration file (Line: %d, Pos: %d): %w", pos.line, pos.pos, err)
	}
	if err != nil {
		return fmt.Errorf("unable to decode configuration file: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("IMGSEARCH_PROVIDER"); ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := lookup("PIXABAY_API_KEY"); ok && v != "" {
		cfg.Pixabay.Key = v
	}
	if v, ok := lookup("PEXELS_API_KEY"); ok && v != "" {
		cfg.Pexels.Key = v
	}
	if v, ok := lookup("UNSPLASH_ACCESS_KEY"); ok && v != "" {
		cfg.Unsplash.AccessKey = v
	}
	if v, ok := lookup("DEBUG"); ok {
		debug, err := strconv.ParseBool(v)
		cfg.Log.Debug = err != nil || debug
	}
}

func (cfg *Config) Validate() error {
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Provider,
			validation.Required,
			validation.In("pixabay", "pexels", "unsplash"),
		),
		validation.Field(&cfg.PerPage, validation.Required, validation.Min(3), validation.Max(200)),
	)
	if err != nil {
		return err
	}
	return validation.Errors{
		"pixabay.com.key": validation.Validate(cfg.Pixabay.Key, validation.When(cfg.Provider == "pixabay",
			validation.Required.Error("a Pixabay API key is required (PIXABAY_API_KEY)"))),
		"pexels.com.key": validation.Validate(cfg.Pexels.Key, validation.When(cfg.Provider == "pexels",
			validation.Required.Error("a Pexels API key is required (PEXELS_API_KEY)"))),
		"unsplash.com.access": validation.Validate(cfg.Unsplash.AccessKey, validation.When(cfg.Provider == "unsplash",
			validation.Required.Error("an Unsplash access key is required (UNSPLASH_ACCESS_KEY)"))),
		"cache.size":     validation.Validate(cfg.Cache.Size, validation.Min(0)),
		"cache.ttl":      validation.Validate(cfg.Cache.TTL, validation.Min(0)),
		"trigger.margin": validation.Validate(cfg.Trigger.Margin, validation.Min(0)),
	}.Filter()
}

type FilePos struct {
	line int
	pos  int
}

func findPos(file *bufio.Reader, offset int) FilePos {
	p := FilePos{line: 1, pos: offset}
	var lineLen int
	for line, err := file.ReadBytes('\n'); len(line) > 0; line, err = file.ReadBytes('\n') {
		if p.pos < len(line) {
			return p
		}
		lineLen += len(line)
		if line[len(line)-1] == '\n' {
			p.line += 1
			p.pos -= lineLen
			lineLen = 0
		}
		if err == io.EOF {
			break
		}
	}
	return p
}
