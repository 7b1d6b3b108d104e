// Package config provides configuration loading and management for the DM.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

// Config is the root configuration.
type Config struct {
	Models     Models          `json:"models"     mapstructure:"models"`
	SRD        SRDConfig       `json:"srd"        mapstructure:"srd"`
	Store      StoreConfig     `json:"store"      mapstructure:"store"`
	Characters CharacterConfig `json:"characters" mapstructure:"characters"`
	Pipeline   PipelineConfig  `json:"pipeline"   mapstructure:"pipeline"`
}

// Models carries one model tuning per pipeline role. The parser role wants
// deterministic structured output; the narrator role wants creative prose.
type Models struct {
	Parser   ModelConfig `json:"parser"   mapstructure:"parser"`
	Narrator ModelConfig `json:"narrator" mapstructure:"narrator"`
}

// ModelConfig describes how to reach a text-generation model.
type ModelConfig struct {
	Provider    string        `json:"provider"              mapstructure:"provider"`
	Model       string        `json:"model"                 mapstructure:"model"`
	Temperature float64       `json:"temperature"           mapstructure:"temperature"`
	MaxTokens   int           `json:"max_tokens"            mapstructure:"max_tokens"`
	APIKeyEnv   string        `json:"api_key_env,omitempty" mapstructure:"api_key_env"`
	BaseURL     string        `json:"base_url,omitempty"    mapstructure:"base_url"`
	Timeout     time.Duration `json:"timeout,omitempty"     mapstructure:"timeout"`
}

// SRDConfig describes the rules reference service.
type SRDConfig struct {
	BaseURL    string        `json:"base_url"    mapstructure:"base_url"`
	Version    string        `json:"version"     mapstructure:"version"`
	Timeout    time.Duration `json:"timeout"     mapstructure:"timeout"`
	MaxRecords int           `json:"max_records" mapstructure:"max_records"`
}

// StoreConfig describes session persistence.
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// CharacterConfig describes where character sheets are loaded from.
type CharacterConfig struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// PipelineConfig selects the resolution pipeline at startup.
// Mode "full" runs parse, evaluate, and narrate; mode "narration" runs the
// reduced one-step generator without rule adjudication.
type PipelineConfig struct {
	Mode string `json:"mode" mapstructure:"mode"`
}

// Pipeline modes.
const (
	PipelineFull      = "full"
	PipelineNarration = "narration"
)

// Supported model providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Models: Models{
			Parser: ModelConfig{
				Provider:    ProviderGemini,
				Model:       "gemini-2.0-flash",
				Temperature: 0.0,
				MaxTokens:   400,
				Timeout:     60 * time.Second,
			},
			Narrator: ModelConfig{
				Provider:    ProviderGemini,
				Model:       "gemini-2.0-flash",
				Temperature: 0.7,
				MaxTokens:   1000,
				Timeout:     60 * time.Second,
			},
		},
		SRD: SRDConfig{
			BaseURL:    "http://localhost:3000/api",
			Version:    "2014",
			Timeout:    10 * time.Second,
			MaxRecords: 20,
		},
		Store: StoreConfig{
			Path: ".dm/dm.db",
		},
		Characters: CharacterConfig{
			Dir: ".dm/characters",
		},
		Pipeline: PipelineConfig{
			Mode: PipelineFull,
		},
	}
}

// Load reads the config file at path, validates it against the embedded
// schema, and merges it over the defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Pipeline.Mode != PipelineFull && cfg.Pipeline.Mode != PipelineNarration {
		return Config{}, fmt.Errorf("pipeline.mode must be %q or %q", PipelineFull, PipelineNarration)
	}
	return cfg, nil
}

//go:embed schema.json
var schemaJSON string

// ValidateSettings checks raw settings against the embedded schema before
// decoding, so a mistyped key or out-of-range model tuning fails loudly
// instead of silently falling back to a default.
func ValidateSettings(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	sort.Strings(details)
	return fmt.Errorf("dm config does not match schema: %s", strings.Join(details, "; "))
}
