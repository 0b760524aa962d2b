package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the indexing pipeline.
type Config struct {
	// Queue
	NATSURL string `json:"nats_url" yaml:"nats_url"`

	// Persistence
	DBDSN string `json:"db_dsn" yaml:"db_dsn"`

	// Object store
	StorageEndpoint   string `json:"storage_endpoint" yaml:"storage_endpoint"`
	StorageRegion     string `json:"storage_region" yaml:"storage_region"`
	StorageBucket     string `json:"storage_bucket" yaml:"storage_bucket"`
	StorageAccessKey  string `json:"storage_access_key" yaml:"storage_access_key"`
	StorageSecretKey  string `json:"storage_secret_key" yaml:"storage_secret_key"`
	StoragePathStyle  bool   `json:"storage_path_style" yaml:"storage_path_style"`

	// Chunking
	ChunkParentTargetTokens int     `json:"chunk_parent_target_tokens" yaml:"chunk_parent_target_tokens"`
	ChunkParentMaxTokens    int     `json:"chunk_parent_max_tokens" yaml:"chunk_parent_max_tokens"`
	ChunkChildTargetTokens  int     `json:"chunk_child_target_tokens" yaml:"chunk_child_target_tokens"`
	ChunkChildOverlapRatio  float64 `json:"chunk_child_overlap_ratio" yaml:"chunk_child_overlap_ratio"`

	// Enrichment
	KeywordTopK         int  `json:"keyword_top_k" yaml:"keyword_top_k"`
	MaxEntitiesPerChunk int  `json:"max_entities_per_chunk" yaml:"max_entities_per_chunk"`
	EnrichLLMEnabled    bool `json:"enrich_llm_enabled" yaml:"enrich_llm_enabled"`
	EnrichHQEnabled     bool `json:"enrich_hq_enabled" yaml:"enrich_hq_enabled"`

	// LLM provider for the hypothetical-question enricher
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Worker pool
	Workers int `json:"workers" yaml:"workers"`

	// Stage timeouts
	StageTimeoutLoad      time.Duration `json:"stage_timeout_load" yaml:"stage_timeout_load"`
	StageTimeoutParse     time.Duration `json:"stage_timeout_parse" yaml:"stage_timeout_parse"`
	StageTimeoutStructure time.Duration `json:"stage_timeout_structure" yaml:"stage_timeout_structure"`
	StageTimeoutChunk     time.Duration `json:"stage_timeout_chunk" yaml:"stage_timeout_chunk"`
	StageTimeoutEnrich    time.Duration `json:"stage_timeout_enrich" yaml:"stage_timeout_enrich"`
}

// LLMConfig configures the LLM provider backing the optional hypothetical
// question enricher.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults matching the
// targets named in the component design: parent window 768 (range
// 512-1024, ceiling 2048), child window 192 with 15% overlap.
func DefaultConfig() Config {
	return Config{
		NATSURL:                 "nats://localhost:4222",
		ChunkParentTargetTokens: 768,
		ChunkParentMaxTokens:    2048,
		ChunkChildTargetTokens:  192,
		ChunkChildOverlapRatio:  0.15,
		KeywordTopK:             10,
		MaxEntitiesPerChunk:     50,
		EnrichLLMEnabled:        false,
		EnrichHQEnabled:         false,
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Workers:               4,
		StageTimeoutLoad:      60 * time.Second,
		StageTimeoutParse:     120 * time.Second,
		StageTimeoutStructure: 30 * time.Second,
		StageTimeoutChunk:     30 * time.Second,
		StageTimeoutEnrich:    180 * time.Second,
	}
}

// LoadFromEnv overlays environment variable overrides onto a base config,
// following the teacher's field-by-field override convention.
func LoadFromEnv(cfg Config) (Config, error) {
	if v := os.Getenv("QUEUE_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		cfg.StorageEndpoint = v
	}
	if v := os.Getenv("STORAGE_REGION"); v != "" {
		cfg.StorageRegion = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.StorageBucket = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.StorageAccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.StorageSecretKey = v
	}
	if v := os.Getenv("STORAGE_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("STORAGE_PATH_STYLE: %w", err)
		}
		cfg.StoragePathStyle = b
	}

	if err := overrideInt(&cfg.ChunkParentTargetTokens, "CHUNK_PARENT_TARGET_TOKENS"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.ChunkParentMaxTokens, "CHUNK_PARENT_MAX_TOKENS"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.ChunkChildTargetTokens, "CHUNK_CHILD_TARGET_TOKENS"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("CHUNK_CHILD_OVERLAP_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("CHUNK_CHILD_OVERLAP_RATIO: %w", err)
		}
		cfg.ChunkChildOverlapRatio = f
	}
	if err := overrideInt(&cfg.KeywordTopK, "KEYWORD_TOP_K"); err != nil {
		return Config{}, err
	}
	if err := overrideInt(&cfg.MaxEntitiesPerChunk, "MAX_ENTITIES_PER_CHUNK"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("ENRICH_LLM_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ENRICH_LLM_ENABLED: %w", err)
		}
		cfg.EnrichLLMEnabled = b
	}
	if v := os.Getenv("ENRICH_HQ_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ENRICH_HQ_ENABLED: %w", err)
		}
		cfg.EnrichHQEnabled = b
	}

	if v := os.Getenv("ENRICH_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("ENRICH_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ENRICH_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ENRICH_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if err := overrideInt(&cfg.Workers, "WORKERS"); err != nil {
		return Config{}, err
	}

	if err := overrideDuration(&cfg.StageTimeoutLoad, "STAGE_TIMEOUT_LOAD"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.StageTimeoutParse, "STAGE_TIMEOUT_PARSE"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.StageTimeoutStructure, "STAGE_TIMEOUT_STRUCTURE"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.StageTimeoutChunk, "STAGE_TIMEOUT_CHUNK"); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(&cfg.StageTimeoutEnrich, "STAGE_TIMEOUT_ENRICH"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func overrideInt(dst *int, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", envVar, err)
	}
	*dst = n
	return nil
}

func overrideDuration(dst *time.Duration, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", envVar, err)
	}
	*dst = time.Duration(secs) * time.Second
	return nil
}
