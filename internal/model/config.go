package model

import "time"

// Config is the complete, immutable-after-load analysis configuration.
// It is built once (defaults, then config file, env and flags) and passed to each component.
type Config struct {
	Segment      SegmentConfig      `yaml:"segment" mapstructure:"segment"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Detect       DetectConfig       `yaml:"detect" mapstructure:"detect"`
	Dedupe       DedupeConfig       `yaml:"dedupe" mapstructure:"dedupe"`
	Plan         PlanConfig         `yaml:"plan" mapstructure:"plan"`
	Playbook     PlaybookConfig     `yaml:"playbook" mapstructure:"playbook"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// SegmentConfig controls claim segmentation
type SegmentConfig struct {
	MinChars           int `yaml:"min_chars" mapstructure:"min_chars"`
	MaxChars           int `yaml:"max_chars" mapstructure:"max_chars"`
	MinContentTokens   int `yaml:"min_content_tokens" mapstructure:"min_content_tokens"`
	ParagraphAvgMax    int `yaml:"paragraph_avg_max" mapstructure:"paragraph_avg_max"`
	MinStructureSignal int `yaml:"min_structure_signal" mapstructure:"min_structure_signal"`
}

// RetrievalConfig controls the BM25 candidate index
type RetrievalConfig struct {
	K1                float64 `yaml:"k1" mapstructure:"k1"`
	B                 float64 `yaml:"b" mapstructure:"b"`
	TopK              int     `yaml:"top_k" mapstructure:"top_k"`
	MinScore          float64 `yaml:"min_score" mapstructure:"min_score"`
	CrossDocOnly      bool    `yaml:"cross_doc_only" mapstructure:"cross_doc_only"`
	FullPairwiseLimit int     `yaml:"full_pairwise_limit" mapstructure:"full_pairwise_limit"`
}

// DetectConfig controls the lexical gate of the detector
type DetectConfig struct {
	MinSharedTokens int     `yaml:"min_shared_tokens" mapstructure:"min_shared_tokens"`
	MinOverlap      float64 `yaml:"min_overlap" mapstructure:"min_overlap"`
}

// DedupeConfig holds similarity thresholds
type DedupeConfig struct {
	ClaimThreshold         float64 `yaml:"claim_threshold" mapstructure:"claim_threshold"`
	ContradictionThreshold float64 `yaml:"contradiction_threshold" mapstructure:"contradiction_threshold"`
}

// PlanConfig controls plan construction
type PlanConfig struct {
	QuoteMaxChars int `yaml:"quote_max_chars" mapstructure:"quote_max_chars"`
	MaxQuestions  int `yaml:"max_questions" mapstructure:"max_questions"`
}

// PlaybookConfig lists candidate playbook library locations, tried in order
type PlaybookConfig struct {
	Paths []string `yaml:"paths" mapstructure:"paths"`
}

// LLMConfig holds optional secondary-opinion settings
type LLMConfig struct {
	Provider      string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model         string        `yaml:"model" mapstructure:"model"`
	APIKey        string        `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxCalls      int           `yaml:"max_calls" mapstructure:"max_calls"`
	MaxTokens     int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	MinConfidence float64       `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// CacheConfig controls the secondary-opinion verdict cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig paces secondary-opinion calls per provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Segment: SegmentConfig{
			MinChars:           15,
			MaxChars:           400,
			MinContentTokens:   3,
			ParagraphAvgMax:    400,
			MinStructureSignal: 3,
		},
		Retrieval: RetrievalConfig{
			K1:                1.5,
			B:                 0.75,
			TopK:              10,
			MinScore:          0.5,
			CrossDocOnly:      false,
			FullPairwiseLimit: 300,
		},
		Detect: DetectConfig{
			MinSharedTokens: 1,
			MinOverlap:      0.2,
		},
		Dedupe: DedupeConfig{
			ClaimThreshold:         0.85,
			ContradictionThreshold: 0.80,
		},
		Plan: PlanConfig{
			QuoteMaxChars: 120,
			MaxQuestions:  5,
		},
		LLM: LLMConfig{
			Provider:      "", // Disabled by default
			Timeout:       30 * time.Second,
			MaxCalls:      20,
			MaxTokens:     400,
			MinConfidence: 0.7,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
