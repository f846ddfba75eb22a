package model

import "time"

// Config is the complete slangspace configuration
type Config struct {
	Timeline  TimelineConfig  `yaml:"timeline" mapstructure:"timeline"`
	Layout    LayoutConfig    `yaml:"layout" mapstructure:"layout"`
	Highlight HighlightConfig `yaml:"highlight" mapstructure:"highlight"`
	Camera    CameraConfig    `yaml:"camera" mapstructure:"camera"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Reddit    RedditConfig    `yaml:"reddit" mapstructure:"reddit"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// TimelineConfig fixes the epoch, bucket width and horizon of the cube layers
type TimelineConfig struct {
	StartYear       int     `yaml:"start_year" mapstructure:"start_year"`
	StartMonth      int     `yaml:"start_month" mapstructure:"start_month"` // 1-12
	MonthsPerPeriod int     `yaml:"months_per_period" mapstructure:"months_per_period"`
	EndYear         int     `yaml:"end_year" mapstructure:"end_year"`
	EndMonth        int     `yaml:"end_month" mapstructure:"end_month"`
	InnerCubeSize   float64 `yaml:"inner_cube_size" mapstructure:"inner_cube_size"`
	OuterCubeSize   float64 `yaml:"outer_cube_size" mapstructure:"outer_cube_size"`
	CubeTwist       float64 `yaml:"cube_twist" mapstructure:"cube_twist"` // radians per layer
}

// LayoutConfig controls clustering, slotting and tile geometry
type LayoutConfig struct {
	Split        string `yaml:"split" mapstructure:"split"` // "even" or "random"
	MaxClusters  int    `yaml:"max_clusters" mapstructure:"max_clusters"`
	RandomCount  int    `yaml:"random_count" mapstructure:"random_count"`
	RandomMin    int    `yaml:"random_min" mapstructure:"random_min"`
	RandomMax    int    `yaml:"random_max" mapstructure:"random_max"`
	VariedAspect bool   `yaml:"varied_aspect" mapstructure:"varied_aspect"`

	SlotGrid int `yaml:"slot_grid" mapstructure:"slot_grid"` // N for an NxN grid per face

	TileWidth    float64 `yaml:"tile_width" mapstructure:"tile_width"`
	TileHeight   float64 `yaml:"tile_height" mapstructure:"tile_height"`
	TileGap      float64 `yaml:"tile_gap" mapstructure:"tile_gap"`
	PreviewWords int     `yaml:"preview_words" mapstructure:"preview_words"`

	ClusterScaleMin  float64 `yaml:"cluster_scale_min" mapstructure:"cluster_scale_min"`
	ClusterScaleMax  float64 `yaml:"cluster_scale_max" mapstructure:"cluster_scale_max"`
	LayerSizeFactor  float64 `yaml:"layer_size_factor" mapstructure:"layer_size_factor"`
	CountReference   float64 `yaml:"count_reference" mapstructure:"count_reference"`
	CountAdjustMin   float64 `yaml:"count_adjust_min" mapstructure:"count_adjust_min"`
	CountAdjustMax   float64 `yaml:"count_adjust_max" mapstructure:"count_adjust_max"`
	EdgeSkipInner    int     `yaml:"edge_skip_inner" mapstructure:"edge_skip_inner"`
	DecoyCount       int     `yaml:"decoy_count" mapstructure:"decoy_count"`
	DecoyMinDistance float64 `yaml:"decoy_min_distance" mapstructure:"decoy_min_distance"`
	DecoyMaxDistance float64 `yaml:"decoy_max_distance" mapstructure:"decoy_max_distance"`

	// Seed for all layout randomness. 0 seeds from the clock.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// BuildsPerTick bounds how many committed terms are composed per render tick
	BuildsPerTick int `yaml:"builds_per_tick" mapstructure:"builds_per_tick"`
}

// HighlightConfig holds the opacity of each highlight tier
type HighlightConfig struct {
	IdleOpacity    float64 `yaml:"idle_opacity" mapstructure:"idle_opacity"`
	PreviewOpacity float64 `yaml:"preview_opacity" mapstructure:"preview_opacity"`
	VisitedOpacity float64 `yaml:"visited_opacity" mapstructure:"visited_opacity"`
	GroupOpacity   float64 `yaml:"group_opacity" mapstructure:"group_opacity"`
	DirectOpacity  float64 `yaml:"direct_opacity" mapstructure:"direct_opacity"`
	DecoyOpacity   float64 `yaml:"decoy_opacity" mapstructure:"decoy_opacity"`
	PinnedBoost    float64 `yaml:"pinned_boost" mapstructure:"pinned_boost"`
}

// CameraConfig is the perspective camera used to turn pointer positions into rays
type CameraConfig struct {
	Distance      float64       `yaml:"distance" mapstructure:"distance"`
	FOV           float64       `yaml:"fov" mapstructure:"fov"` // vertical, degrees
	Aspect        float64       `yaml:"aspect" mapstructure:"aspect"`
	MinDistance   float64       `yaml:"min_distance" mapstructure:"min_distance"`
	MaxDistance   float64       `yaml:"max_distance" mapstructure:"max_distance"`
	FrameInterval time.Duration `yaml:"frame_interval" mapstructure:"frame_interval"`
}

// LLMConfig holds LLM provider settings
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai", "openrouter", ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RedditConfig holds comment fetcher settings
type RedditConfig struct {
	SearchURL         string        `yaml:"search_url" mapstructure:"search_url"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	PerPeriod         int           `yaml:"per_period" mapstructure:"per_period"`
	PageSize          int           `yaml:"page_size" mapstructure:"page_size"`
	MaxTextChars      int           `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// StoreConfig holds the slang collection settings
type StoreConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Limit int    `yaml:"limit" mapstructure:"limit"`
}

// CacheConfig holds search result cache settings
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// OutputConfig holds CLI output settings
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Timeline: TimelineConfig{
			StartYear:       2019,
			StartMonth:      1,
			MonthsPerPeriod: 6,
			EndYear:         2025,
			EndMonth:        12,
			InnerCubeSize:   40,
			OuterCubeSize:   320,
			CubeTwist:       0.7,
		},
		Layout: LayoutConfig{
			Split:            "even",
			MaxClusters:      10,
			RandomCount:      7,
			RandomMin:        2,
			RandomMax:        12,
			SlotGrid:         4,
			TileWidth:        5,
			TileHeight:       3,
			TileGap:          0.3,
			PreviewWords:     5,
			ClusterScaleMin:  0.8,
			ClusterScaleMax:  2.0,
			LayerSizeFactor:  0.1,
			CountReference:   10,
			CountAdjustMin:   0.7,
			CountAdjustMax:   1.3,
			EdgeSkipInner:    2,
			DecoyCount:       900,
			DecoyMinDistance: 350,
			DecoyMaxDistance: 500,
			BuildsPerTick:    1,
		},
		Highlight: HighlightConfig{
			IdleOpacity:    0.5,
			PreviewOpacity: 0.35,
			VisitedOpacity: 0.7,
			GroupOpacity:   0.7,
			DirectOpacity:  1.0,
			DecoyOpacity:   0.3,
			PinnedBoost:    1.3,
		},
		Camera: CameraConfig{
			Distance:      400,
			FOV:           60,
			Aspect:        16.0 / 9.0,
			MinDistance:   80,
			MaxDistance:   400,
			FrameInterval: 16 * time.Millisecond,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "nvidia/nemotron-3-nano-30b-a3b:free",
			BaseURL:   "https://openrouter.ai/api/v1",
			Timeout:   60,
			MaxTokens: 1500,
		},
		Reddit: RedditConfig{
			SearchURL:         "https://www.reddit.com/search.json",
			UserAgent:         "SlangSpace/1.0",
			PerPeriod:         30,
			PageSize:          100,
			MaxTextChars:      500,
			RequestsPerSecond: 1,
			Burst:             1,
			Timeout:           30 * time.Second,
		},
		Store: StoreConfig{
			Path:  "~/.slangspace/slangs.db",
			Limit: 50,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.slangspace/cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
	}
}
