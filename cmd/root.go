package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobmatch/internal/ai/gemini"
	"github.com/spigell/jobmatch/internal/budget"
	"github.com/spigell/jobmatch/internal/cache"
	"github.com/spigell/jobmatch/internal/filtering"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/routing"
	"github.com/spigell/jobmatch/internal/scoring"
)

const (
	app = "jobmatch"
)

type Config struct {
	AI       *AIConfig         `mapstructure:"ai"`
	Cache    *CacheConfig      `mapstructure:"cache"`
	Budget   *budget.Config    `mapstructure:"budget"`
	Matching *matching.Config  `mapstructure:"matching"`
	Scoring  *scoring.Weights  `mapstructure:"scoring"`
	Routing  *routing.Policy   `mapstructure:"routing"`
	Pool     *filtering.Config `mapstructure:"pool"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey        string `mapstructure:"api-key"`
	APIKeyFile    string `mapstructure:"api-key-file"`
	gemini.Config `mapstructure:",squash"`
}

type CacheConfig struct {
	Backend string            `mapstructure:"backend"`
	TTL     time.Duration     `mapstructure:"ttl"`
	Redis   cache.RedisConfig `mapstructure:"redis"`
}

const (
	cacheBackendMemory = "memory"
	cacheBackendRedis  = "redis"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch ranks job pools against candidate profiles with an AI model and a rule-based fallback",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit file the built-in defaults are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func defaultConfig() *Config {
	budgetCfg := budget.DefaultConfig()
	matchingCfg := matching.DefaultConfig()
	weights := scoring.DefaultWeights()
	policy := routing.DefaultPolicy()

	return &Config{
		AI: &AIConfig{
			Enabled:  true,
			Provider: gemini.ProviderName,
			Timeout:  matchingCfg.Timeout,
			Gemini:   &GeminiConfig{Config: gemini.DefaultConfig()},
		},
		Cache: &CacheConfig{
			Backend: cacheBackendMemory,
			TTL:     cache.DefaultTTL,
			Redis:   cache.DefaultRedisConfig(),
		},
		Budget:   &budgetCfg,
		Matching: &matchingCfg,
		Scoring:  &weights,
		Routing:  &policy,
		Pool:     &filtering.Config{},
	}
}

// getConfig decodes the loaded configuration over the defaults.
func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.AI == nil {
		config.AI = defaultConfig().AI
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{Config: gemini.DefaultConfig()}
	}

	return config, nil
}
