package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/humboldtjobs/humboldt-jobs/internal/cache"
	"github.com/humboldtjobs/humboldt-jobs/internal/logger"
	"github.com/humboldtjobs/humboldt-jobs/internal/ratelimit"
	"github.com/humboldtjobs/humboldt-jobs/internal/scraper"
	"github.com/humboldtjobs/humboldt-jobs/internal/server"
	"go.uber.org/zap"
)

const (
	app = "humboldt-jobs"

	defaultDatabasePath = "humboldt_jobs.db"
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultAITimeout    = 30 * time.Second
)

type Config struct {
	Server   *ServerConfig   `mapstructure:"server"`
	Database *DatabaseConfig `mapstructure:"database"`
	Cache    *CacheConfig    `mapstructure:"cache"`
	AI       *AIConfig       `mapstructure:"ai"`
	Feeds    []scraper.Feed  `mapstructure:"feeds"`
}

type ServerConfig struct {
	Port              int `mapstructure:"port"`
	DailyRequestLimit int `mapstructure:"daily-request-limit"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string        `mapstructure:"api-key-file"`
	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max-retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "humboldt-jobs aggregates local job postings and serves them through a browse API and a chat assistant",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A local .env may carry the secret file path during development.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is humboldt-jobs.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if serveCmd.CalledAs() == "" && chatCmd.CalledAs() == "" && scrapeCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Port <= 0 {
		config.Server.Port = server.DefaultPort
	}
	if config.Server.DailyRequestLimit <= 0 {
		config.Server.DailyRequestLimit = ratelimit.DefaultDailyLimit
	}

	if config.Database == nil {
		config.Database = &DatabaseConfig{}
	}
	if config.Database.Path == "" {
		config.Database.Path = defaultDatabasePath
	}

	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.Cache.Capacity <= 0 {
		config.Cache.Capacity = cache.DefaultCapacity
	}
	if config.Cache.TTL <= 0 {
		config.Cache.TTL = cache.DefaultTTL
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Gemini.Model == "" {
		config.AI.Gemini.Model = defaultGeminiModel
	}
	if config.AI.Gemini.MaxRetries <= 0 {
		config.AI.Gemini.MaxRetries = 1
	}
	if config.AI.Gemini.Timeout <= 0 {
		config.AI.Gemini.Timeout = defaultAITimeout
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
