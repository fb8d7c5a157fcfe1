package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	LLM         LLMConfig
	Scaffolding ScaffoldingConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	Enabled       bool
	APIKey        string
	PrimaryModel  string
	FallbackModel string
	Temperature   float32
	MaxTokens     int
	MaxRetries    int
	TimeoutSec    int
}

type ScaffoldingConfig struct {
	EnabledCategories     []string
	BaseWeights           map[string]float64
	MaxRounds             int
	PromptsPerInteraction int
	RandomSeed            int64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cmap-scaffold")

	viper.SetEnvPrefix("CMAP_SCAFFOLD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/scaffold.db")

	viper.SetDefault("llm.enabled", true)
	viper.SetDefault("llm.primaryModel", "gpt-4o")
	viper.SetDefault("llm.fallbackModel", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 500)
	viper.SetDefault("llm.maxRetries", 3)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("scaffolding.enabledCategories", []string{
		"strategic", "metacognitive", "procedural", "conceptual",
	})
	viper.SetDefault("scaffolding.baseWeights", map[string]float64{
		"strategic":     1.0,
		"metacognitive": 1.0,
		"procedural":    1.0,
		"conceptual":    1.0,
	})
	viper.SetDefault("scaffolding.maxRounds", 4)
	viper.SetDefault("scaffolding.promptsPerInteraction", 3)
	viper.SetDefault("scaffolding.randomSeed", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
