package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	DocumentsDir        string              `mapstructure:"documents_dir"`
	IndexDir            string              `mapstructure:"index_dir"`
	StaticDir           string              `mapstructure:"static_dir"`
	AIBackend           string              `mapstructure:"ai_backend"`
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys       []string            `mapstructure:"gemini_api_keys"`
	GeminiModel         string              `mapstructure:"gemini_model"`
	MemoryWindow        int                 `mapstructure:"memory_window"`
	RetrievalLimit      int                 `mapstructure:"retrieval_limit"`
	MaxChunkSize        int                 `mapstructure:"max_chunk_size"`
	OverlapSize         int                 `mapstructure:"overlap_size"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if key := v.GetString("GEMINI_API_KEY"); key != "" {
		config.GeminiAPIKeys = append(config.GeminiAPIKeys, key)
	}
	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DocumentsDir == "" {
		c.DocumentsDir = "documents"
	}
	if c.IndexDir == "" {
		c.IndexDir = "indexes"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.AIBackend == "" {
		c.AIBackend = "openai"
	}
	if c.MemoryWindow <= 0 {
		c.MemoryWindow = 4
	}
	if c.RetrievalLimit <= 0 {
		c.RetrievalLimit = 5
	}
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = 1024
	}
	if c.OverlapSize <= 0 {
		c.OverlapSize = 128
	}
}
