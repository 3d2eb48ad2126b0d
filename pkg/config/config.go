package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Milvus  MilvusConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	LLM     LLMConfig
	RAG     RAGConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MilvusConfig struct {
	Endpoint       string
	APIKey         string
	CollectionName string
	VectorDim      int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TopP           float32
	TimeoutSec     int
}

type RAGConfig struct {
	TopK                int
	HighRelevance       float64
	MediumRelevance     float64
	SimulatedLatencyMS  float64
	HistoryWindow       int
	LoadSampleDocuments bool
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
	viper.AddConfigPath("/etc/docuassist")

	viper.SetEnvPrefix("DOCUASSIST")
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
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "docuassist")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("sqlite.path", "./data/docuassist.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("llm.model", "gpt-3.5-turbo")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 500)
	viper.SetDefault("llm.topP", 0.95)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("rag.topK", 3)
	viper.SetDefault("rag.highRelevance", 0.8)
	viper.SetDefault("rag.mediumRelevance", 0.6)
	viper.SetDefault("rag.simulatedLatencyMS", 150.0)
	viper.SetDefault("rag.historyWindow", 10)
	viper.SetDefault("rag.loadSampleDocuments", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
