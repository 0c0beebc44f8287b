package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "resume-rag"
	envPrefix = "RESUME_RAG"
)

type Config struct {
	Chunking  *ChunkingConfig  `mapstructure:"chunking"`
	Retrieval *RetrievalConfig `mapstructure:"retrieval"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	AI        *AIConfig        `mapstructure:"ai"`
	Uploads   *UploadsConfig   `mapstructure:"uploads"`
}

type ChunkingConfig struct {
	MaxWords int `mapstructure:"max-words"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top-k"`
}

type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
	MaxTokens int    `mapstructure:"max-tokens"`
	CacheSize int    `mapstructure:"cache-size"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey          string `mapstructure:"api-key"`
	APIKeyFile      string `mapstructure:"api-key-file"`
	Model           string `mapstructure:"model"`
	MaxRetries      int    `mapstructure:"max-retries"`
	MaxOutputTokens int    `mapstructure:"max-output-tokens"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	MaxTokens  int    `mapstructure:"max-tokens"`
}

type UploadsConfig struct {
	Backend     string       `mapstructure:"backend"`
	Dir         string       `mapstructure:"dir"`
	MaxFileSize int64        `mapstructure:"max-file-size"`
	Minio       *MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access-key"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use-ssl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-rag matches resumes against job descriptions with retrieval and LLM feedback",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-rag.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chunking.max-words", 300)
	v.SetDefault("retrieval.top-k", 3)

	v.SetDefault("embedding.provider", "local")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.dimension", 768)
	v.SetDefault("embedding.max-tokens", 512)
	v.SetDefault("embedding.cache-size", 256)

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-output-tokens", 0)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.max-tokens", 300)

	v.SetDefault("uploads.backend", "disk")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max-file-size", 10<<20)
	v.SetDefault("uploads.minio.endpoint", "localhost:9000")
	v.SetDefault("uploads.minio.access-key", "")
	v.SetDefault("uploads.minio.secret-key-file", "")
	v.SetDefault("uploads.minio.bucket", "resumes")
	v.SetDefault("uploads.minio.use-ssl", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	// A missing .env is fine; variables may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicit config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Chunking == nil {
		config.Chunking = &ChunkingConfig{}
	}
	if config.Retrieval == nil {
		config.Retrieval = &RetrievalConfig{}
	}
	if config.Embedding == nil {
		config.Embedding = &EmbeddingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}
	if config.Uploads == nil {
		config.Uploads = &UploadsConfig{}
	}
	if config.Uploads.Minio == nil {
		config.Uploads.Minio = &MinioConfig{}
	}

	return config, nil
}
