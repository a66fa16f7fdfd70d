package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Whisper   WhisperConfig
	LLM       LLMConfig
	QAModel   LLMConfig
	Embedder  EmbedderConfig
	Reranker  RerankerConfig
	SMTP      SMTPConfig
	Vector    VectorConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	SummarizePerMin int
	AnalyzePerMin   int
	ConvertPerHour  int
}

// StorageConfig describes the local file storage root. Uploaded files live
// under <Root>/<username>/<filename>.
type StorageConfig struct {
	Root          string
	MaxUploadSize int64 // bytes
}

// WhisperConfig describes the external transcription tool.
type WhisperConfig struct {
	Bin     string
	Model   string
	Timeout int // seconds, 0 disables the timeout
}

// LLMConfig is shared by the summarization and QA endpoints, both of which
// speak the OpenAI completion protocol.
type LLMConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	MaxCompletion int
}

type EmbedderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	BatchSize int
	VectorDim int
}

type RerankerConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string
	TopN    int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Domain   string // appended to usernames to form recipient addresses
}

type VectorConfig struct {
	DatabaseURL string
	Table       string
}

type GatewayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("LLM_API_KEY")
	readSecret("QAMODEL_API_KEY")
	readSecret("EMBEDDER_API_KEY")
	readSecret("RERANKER_API_KEY")
	readSecret("SMTP_PASSWORD")
	readSecret("VECTOR_DATABASE_URL")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("storage.root", "FILE_PATH")
	_ = viper.BindEnv("storage.max_upload_size", "MAX_UPLOAD_SIZE")
	_ = viper.BindEnv("whisper.bin", "WHISPER_BIN")
	_ = viper.BindEnv("whisper.model", "WHISPER_MODEL")
	_ = viper.BindEnv("whisper.timeout", "WHISPER_TIMEOUT")
	_ = viper.BindEnv("llm.api_key", "LLM_API_KEY")
	_ = viper.BindEnv("llm.base_url", "LLM_API_BASE")
	_ = viper.BindEnv("llm.model", "LLM_MODEL")
	_ = viper.BindEnv("llm.max_tokens", "LLM_MAX_TOKEN")
	_ = viper.BindEnv("llm.max_completion", "LLM_MAX_COMPLETION")
	_ = viper.BindEnv("qamodel.api_key", "QAMODEL_API_KEY")
	_ = viper.BindEnv("qamodel.base_url", "QAMODEL_API_BASE")
	_ = viper.BindEnv("qamodel.model", "QAMODEL_MODEL")
	_ = viper.BindEnv("qamodel.max_tokens", "QAMODEL_MAX_TOKEN")
	_ = viper.BindEnv("qamodel.max_completion", "QAMODEL_MAX_COMPLETION")
	_ = viper.BindEnv("embedder.api_key", "EMBEDDER_API_KEY")
	_ = viper.BindEnv("embedder.base_url", "EMBEDDER_API_BASE")
	_ = viper.BindEnv("embedder.model", "EMBEDDER_MODEL")
	_ = viper.BindEnv("embedder.batch_size", "EMBEDDER_BATCH_SIZE")
	_ = viper.BindEnv("embedder.vector_dim", "EMBEDDER_VECTOR_DIM")
	_ = viper.BindEnv("reranker.enabled", "RERANK_ENABLED")
	_ = viper.BindEnv("reranker.api_key", "RERANKER_API_KEY")
	_ = viper.BindEnv("reranker.base_url", "RERANKER_API_BASE")
	_ = viper.BindEnv("reranker.model", "RERANKER_MODEL")
	_ = viper.BindEnv("reranker.top_n", "RERANK_TOP_N")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("smtp.domain", "SMTP_DOMAIN")
	_ = viper.BindEnv("vector.database_url", "VECTOR_DATABASE_URL")
	_ = viper.BindEnv("vector.table", "VECTOR_TABLE")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.summarize_per_min", 30)
	viper.SetDefault("ratelimit.analyze_per_min", 10)
	viper.SetDefault("ratelimit.convert_per_hour", 20)

	// Storage defaults
	viper.SetDefault("storage.root", "/data/files")
	viper.SetDefault("storage.max_upload_size", 200*1024*1024)

	// Whisper defaults
	viper.SetDefault("whisper.bin", "whisper")
	viper.SetDefault("whisper.model", "medium")
	viper.SetDefault("whisper.timeout", 0)

	// LLM defaults
	viper.SetDefault("llm.base_url", "http://localhost:8001/v1")
	viper.SetDefault("llm.model", "mistralai/Mixtral-8x7B-Instruct-v0.1")
	viper.SetDefault("llm.max_tokens", 32768)
	viper.SetDefault("llm.max_completion", 1024)
	viper.SetDefault("qamodel.base_url", "http://localhost:8002/v1")
	viper.SetDefault("qamodel.model", "mistralai/Mistral-7B-Instruct-v0.2")
	viper.SetDefault("qamodel.max_tokens", 32768)
	viper.SetDefault("qamodel.max_completion", 1024)

	// Embedder / reranker defaults
	viper.SetDefault("embedder.model", "nvidia/nv-embedqa-e5-v5")
	viper.SetDefault("embedder.batch_size", 16)
	viper.SetDefault("embedder.vector_dim", 1024)
	viper.SetDefault("reranker.enabled", false)
	viper.SetDefault("reranker.model", "nvidia/nv-rerankqa-mistral-4b-v3")
	viper.SetDefault("reranker.top_n", 5)

	// SMTP defaults
	viper.SetDefault("smtp.port", 25)
	viper.SetDefault("smtp.from", "noreply@localhost")

	// Vector store defaults
	viper.SetDefault("vector.table", "vtt_chunks")

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			SummarizePerMin: viper.GetInt("ratelimit.summarize_per_min"),
			AnalyzePerMin:   viper.GetInt("ratelimit.analyze_per_min"),
			ConvertPerHour:  viper.GetInt("ratelimit.convert_per_hour"),
		},
		Storage: StorageConfig{
			Root:          viper.GetString("storage.root"),
			MaxUploadSize: viper.GetInt64("storage.max_upload_size"),
		},
		Whisper: WhisperConfig{
			Bin:     viper.GetString("whisper.bin"),
			Model:   viper.GetString("whisper.model"),
			Timeout: viper.GetInt("whisper.timeout"),
		},
		LLM: LLMConfig{
			APIKey:        viper.GetString("llm.api_key"),
			BaseURL:       viper.GetString("llm.base_url"),
			Model:         viper.GetString("llm.model"),
			MaxTokens:     viper.GetInt("llm.max_tokens"),
			MaxCompletion: viper.GetInt("llm.max_completion"),
		},
		QAModel: LLMConfig{
			APIKey:        viper.GetString("qamodel.api_key"),
			BaseURL:       viper.GetString("qamodel.base_url"),
			Model:         viper.GetString("qamodel.model"),
			MaxTokens:     viper.GetInt("qamodel.max_tokens"),
			MaxCompletion: viper.GetInt("qamodel.max_completion"),
		},
		Embedder: EmbedderConfig{
			APIKey:    viper.GetString("embedder.api_key"),
			BaseURL:   viper.GetString("embedder.base_url"),
			Model:     viper.GetString("embedder.model"),
			BatchSize: viper.GetInt("embedder.batch_size"),
			VectorDim: viper.GetInt("embedder.vector_dim"),
		},
		Reranker: RerankerConfig{
			Enabled: viper.GetBool("reranker.enabled"),
			APIKey:  viper.GetString("reranker.api_key"),
			BaseURL: viper.GetString("reranker.base_url"),
			Model:   viper.GetString("reranker.model"),
			TopN:    viper.GetInt("reranker.top_n"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
			Domain:   viper.GetString("smtp.domain"),
		},
		Vector: VectorConfig{
			DatabaseURL: viper.GetString("vector.database_url"),
			Table:       viper.GetString("vector.table"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
