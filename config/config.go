package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Export   ExportConfig
	S3       S3Config
}

type AppConfig struct {
	Mode                 string // debug или release
	MaxUploadSize        int64
	NormalizeConcurrency int
	QualityGate          bool
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 — без таймаута
}

type TelegramConfig struct {
	Token string
}

type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Addr     string // пустой адрес отключает кэш
	Password string
	DB       int
	TTL      time.Duration
}

type ExportConfig struct {
	Sink string // dir или s3
	Dir  string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

// Release сообщает, включён ли боевой режим
func (c AppConfig) Release() bool {
	return c.Mode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_MODE", "debug")
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("NORMALIZE_CONCURRENCY", 4)
	v.SetDefault("QUALITY_GATE", false)

	v.SetDefault("API_BASE_URL", "http://127.0.0.1:5001")
	v.SetDefault("API_TIMEOUT", time.Duration(0))

	v.SetDefault("TELEGRAM_TOKEN", "")

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 5*time.Minute)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 10*time.Minute)

	v.SetDefault("EXPORT_SINK", "dir")
	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("S3_ENDPOINT", "http://localhost:9000")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("S3_BUCKET_NAME", "exports")
	v.SetDefault("S3_REGION", "us-east-1")
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Mode:                 v.GetString("APP_MODE"),
			MaxUploadSize:        v.GetInt64("MAX_UPLOAD_SIZE"),
			NormalizeConcurrency: v.GetInt("NORMALIZE_CONCURRENCY"),
			QualityGate:          v.GetBool("QUALITY_GATE"),
		},
		API: APIConfig{
			BaseURL: v.GetString("API_BASE_URL"),
			Timeout: v.GetDuration("API_TIMEOUT"),
		},
		Telegram: TelegramConfig{
			Token: v.GetString("TELEGRAM_TOKEN"),
		},
		HTTP: HTTPConfig{
			Addr:         v.GetString("HTTP_ADDR"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		Export: ExportConfig{
			Sink: v.GetString("EXPORT_SINK"),
			Dir:  v.GetString("EXPORT_DIR"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          v.GetBool("S3_USE_SSL"),
			BucketName:      v.GetString("S3_BUCKET_NAME"),
			Region:          v.GetString("S3_REGION"),
		},
	}
}
