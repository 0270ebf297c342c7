package config

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// S3Config covers any S3-compatible object store. Supabase Storage exposes an
// S3 endpoint; Cloudflare R2 works the same way.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
}

type DriveConfig struct {
	CredentialsFile string
	TokenFile       string
	FolderID        string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
	FCMProjectID    string
	FCMCredentials  string
}

type Config struct {
	DBDriver     string // "postgres" or "sqlite"
	DB_URL       string
	SQLitePath   string
	Port         string
	JWTSecret    string
	Environment  string
	AuthRequired bool

	// StorageProvider selects the primary blob backend: "local", "s3" or
	// "drive". When TierThreshold > 0 and Drive is configured, files larger
	// than the threshold are routed to Drive regardless of the primary.
	StorageProvider string
	TierThreshold   int64
	UploadDir       string

	CorsConfig cors.Options
	S3         S3Config
	Drive      DriveConfig
	Push       PushConfig
}

var Envs = initConfig()

func initConfig() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	return Config{
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DB_URL:       getEnv("DB_URL", ""),
		SQLitePath:   getEnv("SQLITE_PATH", "metadata.db"),
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment:  getEnv("ENV", "development"),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),

		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		TierThreshold:   getEnvInt64("TIER_THRESHOLD_BYTES", 0),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),

		CorsConfig: CorsConfig(),
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("S3_BUCKET_NAME", "notes"),
			Region:          getEnv("S3_REGION", "auto"),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Drive: DriveConfig{
			CredentialsFile: getEnv("DRIVE_CREDENTIALS_FILE", "oauth-client.json"),
			TokenFile:       getEnv("DRIVE_TOKEN_FILE", "token.json"),
			FolderID:        getEnv("DRIVE_FOLDER_ID", ""),
		},
		Push: PushConfig{
			VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
			VAPIDSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:admin@studyhub.local"),
			FCMProjectID:    getEnv("FCM_PROJECT_ID", ""),
			FCMCredentials:  getEnv("FCM_CREDENTIALS_FILE", ""),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://studyhub-luanar.vercel.app"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
