package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// Base directory for uploaded materials and generated exam documents.
	BlobBasePath string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	// Fixed random seed for exam generation; 0 seeds from the clock.
	ExamSeed int64
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		PublicURL:     os.Getenv("PUBLIC_URL"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		BlobBasePath:  envOr("BLOB_BASE_PATH", "./data"),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
		ExamSeed:      envInt64("EXAM_SEED", 0),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
