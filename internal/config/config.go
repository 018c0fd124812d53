package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Harici stok sistemi (beklenen stok kaynağı + onay sonrası commit hedefi)
	StockAPIBaseURL string
	StockAPIToken   string
	UpstreamTimeout time.Duration // harici çağrılar için üst sınır

	// Sayım motoru ayarları
	HighVarianceThreshold float64       // yüzde (varsayılan 10)
	RecountPolicy         string        // "last_write_wins" | "same_operator"
	CommitMaxAttempts     int           // onay commit'i için tekrar deneme sayısı
	CommitRetryBackoff    time.Duration // ilk backoff, her denemede ikiye katlanır
}

const (
	RecountLastWriteWins = "last_write_wins"
	RecountSameOperator  = "same_operator"
)

func Load() *Config {
	// .env varsa yükle (local development için, production'da env değişkenleri kullanılır)
	if err := godotenv.Load(); err == nil {
		log.Println(".env dosyası yüklendi")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=mahzen port=5432 sslmode=disable"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		StockAPIBaseURL: getEnv("STOCK_API_BASE_URL", ""),
		StockAPIToken:   getEnv("STOCK_API_TOKEN", ""),

		UpstreamTimeout:       getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		HighVarianceThreshold: getEnvFloat("HIGH_VARIANCE_THRESHOLD", 10),
		RecountPolicy:         getEnv("RECOUNT_POLICY", RecountLastWriteWins),
		CommitMaxAttempts:     getEnvInt("COMMIT_MAX_ATTEMPTS", 5),
		CommitRetryBackoff:    getEnvDuration("COMMIT_RETRY_BACKOFF", 30*time.Second),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.StockAPIBaseURL == "" {
		log.Println("[WARN] STOCK_API_BASE_URL tanımlanmamış, beklenen stok yüklemesi ve onay commit'i çalışmayacak.")
	}
	if cfg.RecountPolicy != RecountLastWriteWins && cfg.RecountPolicy != RecountSameOperator {
		log.Fatalf("[FATAL] RECOUNT_POLICY geçersiz: %s (last_write_wins veya same_operator olmalı)", cfg.RecountPolicy)
	}
	if cfg.HighVarianceThreshold <= 0 {
		log.Fatalf("[FATAL] HIGH_VARIANCE_THRESHOLD pozitif olmalı: %v", cfg.HighVarianceThreshold)
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s sayı değil, varsayılan kullanılıyor: %d", key, def)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[WARN] %s sayı değil, varsayılan kullanılıyor: %v", key, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[WARN] %s süre formatında değil (ör: 10s, 1m), varsayılan kullanılıyor: %v", key, def)
	}
	return def
}
