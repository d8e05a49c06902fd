package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort string

	// Upload limits.
	MaxFileSize       int64
	CompressThreshold int64
	MaxImageDimension int

	// Remote collaborators.
	CaseRepositoryURL string
	EmailCheckURL     string
	RequestTimeout    time.Duration
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	caseRepoURL := os.Getenv("CASE_REPOSITORY_URL")
	if caseRepoURL == "" {
		caseRepoURL = "http://localhost:9090"
	}

	emailCheckURL := os.Getenv("EMAIL_CHECK_URL")
	if emailCheckURL == "" {
		emailCheckURL = caseRepoURL
	}

	maxFileSize := envInt64("MAX_FILE_SIZE", 10*1024*1024) // 10 MiB
	compressThreshold := envInt64("COMPRESS_THRESHOLD", 300*1024)
	maxDimension := int(envInt64("MAX_IMAGE_DIMENSION", 1200))

	return &Config{
		ServerPort:        serverPort,
		MaxFileSize:       maxFileSize,
		CompressThreshold: compressThreshold,
		MaxImageDimension: maxDimension,
		CaseRepositoryURL: caseRepoURL,
		EmailCheckURL:     emailCheckURL,
		RequestTimeout:    15 * time.Second,
	}
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
