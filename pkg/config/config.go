package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type APIConfig struct {
	Port           string
	DBDSN          string
	RMQURL         string
	Queue          string
	GatewayURL     string
	GuidanceURL    string
	RemoteTimeout  time.Duration
	MaxUploadBytes int64
	SessionIdleTTL time.Duration
}

type WorkerConfig struct {
	DBDSN  string
	RMQURL string
	Queue  string
}

var (
	API    APIConfig
	Worker WorkerConfig
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("required env %s is not set", k)
	}
	return v
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("env %s: bad duration %q", k, v)
	}
	return d
}

func getenvInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("env %s: bad integer %q", k, v)
	}
	return n
}

func MustLoadAPI() {
	API = APIConfig{
		Port:           getenv("PORT", "8080"),
		DBDSN:          mustEnv("DB_DSN"),
		RMQURL:         mustEnv("RMQ_URL"),
		Queue:          getenv("QUEUE", "publish_events"),
		GatewayURL:     mustEnv("GATEWAY_URL"),
		GuidanceURL:    mustEnv("GUIDANCE_URL"),
		RemoteTimeout:  getenvDuration("REMOTE_TIMEOUT", 15*time.Second),
		MaxUploadBytes: getenvInt64("MAX_UPLOAD_BYTES", 32<<20),
		SessionIdleTTL: getenvDuration("SESSION_IDLE_TTL", 2*time.Hour),
	}
}

func MustLoadWorker() {
	Worker = WorkerConfig{
		DBDSN:  mustEnv("DB_DSN"),
		RMQURL: mustEnv("RMQ_URL"),
		Queue:  getenv("QUEUE", "publish_events"),
	}
}
