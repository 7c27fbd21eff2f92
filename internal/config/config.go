package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTP_PORT       string
	DB_STRING       string
	KAFKA_BROKERS   string
	KAFKA_TOPIC     string
	KAFKA_GROUP_ID  string
	UDP_PORT        int
	UDP_BUFFER_SIZE int
	MES_BASE_URL    string
	MES_SYNC_TIME   string
	DAILY_CAPACITY  int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:       getenv("HTTP_PORT", "8080"),
		DB_STRING:       os.Getenv("DB_STRING"),
		KAFKA_BROKERS:   getenv("KAFKA_BROKERS", "localhost:9092"),
		KAFKA_TOPIC:     getenv("KAFKA_TOPIC", "client-orders"),
		KAFKA_GROUP_ID:  getenv("KAFKA_GROUP_ID", "erp-orders-service"),
		UDP_PORT:        getenvInt("UDP_PORT", 24680),
		UDP_BUFFER_SIZE: getenvInt("UDP_BUFFER_SIZE", 1024),
		MES_BASE_URL:    getenv("MES_BASE_URL", "http://localhost:8081"),
		MES_SYNC_TIME:   getenv("MES_SYNC_TIME", "09:00"),
		DAILY_CAPACITY:  getenvInt("DAILY_CAPACITY", 24),
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
