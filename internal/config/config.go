package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	HTTPAddr    string
	DBPath      string
	SeedOnStart bool

	// RabbitURL vacío desactiva las notificaciones de stock.
	RabbitURL string
	Exchange  string

	// Zona horaria para construir rangos de reporte por día calendario.
	ReportTZ string

	// Cache de snapshots de stock para validación del carrito.
	SnapshotCacheSize int
	SnapshotTTL       time.Duration

	ShutdownGrace time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
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

func LoadConfig() Config {
	// .env opcional, igual que en desarrollo local
	_ = godotenv.Load()

	return Config{
		ServiceName: getenv("POS_SERVICE_NAME", "pos-server"),
		HTTPAddr:    getenv("POS_HTTP_ADDR", ":8080"),
		DBPath:      getenv("POS_DB_PATH", "./data/pos.db"),
		SeedOnStart: getenv("POS_SEED", "false") == "true",

		RabbitURL: getenv("RABBITMQ_URL", ""),
		Exchange:  getenv("POS_EXCHANGE", "pos.events"),

		ReportTZ: getenv("POS_REPORT_TZ", "Local"),

		SnapshotCacheSize: atoienv("POS_SNAPSHOT_CACHE_SIZE", 256),
		SnapshotTTL:       time.Duration(atoienv("POS_SNAPSHOT_TTL_SECONDS", 30)) * time.Second,

		ShutdownGrace: time.Duration(atoienv("POS_SHUTDOWN_GRACE_SECONDS", 10)) * time.Second,
	}
}
