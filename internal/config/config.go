package config

import (
	"os"
	"strconv"
)

type Config struct {
	// HTTP
	HTTPPort string

	// SQLite
	DBPath string

	// MQTT
	MQTTBrokerURL        string
	MQTTClientID         string
	MQTTUsername         string
	MQTTPassword         string
	MQTTTopicRoot        string
	MQTTReconnectSeconds int

	// Redis fan-out; empty addr falls back to the log publisher
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Fill-level calibration (sensor-to-waste distance in cm)
	FillEmptyCm int
	FillFullCm  int

	// Alert thresholds
	AlertFullPct        int
	AlertLowBatteryPct  int
	AlertWeakSignalRSSI int

	// Route planning
	RouteFillThreshold   int
	DepotLat             float64
	DepotLon             float64
	TruckSpeedKmh        float64
	PerStopMinutes       int
	RecencyWindowHours   int
	AutoOptimizeCron     string
	OfflineSweepCron     string
	OfflineWindowMinutes int

	// Placeholder location for auto-registered containers (unset = none)
	DefaultLat *float64
	DefaultLon *float64
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:             getEnv("PORT", "8080"),
		DBPath:               getEnv("DB_PATH", "waste.db"),
		MQTTBrokerURL:        getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "waste-ingestor"),
		MQTTUsername:         getEnv("MQTT_USERNAME", ""),
		MQTTPassword:         getEnv("MQTT_PASSWORD", ""),
		MQTTTopicRoot:        getEnv("MQTT_TOPIC_ROOT", "wastesense"),
		MQTTReconnectSeconds: getEnvInt("MQTT_RECONNECT_SECONDS", 3),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		FillEmptyCm:          getEnvInt("FILL_EMPTY_CM", 200),
		FillFullCm:           getEnvInt("FILL_FULL_CM", 20),
		AlertFullPct:         getEnvInt("ALERT_FULL_PCT", 90),
		AlertLowBatteryPct:   getEnvInt("ALERT_LOW_BATTERY_PCT", 20),
		AlertWeakSignalRSSI:  getEnvInt("ALERT_WEAK_SIGNAL_RSSI", -80),
		RouteFillThreshold:   getEnvInt("ROUTE_FILL_THRESHOLD", 75),
		DepotLat:             getEnvFloat("DEPOT_LAT", -23.5505),
		DepotLon:             getEnvFloat("DEPOT_LON", -46.6333),
		TruckSpeedKmh:        getEnvFloat("TRUCK_SPEED_KMH", 30),
		PerStopMinutes:       getEnvInt("PER_STOP_MINUTES", 10),
		RecencyWindowHours:   getEnvInt("RECENCY_WINDOW_HOURS", 24),
		AutoOptimizeCron:     getEnv("AUTO_OPTIMIZE_CRON", ""),
		OfflineSweepCron:     getEnv("OFFLINE_SWEEP_CRON", "*/15 * * * *"),
		OfflineWindowMinutes: getEnvInt("OFFLINE_WINDOW_MINUTES", 120),
	}

	if lat, ok := lookupEnvFloat("DEFAULT_CONTAINER_LAT"); ok {
		if lon, ok := lookupEnvFloat("DEFAULT_CONTAINER_LON"); ok {
			cfg.DefaultLat = &lat
			cfg.DefaultLon = &lon
		}
	}

	return cfg
}

// DefaultSensorTypes maps known sensor UIDs to their hardware type. Unknown
// sensors fall back to "unknown" at the point of use.
func DefaultSensorTypes() map[string]string {
	return map[string]string{
		"003D00454741501320313431": "ultrasonic_black_lid",
		"004500235847501820393531": "ultrasonic_gray_lid",
		"004400255847501820393531": "infrared",
	}
}

// Get reads one environment variable with a fallback.
func Get(key, fallback string) string {
	return getEnv(key, fallback)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func lookupEnvFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
