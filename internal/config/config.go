package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For TTL durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBDriver    string        // Database driver: mysql or postgres
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // Token lifetime
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	CacheTTL    time.Duration // TTL of cached read responses
	CORSOrigins []string      // Allowed CORS origins
	IsProd      bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),                                   // Application port
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "mysql")),                // Database driver
		DBUser:      os.Getenv("DB_USER"),                                         // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                                     // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),                               // Database host
		DBPort:      os.Getenv("DB_PORT"),                                         // Database port
		DBName:      os.Getenv("DB_NAME"),                                         // Database name
		JWTSecret:   os.Getenv("JWT_SECRET"),                                      // JWT secret key
		JWTTTL:      time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour,       // Token lifetime
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),                       // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                                      // Redis password
		RedisDB:     redisDB,                                                      // Redis database number
		CacheTTL:    time.Duration(getInt("CACHE_TTL_SECONDS", 60)) * time.Second, // Cache TTL
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),                         // Allowed origins
		IsProd:      os.Getenv("IS_PROD") == "true",                               // Is production environment
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" || c.DBDriver == "postgresql" {
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + port + " sslmode=disable"
	}
	port := c.DBPort
	if port == "" {
		port = "3306"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses an integer variable, falling back on missing or bad input
func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
