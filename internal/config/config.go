package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses the session lifetime as a duration
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	MongoURI       string // MongoDB connection URI
	MongoDB        string // MongoDB database name
	SessionSecret  string // secret used to sign session cookies
	SessionTTLDays int    // session time-to-live in days (fixed from creation)
	BcryptCost     int    // bcrypt cost for password hashing

	MinioEndpoint  string // object store endpoint (host:port)
	MinioAccessKey string // object store access key
	MinioSecretKey string // object store secret key
	MinioBucket    string // bucket holding uploaded campground images
	MinioUseSSL    bool   // whether to talk TLS to the object store
	MinioPublicURL string // base URL prefix for served image objects

	GeocoderBaseURL string // forward-geocoding endpoint; empty disables geocoding
	GeocoderToken   string // access token for the geocoding service
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		MongoURI:       must("MONGO_URI"),
		MongoDB:        must("MONGO_DB"),
		SessionSecret:  must("SESSION_SECRET"),
		SessionTTLDays: mustInt("SESSION_TTL_DAYS"), // one week in the default deployment
		BcryptCost:     mustInt("BCRYPT_COST"),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "campground-images"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		GeocoderBaseURL: os.Getenv("GEOCODER_BASE_URL"),
		GeocoderToken:   os.Getenv("GEOCODER_TOKEN"),
	}
}

// SessionTTL converts the configured day count into a duration. The
// value is fixed at session creation and never extended.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLDays) * 24 * time.Hour
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
