// Package config provides configuration for the application from
// command-line flags and environment variables. A local .env file, when
// present, is loaded first and fills the environment.
package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// BaseURL is the public base used to build short URLs and the OIDC
	// redirect URI. Its scheme also decides cookie Secure attributes.
	BaseURL string

	// FilePath is the path to the storage file for persistent data.
	FilePath string

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string

	// SQLitePath holds the SQLite database file path.
	SQLitePath string

	// DefaultLength is the identifier length used when a creation request
	// does not specify one.
	DefaultLength int

	// JWTSecret signs session tokens. Checked lazily at first use.
	JWTSecret string

	// OIDCIssuer, OIDCClientID and OIDCClientSecret configure the identity
	// provider. All three empty means login is disabled and anonymous
	// creation is allowed.
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string

	// EnablePprof indicates whether to enable pprof for profiling.
	EnablePprof bool

	// EnableHTTPS indicates whether to serve TLS via autocert.
	EnableHTTPS bool
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "b", "http://localhost:8080", "result base url")
	flag.StringVar(&options.FilePath, "f", "", "path to storage file")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn")
	flag.StringVar(&options.SQLitePath, "q", "", "sqlite database path")
	flag.IntVar(&options.DefaultLength, "l", 6, "default short id length")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// Override flags with environment variables if set
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	if storagePath := os.Getenv("FILE_STORAGE_PATH"); storagePath != "" {
		options.FilePath = storagePath
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if sqlitePath := os.Getenv("SQLITE_PATH"); sqlitePath != "" {
		options.SQLitePath = sqlitePath
	}

	if lengthStr := os.Getenv("SHORT_ID_LENGTH"); lengthStr != "" {
		if length, err := strconv.Atoi(lengthStr); err == nil {
			options.DefaultLength = length
		}
	}

	options.JWTSecret = os.Getenv("JWT_SECRET")
	options.OIDCIssuer = os.Getenv("OIDC_ISSUER")
	options.OIDCClientID = os.Getenv("OIDC_CLIENT_ID")
	options.OIDCClientSecret = os.Getenv("OIDC_CLIENT_SECRET")

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			httpsMode = false
		}
		options.EnableHTTPS = httpsMode
	}

	return options
}
