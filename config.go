package surrealengine

import (
	"log/slog"
	"os"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/logger"
)

// Environment variables consulted by ConfigFromEnv.
const (
	// EnvEndpoint specifies the SurrealDB endpoint URL, e.g.
	// "ws://localhost:8000" or "http://localhost:8000".
	EnvEndpoint = "SURREALENGINE_URL"

	// EnvNamespace and EnvDatabase select the namespace and database.
	EnvNamespace = "SURREALENGINE_NAMESPACE"
	EnvDatabase  = "SURREALENGINE_DATABASE"

	// EnvUsername and EnvPassword carry sign-in credentials.
	EnvUsername = "SURREALENGINE_USER"
	EnvPassword = "SURREALENGINE_PASS"

	// EnvAuthNamespace and EnvAuthDatabase scope the sign-in to a
	// namespace or database user instead of a root user.
	EnvAuthNamespace = "SURREALENGINE_AUTH_NAMESPACE"
	EnvAuthDatabase  = "SURREALENGINE_AUTH_DATABASE"

	// EnvReconnectInterval enables the auto-reconnecting WebSocket
	// connection when set to a positive Go duration, e.g. "5s".
	EnvReconnectInterval = "SURREALENGINE_RECONNECTION_CHECK_INTERVAL"

	// EnvConnectionImpl selects the WebSocket implementation. When set to
	// "gws" the gws backend is used; otherwise gorilla/websocket.
	EnvConnectionImpl = "SURREALENGINE_CONNECTION_IMPL"
)

const defaultEndpoint = "ws://localhost:8000"

// Config describes how Connect dials and authenticates a SurrealDB
// connection.
type Config struct {
	// Endpoint is the SurrealDB URL. The scheme selects the connection
	// engine: ws/wss for WebSocket, http/https for HTTP.
	Endpoint string

	// Namespace and Database are selected with USE after connecting.
	Namespace string
	Database  string

	// Username and Password sign in after connecting. Leave empty to skip
	// authentication, or set Token to authenticate with an existing JWT.
	Username string
	Password string
	Token    string

	// AuthNamespace and AuthDatabase scope the sign-in. Both empty signs
	// in as a root user; AuthNamespace alone signs in as a namespace
	// user; both set sign in as a database user.
	AuthNamespace string
	AuthDatabase  string

	// ReconnectInterval, when positive, wraps WebSocket connections in the
	// SDK's auto-reconnecting connection checked at this interval.
	ReconnectInterval time.Duration

	// UseGWS selects the gws WebSocket backend instead of gorilla.
	UseGWS bool

	// Logger receives connection and query lifecycle logs. Defaults to a
	// slog text handler on stderr.
	Logger logger.Logger
}

// NewConfig returns a Config for the given endpoint, namespace and database.
func NewConfig(endpoint, namespace, database string) *Config {
	return &Config{
		Endpoint:  endpoint,
		Namespace: namespace,
		Database:  database,
	}
}

// ConfigFromEnv builds a Config from SURREALENGINE_* environment variables.
// Unset variables fall back to defaults; an invalid reconnect interval is
// ignored.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Endpoint:      getEnvOrDefault(EnvEndpoint, defaultEndpoint),
		Namespace:     os.Getenv(EnvNamespace),
		Database:      os.Getenv(EnvDatabase),
		Username:      os.Getenv(EnvUsername),
		Password:      os.Getenv(EnvPassword),
		AuthNamespace: os.Getenv(EnvAuthNamespace),
		AuthDatabase:  os.Getenv(EnvAuthDatabase),
		UseGWS:        os.Getenv(EnvConnectionImpl) == "gws",
	}

	if v := os.Getenv(EnvReconnectInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReconnectInterval = d
		}
	}

	return cfg
}

// WithAuth sets sign-in credentials.
func (c *Config) WithAuth(username, password string) *Config {
	c.Username = username
	c.Password = password
	return c
}

// WithScopedAuth scopes the sign-in to a namespace or database user.
// Pass an empty database to sign in as a namespace user.
func (c *Config) WithScopedAuth(namespace, database string) *Config {
	c.AuthNamespace = namespace
	c.AuthDatabase = database
	return c
}

// WithToken sets a JWT used with Authenticate instead of signing in.
func (c *Config) WithToken(token string) *Config {
	c.Token = token
	return c
}

// WithLogger sets the logger used by the engine and its subscriptions.
func (c *Config) WithLogger(l logger.Logger) *Config {
	c.Logger = l
	return c
}

// WithReconnect enables the auto-reconnecting WebSocket connection.
func (c *Config) WithReconnect(checkInterval time.Duration) *Config {
	c.ReconnectInterval = checkInterval
	return c
}

func (c *Config) logger() logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.New(slog.NewTextHandler(os.Stderr, nil))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
