package config // package config loads application configuration from environment variables

import (
    "errors"  // errors joins validation failures into one startup error
    "fmt"     // fmt formats validation messages
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes environment names
    "time"    // time holds parsed token lifetimes

    "github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets and TTLs for the two token kinds are
// grouped into Tokens so they are parsed and validated together.
type Config struct {
    Env         string // application environment (development, test, production)
    Port        string // HTTP port to listen on
    LogLevel    string // zap level name
    FrontendURL string // allowed CORS origin
    BcryptCost  int    // bcrypt cost for password hashing
    DB          DBConfig
    Tokens      TokenConfig
    AMQPURL     string // broker URL for audit events; empty disables publishing

    LedgerPurgeInterval time.Duration // period of the expired refresh token sweep; 0 disables it
}

// DBConfig describes how to reach MySQL.  In cloud mode the connection is
// dialed through the Cloud SQL connector using InstanceConnectionName and
// Host/Port are ignored.
type DBConfig struct {
    User                   string
    Pass                   string
    Host                   string
    Port                   string
    Name                   string
    PoolSize               int
    Cloud                  bool
    InstanceConnectionName string
    IPType                 string // PUBLIC | PRIVATE | PSC
    Migrate                bool   // run embedded migrations at startup
}

// TokenConfig is the typed form of the JWT settings.  The two secrets must be
// present and distinct; both lifetimes must be positive.
type TokenConfig struct {
    AccessSecret  string
    RefreshSecret string
    AccessTTL     time.Duration
    RefreshTTL    time.Duration
}

// IsCloud reports whether the environment runs behind HTTPS in the cloud.
// Both production and test deployments are cloud-hosted.
func (c Config) IsCloud() bool {
    return IsCloudEnv(c.Env)
}

// IsCloudEnv reports whether env names a cloud deployment.
func IsCloudEnv(env string) bool {
    switch strings.ToLower(strings.TrimSpace(env)) {
    case "production", "test":
        return true
    }
    return false
}

// Load reads a .env file (if any) and then the process environment, returning
// a validated Config.  Any missing required variable or invalid value is
// reported; callers are expected to stop the process on error.
func Load() (Config, error) {
    _ = godotenv.Load() // a missing .env file is normal outside local development
    return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function.  It is split out
// from Load so tests can supply a fixed environment.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
    r := reader{lookup: lookup}
    env := r.str("APP_ENV", "development")
    cfg := Config{
        Env:         env,
        Port:        r.str("APP_PORT", "8080"),
        LogLevel:    r.str("LOG_LEVEL", "info"),
        FrontendURL: r.required("FRONTEND_URL"),
        BcryptCost:  r.integer("BCRYPT_COST", 12),
        DB: DBConfig{
            User:     r.required("DB_USER"),
            Pass:     r.str("DB_PASSWORD", ""),
            Host:     r.str("DB_HOST", "localhost"),
            Port:     r.str("DB_PORT", "3306"),
            Name:     r.required("DB_NAME"),
            PoolSize: r.integer("DB_POOL", 10),
            Cloud:    IsCloudEnv(env),
            IPType:   strings.ToUpper(r.str("DB_IP_TYPE", "PUBLIC")),
            Migrate:  r.boolean("DB_MIGRATE", true),
        },
        Tokens: TokenConfig{
            AccessSecret:  r.required("JWT_SECRET"),
            RefreshSecret: r.required("JWT_REFRESH_SECRET"),
            AccessTTL:     ParseDuration(r.str("JWT_EXPIRATION", "1h")),
            RefreshTTL:    ParseDuration(r.str("JWT_REFRESH_EXPIRATION", "10h")),
        },
        AMQPURL:             r.str("RABBITMQ_URL", r.str("AMQP_URL", "")),
        LedgerPurgeInterval: ParseDuration(r.str("LEDGER_PURGE_INTERVAL", "1h")),
    }
    if cfg.DB.Cloud {
        cfg.DB.InstanceConnectionName = r.required("INSTANCE_CONNECTION_NAME")
    }

    errs := r.errs
    if err := cfg.Tokens.Validate(); err != nil {
        errs = append(errs, err)
    }
    if cfg.DB.PoolSize < 1 {
        errs = append(errs, fmt.Errorf("DB_POOL must be at least 1, got %d", cfg.DB.PoolSize))
    }
    switch cfg.DB.IPType {
    case "PUBLIC", "PRIVATE", "PSC":
    default:
        errs = append(errs, fmt.Errorf("DB_IP_TYPE must be PUBLIC, PRIVATE or PSC, got %q", cfg.DB.IPType))
    }
    if len(errs) > 0 {
        return Config{}, errors.Join(errs...)
    }
    return cfg, nil
}

// Validate checks the token settings.  Secrets are compared
// only after both are known to be present so the messages stay precise.
func (t TokenConfig) Validate() error {
    var errs []error
    if t.AccessSecret != "" && t.AccessSecret == t.RefreshSecret {
        errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
    }
    if t.AccessTTL <= 0 {
        errs = append(errs, errors.New("JWT_EXPIRATION must be a positive duration such as 15m or 1h"))
    }
    if t.RefreshTTL <= 0 {
        errs = append(errs, errors.New("JWT_REFRESH_EXPIRATION must be a positive duration such as 10h or 7d"))
    }
    return errors.Join(errs...)
}

// reader collects errors while reading variables so that every problem is
// reported at once instead of failing on the first one.
type reader struct {
    lookup func(string) (string, bool)
    errs   []error
}

func (r *reader) str(key, def string) string {
    if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
        return strings.TrimSpace(v)
    }
    return def
}

// required retrieves the value of a required environment variable.  An unset
// or empty variable is recorded as an error.
func (r *reader) required(key string) string {
    v, ok := r.lookup(key)
    if !ok || strings.TrimSpace(v) == "" {
        r.errs = append(r.errs, fmt.Errorf("missing required env var: %s", key))
        return ""
    }
    return strings.TrimSpace(v)
}

func (r *reader) integer(key string, def int) int {
    s := r.str(key, "")
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        r.errs = append(r.errs, fmt.Errorf("invalid int for %s: %q", key, s))
        return def
    }
    return n
}

func (r *reader) boolean(key string, def bool) bool {
    return parseBool(r.str(key, ""), def)
}
