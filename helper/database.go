package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Database bundles an open connection pool with the logger its handlers use.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// DatabaseConfiguration holds the PostgreSQL connection settings.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the connection settings from TIMEGRAPHER_DB_* environment
// variables. A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, NewError("load .env", err)
	}

	config := &DatabaseConfiguration{
		Host:     os.Getenv("TIMEGRAPHER_DB_HOST"),
		Port:     os.Getenv("TIMEGRAPHER_DB_PORT"),
		Database: os.Getenv("TIMEGRAPHER_DB_DATABASE"),
		Username: os.Getenv("TIMEGRAPHER_DB_USERNAME"),
		Password: os.Getenv("TIMEGRAPHER_DB_PASSWORD"),
		Schema:   os.Getenv("TIMEGRAPHER_DB_SCHEMA"),
		SSLMode:  os.Getenv("TIMEGRAPHER_DB_SSLMODE"),
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, NewError("validate database configuration", fmt.Errorf("host, port, database and username are required"))
	}

	return config, nil
}

// ConnectionString returns the lib/pq URL for the configuration.
func (c *DatabaseConfiguration) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// NewDatabase opens and pings the database. It panics if the database cannot be reached.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if config == nil {
		log.Panicf("error creating database %s: configuration is nil", name)
	}

	instance, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database %s: %v", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = instance.PingContext(ctx)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	instance.SetMaxOpenConns(10)
	instance.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// NewTestDatabase opens a database with a debug logger writing to stdout.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, NewLogger(os.Stdout, slog.LevelDebug))
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

// SetTestDatabaseConfigEnvs points the TIMEGRAPHER_DB_* variables at a test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv("TIMEGRAPHER_DB_HOST", "localhost")
	t.Setenv("TIMEGRAPHER_DB_PORT", dbPort)
	t.Setenv("TIMEGRAPHER_DB_DATABASE", testDatabaseName)
	t.Setenv("TIMEGRAPHER_DB_USERNAME", testDatabaseUser)
	t.Setenv("TIMEGRAPHER_DB_PASSWORD", testDatabasePassword)
	t.Setenv("TIMEGRAPHER_DB_SCHEMA", "public")
	t.Setenv("TIMEGRAPHER_DB_SSLMODE", "disable")
}
