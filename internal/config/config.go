package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kadirbelkuyu/schemer/internal/compare"
)

// Target is one database instance under test.
type Target struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"`
	Host         string `yaml:"host,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	Database     string `yaml:"database,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
	SSLMode      string `yaml:"sslmode,omitempty"`
	Schema       string `yaml:"schema,omitempty"`
	URI          string `yaml:"uri,omitempty"`
	AuthDatabase string `yaml:"auth_database,omitempty"`
	Path         string `yaml:"path,omitempty"`

	// User is the legacy name of Username.
	User   string `yaml:"user,omitempty"`
	// RawDSN, when set, is handed to the driver untouched.
	RawDSN string `yaml:"dsn,omitempty"`
}

// CompareConfig holds comparison and acquisition tuning.
type CompareConfig struct {
	Mode         string   `yaml:"mode"`
	Identity     string   `yaml:"identity"`
	Parallel     int      `yaml:"parallel"`
	Timeout      string   `yaml:"timeout"`
	IgnoreTables []string `yaml:"ignore_tables"`
}

type Config struct {
	Master  string        `yaml:"master,omitempty"`
	Compare CompareConfig `yaml:"compare"`
	Targets []Target      `yaml:"targets"`
	// Databases is the legacy name of Targets.
	Databases []Target `yaml:"databases,omitempty"`
}

func LoadConfig(configPath string) (*Config, error) {
	if strings.TrimSpace(configPath) == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	env, err := loadEnvFile(filepath.Join(filepath.Dir(configPath), ".env"))
	if err != nil {
		return nil, err
	}

	return Parse(expandEnv(data, env))
}

// Parse decodes YAML (or JSON) configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(config.Targets) == 0 && len(config.Databases) > 0 {
		config.Targets = config.Databases
	}
	config.Databases = nil

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Targets {
		t := &c.Targets[i]
		t.ID = strings.TrimSpace(t.ID)
		t.Type = normalizeDatabaseType(t.Type)
		if t.Username == "" {
			t.Username = t.User
		}
		t.User = ""

		switch t.Type {
		case "postgres":
			if t.SSLMode == "" {
				t.SSLMode = "disable"
			}
			if t.Schema == "" {
				t.Schema = "public"
			}
			if t.Port == 0 {
				t.Port = 5432
			}
		case "mysql":
			if t.Port == 0 {
				t.Port = 3306
			}
		case "mongo":
			if t.Port == 0 {
				t.Port = 27017
			}
		}
		if t.Host == "" && t.Type != "sqlite" && t.Type != "snapshot" {
			t.Host = "localhost"
		}
	}

	if c.Compare.Identity == "" {
		c.Compare.Identity = compare.DefaultIdentityAttribute
	}
	if c.Compare.Mode == "" {
		c.Compare.Mode = string(compare.ModePositional)
	}
	if c.Compare.Parallel <= 0 {
		c.Compare.Parallel = 1
	}
}

func (c *Config) validate() error {
	if len(c.Targets) == 0 {
		return errors.New("at least one target is required")
	}

	seen := make(map[string]struct{}, len(c.Targets))
	for i, t := range c.Targets {
		if t.ID == "" {
			return fmt.Errorf("targets[%d].id is required", i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate target id: %s", t.ID)
		}
		seen[t.ID] = struct{}{}

		if err := t.validate(); err != nil {
			return fmt.Errorf("target %s: %w", t.ID, err)
		}
	}

	if c.Master != "" && c.Master != c.Targets[0].ID {
		return fmt.Errorf("master %q must be the first target, found %q first", c.Master, c.Targets[0].ID)
	}

	if _, err := compare.ParseMode(c.Compare.Mode); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.IgnorePatterns(); err != nil {
		return err
	}
	return nil
}

func (t Target) validate() error {
	switch t.Type {
	case "mysql", "postgres":
		if t.RawDSN == "" && t.Database == "" {
			return errors.New("database is required")
		}
	case "sqlite":
		if t.Path == "" && t.RawDSN == "" {
			return errors.New("path is required")
		}
	case "mongo":
		if t.URI == "" && t.Database == "" {
			return errors.New("database or uri is required")
		}
	case "snapshot":
		if t.Path == "" {
			return errors.New("path is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", t.Type)
	}
	return nil
}

// MasterTarget returns the target every other target is compared against.
func (c *Config) MasterTarget() Target {
	return c.Targets[0]
}

// Timeout returns the per-target acquisition timeout; zero means none.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.Compare.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Compare.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid compare.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("compare.timeout cannot be negative: %s", c.Compare.Timeout)
	}
	return d, nil
}

// IgnorePatterns compiles compare.ignore_tables.
func (c *Config) IgnorePatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.Compare.IgnoreTables))
	for _, expr := range c.Compare.IgnoreTables {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore_tables pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// CompareOptions converts the compare section into comparator options.
func (c *Config) CompareOptions() (compare.Options, error) {
	mode, err := compare.ParseMode(c.Compare.Mode)
	if err != nil {
		return compare.Options{}, err
	}
	ignore, err := c.IgnorePatterns()
	if err != nil {
		return compare.Options{}, err
	}
	return compare.Options{
		Mode:              mode,
		IdentityAttribute: c.Compare.Identity,
		IgnoreTables:      ignore,
	}, nil
}

// Target looks up a target by id.
func (c *Config) Target(id string) (Target, bool) {
	for _, t := range c.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// DriverName returns the database/sql driver registered for the target type.
func (t Target) DriverName() string {
	switch t.Type {
	case "mysql":
		return "mysql"
	case "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite3"
	default:
		return ""
	}
}

// DSN builds the driver connection string for SQL targets.
func (t Target) DSN() string {
	if t.RawDSN != "" {
		return t.RawDSN
	}

	switch t.Type {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			t.Host,
			t.Port,
			t.Username,
			t.Password,
			t.Database,
			t.SSLMode,
		)
	case "mysql":
		credentials := t.Username
		if t.Password != "" {
			credentials = fmt.Sprintf("%s:%s", credentials, t.Password)
		}
		return fmt.Sprintf("%s@tcp(%s:%d)/%s", credentials, t.Host, t.Port, t.Database)
	case "sqlite":
		return t.Path
	default:
		return ""
	}
}

func (t Target) MongoURI() string {
	if t.URI != "" {
		return t.URI
	}

	var credentials string
	if t.Username != "" {
		credentials = url.QueryEscape(t.Username)
		if t.Password != "" {
			credentials = fmt.Sprintf("%s:%s", credentials, url.QueryEscape(t.Password))
		}
		credentials += "@"
	}

	targetDatabase := strings.TrimSpace(t.Database)
	if targetDatabase != "" {
		targetDatabase = "/" + targetDatabase
	}

	uri := fmt.Sprintf("mongodb://%s%s:%d%s", credentials, t.Host, t.Port, targetDatabase)

	if t.AuthDatabase != "" {
		uri = fmt.Sprintf("%s?authSource=%s", uri, url.QueryEscape(t.AuthDatabase))
	}

	return uri
}

// MongoDatabase returns the database to introspect, falling back to the URI path.
func (t Target) MongoDatabase() string {
	if t.Database != "" {
		return t.Database
	}
	u, err := url.Parse(t.URI)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// loadEnvFile reads KEY=VALUE pairs from path. A missing file is not an error.
func loadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return env, nil
}

// expandEnv replaces ${NAME} references. The process environment wins over
// values from the env file; unknown names expand to an empty string. Bare
// $NAME is left alone so passwords containing '$' survive.
func expandEnv(data []byte, fileEnv map[string]string) []byte {
	return envReference.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(envReference.FindSubmatch(match)[1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return []byte(fileEnv[name])
	})
}

func normalizeDatabaseType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	if dbType == "" {
		return "mysql"
	}

	switch dbType {
	case "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mongo", "mongodb":
		return "mongo"
	case "snapshot", "file":
		return "snapshot"
	default:
		return dbType
	}
}
