package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort         = "3001"
	DefaultStoreBackend = BackendFirestore

	configFileEnv = "CONFIG_FILE"
)

// Supported store backends.
const (
	BackendFirestore = "firestore"
	BackendMongoDB   = "mongodb"
	BackendInfluxDB  = "influxdb"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

// Config holds the application's configuration.
type Config struct {
	Port               string   `yaml:"port"`
	BaseURL            string   `yaml:"baseUrl"`
	AccountID          string   `yaml:"accountId"`
	StoreBackend       string   `yaml:"storeBackend"`
	LogLevel           string   `yaml:"logLevel"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`

	Firestore FirestoreConfig `yaml:"firestore"`
	Mongo     MongoConfig     `yaml:"mongodb"`
	Influx    InfluxConfig    `yaml:"influxdb"`
	Redis     RedisConfig     `yaml:"redis"`

	// DotEnvLoaded reports whether a .env file was found at startup.
	DotEnvLoaded bool `yaml:"-"`
}

// FirestoreConfig carries the service account used to reach Firestore.
type FirestoreConfig struct {
	ProjectID      string `yaml:"projectId"`
	ClientEmail    string `yaml:"clientEmail"`
	PrivateKey     string `yaml:"privateKey"`
	RootCollection string `yaml:"rootCollection"`
	SubCollection  string `yaml:"subCollection"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type InfluxConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	Org   string `yaml:"org"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoadConfig loads the configuration from an optional YAML file and the environment.
// Environment variables win over file values.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               DefaultPort,
		StoreBackend:       DefaultStoreBackend,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		Firestore: FirestoreConfig{
			RootCollection: "accounts",
			SubCollection:  "readings",
		},
		Mongo: MongoConfig{
			Database: "readings",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}

	// a missing .env is fine, the environment may already be populated
	cfg.DotEnvLoaded = godotenv.Load() == nil

	if path := os.Getenv(configFileEnv); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.AccountID, "ACCOUNT_ID")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); strings.TrimSpace(origins) != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}

	setString(&cfg.Firestore.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&cfg.Firestore.ClientEmail, "FIREBASE_CLIENT_EMAIL")
	setString(&cfg.Firestore.PrivateKey, "FIREBASE_PRIVATE_KEY")
	setString(&cfg.Firestore.RootCollection, "FIRESTORE_ROOT_COLLECTION")
	setString(&cfg.Firestore.SubCollection, "FIRESTORE_SUB_COLLECTION")

	setString(&cfg.Mongo.URI, "MONGODB_URI")
	setString(&cfg.Mongo.Database, "MONGODB_DATABASE")

	setString(&cfg.Influx.URL, "INFLUXDB_URL")
	setString(&cfg.Influx.Token, "INFLUXDB_TOKEN")
	setString(&cfg.Influx.Org, "INFLUXDB_ORG")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if raw, ok := os.LookupEnv("REDIS_DB"); ok && strings.TrimSpace(raw) != "" {
		db, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("config: parse REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

func setString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		*target = strings.TrimSpace(val)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%s", c.Port)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	// service account keys pasted into env files keep their newlines escaped
	c.Firestore.PrivateKey = strings.ReplaceAll(c.Firestore.PrivateKey, `\n`, "\n")
}

// Validate checks that the selected backend has everything it needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AccountID) == "" {
		return errors.New("config: ACCOUNT_ID is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}

	switch c.StoreBackend {
	case BackendFirestore:
		if c.Firestore.ProjectID == "" || c.Firestore.ClientEmail == "" || c.Firestore.PrivateKey == "" {
			return errors.New("config: Firestore configuration is incomplete. Please set FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL, and FIREBASE_PRIVATE_KEY environment variables")
		}
	case BackendMongoDB:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("config: MongoDB configuration is incomplete. Please set MONGODB_URI and MONGODB_DATABASE environment variables")
		}
	case BackendInfluxDB:
		if c.Influx.URL == "" || c.Influx.Token == "" || c.Influx.Org == "" {
			return errors.New("config: InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("config: REDIS_ADDR is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// Address returns the :port listen address.
func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
