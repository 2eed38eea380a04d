package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/server/dao"
	"github.com/dekarrin/clrviz/server/dao/inmem"
	"github.com/dekarrin/clrviz/server/dao/sqlite"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32

	DefaultListenAddress = "localhost:8080"
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database says where stored grammars are kept.
type Database struct {
	// Type selects the store; DataDir is only read for DatabaseSQLite.
	Type DBType

	// DataDir is the directory the SQLite file is created in.
	DataDir string
}

// Connect opens the configured store, creating the SQLite data directory if
// needed.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewDatastore(), nil
	case DatabaseSQLite:
		err := os.MkdirAll(db.DataDir, 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		store, err := sqlite.NewDatastore(db.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}

		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate checks that db names a usable store and has the fields it needs.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("DataDir not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// ParseDBConnString parses a connection string of the form "engine" or
// "engine:param". "inmem" keeps grammars in memory and takes no param;
// "sqlite:DIR" keeps them in a SQLite file in DIR.
func ParseDBConnString(s string) (Database, error) {
	engine, param, _ := strings.Cut(s, ":")
	param = strings.TrimSpace(param)

	dbType, err := ParseDBType(strings.TrimSpace(engine))
	if err != nil {
		return Database{}, fmt.Errorf("unsupported DB engine: %w", err)
	}

	switch dbType {
	case DatabaseInMemory:
		if param != "" {
			return Database{}, fmt.Errorf("in-memory DB engine takes no params, got %q", param)
		}
		return Database{Type: DatabaseInMemory}, nil
	case DatabaseSQLite:
		if param == "" {
			return Database{}, fmt.Errorf("sqlite DB engine requires path to data directory after ':'")
		}
		return Database{Type: DatabaseSQLite, DataDir: param}, nil
	default:
		return Database{}, fmt.Errorf("unknown DB engine: %q", dbType.String())
	}
}

// Config is a configuration for a server. It contains all parameters that can
// be used to configure the operation of a clrviz Server.
type Config struct {

	// TokenSecret is the secret used for signing tokens. If not provided, a
	// default key is used.
	TokenSecret []byte

	// AdminPassword is the password that must be given to log in as admin.
	// If not provided, admin login is disabled and stored grammars cannot be
	// deleted.
	AdminPassword string

	// Database is the configuration to use for connecting to the database. If
	// not provided, it will be set to a configuration for using an in-memory
	// persistence layer.
	DB Database

	// UnauthDelayMillis is the amount of additional time to wait
	// (in milliseconds) before sending a response that indicates either that
	// the client was unauthorized or the client was unauthenticated. This is
	// something of an "anti-flood" measure for naive clients attempting
	// non-parallel connections. If not set it will default to 1 second
	// (1000ms). Set this to any negative number to disable the delay.
	UnauthDelayMillis int

	// Listen is the address to listen on, in BIND_ADDRESS:PORT or :PORT
	// format. If not set it will default to DefaultListenAddress.
	Listen string

	// DefaultPolicy is the conflict policy used for requests that do not name
	// one.
	DefaultPolicy parse.ConflictPolicy

	// CacheSize is the number of built tables kept in memory. If not set it
	// will default to svc.DefaultCacheSize.
	CacheSize int
}

// UnauthDelay returns the configured time for the UnauthDelay as a
// time.Duration. If cfg.UnauthDelayMS is set to a number less than 0, this will
// return a zero-valued time.Duration.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		var dur time.Duration
		return dur
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.TokenSecret == nil {
		newCFG.TokenSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")
	}
	if newCFG.DB.Type == "" || newCFG.DB.Type == DatabaseNone {
		newCFG.DB = Database{Type: DatabaseInMemory}
	}
	if newCFG.UnauthDelayMillis == 0 {
		newCFG.UnauthDelayMillis = 1000
	}
	if newCFG.Listen == "" {
		newCFG.Listen = DefaultListenAddress
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if !strings.Contains(cfg.Listen, ":") {
		return fmt.Errorf("listen: %q is not in ADDRESS:PORT or :PORT format", cfg.Listen)
	}
	if _, err := parse.ParseConflictPolicy(cfg.DefaultPolicy.String()); err != nil {
		return fmt.Errorf("default policy: %w", err)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache size: must not be negative")
	}

	// all possible values for UnauthDelayMS are valid, so no need to check it

	return nil
}

// fileConfig is the layout of a TOML config file.
type fileConfig struct {
	Listen            string `toml:"listen"`
	DB                string `toml:"db"`
	TokenSecret       string `toml:"token_secret"`
	AdminPassword     string `toml:"admin_password"`
	UnauthDelayMillis int    `toml:"unauth_delay_ms"`
	ConflictPolicy    string `toml:"conflict_policy"`
	CacheSize         int    `toml:"cache_size"`
}

// LoadConfigFile reads a Config from the TOML file at path. Keys left out of
// the file are left unset in the returned Config; call FillDefaults on it to
// give them their default values. Unknown keys are an error.
func LoadConfigFile(path string) (Config, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i := range undecoded {
			keys[i] = undecoded[i].String()
		}
		return Config{}, fmt.Errorf("%s: unknown key(s): %s", path, strings.Join(keys, ", "))
	}

	cfg := Config{
		Listen:            fc.Listen,
		AdminPassword:     fc.AdminPassword,
		UnauthDelayMillis: fc.UnauthDelayMillis,
		CacheSize:         fc.CacheSize,
	}
	if fc.TokenSecret != "" {
		cfg.TokenSecret = []byte(fc.TokenSecret)
	}
	if fc.DB != "" {
		cfg.DB, err = ParseDBConnString(fc.DB)
		if err != nil {
			return Config{}, fmt.Errorf("%s: db: %w", path, err)
		}
	}
	cfg.DefaultPolicy, err = parse.ParseConflictPolicy(fc.ConflictPolicy)
	if err != nil {
		return Config{}, fmt.Errorf("%s: conflict_policy: %w", path, err)
	}

	return cfg, nil
}
