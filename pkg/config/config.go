package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Teams        TeamsConfig
	Legacy       LegacyConfig
	Reconcile    ReconcileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	// The file-backed store needs no database.
	if err := cfg.DB.ensureDSN(); err != nil && !cfg.Legacy.FileStore {
		return nil, err
	}
	if _, err := cfg.Teams.Parse(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TERRITORIO_APP_ENV" required:"true"`
	Port         string `envconfig:"TERRITORIO_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"TERRITORIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TERRITORIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TERRITORIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TERRITORIO_DB_DSN"`
	Driver string `envconfig:"TERRITORIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TERRITORIO_DB_HOST"`
	LegacyPort     int    `envconfig:"TERRITORIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TERRITORIO_DB_USER"`
	LegacyPassword string `envconfig:"TERRITORIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"TERRITORIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"TERRITORIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TERRITORIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TERRITORIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TERRITORIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TERRITORIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"TERRITORIO_REDIS_URL"`
	Address      string        `envconfig:"TERRITORIO_REDIS_ADDR"`
	Password     string        `envconfig:"TERRITORIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"TERRITORIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TERRITORIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TERRITORIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TERRITORIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TERRITORIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TERRITORIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TERRITORIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TERRITORIO_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"TERRITORIO_FEATURE_IDEMPOTENCY" default:"true"`
}

// TeamsConfig carries the raw team table, e.g. "equipe1:Equipe 1,equipe2:Equipe 2".
type TeamsConfig struct {
	Raw string `envconfig:"TERRITORIO_TEAMS" default:"equipe1:Equipe 1,equipe2:Equipe 2,equipe3:Equipe 3"`
}

// Team is one entry of the configured team table.
type Team struct {
	ID   string
	Name string
}

// Parse splits the raw team table into ordered entries. A bare id uses itself as name.
func (t TeamsConfig) Parse() ([]Team, error) {
	var teams []Team
	seen := map[string]struct{}{}
	for _, part := range strings.Split(t.Raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, found := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if !found || name == "" {
			name = id
		}
		if id == "" {
			return nil, fmt.Errorf("%s: empty team id in %q", EnvTeams, part)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: duplicate team id %q", EnvTeams, id)
		}
		seen[id] = struct{}{}
		teams = append(teams, Team{ID: id, Name: name})
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%s must declare at least one team", EnvTeams)
	}
	return teams, nil
}

// LegacyConfig locates the dados.json document. With FileStore set the API
// serves records from that document instead of the database.
type LegacyConfig struct {
	DataPath  string `envconfig:"TERRITORIO_LEGACY_DATA_PATH" default:"data/dados.json"`
	FileStore bool   `envconfig:"TERRITORIO_LEGACY_FILE_STORE" default:"false"`
}

type ReconcileConfig struct {
	Interval time.Duration `envconfig:"TERRITORIO_RECONCILE_INTERVAL" default:"6h"`
	LockTTL  time.Duration `envconfig:"TERRITORIO_RECONCILE_LOCK_TTL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
