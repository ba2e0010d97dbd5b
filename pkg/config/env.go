package config

const (
	EnvPrefix = "TERRITORIO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:territorio.db?_foreign_keys=on"

	EnvAppEnv   = "TERRITORIO_APP_ENV"
	EnvPort     = "TERRITORIO_APP_PORT"
	EnvLogLevel = "TERRITORIO_LOG_LEVEL"

	EnvDBDSN    = "TERRITORIO_DB_DSN"
	EnvDBDriver = "TERRITORIO_DB_DRIVER"
	EnvDBHost   = "TERRITORIO_DB_HOST"
	EnvDBUser   = "TERRITORIO_DB_USER"
	EnvDBName   = "TERRITORIO_DB_NAME"

	EnvRedisURL = "TERRITORIO_REDIS_URL"

	EnvUseSQLite   = "TERRITORIO_USE_SQLITE"
	EnvAutoMigrate = "TERRITORIO_AUTO_MIGRATE"

	EnvTeams           = "TERRITORIO_TEAMS"
	EnvLegacyDataPath  = "TERRITORIO_LEGACY_DATA_PATH"
	EnvLegacyFileStore = "TERRITORIO_LEGACY_FILE_STORE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
