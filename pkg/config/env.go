package config

const (
	EnvPrefix = "SHAREIT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "SHAREIT_APP_ENV"
	EnvPort     = "SHAREIT_APP_PORT"
	EnvDBDSN    = "SHAREIT_DB_DSN"
	EnvDBDriver = "SHAREIT_DB_DRIVER"
	EnvDBHost   = "SHAREIT_DB_HOST"
	EnvDBUser   = "SHAREIT_DB_USER"
	EnvDBName   = "SHAREIT_DB_NAME"
	EnvRedisURL = "SHAREIT_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
