package config

// EnvPrefix is the envconfig prefix shared by every RETRADE_* variable.
const EnvPrefix = "RETRADE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "RETRADE_DB_DSN"
	EnvDBHost = "RETRADE_DB_HOST"
	EnvDBUser = "RETRADE_DB_USER"
	EnvDBName = "RETRADE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
