package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry full names.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KAON_DB_DSN"
	EnvDBHost = "KAON_DB_HOST"
	EnvDBUser = "KAON_DB_USER"
	EnvDBName = "KAON_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
