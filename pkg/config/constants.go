package config

const (
	EnvPrefix = "GIVEHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "GIVEHUB_APP_ENV"
	EnvPort     = "GIVEHUB_APP_PORT"
	EnvLogLevel = "GIVEHUB_LOG_LEVEL"

	EnvDBDSN  = "GIVEHUB_DB_DSN"
	EnvDBHost = "GIVEHUB_DB_HOST"
	EnvDBUser = "GIVEHUB_DB_USER"
	EnvDBName = "GIVEHUB_DB_NAME"

	EnvRedisURL = "GIVEHUB_REDIS_URL"

	EnvJWTSecret              = "GIVEHUB_JWT_SECRET"
	EnvJWTIssuer              = "GIVEHUB_JWT_ISSUER"
	EnvJWTExpMins             = "GIVEHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GIVEHUB_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite = "GIVEHUB_USE_SQLITE"

	EnvWebhookSecret = "GIVEHUB_PAYMENT_WEBHOOK_SECRET"

	EnvRequireApprovedCampaign = "GIVEHUB_DONATIONS_REQUIRE_APPROVED_CAMPAIGN"
	EnvAutoRejectSiblings      = "GIVEHUB_BOUTIQUE_AUTO_REJECT_SIBLINGS"

	EnvGCPProjectID      = "GIVEHUB_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "GIVEHUB_PUBSUB_DOMAIN_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
