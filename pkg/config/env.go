package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStoreBackend = "STORE_BACKEND"

	EnvClinicTimezone     = "CLINIC_TIMEZONE"
	EnvClinicOpen         = "CLINIC_OPEN"
	EnvClinicClose        = "CLINIC_CLOSE"
	EnvClinicLunchStart   = "CLINIC_LUNCH_START"
	EnvClinicLunchEnd     = "CLINIC_LUNCH_END"
	EnvSlotMinutes        = "SLOT_MINUTES"
	EnvMinAdvance         = "MIN_ADVANCE"
	EnvMaxAdvanceDays     = "MAX_ADVANCE_DAYS"
	EnvCancellationNotice = "CANCELLATION_NOTICE"
	EnvWorkingDays        = "WORKING_DAYS"
	EnvHolidays           = "HOLIDAYS"
	EnvServiceCatalog     = "SERVICE_CATALOG"
	EnvPhoneRegions       = "PHONE_REGIONS"
	EnvMaxAlternatives    = "MAX_ALTERNATIVES"
)
