package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "dentabook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	StoreMongo          = "mongo"
	StoreMemory         = "memory"
	DefaultStoreBackend = StoreMongo

	DefaultClinicTimezone     = "Asia/Amman"
	DefaultClinicOpen         = "09:00"
	DefaultClinicClose        = "18:00"
	DefaultClinicLunchStart   = "12:00"
	DefaultClinicLunchEnd     = "13:00"
	DefaultSlotMinutes        = 30
	DefaultMinAdvance         = 2 * time.Hour
	DefaultMaxAdvanceDays     = 90
	DefaultCancellationNotice = 24 * time.Hour
	DefaultWorkingDays        = "sun,mon,tue,wed,thu"
	DefaultHolidays           = "2026-01-01,2026-07-20"
	DefaultPhoneRegions       = "JO"
	DefaultMaxAlternatives    = 5
)
