package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"dentabook/pkg/client"
	kafka_config "dentabook/pkg/kafka/config"
	"dentabook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	StoreBackend string

	ClinicTimezone     string
	ClinicLocation     *time.Location
	ClinicOpen         string
	ClinicClose        string
	ClinicLunchStart   string
	ClinicLunchEnd     string
	SlotMinutes        int
	MinAdvance         time.Duration
	MaxAdvanceDays     int
	CancellationNotice time.Duration
	WorkingDays        []time.Weekday
	Holidays           []string
	ServiceCatalog     string
	PhoneRegions       []string
	MaxAlternatives    int

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the configuration from the environment and exits the process if
// it is invalid.
func Load(serviceName string) *Config {
	log := logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	cfg, err := FromEnv()
	if err != nil {
		log.Fatal(err.Error())
	}
	cfg.Log = log
	cfg.Client = client.NewClient()

	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds and validates a Config without side effects. Log and Client
// are left nil.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		StoreBackend: strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),

		ClinicTimezone:     getEnvStr(EnvClinicTimezone, DefaultClinicTimezone),
		ClinicOpen:         getEnvStr(EnvClinicOpen, DefaultClinicOpen),
		ClinicClose:        getEnvStr(EnvClinicClose, DefaultClinicClose),
		ClinicLunchStart:   getEnvStr(EnvClinicLunchStart, DefaultClinicLunchStart),
		ClinicLunchEnd:     getEnvStr(EnvClinicLunchEnd, DefaultClinicLunchEnd),
		SlotMinutes:        getEnvNum(EnvSlotMinutes, DefaultSlotMinutes),
		MinAdvance:         getEnvDuration(EnvMinAdvance, DefaultMinAdvance),
		MaxAdvanceDays:     getEnvNum(EnvMaxAdvanceDays, DefaultMaxAdvanceDays),
		CancellationNotice: getEnvDuration(EnvCancellationNotice, DefaultCancellationNotice),
		Holidays:           splitList(getEnvStr(EnvHolidays, DefaultHolidays)),
		ServiceCatalog:     os.Getenv(EnvServiceCatalog),
		PhoneRegions:       splitList(getEnvStr(EnvPhoneRegions, DefaultPhoneRegions)),
		MaxAlternatives:    getEnvNum(EnvMaxAlternatives, DefaultMaxAlternatives),
	}

	var errs []string

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("ClinicTimezone %q is not a known time zone: %v", cfg.ClinicTimezone, err))
	}
	cfg.ClinicLocation = loc

	days, err := ParseWeekdays(getEnvStr(EnvWorkingDays, DefaultWorkingDays))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.WorkingDays = days

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.Kafka = kafkaCfg

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return cfg, nil
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	for _, f := range []struct{ name, value string }{
		{"ClinicOpen", cfg.ClinicOpen},
		{"ClinicClose", cfg.ClinicClose},
		{"ClinicLunchStart", cfg.ClinicLunchStart},
		{"ClinicLunchEnd", cfg.ClinicLunchEnd},
	} {
		if !timeRegex.MatchString(f.value) {
			errors = append(errors, fmt.Sprintf("%s must be in HH:MM format (00:00-23:59), got: %s", f.name, f.value))
		}
	}
	if cfg.ClinicOpen >= cfg.ClinicClose {
		errors = append(errors, fmt.Sprintf("ClinicOpen (%s) must be before ClinicClose (%s)", cfg.ClinicOpen, cfg.ClinicClose))
	}
	if cfg.ClinicLunchStart > cfg.ClinicLunchEnd {
		errors = append(errors, fmt.Sprintf("ClinicLunchStart (%s) must not be after ClinicLunchEnd (%s)", cfg.ClinicLunchStart, cfg.ClinicLunchEnd))
	}

	for _, day := range cfg.Holidays {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			errors = append(errors, fmt.Sprintf("Holiday must be in YYYY-MM-DD format, got: %s", day))
		}
	}

	switch cfg.StoreBackend {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [mongo, memory], got: %s", cfg.StoreBackend))
	}

	for _, f := range []struct {
		name  string
		value int64
	}{
		{"SlotMinutes", int64(cfg.SlotMinutes)},
		{"MaxAdvanceDays", int64(cfg.MaxAdvanceDays)},
		{"MaxAlternatives", int64(cfg.MaxAlternatives)},
		{"RateLimitRequests", int64(cfg.RateLimitRequests)},
		{"MaxRequestSize", int64(cfg.MaxRequestSize)},
		{"RateLimitWindow", int64(cfg.RateLimitWindow)},
		{"RequestTimeout", int64(cfg.RequestTimeout)},
		{"IdempotencyTTL", int64(cfg.IdempotencyTTL)},
		{"ReadTimeout", int64(cfg.ReadTimeout)},
		{"WriteTimeout", int64(cfg.WriteTimeout)},
		{"IdleTimeout", int64(cfg.IdleTimeout)},
		{"ShutdownTimeout", int64(cfg.ShutdownTimeout)},
	} {
		if f.value <= 0 {
			errors = append(errors, f.name+" must be positive")
		}
	}
	if cfg.MinAdvance < 0 {
		errors = append(errors, fmt.Sprintf("MinAdvance cannot be negative, got: %s", cfg.MinAdvance))
	}
	if cfg.CancellationNotice < 0 {
		errors = append(errors, fmt.Sprintf("CancellationNotice cannot be negative, got: %s", cfg.CancellationNotice))
	}
	if len(cfg.PhoneRegions) == 0 {
		errors = append(errors, "PhoneRegions cannot be empty")
	}

	if len(errors) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("invalid configuration:")
	for _, e := range errors {
		b.WriteString("\n  - ")
		b.WriteString(e)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"clinic_timezone", cfg.ClinicTimezone,
		"clinic_hours", cfg.ClinicOpen+"-"+cfg.ClinicClose,
		"clinic_lunch", cfg.ClinicLunchStart+"-"+cfg.ClinicLunchEnd,
		"slot_minutes", cfg.SlotMinutes,
		"min_advance", cfg.MinAdvance,
		"max_advance_days", cfg.MaxAdvanceDays,
		"cancellation_notice", cfg.CancellationNotice,
		"working_days", cfg.WorkingDays,
		"holidays", cfg.Holidays,
		"custom_catalog", cfg.ServiceCatalog != "",
		"phone_regions", cfg.PhoneRegions,
		"max_alternatives", cfg.MaxAlternatives,
	)
	cfg.Kafka.LogConfiguration(cfg.Log.Info)
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays reads a comma separated list of day names. Only the first
// three letters are significant, so "sunday" and "Sun" are equivalent.
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, name := range splitList(raw) {
		key := strings.ToLower(name)
		if len(key) > 3 {
			key = key[:3]
		}
		day, ok := weekdays[key]
		if !ok {
			return nil, fmt.Errorf("unknown working day %q", name)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one working day is required")
	}
	return days, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}
