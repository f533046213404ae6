package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogConfig          string // path to zapfilter rules file
	MigrationSourceURL string // location of migration files
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry ("stdout" for local runs)
	ProfilingPort      int    // port for profiling
	FCMCredentialsFile string // path to the FCM service account file
	NatsURL            string // if set, dispatch summaries are published here
	DryRun             bool   // scan/diff only, nothing is sent or written
	SessionCron        string // cron spec for the session check
	StandingsCron      string // cron spec for the standings check
	HygieneCron        string // cron spec for the token hygiene job
	JobTimeout         string // per-invocation timeout budget
)
