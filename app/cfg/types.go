package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ingestion configuration
	FeedsFile     string
	BatchSize     int
	ForceRefresh  bool
	DeleteMissing bool
	OnlyDaily     bool
	ActiveOnly    bool
	ActiveDays    int
	WorkerCount   int

	// HTTP client configuration
	FetchTimeout int
	FetchRPS     float64
	UserAgent    string

	// Application metadata
	Debug   bool
	Version string
}
