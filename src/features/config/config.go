package config

// Config holds the application configuration.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Logger   Logger   `yaml:"logger"`
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Import   Import   `yaml:"import"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server holds the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	BotHandle    string   `yaml:"bot_handle"`
}

// Import holds the configuration for CSV ingestion.
type Import struct {
	Path             string `yaml:"path" validate:"required"` // directory containing songs.csv, shows.csv, setlists.csv
	AutoStartWatcher bool   `yaml:"auto_start_watcher"`
	RecomputeStats   bool   `yaml:"recompute_stats"` // run the stats passes after each ingest
}
