package constants

import "github.com/lucasb-eyer/go-colorful"

// FilterMode selects which trackers a list view shows for a day
type FilterMode string

const (
	AppName           = "tracker"
	DefaultConfigPath = "~/.config/tracker/tracker.db"
	Version           = "v0.1.0"

	// DateFormat is the day-key format used for completion records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is a fixed-width UTC timestamp so stored values sort lexically
	TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

	// PinnedSectionTitle is the header of the synthetic section holding pinned trackers
	PinnedSectionTitle = "Pinned"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tracker-"
	BackupFileSuffix = ".db"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "tracker.log"

	// SQLite busy timeout in milliseconds
	BusyTimeoutMs = 5000

	// Filter modes
	FilterAll         FilterMode = "all"
	FilterToday       FilterMode = "today"
	FilterCompleted   FilterMode = "completed"
	FilterUncompleted FilterMode = "uncompleted"
)

// FallbackColor is returned when a stored color cannot be decoded
var FallbackColor = colorful.Color{R: 174.0 / 255.0, G: 175.0 / 255.0, B: 180.0 / 255.0}
