package config

import "time"

// Application constants - all hardcoded values for the CTR Watch system
const (
	// Application Info
	AppName    = "CTR Watch"
	AppVersion = "0.3.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "data/reports"

	// Default campaign log file name
	DefaultSourceFileName = "sample_campaign_logs.csv"

	// HTTP Headers
	HeaderRequestID = "X-Request-ID"

	// Logging
	DefaultLogLevel    = "info"
	DefaultLogFilePath = "logs/app.log"
)

// RequiredColumns are the CSV columns the pipeline refuses to run without.
var RequiredColumns = []string{
	"partner_id", "campaign_id", "timestamp", "clicks", "impressions", "ad_slot",
}
