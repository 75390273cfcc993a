// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Application credentials and channels. These keep the names the bot
	// has always used, so existing TradingView alert setups keep working.
	EnvGUIKey     = "GUI_KEY"
	EnvWebhookKey = "WEBHOOK_KEY"
	EnvNtfyTopic  = "NTFY_TOPIC"

	// Host Configuration suffixes, expanded with the TVWB_ prefix by envutil.
	HostSuffixHome       = "HOME"
	HostSuffixConfigPath = "CONFIG_PATH"
	HostSuffixPort       = "PORT"
	HostSuffixHost       = "HOST"
	HostSuffixLogLevel   = "LOG_LEVEL"

	// Journal backend credentials (local DynamoDB/S3-compatible endpoints)
	EnvJournalAccessKey = "TVWB_JOURNAL_ACCESS_KEY"
	EnvJournalSecretKey = "TVWB_JOURNAL_SECRET_KEY"
)
