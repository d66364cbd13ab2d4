package config

// NotifxConfig configures budget notifications to the game master.
type NotifxConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string

	// GMAddress receives budget warnings; notifications are skipped
	// entirely when it is empty.
	GMAddress string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", "noreply@fateweaver.app"),
		FromName:    getEnv("NOTIFX_FROM_NAME", "Fateweaver"),
		AWSRegion:   getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		GMAddress:   getEnv("NOTIFX_GM_ADDRESS", ""),
	}
}
