package config

import "time"

// AccessConfig configures the optional table-token gate. When Enabled is
// false every route is open, which is the expected mode for local play.
type AccessConfig struct {
	Enabled bool

	// TokenSecret signs table tokens (HS256).
	TokenSecret string

	// TokenTTL is the lifetime of a minted table token.
	TokenTTL time.Duration

	// GMKeyHash is the bcrypt hash of the game master key. Generate it
	// with the hash-key subcommand.
	GMKeyHash string
}

func loadAccessConfig() AccessConfig {
	return AccessConfig{
		Enabled:     getEnvBool("ACCESS_ENABLED", false),
		TokenSecret: getEnv("TABLE_TOKEN_SECRET", ""),
		TokenTTL:    getEnvDuration("TABLE_TOKEN_TTL", 12*time.Hour),
		GMKeyHash:   getEnv("GM_KEY_HASH", ""),
	}
}
