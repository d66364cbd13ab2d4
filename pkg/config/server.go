package config

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        string
	AppName     string
	Version     string
	CORSOrigins string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnv("PORT", "8080"),
		AppName:     getEnv("APP_NAME", "Fateweaver"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}
