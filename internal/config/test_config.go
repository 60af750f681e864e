package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "dooh_test",
			User:     "test_user",
			Password: "test_password",
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Session: SessionConfig{
			TTL: time.Hour,
		},
		Storage: StorageConfig{
			Provider:  "local",
			BasePath:  "./storage",
			PublicURL: "http://localhost:8081/uploads",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Profile: ProfileConfig{
			RoleSync: "always",
		},
		Booking: BookingConfig{
			RateWindow: time.Minute,
			RateMax:    30,
		},
		Analytics: AnalyticsConfig{
			CacheTTL:    time.Minute,
			RefreshCron: "*/15 * * * *",
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}
