package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Server.ShutdownTimeout != 30*time.Second {
					t.Errorf("Server.ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
				}
				if cfg.Blobstore.Provider != "" {
					t.Errorf("Blobstore.Provider = %q, want empty (disabled)", cfg.Blobstore.Provider)
				}
				if cfg.Blobstore.Namespace != "videos" {
					t.Errorf("Blobstore.Namespace = %q, want videos", cfg.Blobstore.Namespace)
				}
				if cfg.Auth.AdminToken != "" {
					t.Errorf("Auth.AdminToken = %q, want empty (fail closed)", cfg.Auth.AdminToken)
				}
				if cfg.Redis.Addr != "localhost:6379" {
					t.Errorf("Redis.Addr = %s, want localhost:6379", cfg.Redis.Addr)
				}
				if cfg.Database.Port != 5432 {
					t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
				}
				if cfg.RabbitMQ.Enabled {
					t.Error("RabbitMQ.Enabled = true, want false")
				}
				if cfg.RabbitMQ.Exchange != "videocatalog.events" {
					t.Errorf("RabbitMQ.Exchange = %s, want videocatalog.events", cfg.RabbitMQ.Exchange)
				}
				if cfg.Logging.Level != "info" {
					t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				os.Setenv("APP_SERVER_PORT", "9090")
				os.Setenv("APP_BLOBSTORE_PROVIDER", "memory")
				os.Setenv("APP_AUTH_ADMINTOKEN", "hunter2")
				// Manually bind env vars since AutomaticEnv doesn't work with nested keys
				viper.BindEnv("server.port", "APP_SERVER_PORT")
				viper.BindEnv("blobstore.provider", "APP_BLOBSTORE_PROVIDER")
				viper.BindEnv("auth.admintoken", "APP_AUTH_ADMINTOKEN")
			},
			cleanup: func() {
				os.Unsetenv("APP_SERVER_PORT")
				os.Unsetenv("APP_BLOBSTORE_PROVIDER")
				os.Unsetenv("APP_AUTH_ADMINTOKEN")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Blobstore.Provider != "memory" {
					t.Errorf("Blobstore.Provider = %s, want memory", cfg.Blobstore.Provider)
				}
				if cfg.Auth.AdminToken != "hunter2" {
					t.Errorf("Auth.AdminToken = %s, want hunter2", cfg.Auth.AdminToken)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
