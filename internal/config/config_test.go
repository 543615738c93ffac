package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var allKeys = []string{
	"CAMOFOX_PORT", "NITTER_INSTANCE", "STATE_PATH", "LOG_LEVEL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "NO_UPDATE_CHECK",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "empty environment applies defaults",
			env:  map[string]string{},
			want: &Config{
				CamofoxPort:    9377,
				NitterInstance: "nitter.net",
				StatePath:      "data/state.json",
				LogLevel:       "info",
			},
		},
		{
			name: "all values set",
			env: map[string]string{
				"CAMOFOX_PORT":       "9000",
				"NITTER_INSTANCE":    "nitter.example.org",
				"STATE_PATH":         "/var/lib/x-monitor/state.db",
				"LOG_LEVEL":          "debug",
				"TELEGRAM_BOT_TOKEN": "tok",
				"TELEGRAM_CHAT_ID":   "-100123",
				"NO_UPDATE_CHECK":    "1",
			},
			want: &Config{
				CamofoxPort:      9000,
				NitterInstance:   "nitter.example.org",
				StatePath:        "/var/lib/x-monitor/state.db",
				LogLevel:         "debug",
				TelegramBotToken: "tok",
				TelegramChatID:   -100123,
				NoUpdateCheck:    true,
			},
		},
		{
			name:    "port is not a number",
			env:     map[string]string{"CAMOFOX_PORT": "not-a-port"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			env:     map[string]string{"CAMOFOX_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid chat id",
			env:     map[string]string{"TELEGRAM_CHAT_ID": "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear relevant env vars
			for _, key := range allKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNotificationsEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "both set", cfg: Config{TelegramBotToken: "tok", TelegramChatID: 1}, want: true},
		{name: "token only", cfg: Config{TelegramBotToken: "tok"}, want: false},
		{name: "chat only", cfg: Config{TelegramChatID: 1}, want: false},
		{name: "neither", cfg: Config{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.NotificationsEnabled(); got != tt.want {
				t.Errorf("NotificationsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
