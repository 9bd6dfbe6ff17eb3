package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL_NAME", "OPENAI_MAX_TOKENS",
		"OPENAI_TEMPERATURE", "CALCOM_API_KEY", "CALCOM_BASE_URL", "CALCOM_USERNAME",
		"CALCOM_BOOKING_EVENT_TYPE_ID", "DEFAULT_TIMEZONE", "CALCOM_LANGUAGE",
		"MAX_TOOL_TURNS", "LOG_LEVEL", "DEBUG_MODE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.Model != defaultOpenAIModel {
		t.Fatalf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != defaultMaxTokens {
		t.Fatalf("max tokens = %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.CalCom.BaseURL != defaultCalComBaseURL {
		t.Fatalf("calcom base url = %q", cfg.CalCom.BaseURL)
	}
	if cfg.CalCom.Timezone != defaultTimezone {
		t.Fatalf("timezone = %q", cfg.CalCom.Timezone)
	}
	if cfg.Agent.MaxToolTurns != defaultMaxToolTurns {
		t.Fatalf("max tool turns = %d", cfg.Agent.MaxToolTurns)
	}
	if cfg.CalCom.APIVersionSlots != apiVersionSlots {
		t.Fatalf("slots api version = %q", cfg.CalCom.APIVersionSlots)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL_NAME", "o4-mini")
	t.Setenv("OPENAI_MAX_TOKENS", "2048")
	t.Setenv("OPENAI_TEMPERATURE", "0.5")
	t.Setenv("CALCOM_USERNAME", "jane.doe")
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("MAX_TOOL_TURNS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.Model != "o4-mini" {
		t.Fatalf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 2048 {
		t.Fatalf("max tokens = %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature != 0.5 {
		t.Fatalf("temperature = %v", cfg.OpenAI.Temperature)
	}
	if cfg.CalCom.Username != "jane.doe" {
		t.Fatalf("username = %q", cfg.CalCom.Username)
	}
	if cfg.CalCom.Timezone != "Europe/Berlin" {
		t.Fatalf("timezone = %q", cfg.CalCom.Timezone)
	}
	if cfg.Agent.MaxToolTurns != 5 {
		t.Fatalf("max tool turns = %d", cfg.Agent.MaxToolTurns)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "OPENAI_MODEL_NAME=gpt-4.1\nCALCOM_USERNAME=envfile-user\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4.1" {
		t.Fatalf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.CalCom.Username != "envfile-user" {
		t.Fatalf("username = %q", cfg.CalCom.Username)
	}
}

func TestLoadRejectsUnknownModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL_NAME", "chatgpt-4o-latest")
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for model without function calling")
	}
	if !strings.Contains(err.Error(), "OPENAI_MODEL_NAME") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadUsername(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALCOM_USERNAME", "bad user!")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid username")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
