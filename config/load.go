package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4.1-mini"
	defaultMaxTokens      = 1024
	defaultTemperature    = 0.0
	defaultCalComBaseURL  = "https://api.cal.com/v2"
	defaultCalComUsername = "chadn"
	defaultEventTypeID    = 2520314
	defaultTimezone       = "America/Los_Angeles"
	defaultLanguage       = "en"
	defaultMaxToolTurns   = 3
	defaultLogLevel       = "info"

	// Cal.com pins API behavior per endpoint with a version header.
	apiVersionSlots    = "2024-09-04"
	apiVersionBookings = "2024-08-13"
)

// Models that support function calling. Models outside this set (for
// example chatgpt-4o-latest) cannot drive the tool loop.
var openAIModelsAvailable = []string{"gpt-4.1-mini", "gpt-4.1-nano", "gpt-4.1", "o4-mini", "o3"}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func must(ok bool, msg string) {
	if msg == "" {
		panic("assertion message must not be empty")
	}
	if !ok {
		panic(msg)
	}
}

// Load reads configuration from the environment. When envFile is non-empty
// it is loaded first without overriding variables already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %q: %v", envFile, err)
		}
	}
	c := fromEnv()
	applyDefaults(c)
	if err := validate(*c); err != nil {
		return nil, err
	}
	must(c.OpenAI.Model != "", "openai model missing after load")
	must(c.CalCom.Timezone != "", "timezone missing after load")
	return c, nil
}

func fromEnv() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
			Model:       os.Getenv("OPENAI_MODEL_NAME"),
			MaxTokens:   envInt("OPENAI_MAX_TOKENS", 0),
			Temperature: envFloat("OPENAI_TEMPERATURE", -1),
		},
		CalCom: CalComConfig{
			APIKey:      os.Getenv("CALCOM_API_KEY"),
			BaseURL:     os.Getenv("CALCOM_BASE_URL"),
			Username:    os.Getenv("CALCOM_USERNAME"),
			EventTypeID: envInt("CALCOM_BOOKING_EVENT_TYPE_ID", 0),
			Timezone:    os.Getenv("DEFAULT_TIMEZONE"),
			Language:    os.Getenv("CALCOM_LANGUAGE"),
		},
		Agent: AgentConfig{
			MaxToolTurns: envInt("MAX_TOOL_TURNS", 0),
		},
		Log: LogConfig{
			Level:  strings.ToLower(os.Getenv("LOG_LEVEL")),
			Pretty: strings.EqualFold(os.Getenv("DEBUG_MODE"), "true"),
		},
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func applyDefaults(c *Config) {
	must(c != nil, "config pointer must not be nil")

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = defaultMaxTokens
	}
	if c.OpenAI.Temperature < 0 {
		c.OpenAI.Temperature = defaultTemperature
	}

	if c.CalCom.BaseURL == "" {
		c.CalCom.BaseURL = defaultCalComBaseURL
	}
	if c.CalCom.Username == "" {
		c.CalCom.Username = defaultCalComUsername
	}
	if c.CalCom.EventTypeID == 0 {
		c.CalCom.EventTypeID = defaultEventTypeID
	}
	if c.CalCom.Timezone == "" {
		c.CalCom.Timezone = defaultTimezone
	}
	if c.CalCom.Language == "" {
		c.CalCom.Language = defaultLanguage
	}
	c.CalCom.APIVersionSlots = apiVersionSlots
	c.CalCom.APIVersionBookings = apiVersionBookings

	if c.Agent.MaxToolTurns <= 0 {
		c.Agent.MaxToolTurns = defaultMaxToolTurns
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	must(c.Agent.MaxToolTurns > 0, "max tool turns defaulting failed")
	must(c.CalCom.APIVersionSlots != "", "slots api version defaulting failed")
}

func validate(c Config) error {
	if !modelAvailable(c.OpenAI.Model) {
		return fmt.Errorf("OPENAI_MODEL_NAME must be one of %s, got %q",
			strings.Join(openAIModelsAvailable, ", "), c.OpenAI.Model)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be greater than zero")
	}
	if !usernamePattern.MatchString(c.CalCom.Username) {
		return fmt.Errorf("CALCOM_USERNAME must contain only letters, numbers, periods, underscores, and hyphens, got %q", c.CalCom.Username)
	}
	if _, err := time.LoadLocation(c.CalCom.Timezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE must be a valid IANA timezone, got %q", c.CalCom.Timezone)
	}
	if c.CalCom.EventTypeID <= 0 {
		return fmt.Errorf("CALCOM_BOOKING_EVENT_TYPE_ID must be greater than zero")
	}
	return nil
}

func modelAvailable(name string) bool {
	for _, m := range openAIModelsAvailable {
		if m == name {
			return true
		}
	}
	return false
}
