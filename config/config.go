package config

// Config is the complete runtime configuration, loaded from the environment
// with optional .env file support.
type Config struct {
	OpenAI OpenAIConfig
	CalCom CalComConfig
	Agent  AgentConfig
	Log    LogConfig
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type CalComConfig struct {
	APIKey             string
	BaseURL            string
	Username           string
	EventTypeID        int
	Timezone           string
	Language           string
	APIVersionSlots    string
	APIVersionBookings string
}

type AgentConfig struct {
	MaxToolTurns int
}

type LogConfig struct {
	Level  string
	Pretty bool
}
