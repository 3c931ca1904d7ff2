package domain

import (
	"strconv"
	"time"
)

// DefaultPort is the MCP HTTP port when nothing else is configured.
const DefaultPort = 3000

// AppSettings is the resolved application configuration.
type AppSettings struct {
	// Port is the MCP HTTP listen port.
	Port int

	ClinicalTrials ClinicalTrialsSettings
	OpenAI         OpenAISettings
	Client         ClientSettings
}

// ClinicalTrialsSettings configures the registry client.
type ClinicalTrialsSettings struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAISettings configures the chat model used by the chat command.
type OpenAISettings struct {
	BaseURL string
	Model   string

	// APIKey is read from OPENAI_API_KEY before the config file.
	APIKey string
}

// ClientSettings configures the MCP client driver.
type ClientSettings struct {
	// Endpoint is the MCP URL. Empty means http://localhost:<Port>/mcp.
	Endpoint string
}

// DefaultAppSettings returns the built-in defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Port: DefaultPort,
		ClinicalTrials: ClinicalTrialsSettings{
			BaseURL:    "https://clinicaltrials.gov/api/v2",
			Timeout:    30 * time.Second,
			MaxRetries: 1,
		},
		OpenAI: OpenAISettings{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
	}
}

// MCPEndpoint returns the endpoint the client driver should dial.
func (s AppSettings) MCPEndpoint() string {
	if s.Client.Endpoint != "" {
		return s.Client.Endpoint
	}
	return LocalEndpoint(s.Port)
}

// LocalEndpoint is the MCP URL of a server on this host.
func LocalEndpoint(port int) string {
	return "http://localhost:" + strconv.Itoa(port) + "/mcp"
}
