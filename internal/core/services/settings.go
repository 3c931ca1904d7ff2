package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyPort              = "port"
	KeyTrialsBaseURL     = "clinicaltrials.base_url"
	KeyTrialsTimeout     = "clinicaltrials.timeout_seconds"
	KeyTrialsMaxRetries  = "clinicaltrials.max_retries"
	KeyOpenAIBaseURL     = "openai.base_url"
	KeyOpenAIModel       = "openai.model"
	KeyOpenAIAPIKey      = "openai.api_key"
	KeyClientEndpoint    = "client.endpoint"
	envOpenAIAPIKey      = "OPENAI_API_KEY"
	maxPort              = 65535
	maxConfiguredRetries = 5
)

// SettingKeys lists the keys accepted by SettingsService.Set.
func SettingKeys() []string {
	return []string{
		KeyPort,
		KeyTrialsBaseURL,
		KeyTrialsTimeout,
		KeyTrialsMaxRetries,
		KeyOpenAIBaseURL,
		KeyOpenAIModel,
		KeyOpenAIAPIKey,
		KeyClientEndpoint,
	}
}

// SettingsService resolves application settings from the config store,
// the environment and built-in defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. A nil store yields defaults.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get returns the resolved settings. Out-of-range stored values fall back
// to the defaults.
func (s *SettingsService) Get() domain.AppSettings {
	d := domain.DefaultAppSettings()

	settings := domain.AppSettings{
		Port: s.getRangedInt(KeyPort, d.Port, 1, maxPort),
		ClinicalTrials: domain.ClinicalTrialsSettings{
			BaseURL:    s.getString(KeyTrialsBaseURL, d.ClinicalTrials.BaseURL),
			Timeout:    s.getSeconds(KeyTrialsTimeout, d.ClinicalTrials.Timeout),
			MaxRetries: s.getRangedInt(KeyTrialsMaxRetries, d.ClinicalTrials.MaxRetries, 0, maxConfiguredRetries),
		},
		OpenAI: domain.OpenAISettings{
			BaseURL: s.getString(KeyOpenAIBaseURL, d.OpenAI.BaseURL),
			Model:   s.getString(KeyOpenAIModel, d.OpenAI.Model),
			APIKey:  s.getenv(envOpenAIAPIKey),
		},
		Client: domain.ClientSettings{
			Endpoint: s.getString(KeyClientEndpoint, ""),
		},
	}
	if settings.OpenAI.APIKey == "" {
		settings.OpenAI.APIKey = s.getString(KeyOpenAIAPIKey, "")
	}
	return settings
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("settings: no config store")
	}
	if !slices.Contains(SettingKeys(), key) {
		return &domain.ValidationError{Field: key, Message: "unknown setting"}
	}

	switch key {
	case KeyPort, KeyTrialsTimeout, KeyTrialsMaxRetries:
		n, err := strconv.Atoi(value)
		if err != nil {
			return &domain.ValidationError{Field: key, Message: "must be an integer"}
		}
		if err := checkRange(key, n); err != nil {
			return err
		}
		return s.configStore.Set(key, n)
	default:
		return s.configStore.Set(key, value)
	}
}

func checkRange(key string, n int) error {
	switch key {
	case KeyPort:
		if n < 1 || n > maxPort {
			return &domain.ValidationError{Field: key, Message: "must be between 1 and 65535"}
		}
	case KeyTrialsTimeout:
		if n < 1 {
			return &domain.ValidationError{Field: key, Message: "must be positive"}
		}
	case KeyTrialsMaxRetries:
		if n < 0 || n > maxConfiguredRetries {
			return &domain.ValidationError{Field: key, Message: "must be between 0 and 5"}
		}
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if s.configStore == nil {
		return fallback
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getRangedInt(key string, fallback, lo, hi int) int {
	if s.configStore == nil {
		return fallback
	}
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	v := s.configStore.GetInt(key)
	if v < lo || v > hi {
		return fallback
	}
	return v
}

func (s *SettingsService) getSeconds(key string, fallback time.Duration) time.Duration {
	secs := s.getRangedInt(key, 0, 1, int(time.Hour/time.Second))
	if secs == 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
