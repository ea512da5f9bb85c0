package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvUseMock         = "LEXBRIEF_USE_MOCK"
)

// settingKey binds a dotted config key to a field of domain.AppSettings.
type settingKey struct {
	name   string
	secret bool
	load   func(cs driven.ConfigStore, out *domain.AppSettings)
	value  func(in *domain.AppSettings) any
	parse  func(raw string, out *domain.AppSettings) error
}

// settingKeys lists every settable key in display order.
var settingKeys = []settingKey{
	intSetting("chunking.size", func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
	intSetting("chunking.overlap", func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),

	providerSetting("embedding.provider", func(s *domain.AppSettings) *domain.AIProvider { return &s.Embedding.Provider }),
	stringSetting("embedding.model", func(s *domain.AppSettings) *string { return &s.Embedding.Model }),
	stringSetting("embedding.base_url", func(s *domain.AppSettings) *string { return &s.Embedding.BaseURL }),
	secretSetting("embedding.api_key", func(s *domain.AppSettings) *string { return &s.Embedding.APIKey }),
	intSetting("embedding.dimensions", func(s *domain.AppSettings) *int { return &s.Embedding.Dimensions }),
	intSetting("embedding.batch_size", func(s *domain.AppSettings) *int { return &s.Embedding.BatchSize }),
	floatSetting("embedding.requests_per_second",
		func(s *domain.AppSettings) *float64 { return &s.Embedding.RequestsPerSecond }),

	providerSetting("llm.provider", func(s *domain.AppSettings) *domain.AIProvider { return &s.LLM.Provider }),
	stringSetting("llm.model", func(s *domain.AppSettings) *string { return &s.LLM.Model }),
	stringSetting("llm.base_url", func(s *domain.AppSettings) *string { return &s.LLM.BaseURL }),
	secretSetting("llm.api_key", func(s *domain.AppSettings) *string { return &s.LLM.APIKey }),
	floatSetting("llm.temperature", func(s *domain.AppSettings) *float64 { return &s.LLM.Temperature }),

	intSetting("retrieval.top_k", func(s *domain.AppSettings) *int { return &s.Retrieval.TopK }),
	intSetting("retrieval.max_passage_chars", func(s *domain.AppSettings) *int { return &s.Retrieval.MaxPassageChars }),

	stringSetting("server.address", func(s *domain.AppSettings) *string { return &s.Server.Address }),
	floatSetting("server.requests_per_second", func(s *domain.AppSettings) *float64 { return &s.Server.RequestsPerSecond }),
	intSetting("server.burst", func(s *domain.AppSettings) *int { return &s.Server.Burst }),
	int64Setting("server.max_upload_bytes", func(s *domain.AppSettings) *int64 { return &s.Server.MaxUploadBytes }),

	backendSetting("storage.backend", func(s *domain.AppSettings) *domain.StorageBackend { return &s.Storage.Backend }),
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	fillDefaultModels(settings)
	return settings, nil
}

// Save persists application settings.
// Empty API keys are not written so a key supplied by the environment is never cleared.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("save settings: %w: nil settings", domain.ErrInvalidInput)
	}
	for _, k := range settingKeys {
		v := k.value(settings)
		if k.secret && v == "" {
			continue
		}
		if err := s.configStore.Set(k.name, v); err != nil {
			return fmt.Errorf("save %s: %w", k.name, err)
		}
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set updates a single setting. The stored settings must remain valid.
func (s *SettingsService) Set(key, value string) error {
	k, ok := lookupSettingKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)",
			domain.ErrInvalidConfiguration, key, strings.Join(s.Keys(), ", "))
	}

	settings := s.stored()
	if err := k.parse(strings.TrimSpace(value), settings); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.name
	}
	return keys
}

// IsSecret reports whether a key holds a credential that should be masked on display.
func (s *SettingsService) IsSecret(key string) bool {
	k, ok := lookupSettingKey(key)
	return ok && k.secret
}

// Value returns a setting of the effective configuration, formatted for display.
func (s *SettingsService) Value(settings *domain.AppSettings, key string) (string, bool) {
	k, ok := lookupSettingKey(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(k.value(settings)), true
}

// Validate checks the effective settings can build the service graph.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is unsupported or lacks an API key",
			domain.ErrInvalidConfiguration, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %s requires an API key",
			domain.ErrInvalidConfiguration, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// stored returns the defaults overlaid with the config store, without the environment.
func (s *SettingsService) stored() *domain.AppSettings {
	settings := domain.DefaultAppSettings()
	for _, k := range settingKeys {
		k.load(s.configStore, &settings)
	}
	return &settings
}

// applyEnv overlays environment overrides. Provider API keys fill keys left
// empty in the file. Any value of LEXBRIEF_USE_MOCK other than "false" forces
// the offline providers.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}

	if v, ok := s.lookupEnv(EnvUseMock); ok && !strings.EqualFold(strings.TrimSpace(v), "false") {
		if settings.Embedding.Provider != domain.AIProviderMock {
			settings.Embedding.Provider = domain.AIProviderMock
			settings.Embedding.Model = ""
		}
		settings.LLM.Provider = domain.AIProviderMock
		settings.LLM.Model = ""
	}
}

// envKey returns the API key the environment holds for provider.
func (s *SettingsService) envKey(provider domain.AIProvider) string {
	var name string
	switch provider {
	case domain.AIProviderOpenAI:
		name = EnvOpenAIAPIKey
	case domain.AIProviderAnthropic:
		name = EnvAnthropicAPIKey
	default:
		return ""
	}
	key, _ := s.lookupEnv(name)
	return key
}

// fillDefaultModels sets the provider's default model where none is configured.
func fillDefaultModels(settings *domain.AppSettings) {
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
}

func lookupSettingKey(name string) (settingKey, bool) {
	for _, k := range settingKeys {
		if k.name == name {
			return k, true
		}
	}
	return settingKey{}, false
}

// Helper constructors for the key table.

func newSetting[T any](
	name string,
	field func(*domain.AppSettings) *T,
	read func(cs driven.ConfigStore, key string) (T, bool),
	parse func(raw string) (T, error),
	encode func(T) any,
) settingKey {
	return settingKey{
		name: name,
		load: func(cs driven.ConfigStore, out *domain.AppSettings) {
			if v, ok := read(cs, name); ok {
				*field(out) = v
			}
		},
		value: func(in *domain.AppSettings) any {
			return encode(*field(in))
		},
		parse: func(raw string, out *domain.AppSettings) error {
			v, err := parse(raw)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfiguration, name, err)
			}
			*field(out) = v
			return nil
		},
	}
}

func stringSetting(name string, field func(*domain.AppSettings) *string) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (string, bool) {
			v := cs.GetString(key)
			return v, v != ""
		},
		func(raw string) (string, error) { return raw, nil },
		func(v string) any { return v },
	)
}

func secretSetting(name string, field func(*domain.AppSettings) *string) settingKey {
	k := stringSetting(name, field)
	k.secret = true
	return k
}

func intSetting(name string, field func(*domain.AppSettings) *int) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (int, bool) {
			if _, ok := cs.Get(key); !ok {
				return 0, false
			}
			return cs.GetInt(key), true
		},
		strconv.Atoi,
		func(v int) any { return v },
	)
}

func int64Setting(name string, field func(*domain.AppSettings) *int64) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (int64, bool) {
			if _, ok := cs.Get(key); !ok {
				return 0, false
			}
			return int64(cs.GetInt(key)), true
		},
		func(raw string) (int64, error) { return strconv.ParseInt(raw, 10, 64) },
		func(v int64) any { return v },
	)
}

func floatSetting(name string, field func(*domain.AppSettings) *float64) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (float64, bool) {
			if _, ok := cs.Get(key); !ok {
				return 0, false
			}
			return cs.GetFloat(key), true
		},
		func(raw string) (float64, error) { return strconv.ParseFloat(raw, 64) },
		func(v float64) any { return v },
	)
}

func providerSetting(name string, field func(*domain.AppSettings) *domain.AIProvider) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (domain.AIProvider, bool) {
			p := domain.AIProvider(cs.GetString(key))
			return p, p.IsValid()
		},
		func(raw string) (domain.AIProvider, error) {
			p := domain.AIProvider(strings.ToLower(raw))
			if !p.IsValid() {
				return "", fmt.Errorf("unknown provider %q", raw)
			}
			return p, nil
		},
		func(v domain.AIProvider) any { return v.String() },
	)
}

func backendSetting(name string, field func(*domain.AppSettings) *domain.StorageBackend) settingKey {
	return newSetting(name, field,
		func(cs driven.ConfigStore, key string) (domain.StorageBackend, bool) {
			b := domain.StorageBackend(cs.GetString(key))
			return b, b.IsValid()
		},
		func(raw string) (domain.StorageBackend, error) {
			b := domain.StorageBackend(strings.ToLower(raw))
			if !b.IsValid() {
				return "", fmt.Errorf("unknown storage backend %q", raw)
			}
			return b, nil
		},
		func(v domain.StorageBackend) any { return string(v) },
	)
}
