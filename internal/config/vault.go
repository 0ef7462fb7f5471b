package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"applykit/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 paths. Empty paths are skipped.
type VaultSecrets struct {
	// APIKeys holds comma separated server API keys in its "keys" field.
	APIKeys string `mapstructure:"apiKeys"`
	// GeminiKey holds the Gemini key in its "api_key" field.
	GeminiKey string `mapstructure:"geminiKey"`
}

// secretBinding copies one field of a KVv2 secret into the configuration.
type secretBinding struct {
	name  string
	path  string
	field string
	apply func(*Config, string)
}

func (c *Config) secretBindings() []secretBinding {
	return []secretBinding{
		{
			name:  "server API keys",
			path:  c.Vault.Secrets.APIKeys,
			field: "keys",
			apply: func(c *Config, v string) { c.Server.APIKeys = splitList(v) },
		},
		{
			name:  "Gemini API key",
			path:  c.Vault.Secrets.GeminiKey,
			field: "api_key",
			apply: applyAIKey,
		},
	}
}

// applyAIKey sets the global AI key and fills operations without their own.
func applyAIKey(c *Config, key string) {
	c.AI.APIKey = key
	for _, op := range []*OperationAIConfig{&c.AI.Generate, &c.AI.Parse, &c.AI.Extract} {
		if op.APIKey == "" {
			op.APIKey = key
		}
	}
}

// ApplyVaultSecrets overwrites configured secrets with the values stored in
// Vault. It does nothing when Vault is disabled.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	for _, b := range cfg.secretBindings() {
		if b.path == "" {
			continue
		}
		value, err := client.StringField(b.path, b.field)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", b.name, err)
		}
		if strings.TrimSpace(value) == "" {
			if logger != nil {
				logger.Warn("Empty secret in Vault, keeping configured value", "secret", b.name, "path", b.path)
			}
			continue
		}
		b.apply(cfg, value)
		if logger != nil {
			logger.Info("Secret loaded from Vault", "secret", b.name, "path", b.path)
		}
	}
	return nil
}

// VaultClient reads KVv2 secrets.
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks its health.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := vaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiCfg.Address, err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", apiCfg.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}
	return &VaultClient{client: client, logger: logger}, nil
}

// vaultToken prefers the inline token over the token file.
func vaultToken(cfg VaultConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if cfg.TokenFile == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read vault token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("vault token file %s is empty", cfg.TokenFile)
	}
	return token, nil
}

// KVSecret is the payload and version of a KVv2 secret.
type KVSecret struct {
	Data    map[string]any
	Version int64
}

// ReadKV reads a KVv2 secret.
func (vc *VaultClient) ReadKV(path string) (*KVSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	return decodeKV(secret, path)
}

// StringField returns one string field of a KVv2 secret.
func (vc *VaultClient) StringField(path, field string) (string, error) {
	kv, err := vc.ReadKV(path)
	if err != nil {
		return "", err
	}
	raw, ok := kv.Data[field]
	if !ok {
		return "", fmt.Errorf("field '%s' not found in secret %s", field, path)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field '%s' in secret %s is %T, not a string", field, path, raw)
	}
	if vc.logger != nil {
		vc.logger.Debug("Secret field read", "path", path, "field", field, "version", kv.Version, "value", MaskSecret(value))
	}
	return value, nil
}

func decodeKV(secret *api.Secret, path string) (*KVSecret, error) {
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := secretVersion(metadata["version"])
	if err != nil {
		return nil, fmt.Errorf("secret at %s: %w", path, err)
	}
	return &KVSecret{Data: data, Version: version}, nil
}

// secretVersion accepts the number shapes Vault's JSON decoding produces.
func secretVersion(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid version %q: %w", v, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("missing version")
	default:
		return 0, fmt.Errorf("unexpected version type %T", raw)
	}
}

// MaskSecret keeps the first and last four characters of long secrets.
func MaskSecret(s string) string {
	switch {
	case len(s) > 8:
		return s[:4] + "****" + s[len(s)-4:]
	case s != "":
		return "****"
	default:
		return ""
	}
}
