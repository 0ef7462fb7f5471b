package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"applykit/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	return errors.NewLogger(slog.LevelDebug)
}

func TestSecretVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(7), expected: 7},
		{name: "float64 value", input: float64(3), expected: 3},
		{name: "string value", input: "12", expected: 12},
		{name: "invalid string", input: "twelve", expectError: true},
		{name: "missing", input: nil, expectError: true},
		{name: "unsupported type", input: []int{1}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := secretVersion(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSecretBindings(t *testing.T) {
	cfg := &Config{
		AI:    AIConfig{Parse: OperationAIConfig{APIKey: "parse-only"}},
		Vault: VaultConfig{Secrets: VaultSecrets{APIKeys: "secret/data/applykit/api", GeminiKey: "secret/data/applykit/gemini"}},
	}

	applied := map[string]string{"keys": " k1, k2 ,,k3", "api_key": "vault-key"}
	for _, b := range cfg.secretBindings() {
		require.NotEmpty(t, b.path)
		b.apply(cfg, applied[b.field])
	}

	assert.Equal(t, []string{"k1", "k2", "k3"}, cfg.Server.APIKeys)
	assert.Equal(t, "vault-key", cfg.AI.APIKey)
	assert.Equal(t, "vault-key", cfg.AI.Generate.APIKey)
	assert.Equal(t, "vault-key", cfg.AI.Extract.APIKey)
	assert.Equal(t, "parse-only", cfg.AI.Parse.APIKey, "operation keys are not overwritten")
}

func TestVaultToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  s.file-token\n"), 0o600))
	emptyFile := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyFile, []byte("\n"), 0o600))

	tests := []struct {
		name        string
		config      VaultConfig
		expected    string
		expectError bool
	}{
		{name: "inline token wins", config: VaultConfig{Token: "s.inline", TokenFile: tokenFile}, expected: "s.inline"},
		{name: "token file", config: VaultConfig{TokenFile: tokenFile}, expected: "s.file-token"},
		{name: "empty token file", config: VaultConfig{TokenFile: emptyFile}, expectError: true},
		{name: "missing file", config: VaultConfig{TokenFile: filepath.Join(dir, "absent")}, expectError: true},
		{name: "no token", config: VaultConfig{}, expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := vaultToken(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{AI: AIConfig{APIKey: "unchanged"}}
	require.NoError(t, ApplyVaultSecrets(cfg, newTestLogger()))
	assert.Equal(t, "unchanged", cfg.AI.APIKey)
}

func TestDecodeKV(t *testing.T) {
	secret := &api.Secret{Data: map[string]any{
		"data":     map[string]any{"api_key": "AIzaSyExample1234"},
		"metadata": map[string]any{"version": float64(4)},
	}}
	kv, err := decodeKV(secret, "secret/data/gemini")
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyExample1234", kv.Data["api_key"])
	assert.Equal(t, int64(4), kv.Version)

	_, err = decodeKV(&api.Secret{Data: map[string]any{"api_key": "flat"}}, "secret/gemini")
	assert.Error(t, err, "KVv1 secrets are rejected")

	_, err = decodeKV(nil, "secret/data/missing")
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "AIza****1234", MaskSecret("AIzaSyExample1234"))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "", MaskSecret(""))
}

func TestReadKVNilClient(t *testing.T) {
	var vc *VaultClient
	_, err := vc.ReadKV("secret/data/x")
	assert.Error(t, err)
}
