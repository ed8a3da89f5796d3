// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed file contents are the value.
//
// Recognized key files: groq-api-key, openai-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/pkg/types"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key file names per provider.
var keyFiles = map[types.Provider]string{
	types.ProviderGroq:   "groq-api-key",
	types.ProviderOpenAI: "openai-api-key",
	types.ProviderGemini: "gemini-api-key",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped. A nil logger discards warnings.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// KeyFile returns the secret file name holding the API key for provider. An
// empty provider means Groq.
func KeyFile(provider types.Provider) (string, bool) {
	if provider == "" {
		provider = types.ProviderGroq
	}
	name, ok := keyFiles[provider]
	return name, ok
}

// APIKey returns the provider's API key from loaded secrets, or "" when the
// provider is unknown or has no key file.
func APIKey(secrets map[string]string, provider types.Provider) string {
	name, ok := KeyFile(provider)
	if !ok {
		return ""
	}
	return secrets[name]
}
