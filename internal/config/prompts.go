package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptFiles replaces inline prompts with the contents of configured
// prompt files. Every missing file is reported before anything is read.
func (c *Config) loadPromptFiles() error {
	ops := map[string]*OperationAIConfig{
		OperationGenerate: &c.AI.Generate,
		OperationParse:    &c.AI.Parse,
		OperationExtract:  &c.AI.Extract,
	}

	var missing []string
	for _, name := range Operations() {
		op := ops[name]
		for _, path := range []string{op.SystemPromptFile, op.UserPromptFile} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				missing = append(missing, fmt.Sprintf("%s prompt file not found: %s", name, path))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(missing, "\n"))
	}

	loaded := 0
	for _, name := range Operations() {
		op := ops[name]
		if op.SystemPromptFile != "" {
			content, err := readPromptFile(op.SystemPromptFile, "system", name)
			if err != nil {
				return err
			}
			op.SystemPrompt = content
			loaded++
		}
		if op.UserPromptFile != "" {
			content, err := readPromptFile(op.UserPromptFile, "user", name)
			if err != nil {
				return err
			}
			op.UserPrompt = content
			loaded++
		}
	}

	if loaded == 0 {
		log.Println("[CONFIG] No custom prompt files - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", loaded)
	}
	return nil
}

func readPromptFile(path, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s %s prompt file '%s': %w", operation, promptType, path, err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", operation, promptType, absPath, err)
	}
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", operation, promptType, absPath)
	}
	log.Printf("[CONFIG] Loaded %s %s prompt from %s (%d characters)", operation, promptType, absPath, len(trimmed))
	return trimmed, nil
}
