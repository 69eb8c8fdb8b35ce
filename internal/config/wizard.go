package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .pagetree.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to pagetree! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"anthropic", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap (haiku / gpt-4o-mini)",
			"normal — balanced (sonnet / gpt-4o)",
			"max    — highest quality (opus / gpt-4o)",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	preset := GetPreset(provider, quality)

	// 3. Index store.
	storePrompt := promptui.Select{
		Label: "Where should built indexes be stored",
		Items: []string{"file", "sqlite", "s3", "memory"},
	}
	_, storeBackend, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}

	persistence := PersistenceConfig{Backend: storeBackend}
	switch storeBackend {
	case "file":
		dirPrompt := promptui.Prompt{
			Label:   "Index directory",
			Default: "indexes",
		}
		persistence.Dir, err = dirPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("index directory: %w", err)
		}
	case "sqlite":
		pathPrompt := promptui.Prompt{
			Label:   "SQLite database path",
			Default: "pagetree.db",
		}
		persistence.Path, err = pathPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("sqlite path: %w", err)
		}
	case "s3":
		bucketPrompt := promptui.Prompt{Label: "S3 bucket"}
		persistence.Bucket, err = bucketPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("s3 bucket: %w", err)
		}
		prefixPrompt := promptui.Prompt{
			Label:   "S3 key prefix",
			Default: "pagetree/",
		}
		persistence.Prefix, err = prefixPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("s3 prefix: %w", err)
		}
	}

	// 4. Result cache.
	cachePrompt := promptui.Select{
		Label: "Retrieval result cache",
		Items: []string{"memory", "redis"},
	}
	_, cacheBackend, err := cachePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cache selection: %w", err)
	}
	cfg.Cache.Backend = cacheBackend
	if cacheBackend == "redis" {
		addrPrompt := promptui.Prompt{
			Label:   "Redis address",
			Default: "localhost:6379",
		}
		cfg.Cache.RedisAddr, err = addrPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("redis address: %w", err)
		}
	}

	cfg.Provider = provider
	cfg.Quality = quality
	cfg.Model = preset.Model
	cfg.Indexing.SummaryModel = preset.SummaryModel
	cfg.Persistence = persistence

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running pagetree ingest.\n", envVar)
	}

	configPath := ".pagetree.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
