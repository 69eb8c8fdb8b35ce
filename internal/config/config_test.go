package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.Quality != QualityNormal {
		t.Errorf("expected default quality %q, got %q", QualityNormal, cfg.Quality)
	}
	if cfg.Persistence.Backend != "file" {
		t.Errorf("expected default persistence backend %q, got %q", "file", cfg.Persistence.Backend)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected default cache backend %q, got %q", "memory", cfg.Cache.Backend)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Indexing.MaxPagesPerNode != 10 {
		t.Errorf("expected default max_pages_per_node 10, got %d", cfg.Indexing.MaxPagesPerNode)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pagetree.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.Persistence.Backend = "sqlite"
	original.Persistence.Path = "trees.db"
	original.Retrieval.TopK = 8
	original.Cache.TTLSeconds = 600

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.Persistence.Backend != "sqlite" {
		t.Errorf("persistence backend: got %q, want %q", loaded.Persistence.Backend, "sqlite")
	}
	if loaded.Persistence.Path != "trees.db" {
		t.Errorf("persistence path: got %q, want %q", loaded.Persistence.Path, "trees.db")
	}
	if loaded.Retrieval.TopK != 8 {
		t.Errorf("top_k: got %d, want 8", loaded.Retrieval.TopK)
	}
	if loaded.Cache.TTLSeconds != 600 {
		t.Errorf("ttl_seconds: got %d, want 600", loaded.Cache.TTLSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Override provider via env var.
	os.Setenv("PAGETREE_PROVIDER", "openai")
	defer os.Unsetenv("PAGETREE_PROVIDER")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
}

func TestLoadNestedEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("PAGETREE_RETRIEVAL__TOP_K", "9")
	defer os.Unsetenv("PAGETREE_RETRIEVAL__TOP_K")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Retrieval.TopK != 9 {
		t.Errorf("nested env override failed: got %d, want 9", loaded.Retrieval.TopK)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateInvalidQuality(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality = "ultra"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid quality")
	}
}

func TestValidateBackendRequirements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Persistence.Backend = "s3"
	cfg.Persistence.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for s3 backend without bucket")
	}

	cfg = DefaultConfig()
	cfg.Persistence.Backend = "sqlite"
	cfg.Persistence.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for sqlite backend without path")
	}

	cfg = DefaultConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for redis cache without address")
	}

	cfg = DefaultConfig()
	cfg.Cache.Backend = "filesystem"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown cache backend")
	}
}

func TestValidateIndexingBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Indexing.MaxPagesPerNode = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero max_pages_per_node")
	}

	cfg = DefaultConfig()
	cfg.Indexing.OverlapPages = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative overlap_pages")
	}

	cfg = DefaultConfig()
	cfg.Retrieval.TopK = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero top_k")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(ProviderOpenAI, QualityNormal)
	if p.Model != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %q", p.Model)
	}
	if p.SummaryModel != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini summary model, got %q", p.SummaryModel)
	}

	// Unknown combination falls back.
	p = GetPreset("unknown", QualityLite)
	if p.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to sonnet, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{"other", ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
