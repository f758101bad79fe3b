package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/review"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"ProjectPath", ProjectPath, "/test/review/.litreview"},
		{"ConfigPath", ConfigPath, "/test/review/.litreview/config.yml"},
		{"CachePath", CachePath, "/test/review/.litreview/cache"},
		{"DBPath", DBPath, "/test/review/.litreview/cache/refs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-project directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, ProjectDir), 0755); err != nil {
		t.Fatalf("Failed to create .litreview: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for project directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, ProjectDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .litreview file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .litreview is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "review")
	nestedDir := filepath.Join(root, "exports", "ieee")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, ProjectDir), 0755); err != nil {
		t.Fatalf("Failed to create .litreview: %v", err)
	}

	found, err := FindRepository(nestedDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != root {
		t.Errorf("FindRepository() = %q, want %q", found, root)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if !errors.Is(err, ErrNotInProject) {
		t.Errorf("FindRepository() error = %v, want ErrNotInProject", err)
	}
}

func TestInit(t *testing.T) {
	root := t.TempDir()

	cfg, err := Init(root)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if cfg.Paths.UniqueFile != DefaultUniqueFile {
		t.Errorf("UniqueFile = %q, want %q", cfg.Paths.UniqueFile, DefaultUniqueFile)
	}
	if _, err := os.Stat(ConfigPath(root)); err != nil {
		t.Errorf("config.yml not written: %v", err)
	}
	if _, err := Init(root); err == nil {
		t.Error("Init() should fail when the project exists")
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analysis.GraphMaxNodes != 30 {
		t.Errorf("GraphMaxNodes = %d, want default 30", cfg.Analysis.GraphMaxNodes)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(ProjectPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	data := "paths:\n  unique_file: data/unicos.ris\nanalysis:\n  diagonal: true\n"
	if err := os.WriteFile(ConfigPath(root), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Paths.UniqueFile != "data/unicos.ris" {
		t.Errorf("UniqueFile = %q", cfg.Paths.UniqueFile)
	}
	if cfg.Paths.DuplicateFile != DefaultDuplicateFile {
		t.Errorf("DuplicateFile = %q, want default", cfg.Paths.DuplicateFile)
	}
	if !cfg.Analysis.Diagonal || cfg.Analysis.GraphMinWeight != 2 {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "paths: [\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"same table files", "paths:\n  unique_file: a.ris\n  duplicate_file: a.ris\n"},
		{"negative limit", "cluster:\n  max_records: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.MkdirAll(ProjectPath(root), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(ConfigPath(root), []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(root); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(ProjectPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.Paths.TaxonomyFile = "taxonomy.yml"
	cfg.Cluster.Methods = []string{"complete"}

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Paths.TaxonomyFile != "taxonomy.yml" {
		t.Errorf("TaxonomyFile = %q", loaded.Paths.TaxonomyFile)
	}
	if len(loaded.Cluster.Methods) != 1 || loaded.Cluster.Methods[0] != "complete" {
		t.Errorf("Methods = %v, want [complete]", loaded.Cluster.Methods)
	}
}

func TestConfig_Resolved(t *testing.T) {
	cfg := Default()
	cfg.Paths.UniqueFile = "/abs/unique.ris"

	got := cfg.Resolved("/review")

	if got.Paths.ExportDir != "/review/exports" {
		t.Errorf("ExportDir = %q", got.Paths.ExportDir)
	}
	if got.Paths.UniqueFile != "/abs/unique.ris" {
		t.Errorf("UniqueFile = %q", got.Paths.UniqueFile)
	}
	if got.Paths.TaxonomyFile != "" {
		t.Errorf("TaxonomyFile = %q, want empty", got.Paths.TaxonomyFile)
	}
	if cfg.Paths.ExportDir != DefaultExportDir {
		t.Error("Resolved() should not modify the receiver")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvExportDir:       "downloads",
		EnvLegacyUnique:    "legacy_unique.ris",
		EnvDuplicateFile:   "dups.ris",
		EnvLegacyDuplicate: "legacy_dups.ris",
		EnvClusterMax:      "20",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()

	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Paths.ExportDir != "downloads" {
		t.Errorf("ExportDir = %q", cfg.Paths.ExportDir)
	}
	if cfg.Paths.UniqueFile != "legacy_unique.ris" {
		t.Errorf("UniqueFile = %q, want legacy override", cfg.Paths.UniqueFile)
	}
	if cfg.Paths.DuplicateFile != "dups.ris" {
		t.Errorf("DuplicateFile = %q, LIT_ name should win", cfg.Paths.DuplicateFile)
	}
	if cfg.Cluster.MaxRecords != 20 {
		t.Errorf("MaxRecords = %d", cfg.Cluster.MaxRecords)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()
	lookup := func(k string) (string, bool) {
		if k == EnvClusterMax {
			return "many", true
		}
		return "", false
	}
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Error("ApplyEnv() should reject a non-numeric limit")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/review", filepath.Join(home, "review")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
