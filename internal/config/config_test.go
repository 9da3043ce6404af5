package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Store.FolderName != "Pallet" {
		t.Errorf("Expected folder Pallet, got %s", cfg.Store.FolderName)
	}
	if cfg.Naming.DefaultBaseName != "pallet_image" {
		t.Errorf("Expected base name pallet_image, got %s", cfg.Naming.DefaultBaseName)
	}
	if cfg.Detection.ModelID != DefaultDetectionModel {
		t.Errorf("Expected model %s, got %s", DefaultDetectionModel, cfg.Detection.ModelID)
	}
	if !*cfg.Naming.ReplaceNewlines {
		t.Error("Expected newline replacement on by default")
	}
}

func TestLoadRequiredMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err == nil {
		t.Fatal("Expected error for missing required config")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palletlog.yaml")
	content := `
detection:
  api_key: from-file
  model_id: custom/2
store:
  backend: local
  local_dir: /tmp/pallets
ledger:
  backend: xlsx
  xlsx_path: /tmp/ledger.xlsx
naming:
  replace_newlines: false
photo:
  max_edge: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("ROBOFLOW_API_KEY", "from-env")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Detection.APIKey != "from-env" {
		t.Errorf("Expected env API key, got %s", cfg.Detection.APIKey)
	}
	if cfg.Detection.ModelID != "custom/2" {
		t.Errorf("Expected model custom/2, got %s", cfg.Detection.ModelID)
	}
	if cfg.Detection.Endpoint != DefaultDetectionEndpoint {
		t.Errorf("Expected default endpoint, got %s", cfg.Detection.Endpoint)
	}
	if *cfg.Naming.ReplaceNewlines {
		t.Error("Expected newline replacement disabled by file")
	}
	if *cfg.Photo.MaxEdge != 0 {
		t.Errorf("Expected max edge 0, got %d", *cfg.Photo.MaxEdge)
	}
	if cfg.NeedsGoogle() {
		t.Error("Expected local+xlsx config not to need Google")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name: "sheets without spreadsheet id",
			mutate: func(c *Config) {
				c.Google.CredentialsFile = "sa.json"
			},
			wantErr: "spreadsheet_id",
		},
		{
			name: "google without credentials",
			mutate: func(c *Config) {
				c.Ledger.SpreadsheetID = "sheet"
			},
			wantErr: "credentials_file",
		},
		{
			name: "unknown scopes",
			mutate: func(c *Config) {
				c.Ledger.SpreadsheetID = "sheet"
				c.Google.CredentialsFile = "sa.json"
				c.Google.Scopes = "everything"
			},
			wantErr: "unknown scope set",
		},
		{
			name: "bad viewer template",
			mutate: func(c *Config) {
				c.Ledger.SpreadsheetID = "sheet"
				c.Google.CredentialsFile = "sa.json"
				c.Naming.ViewerURLTemplate = "https://example.com/"
			},
			wantErr: "viewer_url_template",
		},
		{
			name: "valid google config",
			mutate: func(c *Config) {
				c.Ledger.SpreadsheetID = "sheet"
				c.Google.CredentialsFile = "sa.json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestScopeList(t *testing.T) {
	cfg := Default()
	scopes, err := cfg.ScopeList()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(scopes) != 2 {
		t.Errorf("Expected 2 explicit scopes, got %d", len(scopes))
	}

	cfg.Google.Scopes = ScopesCloudPlatform
	scopes, err = cfg.ScopeList()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "https://www.googleapis.com/auth/cloud-platform" {
		t.Errorf("Expected cloud-platform scope, got %v", scopes)
	}
}
