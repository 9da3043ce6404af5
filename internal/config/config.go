package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFolderName        = "Pallet"
	DefaultBaseName          = "pallet_image"
	DefaultDetectionEndpoint = "https://detect.roboflow.com"
	DefaultDetectionModel    = "pallet-detection-measurement/1"
	DefaultViewerURLTemplate = "https://drive.google.com/file/d/%s/view?usp=sharing"
	DefaultMaxEdge           = 2048
)

// Scope sets accepted by the credential exchange.
const (
	ScopesExplicit      = "explicit"
	ScopesCloudPlatform = "cloud-platform"
)

// Config is the full runtime configuration for palletlog
type Config struct {
	Detection Detection `yaml:"detection"`
	OCR       OCR       `yaml:"ocr"`
	Google    Google    `yaml:"google"`
	Store     Store     `yaml:"store"`
	Ledger    Ledger    `yaml:"ledger"`
	Naming    Naming    `yaml:"naming"`
	Photo     Photo     `yaml:"photo"`
}

type Detection struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	ModelID  string `yaml:"model_id"`
}

type OCR struct {
	// Provider is one of none, tesseract, gemini, ollama, openai
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Prefix   string `yaml:"prefix"`
}

type Google struct {
	CredentialsFile string `yaml:"credentials_file"`
	Scopes          string `yaml:"scopes"`
}

type Store struct {
	// Backend is drive or local
	Backend    string `yaml:"backend"`
	FolderName string `yaml:"folder_name"`
	LocalDir   string `yaml:"local_dir"`
}

type Ledger struct {
	// Backend is sheets or xlsx
	Backend       string `yaml:"backend"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	XLSXPath      string `yaml:"xlsx_path"`
}

type Naming struct {
	DefaultBaseName   string `yaml:"default_base_name"`
	ReplaceNewlines   *bool  `yaml:"replace_newlines"`
	ViewerURLTemplate string `yaml:"viewer_url_template"`
}

type Photo struct {
	MaxEdge *int `yaml:"max_edge"`
}

// Default returns a configuration populated with the built-in defaults
func Default() *Config {
	replace := true
	maxEdge := DefaultMaxEdge
	return &Config{
		Detection: Detection{
			Endpoint: DefaultDetectionEndpoint,
			ModelID:  DefaultDetectionModel,
		},
		OCR: OCR{
			Provider: "none",
			Prefix:   "PT",
		},
		Google: Google{
			Scopes: ScopesExplicit,
		},
		Store: Store{
			Backend:    "drive",
			FolderName: DefaultFolderName,
			LocalDir:   "palletlog-data",
		},
		Ledger: Ledger{
			Backend:  "sheets",
			XLSXPath: "palletlog.xlsx",
		},
		Naming: Naming{
			DefaultBaseName:   DefaultBaseName,
			ReplaceNewlines:   &replace,
			ViewerURLTemplate: DefaultViewerURLTemplate,
		},
		Photo: Photo{
			MaxEdge: &maxEdge,
		},
	}
}

// Load reads the YAML file at path (if it exists) on top of the defaults,
// then applies environment overrides.
// A missing file is only an error when required is true.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Detection.Endpoint, "PALLETLOG_DETECTION_ENDPOINT")
	setString(&c.Detection.APIKey, "ROBOFLOW_API_KEY")
	setString(&c.Detection.APIKey, "PALLETLOG_DETECTION_API_KEY")
	setString(&c.Detection.ModelID, "PALLETLOG_DETECTION_MODEL")

	setString(&c.OCR.Provider, "PALLETLOG_OCR_PROVIDER")
	setString(&c.OCR.Model, "PALLETLOG_OCR_MODEL")

	setString(&c.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Google.CredentialsFile, "PALLETLOG_CREDENTIALS_FILE")
	setString(&c.Google.Scopes, "PALLETLOG_SCOPES")

	setString(&c.Store.Backend, "PALLETLOG_STORE")
	setString(&c.Store.FolderName, "PALLETLOG_FOLDER_NAME")
	setString(&c.Store.LocalDir, "PALLETLOG_LOCAL_DIR")

	setString(&c.Ledger.Backend, "PALLETLOG_LEDGER")
	setString(&c.Ledger.SpreadsheetID, "PALLETLOG_SPREADSHEET_ID")
	setString(&c.Ledger.XLSXPath, "PALLETLOG_XLSX_PATH")

	if v := os.Getenv("PALLETLOG_REPLACE_NEWLINES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PALLETLOG_REPLACE_NEWLINES %q: %w", v, err)
		}
		c.Naming.ReplaceNewlines = &b
	}
	if v := os.Getenv("PALLETLOG_MAX_EDGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PALLETLOG_MAX_EDGE %q: %w", v, err)
		}
		c.Photo.MaxEdge = &n
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Detection.Endpoint == "" {
		c.Detection.Endpoint = d.Detection.Endpoint
	}
	if c.Detection.ModelID == "" {
		c.Detection.ModelID = d.Detection.ModelID
	}
	if c.OCR.Provider == "" {
		c.OCR.Provider = d.OCR.Provider
	}
	if c.OCR.Prefix == "" {
		c.OCR.Prefix = d.OCR.Prefix
	}
	if c.Google.Scopes == "" {
		c.Google.Scopes = d.Google.Scopes
	}
	if c.Store.FolderName == "" {
		c.Store.FolderName = d.Store.FolderName
	}
	if c.Naming.DefaultBaseName == "" {
		c.Naming.DefaultBaseName = d.Naming.DefaultBaseName
	}
	if c.Naming.ReplaceNewlines == nil {
		c.Naming.ReplaceNewlines = d.Naming.ReplaceNewlines
	}
	if c.Naming.ViewerURLTemplate == "" {
		c.Naming.ViewerURLTemplate = d.Naming.ViewerURLTemplate
	}
	if c.Photo.MaxEdge == nil {
		c.Photo.MaxEdge = d.Photo.MaxEdge
	}
}

// NeedsGoogle reports whether any configured backend talks to Google APIs
func (c *Config) NeedsGoogle() bool {
	return c.Store.Backend == "drive" || c.Ledger.Backend == "sheets"
}

// ScopeList resolves the configured scope set name into OAuth scopes.
// The explicit set is the default; cloud-platform mirrors the broader
// scope some deployments were provisioned with.
func (c *Config) ScopeList() ([]string, error) {
	switch c.Google.Scopes {
	case ScopesExplicit:
		return []string{
			"https://www.googleapis.com/auth/spreadsheets",
			"https://www.googleapis.com/auth/drive",
		}, nil
	case ScopesCloudPlatform:
		return []string{"https://www.googleapis.com/auth/cloud-platform"}, nil
	default:
		return nil, fmt.Errorf("unknown scope set %q (expected %s or %s)", c.Google.Scopes, ScopesExplicit, ScopesCloudPlatform)
	}
}

// Validate checks the fields required by the persistence backends
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Backend {
	case "drive":
	case "local":
		if c.Store.LocalDir == "" {
			problems = append(problems, "store.local_dir is required for the local store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported store backend %q", c.Store.Backend))
	}

	switch c.Ledger.Backend {
	case "sheets":
		if c.Ledger.SpreadsheetID == "" {
			problems = append(problems, "ledger.spreadsheet_id is required for the sheets ledger")
		}
	case "xlsx":
		if c.Ledger.XLSXPath == "" {
			problems = append(problems, "ledger.xlsx_path is required for the xlsx ledger")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported ledger backend %q", c.Ledger.Backend))
	}

	if c.NeedsGoogle() {
		if c.Google.CredentialsFile == "" {
			problems = append(problems, "google.credentials_file (or GOOGLE_APPLICATION_CREDENTIALS) is required")
		}
		if _, err := c.ScopeList(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if strings.Count(c.Naming.ViewerURLTemplate, "%s") != 1 {
		problems = append(problems, "naming.viewer_url_template must contain exactly one %s")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
