package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/varmotion/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files Discover looks for, in order
var FileNames = []string{
	"varmotion.yaml",
	"varmotion.yml",
	"varmotion.json",
	filepath.Join(".config", "varmotion.yaml"),
	filepath.Join(".config", "varmotion.yml"),
	filepath.Join(".config", "varmotion.json"),
}

// packageJSONKey is the package.json field holding configuration
const packageJSONKey = "varmotion"

// Load reads the configuration file at path. JSON files may contain comments.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading project configuration - local trusted environment
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration over DefaultConfig and validates it.
//
// JSON is stripped of comments and then decoded as YAML, so durations such as
// "300ms" read the same way in both formats.
func Parse(data []byte, isJSON bool) (*Config, error) {
	if isJSON {
		data = jsonc.ToJSON(data)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover finds the project configuration under root.
// It tries FileNames first, then the "varmotion" field of package.json.
// When nothing is found it returns DefaultConfig and an empty path.
func Discover(root string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.Debug("Using config %s", path)
		cfg, err := Load(path)
		return cfg, path, err
	}

	cfg, err := readPackageJSON(root)
	if err != nil {
		return nil, "", err
	}
	if cfg != nil {
		return cfg, filepath.Join(root, "package.json"), nil
	}

	defaults := DefaultConfig()
	return &defaults, "", nil
}

// readPackageJSON reads configuration from package.json.
// Returns nil if the file or field doesn't exist (not an error).
func readPackageJSON(root string) (*Config, error) {
	path := filepath.Join(root, "package.json")
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading workspace package.json - local trusted environment
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	raw, ok := pkg[packageJSONKey]
	if !ok {
		return nil, nil
	}
	if !strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidConfig, packageJSONKey)
	}
	return Parse(raw, true)
}
