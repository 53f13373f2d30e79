// Package config loads varmotion project configuration: which style and
// design token files to read, and which animations to play.
package config

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/varmotion/animation"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration that cannot be used
var ErrInvalidConfig = errors.New("invalid configuration")

// TokenFileSpec represents a design token file specification
type TokenFileSpec struct {
	// Path to the token file, relative to the project root. May be a glob.
	Path string `yaml:"path" json:"path"`

	// Prefix for CSS variables from this file (optional)
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`

	// GroupMarkers are token names that can also be groups (optional)
	GroupMarkers []string `yaml:"groupMarkers,omitempty" json:"groupMarkers,omitempty"`
}

// UnmarshalYAML accepts either a bare path or the object form
func (s *TokenFileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Path = node.Value
		return nil
	}
	type plain TokenFileSpec
	return node.Decode((*plain)(s))
}

// Animation is a named set of property transitions
type Animation struct {
	Name       string                      `yaml:"name" json:"name"`
	Properties map[string]animation.Target `yaml:"properties" json:"properties"`
	Transition animation.Transition        `yaml:"transition" json:"transition"`
}

// Config represents a varmotion project
type Config struct {
	// Styles are glob patterns for CSS, HTML and JavaScript files whose custom
	// property declarations form the style source.
	// If empty, falls back to AutoDiscoverStylePatterns.
	Styles []string `yaml:"styles" json:"styles"`

	// TokensFiles are design token files loaded after the styles.
	// If empty, falls back to AutoDiscoverPatterns.
	TokensFiles []TokenFileSpec `yaml:"tokensFiles" json:"tokensFiles"`

	// Prefix is the global CSS variable prefix (can be overridden per-file)
	// Example: "ds" will generate "--ds-color-primary"
	Prefix string `yaml:"prefix" json:"prefix"`

	// GroupMarkers are token names which will be treated as group names as well
	GroupMarkers []string `yaml:"groupMarkers" json:"groupMarkers"`

	// Properties override any loaded declaration
	Properties map[string]string `yaml:"properties" json:"properties"`

	FPS             int    `yaml:"fps" json:"fps"`
	FailurePolicy   string `yaml:"failurePolicy" json:"failurePolicy"`
	MaxDepth        int    `yaml:"maxDepth" json:"maxDepth"`
	RestoreSymbolic bool   `yaml:"restoreSymbolic" json:"restoreSymbolic"`
	LogLevel        string `yaml:"logLevel" json:"logLevel"`

	Animations []Animation `yaml:"animations" json:"animations"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		GroupMarkers: []string{
			"_",
			"@",
			"DEFAULT",
		},
		FPS:           animation.DefaultFPS,
		FailurePolicy: "skip",
		LogLevel:      "info",
	}
}

// AutoDiscoverPatterns are the glob patterns used to auto-discover token files
// when TokensFiles is not explicitly configured.
var AutoDiscoverPatterns = []string{
	"**/tokens.json",
	"**/*.tokens.json",
	"**/design-tokens.json",
	"**/tokens.yaml",
	"**/*.tokens.yaml",
	"**/design-tokens.yaml",
	"**/tokens.yml",
	"**/*.tokens.yml",
	"**/design-tokens.yml",
}

// AutoDiscoverStylePatterns are the glob patterns used to auto-discover style
// files when Styles is not explicitly configured.
var AutoDiscoverStylePatterns = []string{
	"**/*.css",
}

// Policy maps FailurePolicy to the animation failure policy
func (c *Config) Policy() (animation.FailurePolicy, error) {
	switch strings.ToLower(c.FailurePolicy) {
	case "", "skip", "skip-frame":
		return animation.SkipFrame, nil
	case "hold", "hold-last":
		return animation.HoldLast, nil
	default:
		return animation.SkipFrame, fmt.Errorf("%w: unknown failure policy %q", ErrInvalidConfig, c.FailurePolicy)
	}
}

// Animation returns the named animation
func (c *Config) Animation(name string) (Animation, bool) {
	for _, a := range c.Animations {
		if a.Name == name {
			return a, true
		}
	}
	return Animation{}, false
}

// Validate reports the first problem that would stop the configuration from
// being used
func (c *Config) Validate() error {
	if c.FPS < 0 {
		return fmt.Errorf("%w: fps must not be negative, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: maxDepth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Animations))
	for i, a := range c.Animations {
		if a.Name == "" {
			return fmt.Errorf("%w: animation %d has no name", ErrInvalidConfig, i)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate animation %q", ErrInvalidConfig, a.Name)
		}
		seen[a.Name] = true
		if len(a.Properties) == 0 {
			return fmt.Errorf("%w: animation %q has no properties", ErrInvalidConfig, a.Name)
		}
	}

	for _, spec := range c.TokensFiles {
		if spec.Path == "" {
			return fmt.Errorf("%w: token file without a path", ErrInvalidConfig)
		}
	}
	for name := range c.Properties {
		if !strings.HasPrefix(name, "--") {
			return fmt.Errorf("%w: property %q is not a custom property", ErrInvalidConfig, name)
		}
	}
	return nil
}
