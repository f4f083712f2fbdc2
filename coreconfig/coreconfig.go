// Package coreconfig implements the core's ambient configuration layer,
// modeled on pdfcpu's configuration.go: a YAML-tagged struct
// loaded from and saved to disk with gopkg.in/yaml.v2, carrying the
// small set of knobs this core itself needs (as opposed to the page-
// layout/rendering configuration pdfcpu's own Configuration carries,
// which has no equivalent at this layer).
package coreconfig

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/inkfathom/pdfcore/pdferr"
)

// Configuration holds the core's configuration knobs. It is a plain
// loadable/savable record: no other package of this module reads it, so
// each field below describes the setting, not behavior wired to it.
type Configuration struct {
	// ValidateOnRead reports whether the object store should validate
	// cross-reference integrity immediately after loading.
	ValidateOnRead bool `yaml:"validateOnRead"`
	// DecompressStreams reports whether streams should be eagerly
	// decoded on load rather than left compressed until first access.
	DecompressStreams bool `yaml:"decompressStreams"`
	// DefaultEarlyChange is the /EarlyChange value for LZWDecode filters
	// that omit the parameter. Package filter does not read it and
	// always assumes 1.
	DefaultEarlyChange int `yaml:"defaultEarlyChange"`
	// XRefStreamOnWrite prefers the compact cross-reference stream form
	// over the classic table when writing, when the document's PDF
	// version allows it.
	XRefStreamOnWrite bool `yaml:"xrefStreamOnWrite"`
}

// Default returns the configuration this core uses absent an explicit
// override file.
func Default() *Configuration {
	return &Configuration{
		ValidateOnRead:     true,
		DecompressStreams:  false,
		DefaultEarlyChange: 1,
		XRefStreamOnWrite:  true,
	}
}

// Load reads a YAML configuration file from path.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.InvalidDataType, err, "reading configuration file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pdferr.Wrap(pdferr.InvalidDataType, err, "parsing configuration file")
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Configuration, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return pdferr.Wrap(pdferr.InvalidDataType, err, "encoding configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pdferr.Wrap(pdferr.InvalidDataType, err, "writing configuration file")
	}
	return nil
}
