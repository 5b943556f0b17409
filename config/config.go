// Package config loads the ceremony's YAML configuration file and the
// environment variables that govern distribution and the optional GPU
// backend.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Mode selects how randomness is sourced for a contribution.
type Mode string

const (
	ModeTesting       Mode = "testing"
	ModeRandom        Mode = "random"
	ModeDeterministic Mode = "deterministic"
)

// Valid reports whether m is one of the three recognized modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeTesting, ModeRandom, ModeDeterministic:
		return true
	default:
		return false
	}
}

// Ceremony holds the settings a ceremony CLI invocation runs under:
// the YAML-configurable identifiers plus the environment variables
// that configure the distribution channel and the optional GPU path.
type Ceremony struct {
	SMaxX     int    `yaml:"smaxX"`
	SMaxY     int    `yaml:"smaxY"`
	Blockhash string `yaml:"blockhash"`
	Mode      Mode   `yaml:"mode"`
	OutFolder string `yaml:"outFolder"`

	UseGPU             bool   `yaml:"-"`
	SharedFolderID     string `yaml:"-"`
	ClientAccountJSON  string `yaml:"-"`
	ServiceAccountJSON string `yaml:"-"`
}

// Load reads a ceremony YAML config file and layers the ambient
// environment variables (USE_GPU, SHARED_FOLDER_ID, CLIENT_ACCOUNT_JSON,
// SERVICE_ACCOUNT_JSON) on top of it; the YAML fields cover what an
// operator sets once per ceremony, the environment variables cover what
// varies per machine.
func Load(path string) (*Ceremony, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var c Ceremony
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// New builds a Ceremony directly from CLI-flag-shaped values, the path
// cmd/tzkceremony's subcommands take instead of Load's YAML file -- the
// environment layering and validation are identical either way.
func New(smaxX, smaxY int, blockhash string, mode Mode, outFolder string) (*Ceremony, error) {
	c := &Ceremony{
		SMaxX:     smaxX,
		SMaxY:     smaxY,
		Blockhash: blockhash,
		Mode:      mode,
		OutFolder: outFolder,
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Ceremony) applyEnv() {
	c.UseGPU = getEnvBool("USE_GPU", false)
	c.SharedFolderID = getEnv("SHARED_FOLDER_ID", c.SharedFolderID)
	c.ClientAccountJSON = getEnv("CLIENT_ACCOUNT_JSON", c.ClientAccountJSON)
	c.ServiceAccountJSON = getEnv("SERVICE_ACCOUNT_JSON", c.ServiceAccountJSON)
}

// Validate rejects a config whose ceremony-shape fields can't produce a
// usable run: non-positive grid dimensions, or a mode outside the three
// the ceremony protocol recognizes.
func (c *Ceremony) Validate() error {
	if c.SMaxX <= 0 || c.SMaxY <= 0 {
		return fmt.Errorf("config: smaxX and smaxY must be positive, got %d, %d", c.SMaxX, c.SMaxY)
	}
	if c.Mode == "" {
		c.Mode = ModeRandom
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("config: unrecognized mode %q", c.Mode)
	}
	if c.OutFolder == "" {
		return fmt.Errorf("config: outFolder must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
