package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Session descriptor configuration: a YAML file (parsed
 *		with gopkg.in/yaml.v3) describing one call's local
 *		capabilities and identity, with CLI flag overrides layered
 *		on via spf13/pflag for the cmd/ demo tools.
 *
 *---------------------------------------------------------------*/

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML shape of a session descriptor.
type FileConfig struct {
	Role        string   `yaml:"role"`
	Ident       string   `yaml:"ident"`
	Modems      []string `yaml:"modems"`
	Compression []string `yaml:"compression"`
	Resolution  []string `yaml:"resolution"`
	ECM         bool     `yaml:"ecm"`
}

// LoadFileConfig reads and parses a YAML session descriptor.
func LoadFileConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

var modemNames = map[string]ModemMask{
	"v27ter": ModemV27ter,
	"v29":    ModemV29,
	"v17":    ModemV17,
}

var compressionNames = map[string]CompressionMask{
	"t4-1d": CompressionT4_1D,
	"t4-2d": CompressionT4_2D,
	"t6":    CompressionT6,
}

var resolutionNames = map[string]ResolutionMask{
	"standard":  ResolutionStandard,
	"fine":      ResolutionFine,
	"superfine": ResolutionSuperfine,
}

// ToSessionConfig converts the parsed YAML file into the disFrame/role
// fields SessionConfig needs, rejecting unknown capability names
// synchronously as spec.md §7 requires for configuration errors.
func (c FileConfig) ToSessionConfig() (SessionConfig, error) {
	role := RoleCalling
	if c.Role == "answering" {
		role = RoleAnswering
	}

	var local disFrame
	for _, name := range c.Modems {
		bit, ok := modemNames[name]
		if !ok {
			return SessionConfig{}, newConfigError("modems", ErrUnsupportedModem, name)
		}
		local.Modems |= bit
	}
	for _, name := range c.Compression {
		bit, ok := compressionNames[name]
		if !ok {
			return SessionConfig{}, newConfigError("compression", ErrBadParameter, name)
		}
		local.Compressions |= bit
	}
	for _, name := range c.Resolution {
		bit, ok := resolutionNames[name]
		if !ok {
			return SessionConfig{}, newConfigError("resolution", ErrBadParameter, name)
		}
		local.Resolutions |= bit
	}
	if c.ECM {
		local.Features |= FeatureECM
	}
	if c.Ident == "" {
		return SessionConfig{}, newConfigError("ident", ErrEmptyIdent, c.Ident)
	}
	if len(c.Ident) > MaxIdentLen {
		return SessionConfig{}, newConfigError("ident", ErrIdentTooLong, c.Ident)
	}

	return SessionConfig{
		Role:       role,
		LocalIdent: c.Ident,
		Local:      local,
		ECMEnabled: c.ECM,
	}, nil
}

// CLIOverrides are the flag-driven overrides the demo commands support,
// layered over a FileConfig after it loads.
type CLIOverrides struct {
	ConfigPath string
	Ident      string
	ECM        bool
}

// RegisterFlags wires CLIOverrides into an existing pflag.FlagSet,
// matching the teacher's pattern of a single shared flag-registration
// function per command rather than each cmd/ main redeclaring flags.
func RegisterFlags(fs *pflag.FlagSet, o *CLIOverrides) {
	fs.StringVarP(&o.ConfigPath, "config", "c", "spanfax.yaml", "session descriptor YAML file")
	fs.StringVar(&o.Ident, "ident", "", "override the local station ident")
	fs.BoolVar(&o.ECM, "ecm", false, "force ECM on regardless of the config file")
}

// Apply layers CLI overrides onto a loaded FileConfig.
func (o CLIOverrides) Apply(cfg FileConfig) FileConfig {
	if o.Ident != "" {
		cfg.Ident = o.Ident
	}
	if o.ECM {
		cfg.ECM = true
	}
	return cfg
}
