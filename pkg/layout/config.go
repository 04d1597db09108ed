package layout

import (
	"github.com/BurntSushi/toml"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/geom"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// Default layout constants. All spacing is configuration-driven; nothing
// is hard-coded per node.
const (
	DefaultHSpacing       = 150.0
	DefaultVSpacing       = 80.0
	DefaultLaneHeight     = 140.0
	DefaultMarginX        = 40.0
	DefaultMarginY        = 40.0
	DefaultParticipantGap = 60.0
)

// Config holds the engine-wide layout constants: horizontal spacing between
// columns, vertical spacing between stacked rows, the lane band height, the
// outer margins, and per-category dimension overrides.
//
// A Config can be loaded from a TOML file:
//
//	h_spacing = 180.0
//	lane_height = 160.0
//
//	[dimensions.activity]
//	width = 120.0
//	height = 80.0
type Config struct {
	HSpacing       float64 `toml:"h_spacing" json:"h_spacing"`
	VSpacing       float64 `toml:"v_spacing" json:"v_spacing"`
	LaneHeight     float64 `toml:"lane_height" json:"lane_height"`
	MarginX        float64 `toml:"margin_x" json:"margin_x"`
	MarginY        float64 `toml:"margin_y" json:"margin_y"`
	ParticipantGap float64 `toml:"participant_gap" json:"participant_gap"`

	// Dimensions overrides the registry's default shape dimension per
	// category. Unknown categories are rejected when the config is applied.
	Dimensions map[string]geom.Dimension `toml:"dimensions" json:"dimensions,omitempty"`
}

// DefaultConfig returns the built-in layout constants with no dimension
// overrides.
func DefaultConfig() Config {
	return Config{
		HSpacing:       DefaultHSpacing,
		VSpacing:       DefaultVSpacing,
		LaneHeight:     DefaultLaneHeight,
		MarginX:        DefaultMarginX,
		MarginY:        DefaultMarginY,
		ParticipantGap: DefaultParticipantGap,
	}
}

// LoadConfig reads layout constants from a TOML file. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load layout config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all spacing constants are positive and that any
// dimension override names a known category.
func (c Config) Validate() error {
	if c.HSpacing <= 0 || c.VSpacing <= 0 || c.LaneHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing constants must be positive")
	}
	if c.MarginX < 0 || c.MarginY < 0 || c.ParticipantGap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout margins cannot be negative")
	}
	defaults := template.DefaultDimensions()
	for category, dim := range c.Dimensions {
		if _, ok := defaults[category]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "dimension override for unknown category %q", category)
		}
		if dim.Width <= 0 || dim.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "dimension override for %q must be positive", category)
		}
	}
	return nil
}

// EffectiveDimensions merges the config's overrides over the base
// dimension table.
func (c Config) EffectiveDimensions(base map[string]geom.Dimension) map[string]geom.Dimension {
	out := make(map[string]geom.Dimension, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range c.Dimensions {
		out[k] = v
	}
	return out
}
