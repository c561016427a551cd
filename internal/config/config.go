// Package config loads circuitglobe settings from defaults, a YAML config
// file, CGLOBE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/render"
	"github.com/roach88/circuitglobe/internal/sequence"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// EnvPrefix prefixes every environment variable, e.g. CGLOBE_WIDTH or
// CGLOBE_STYLE_LAND.
const EnvPrefix = "CGLOBE"

// FileName is the config file looked up in the home directory and the
// working directory, without extension.
const FileName = ".circuitglobe"

// Config is the complete set of settings.
type Config struct {
	World    string `mapstructure:"world"`
	Circuits string `mapstructure:"circuits"`
	// Aliases names a YAML alias table replacing the embedded one.
	Aliases string `mapstructure:"aliases"`

	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Margin float64 `mapstructure:"margin"`

	Interval time.Duration `mapstructure:"interval"`
	Duration time.Duration `mapstructure:"duration"`
	Hold     time.Duration `mapstructure:"hold"`
	FPS      int           `mapstructure:"fps"`
	Tilt     float64       `mapstructure:"tilt"`
	Easing   string        `mapstructure:"ease"`

	Addr string `mapstructure:"addr"`

	Style StyleConfig `mapstructure:"style"`
}

// StyleConfig is the textual form of render.Style.
type StyleConfig struct {
	Sphere       string  `mapstructure:"sphere"`
	SphereStroke string  `mapstructure:"sphere_stroke"`
	Land         string  `mapstructure:"land"`
	Highlight    string  `mapstructure:"highlight"`
	Border       string  `mapstructure:"border"`
	Arc          string  `mapstructure:"arc"`
	Marker       string  `mapstructure:"marker"`
	Label        string  `mapstructure:"label"`
	SphereWidth  float64 `mapstructure:"sphere_width"`
	BorderWidth  float64 `mapstructure:"border_width"`
	ArcWidth     float64 `mapstructure:"arc_width"`
	MarkerRadius float64 `mapstructure:"marker_radius"`
	LabelOffset  float64 `mapstructure:"label_offset"`
	LabelSize    float64 `mapstructure:"label_size"`
}

// Default returns the reference settings.
func Default() Config {
	s := render.DefaultStyle()
	return Config{
		World:    dataset.DefaultWorld,
		Circuits: dataset.DefaultCircuits,
		Width:    600,
		Height:   400,
		Margin:   10,
		Interval: sequence.DefaultInterval,
		Duration: sequence.DefaultDuration,
		Hold:     2 * time.Second,
		FPS:      25,
		Tilt:     sequence.TiltBias,
		Easing:   "cubic",
		Addr:     ":8080",
		Style: StyleConfig{
			Sphere:       render.FormatColor(s.Sphere),
			SphereStroke: render.FormatColor(s.SphereStroke),
			Land:         render.FormatColor(s.Land),
			Highlight:    render.FormatColor(s.Highlight),
			Border:       render.FormatColor(s.Border),
			Arc:          render.FormatColor(s.Arc),
			Marker:       render.FormatColor(s.Marker),
			Label:        render.FormatColor(s.Label),
			SphereWidth:  s.SphereWidth,
			BorderWidth:  s.BorderWidth,
			ArcWidth:     s.ArcWidth,
			MarkerRadius: s.MarkerRadius,
			LabelOffset:  s.LabelOffset,
			LabelSize:    s.LabelSize,
		},
	}
}

// SetDefaults registers every key with its default. Environment variables
// are only consulted for registered keys.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("world", d.World)
	v.SetDefault("circuits", d.Circuits)
	v.SetDefault("aliases", d.Aliases)
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("margin", d.Margin)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("duration", d.Duration)
	v.SetDefault("hold", d.Hold)
	v.SetDefault("fps", d.FPS)
	v.SetDefault("tilt", d.Tilt)
	v.SetDefault("ease", d.Easing)
	v.SetDefault("addr", d.Addr)

	v.SetDefault("style.sphere", d.Style.Sphere)
	v.SetDefault("style.sphere_stroke", d.Style.SphereStroke)
	v.SetDefault("style.land", d.Style.Land)
	v.SetDefault("style.highlight", d.Style.Highlight)
	v.SetDefault("style.border", d.Style.Border)
	v.SetDefault("style.arc", d.Style.Arc)
	v.SetDefault("style.marker", d.Style.Marker)
	v.SetDefault("style.label", d.Style.Label)
	v.SetDefault("style.sphere_width", d.Style.SphereWidth)
	v.SetDefault("style.border_width", d.Style.BorderWidth)
	v.SetDefault("style.arc_width", d.Style.ArcWidth)
	v.SetDefault("style.marker_radius", d.Style.MarkerRadius)
	v.SetDefault("style.label_offset", d.Style.LabelOffset)
	v.SetDefault("style.label_size", d.Style.LabelSize)
}

// Init prepares v: defaults, environment binding and the config file.
// An explicit cfgFile must exist; otherwise a missing .circuitglobe.yaml in
// the home or working directory is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// BindFlags binds every flag in fs whose name, with dashes as
// underscores, is a registered key. A flag wins over the environment and
// the config file only when it was set on the command line.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !known[key] {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("binding flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.World == "":
		return errors.New("invalid config: world is empty")
	case c.Circuits == "":
		return errors.New("invalid config: circuits is empty")
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid config: size %dx%d must be positive", c.Width, c.Height)
	case c.Margin < 0 || 2*c.Margin >= float64(min(c.Width, c.Height)):
		return fmt.Errorf("invalid config: margin %g does not fit %dx%d", c.Margin, c.Width, c.Height)
	case c.Interval <= 0:
		return fmt.Errorf("invalid config: interval %s must be positive", c.Interval)
	case c.Duration <= 0:
		return fmt.Errorf("invalid config: duration %s must be positive", c.Duration)
	case c.Hold < 0:
		return fmt.Errorf("invalid config: hold %s is negative", c.Hold)
	case c.FPS <= 0 || c.FPS > 100:
		return fmt.Errorf("invalid config: fps %d must be in 1..100", c.FPS)
	}
	if _, err := timeline.EaseByName(c.Easing); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.RenderStyle(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RenderStyle parses the style colors.
func (c Config) RenderStyle() (render.Style, error) {
	s := render.Style{
		SphereWidth:  c.Style.SphereWidth,
		BorderWidth:  c.Style.BorderWidth,
		ArcWidth:     c.Style.ArcWidth,
		MarkerRadius: c.Style.MarkerRadius,
		LabelOffset:  c.Style.LabelOffset,
		LabelSize:    c.Style.LabelSize,
	}
	var err error
	parse := func(key, val string) color.NRGBA {
		if err != nil {
			return color.NRGBA{}
		}
		col, perr := render.ParseColor(val)
		if perr != nil {
			err = fmt.Errorf("style.%s: %w", key, perr)
		}
		return col
	}
	s.Sphere = parse("sphere", c.Style.Sphere)
	s.SphereStroke = parse("sphere_stroke", c.Style.SphereStroke)
	s.Land = parse("land", c.Style.Land)
	s.Highlight = parse("highlight", c.Style.Highlight)
	s.Border = parse("border", c.Style.Border)
	s.Arc = parse("arc", c.Style.Arc)
	s.Marker = parse("marker", c.Style.Marker)
	s.Label = parse("label", c.Style.Label)
	if err != nil {
		return render.Style{}, err
	}
	return s, nil
}

// Frame returns the transition tick spacing for the configured frame rate.
func (c Config) Frame() time.Duration {
	if c.FPS <= 0 {
		return timeline.DefaultFrame
	}
	return time.Second / time.Duration(c.FPS)
}

// SequenceOptions returns the tour timings.
func (c Config) SequenceOptions() (sequence.Options, error) {
	ease, err := timeline.EaseByName(c.Easing)
	if err != nil {
		return sequence.Options{}, err
	}
	return sequence.Options{
		Interval: c.Interval,
		Duration: c.Duration,
		Frame:    c.Frame(),
		Ease:     ease,
		Tilt:     c.Tilt,
	}, nil
}

// Projection fits the globe to the output surface inside the margin.
func (c Config) Projection() geo.Orthographic {
	return geo.FitExtent(c.Margin, c.Margin, float64(c.Width)-c.Margin, float64(c.Height)-c.Margin)
}
