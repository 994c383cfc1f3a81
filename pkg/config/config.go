// Package config loads mindgrid.toml.
//
// Configuration is optional: every field has a default, a missing file is
// not an error, and CLI flags override file values. The file is looked up at
// an explicit path when one is given, otherwise under the user's config
// directory (~/.config/mindgrid/mindgrid.toml on Linux).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindgrid/pkg/errors"
)

// FileName is the configuration file name looked up in the config directory.
const FileName = "mindgrid.toml"

// Config is the root of mindgrid.toml.
type Config struct {
	Server ServerConfig `toml:"server"`
	Editor EditorConfig `toml:"editor"`
	Export ExportConfig `toml:"export"`
}

// ServerConfig configures `mindgrid serve` and the remote client.
type ServerConfig struct {
	// Addr is the listen address for serve.
	Addr string `toml:"addr"`

	// MongoURI selects the MongoDB backend when set; serve falls back to an
	// in-memory store without it.
	MongoURI string `toml:"mongo_uri"`

	// MongoDB is the database name used with MongoURI.
	MongoDB string `toml:"mongo_db"`

	// RedisAddr enables the Redis board cache in front of the store.
	RedisAddr string `toml:"redis_addr"`

	// Remote is the default server URL for --remote commands.
	Remote string `toml:"remote"`
}

// EditorConfig sets the visual defaults for newly created nodes.
type EditorConfig struct {
	NodeColor string `toml:"node_color"`
	TextColor string `toml:"text_color"`
	Shape     string `toml:"shape"`
}

// ExportConfig sets the defaults for `mindgrid export`.
type ExportConfig struct {
	Format  string  `toml:"format"`
	Scale   float64 `toml:"scale"`
	Padding float64 `toml:"padding"`
	Indent  string  `toml:"indent"`
	Bullet  string  `toml:"bullet"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8391",
			MongoDB: "mindgrid",
		},
		Editor: EditorConfig{
			NodeColor: "#ffffff",
			TextColor: "#000000",
			Shape:     "rectangle",
		},
		Export: ExportConfig{
			Format:  "svg",
			Scale:   1.0,
			Padding: 40,
			Indent:  "  ",
			Bullet:  "-",
		},
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "resolve config dir")
	}
	return filepath.Join(dir, "mindgrid", FileName), nil
}

// Load reads the configuration at path, applying defaults for everything the
// file leaves unset. An empty path means the default location; a missing
// file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Editor.NodeColor != "" {
		if err := errors.ValidateHexColor(c.Editor.NodeColor); err != nil {
			return err
		}
	}
	if c.Editor.TextColor != "" {
		if err := errors.ValidateHexColor(c.Editor.TextColor); err != nil {
			return err
		}
	}
	switch c.Editor.Shape {
	case "", "rectangle", "circle", "hexagon":
	default:
		return errors.New(errors.ErrCodeInvalidShape, "unknown shape %q in config", c.Editor.Shape)
	}
	if c.Export.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "export scale must be positive, got %g", c.Export.Scale)
	}
	if c.Export.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "export padding must not be negative, got %g", c.Export.Padding)
	}
	return nil
}
