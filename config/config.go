// Package config loads and persists queuectl's small YAML
// configuration file: retry defaults and the SQLite database path,
// plus any extra keys a deployment wants to carry alongside them.
package config

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigParse is returned (never panicked on) when the config file
// exists but cannot be parsed as YAML. Callers should fall back to
// Default() rather than treat this as fatal.
var ErrConfigParse = errors.New("config: failed to parse config file")

// Default file and value constants, mirroring the original prototype's
// ConfigManager.DEFAULT_CONFIG.
const (
	DefaultPath        = "queuectl_config.yaml"
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2
	DefaultDBPath      = "queuectl.db"
)

// keys recognized as first-class fields. Anything else round-trips
// through Extra.
const (
	KeyMaxRetries  = "max_retries"
	KeyBackoffBase = "backoff_base"
	KeyDBPath      = "db_path"
)

// Config holds queuectl's runtime configuration.
type Config struct {
	MaxRetries  int    `yaml:"max_retries"`
	BackoffBase int    `yaml:"backoff_base"`
	DBPath      string `yaml:"db_path"`

	// Extra carries any keys present in the file that aren't one of the
	// first-class fields above, so a round-trip through Save never
	// silently drops data a user added by hand.
	Extra map[string]string `yaml:"-"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		DBPath:      DefaultDBPath,
	}
}

// canonicalKey maps a CLI-supplied key ("max-retries") to the
// underscored form persisted in the config file ("max_retries"), per
// the accepted dual spelling for `config set`.
func canonicalKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// rawDoc is the intermediate map used for Load/Save so unrecognized
// keys survive a round trip.
type rawDoc map[string]any

func fromRaw(raw rawDoc) *Config {
	c := Default()
	for k, v := range raw {
		switch canonicalKey(k) {
		case KeyMaxRetries:
			if n, ok := toInt(v); ok {
				c.MaxRetries = n
			}
		case KeyBackoffBase:
			if n, ok := toInt(v); ok {
				c.BackoffBase = n
			}
		case KeyDBPath:
			if s, ok := v.(string); ok {
				c.DBPath = s
			}
		default:
			if c.Extra == nil {
				c.Extra = map[string]string{}
			}
			c.Extra[canonicalKey(k)] = toString(v)
		}
	}
	return c
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		b, err := yaml.Marshal(s)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}

func (c *Config) toRaw() rawDoc {
	raw := rawDoc{
		KeyMaxRetries:  c.MaxRetries,
		KeyBackoffBase: c.BackoffBase,
		KeyDBPath:      c.DBPath,
	}
	for k, v := range c.Extra {
		raw[k] = v
	}
	return raw
}

// Load reads and parses YAML configuration from r. A parse failure
// returns Default() alongside ErrConfigParse, matching the prototype's
// "bad file falls back to defaults" behavior.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), err
	}
	var raw rawDoc
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Default(), ErrConfigParse
	}
	if raw == nil {
		return Default(), nil
	}
	return fromRaw(raw), nil
}

// Save writes c as YAML to w.
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(c.toRaw())
}

// LoadFile loads configuration from path. A missing file yields
// Default() with no error.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	defer f.Close()
	return Load(f)
}

// SaveFile persists c to path, creating or truncating it.
func (c *Config) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Save(f)
}

// Get returns the value for key (first-class or Extra) as a string,
// along with whether it was found.
func (c *Config) Get(key string) (string, bool) {
	switch canonicalKey(key) {
	case KeyMaxRetries:
		return strconv.Itoa(c.MaxRetries), true
	case KeyBackoffBase:
		return strconv.Itoa(c.BackoffBase), true
	case KeyDBPath:
		return c.DBPath, true
	default:
		v, ok := c.Extra[canonicalKey(key)]
		return v, ok
	}
}

// Set assigns value to key, accepting both hyphenated and underscored
// spellings and always persisting the underscored form.
func (c *Config) Set(key, value string) error {
	switch canonicalKey(key) {
	case KeyMaxRetries:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.MaxRetries = n
	case KeyBackoffBase:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.BackoffBase = n
	case KeyDBPath:
		c.DBPath = value
	default:
		if c.Extra == nil {
			c.Extra = map[string]string{}
		}
		c.Extra[canonicalKey(key)] = value
	}
	return nil
}

// Reset restores c in place to the built-in defaults, discarding Extra.
func (c *Config) Reset() {
	*c = *Default()
}
