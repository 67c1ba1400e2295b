// Package paths finds where modules are read from and cached, and the other
// settings shared by the tools that import modules.
//
// Settings are taken, from lowest to highest precedence, from the defaults, a
// YAML configuration file, a .env file and the process environment.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/logutil"
	"src.elabenv.dev/pkg/modfile"
)

var logger = logutil.GetLogger("[paths] ")

// Config holds the settings.
type Config struct {
	// Roots searched for module files, in order.
	SearchPath []string `yaml:"search-path"`
	// Path of the module store database. Empty disables the store.
	StorePath string `yaml:"store"`
	// Trust level of imported environments.
	TrustLevel uint32 `yaml:"trust"`
}

// Sources names the files Load reads. Files that do not exist are skipped.
type Sources struct {
	ConfigFile string
	DotenvFile string
}

// DefaultSources returns the default configuration file, or the one named by
// $ELABENV_CONFIG, and .env in the working directory.
func DefaultSources() Sources {
	s := Sources{DotenvFile: ".env"}
	if p := os.Getenv(ELABENV_CONFIG); p != "" {
		s.ConfigFile = p
	} else if dir, err := os.UserConfigDir(); err == nil {
		s.ConfigFile = filepath.Join(dir, "elabenv", "config.yaml")
	}
	return s
}

// Default returns the default settings.
func Default() *Config {
	return &Config{SearchPath: []string{"."}, StorePath: defaultStorePath()}
}

func defaultStorePath() string {
	if state := os.Getenv(XDG_STATE_HOME); state != "" {
		return filepath.Join(state, "elabenv", "modules.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "elabenv", "modules.db")
}

// Load returns the settings from the given sources and the process
// environment.
func Load(s Sources) (*Config, error) {
	c := Default()
	if s.ConfigFile != "" {
		if err := c.readFile(s.ConfigFile); err != nil {
			return nil, err
		}
	}
	vars := map[string]string{}
	if s.DotenvFile != "" {
		dotenv, err := godotenv.Read(s.DotenvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.DotenvFile, err)
		}
		for k, v := range dotenv {
			vars[k] = v
		}
	}
	for _, k := range []string{ELABENV_PATH, ELABENV_STORE, ELABENV_TRUST} {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}
	if err := c.applyVars(vars); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	logger.Println("reading config file", path)
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) applyVars(vars map[string]string) error {
	if v, ok := vars[ELABENV_PATH]; ok {
		c.SearchPath = splitPath(v)
	}
	if v, ok := vars[ELABENV_STORE]; ok {
		c.StorePath = v
	}
	if v, ok := vars[ELABENV_TRUST]; ok {
		trust, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return fmt.Errorf("bad $%s: %w", ELABENV_TRUST, err)
		}
		c.TrustLevel = uint32(trust)
	}
	return nil
}

func splitPath(s string) []string {
	var paths []string
	for _, p := range filepath.SplitList(s) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Loader returns a loader for the search path.
func (c *Config) Loader() modfile.SearchPath {
	return modfile.SearchPath(c.SearchPath)
}
