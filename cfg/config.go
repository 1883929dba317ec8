package cfg

import (
	"io/ioutil"
	"path"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const _DEFAULT_DATA_DIR = "data"

type Config struct {
	BaseConfig

	Passive *PassiveConfig
}

type BaseConfig struct {
	RootDir string

	DbPath string

	LogLevel string
}

type PassiveConfig struct {
	// file the address table is dumped to
	AddrFile string

	// file the ban table is dumped to
	BanFile string

	SaveInterval time.Duration

	// consecutive failures before an entry may be evicted
	AttemptLimit int

	// whether exceeding AttemptLimit actually evicts; off by default
	AutoEvict bool
}

func DefaultPassiveConfig() *PassiveConfig {
	return &PassiveConfig{
		AddrFile:     "passive_peers.dat",
		BanFile:      "banlist.dat",
		SaveInterval: 2 * time.Minute,
		AttemptLimit: 2,
		AutoEvict:    false,
	}
}

func DefaultConfig() *Config {
	config := &Config{}
	config.DbPath = _DEFAULT_DATA_DIR
	config.LogLevel = "info"
	config.Passive = DefaultPassiveConfig()
	return config
}

func adjustPath(dir string, path *string) bool {
	if len(*path) == 0 {
		return false
	}

	if filepath.IsAbs(*path) {
		return false
	}

	*path = filepath.Join(dir, *path)
	return true
}

func LoadConfig(pathname string) (*Config, error) {
	bz, err := ioutil.ReadFile(pathname)
	if err != nil {
		return nil, err
	}

	config := *DefaultConfig()
	_, err = toml.Decode(string(bz), &config)
	if err != nil {
		return nil, err
	}

	configDir := path.Dir(pathname)
	if configDir != "." {
		adjustPath(configDir, &config.DbPath)
		adjustPath(configDir, &config.Passive.AddrFile)
		adjustPath(configDir, &config.Passive.BanFile)
	}
	return &config, nil
}
