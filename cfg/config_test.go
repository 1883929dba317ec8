package cfg

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	config := DefaultConfig()
	assert.NotNil(config.Passive)
	assert.Equal("data", config.DbPath)
	assert.Equal("info", config.LogLevel)
	assert.Equal("passive_peers.dat", config.Passive.AddrFile)
	assert.Equal("banlist.dat", config.Passive.BanFile)
	assert.Equal(2*time.Minute, config.Passive.SaveInterval)
	assert.Equal(2, config.Passive.AttemptLimit)
	assert.False(config.Passive.AutoEvict)
}

func TestConfigTomlRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = "debug"
	config.Passive.AutoEvict = true

	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(config))

	loaded := &Config{}
	_, err := toml.Decode(buf.String(), loaded)
	require.NoError(t, err)

	assert.Equal(t, config.LogLevel, loaded.LogLevel)
	assert.Equal(t, config.Passive.AutoEvict, loaded.Passive.AutoEvict)
	assert.Equal(t, config.Passive.AddrFile, loaded.Passive.AddrFile)
}

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "cfg_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	text := `
LogLevel = "error"

[Passive]
AddrFile = "addrs.dat"
AttemptLimit = 5
AutoEvict = true
`
	pathname := filepath.Join(dir, "config.toml")
	require.NoError(t, ioutil.WriteFile(pathname, []byte(text), 0644))

	config, err := LoadConfig(pathname)
	require.NoError(t, err)

	assert.Equal(t, "error", config.LogLevel)
	assert.Equal(t, 5, config.Passive.AttemptLimit)
	assert.True(t, config.Passive.AutoEvict)

	// unset fields keep their defaults
	assert.Equal(t, 2*time.Minute, config.Passive.SaveInterval)

	// relative paths are adjusted to the config's directory
	assert.Equal(t, filepath.Join(dir, "addrs.dat"), config.Passive.AddrFile)
	assert.Equal(t, filepath.Join(dir, "banlist.dat"), config.Passive.BanFile)
	assert.Equal(t, filepath.Join(dir, "data"), config.DbPath)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.toml")
	assert.Error(t, err)
}

func TestLoadConfigAbsolutePathsUntouched(t *testing.T) {
	dir, err := ioutil.TempDir("", "cfg_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	text := `
DbPath = "/var/lib/pvnode/data"
`
	pathname := filepath.Join(dir, "config.toml")
	require.NoError(t, ioutil.WriteFile(pathname, []byte(text), 0644))

	config, err := LoadConfig(pathname)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pvnode/data", config.DbPath)
}
