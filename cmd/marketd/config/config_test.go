package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/iov-one/bazaar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *c)
	assert.Equal(t, 5*time.Second, c.CacheTTL())
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	want := DefaultConfig()
	want.ChainID = "bazaar-local"
	want.Listen = "0.0.0.0:9000"
	want.History = 3
	require.NoError(t, Write(filepath.Join(home, FileName), want))

	c, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, want, *c)

	t.Setenv("BAZAAR_LOG_LEVEL", "debug")
	t.Setenv("BAZAAR_DEBUG", "true")
	c, err = Load(home)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.Debug)
	assert.Equal(t, "bazaar-local", c.ChainID)
}

func TestLoadInvalid(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig()
	cfg.ChainID = "bad id"
	require.NoError(t, Write(filepath.Join(home, FileName), cfg))

	_, err := Load(home)
	require.Error(t, err)
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]struct {
		content string
		wantErr *errors.Error
		want    func(*Config)
	}{
		"partial file keeps defaults": {
			content: "listen = \"127.0.0.1:1234\"\n",
			want:    func(c *Config) { c.Listen = "127.0.0.1:1234" },
		},
		"unknown key": {
			content: "listen = \"127.0.0.1:1234\"\nport = 3\n",
			wantErr: errors.ErrInvalidInput,
		},
		"not toml": {
			content: "listen: [",
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path := filepath.Join(dir, testName+".toml")
			require.NoError(t, ioutil.WriteFile(path, []byte(tc.content), 0600))

			c, err := Decode(path)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err))
				return
			}
			require.NoError(t, err)
			want := DefaultConfig()
			tc.want(&want)
			assert.Equal(t, want, *c)
		})
	}

	_, err := Decode(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.ErrNotFound.Is(err))
}
