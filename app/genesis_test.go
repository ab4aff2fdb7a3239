package app

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisValidate(t *testing.T) {
	cases := map[string]struct {
		gen     Genesis
		wantErr *errors.Error
	}{
		"valid": {
			gen: Genesis{
				ChainID:  "test-chain",
				AppState: bazaar.Options{"market": json.RawMessage(`{}`)},
			},
			wantErr: nil,
		},
		"invalid chain id": {
			gen: Genesis{
				ChainID:  "x",
				AppState: bazaar.Options{"market": json.RawMessage(`{}`)},
			},
			wantErr: errors.ErrInvalidInput,
		},
		"missing app state": {
			gen:     Genesis{ChainID: "test-chain"},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.gen.Validate()
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
		})
	}
}

func TestSaveAndLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "genesis.json")

	gen := &Genesis{
		ChainID:  "save-load",
		AppState: bazaar.Options{"cash": json.RawMessage(`[{"address":"AA"}]`)},
	}
	require.NoError(t, SaveGenesis(path, gen))

	loaded, err := LoadGenesis(path)
	require.NoError(t, err)
	assert.Equal(t, gen.ChainID, loaded.ChainID)
	assert.JSONEq(t, `[{"address":"AA"}]`, string(loaded.AppState["cash"]))

	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.ErrNotFound.Is(err))

	require.NoError(t, ioutil.WriteFile(path, []byte("not json"), 0600))
	_, err = LoadGenesis(path)
	assert.True(t, errors.ErrInvalidInput.Is(err))
}
