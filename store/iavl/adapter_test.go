package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeBase returns the base layer
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit := NewCommitStore(tmpDir, "base")
	close := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, close
}

func TestAdapter(t *testing.T) {
	store.CheckCacheableKVStore(t, makeBase)
}

// TestCommitOverwrite checks that we commit properly
// and can add/overwrite/query in the next adapter
func TestCommitOverwrite(t *testing.T) {
	k1, k2, k3 := []byte("item:1"), []byte("item:2"), []byte("item:3")
	v1, v2, v3 := []byte("alice"), []byte("bob"), []byte("carol")

	commit, close := makeCommitStore()
	defer close()
	// only one to trigger a cleanup
	commit.WithHistory(1)

	id, err := commit.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(0), id.Version)
	assert.Empty(t, id.Hash)

	parent := commit.CacheWrap()
	require.NoError(t, parent.Set(k1, v1))
	require.NoError(t, parent.Set(k2, v2))
	require.NoError(t, parent.Write())

	// nothing is visible in committed state before Commit
	got, err := commit.Get(k1)
	require.NoError(t, err)
	assert.Nil(t, got)

	id, err = commit.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)

	got, err = commit.Get(k1)
	require.NoError(t, err)
	assert.Equal(t, v1, got)

	// child also comes from commit
	child := commit.CacheWrap()
	require.NoError(t, child.Set(k1, v3))
	require.NoError(t, child.Set(k3, v3))
	require.NoError(t, child.Delete(k2))

	// and a side-cache wrap to see they are in parallel
	side := commit.CacheWrap()
	store.AssertGetHas(t, side, k1, v1, true)
	store.AssertGetHas(t, side, k2, v2, true)
	store.AssertGetHas(t, side, k3, nil, false)

	store.AssertGetHas(t, child, k1, v3, true)
	store.AssertGetHas(t, child, k2, nil, false)
	store.AssertGetHas(t, child, k3, v3, true)

	// write child to the working tree, side reads through
	require.NoError(t, child.Write())
	store.AssertGetHas(t, side, k2, nil, false)
	store.AssertGetHas(t, side, k3, v3, true)

	id2, err := commit.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2.Version)
	assert.NotEqual(t, id.Hash, id2.Hash)

	latest, err := commit.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, id2, latest)
}

func TestCommitReload(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	commit := NewCommitStore(tmpDir, "ledger")
	require.NoError(t, commit.LoadLatestVersion())
	cache := commit.CacheWrap()
	require.NoError(t, cache.Set([]byte("fee"), []byte{7}))
	require.NoError(t, cache.Write())
	id, err := commit.Commit()
	require.NoError(t, err)
	commit.Close()

	reopened := NewCommitStore(tmpDir, "ledger")
	defer reopened.Close()
	require.NoError(t, reopened.LoadLatestVersion())
	latest, err := reopened.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, id, latest)

	got, err := reopened.Get([]byte("fee"))
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, got)
}
