package storagemgr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

func TestInitializeWrongType(t *testing.T) {
	repoConfig := repo.DefaultConfig()
	repoConfig.Storage.KvType = "unsupport"
	err := Initialize(repoConfig)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "unknow kv type unsupport")
}

func TestOpen(t *testing.T) {
	testcase := map[string]struct {
		kvType string
	}{
		"memory": {kvType: repo.KVStorageTypeMemory},
		"pebble": {kvType: repo.KVStorageTypePebble},
	}
	for name, tc := range testcase {
		t.Run(name, func(t *testing.T) {
			repoConfig := repo.DefaultConfig()
			repoConfig.Storage.KvType = tc.kvType
			repoConfig.Storage.Sync = false
			repoConfig.Storage.Pebble.MaxOpenFiles = 128
			err := Initialize(repoConfig)
			require.Nil(t, err)

			rep := &repo.Repo{
				RepoRoot: t.TempDir(),
				Config:   repoConfig,
			}

			p := GetLedgerComponentPath(rep, Ledger)
			s, err := Open(p)
			require.Nil(t, err)
			require.NotNil(t, s)
			s.Put([]byte("k"), []byte("v"))

			same, err := Open(p)
			require.Nil(t, err)
			require.Equal(t, []byte("v"), same.Get([]byte("k")))

			require.Nil(t, Close(p))
			require.Nil(t, Close(p))
		})
	}
}
