package repo

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInitializesEmptyRepo(t *testing.T) {
	root := t.TempDir()
	rep, err := Load(root)
	require.Nil(t, err)

	assert.Equal(t, root, rep.RepoRoot)
	assert.Equal(t, DefaultConfig(), rep.Config)
	assert.Equal(t, uint64(1356), rep.GenesisConfig.ChainID)
	assert.True(t, fileExist(path.Join(root, CfgFileName)))
	assert.True(t, fileExist(path.Join(root, genesisCfgFileName)))
}

func TestLoadReadsFlushedRepo(t *testing.T) {
	rep := Default(t.TempDir())
	rep.Config.Account.MaxSignatureDepth = 4
	rep.Config.Log.RotationTime = Duration(time.Hour)
	rep.GenesisConfig.ChainID = 42
	require.Nil(t, os.MkdirAll(rep.RepoRoot, 0755))
	require.Nil(t, rep.Flush())

	loaded, err := Load(rep.RepoRoot)
	require.Nil(t, err)
	assert.Equal(t, 4, loaded.Config.Account.MaxSignatureDepth)
	assert.Equal(t, time.Hour, loaded.Config.Log.RotationTime.ToDuration())
	assert.Equal(t, uint64(42), loaded.GenesisConfig.ChainID)
	assert.Equal(t, len(DefaultAccountKeys), len(loaded.GenesisConfig.Accounts))
}

func TestLoadConfigEnvOverride(t *testing.T) {
	root := t.TempDir()
	_, err := LoadConfig(root)
	require.Nil(t, err)

	t.Setenv("SCW_ACCOUNT_MAX_SIGNATURE_DEPTH", "7")
	cfg, err := LoadConfig(root)
	require.Nil(t, err)
	assert.Equal(t, 7, cfg.Account.MaxSignatureDepth)
}

func TestLoadConfigRejectsWrongType(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(path.Join(root, CfgFileName), []byte("[account]\nmax_signature_depth = \"two\"\n"), 0755)
	require.Nil(t, err)

	_, err = LoadConfig(root)
	assert.NotNil(t, err)
}

func TestGenesisParseBalances(t *testing.T) {
	genesis := DefaultGenesisConfig()
	balances, err := genesis.ParseBalances()
	require.Nil(t, err)
	assert.Equal(t, DefaultAccountBalance, balances[DefaultAccountAddrs[0]].String())

	genesis.Accounts[0].Balance = "abc"
	_, err = genesis.ParseBalances()
	assert.NotNil(t, err)
}

func TestLoadRepoRootFromEnv(t *testing.T) {
	root, err := LoadRepoRootFromEnv("/tmp/scw")
	require.Nil(t, err)
	assert.Equal(t, "/tmp/scw", root)

	t.Setenv(rootPathEnvVar, "/tmp/scw-env")
	root, err = LoadRepoRootFromEnv("")
	require.Nil(t, err)
	assert.Equal(t, "/tmp/scw-env", root)
}
