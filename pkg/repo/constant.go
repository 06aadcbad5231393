package repo

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
)

const (
	AppName = "scw"

	// CfgFileName is the default config name
	CfgFileName = "config.toml"

	genesisCfgFileName = "genesis.toml"

	// defaultRepoRoot is the path to the default config dir location.
	defaultRepoRoot = "~/.scw"

	// rootPathEnvVar is the environment variable used to change the path root.
	rootPathEnvVar = "SCW_PATH"

	envPrefix = "SCW"

	genesisEnvPrefix = "SCW_GENESIS"

	LogsDirName = "logs"
)

const (
	KVStorageTypePebble = "pebble"
	KVStorageTypeMemory = "memory"
)

const DefaultAccountBalance = "1000000000000000000000000000"

// DefaultAccountKeys are the private keys of DefaultAccountAddrs, only used in dev and tests
var DefaultAccountKeys = []string{
	"b6477143e17f889263044f6cf463dc37177ac4526c4c39a7a344198457024a2f",
	"05c3708d30c2c72c4b36314a41f30073ab18ea226cf8c6b9f566720bfe2e8631",
	"85a94dd51403590d4f149f9230b6f5de3a08e58899dcaf0f77768efb1825e854",
	"72efcf4bb0e8a300d3e47e6a10f630bcd540de933f01ed5380897fc5e10dc95d",
}

var DefaultAccountAddrs = lo.Map(DefaultAccountKeys, func(key string, _ int) string {
	sk, err := ethcrypto.HexToECDSA(key)
	if err != nil {
		panic(err)
	}
	return ethcrypto.PubkeyToAddress(sk.PublicKey).Hex()
})
