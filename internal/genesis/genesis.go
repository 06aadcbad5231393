package genesis

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var (
	genesisConfigKey = []byte("genesis_cfg")

	ErrInitialized = errors.New("genesis already initialized")
)

// Initialize deploys the account system and the fee token, funds the genesis accounts and persists block 0
func Initialize(genesis *repo.GenesisConfig, lg *ledger.Ledger) error {
	if IsInitialized(lg) {
		return ErrInitialized
	}

	if err := initializeGenesisConfig(genesis, lg.StateLedger); err != nil {
		return err
	}

	nvm := executor.NewNativeVM()
	for _, d := range saccount.Deployments() {
		if err := nvm.Deploy(lg.StateLedger, d.Address, d.Name); err != nil {
			return err
		}
	}

	tokenConfig, err := token.GenerateConfig(genesis)
	if err != nil {
		return err
	}
	tokenAddr := ethcommon.HexToAddress(common.TokenContractAddr)
	if err := nvm.Deploy(lg.StateLedger, tokenAddr, token.ContractName); err != nil {
		return err
	}
	if err := token.Init(lg.StateLedger, tokenAddr, tokenConfig); err != nil {
		return errors.Wrap(err, "init token")
	}

	if !ethcommon.IsHexAddress(genesis.Paymaster.Owner) || !ethcommon.IsHexAddress(genesis.Paymaster.Signer) {
		return errors.Errorf("invalid paymaster owner %q or signer %q", genesis.Paymaster.Owner, genesis.Paymaster.Signer)
	}
	if err := saccount.InitVerifyingPaymaster(lg.StateLedger, saccount.VerifyingPaymasterAddr,
		ethcommon.HexToAddress(genesis.Paymaster.Owner), ethcommon.HexToAddress(genesis.Paymaster.Signer)); err != nil {
		return errors.Wrap(err, "init verifying paymaster")
	}

	balances, err := genesis.ParseBalances()
	if err != nil {
		return err
	}
	for addr, balance := range balances {
		if !ethcommon.IsHexAddress(addr) {
			return errors.Errorf("invalid genesis account %q", addr)
		}
		lg.StateLedger.SetBalance(ethcommon.HexToAddress(addr), balance)
	}
	lg.StateLedger.Finalise()

	return lg.PersistBlockData(&ledger.BlockData{
		Header: &ledger.BlockHeader{
			Number:    0,
			Timestamp: genesis.Timestamp,
			GasPrice:  big.NewInt(0),
		},
	})
}

func IsInitialized(lg *ledger.Ledger) bool {
	_, err := lg.ChainLedger.GetBlockHeader(0)
	return err == nil
}

func initializeGenesisConfig(genesis *repo.GenesisConfig, lg ledger.StateLedger) error {
	genesisCfg, err := json.Marshal(genesis)
	if err != nil {
		return err
	}
	lg.SetState(ethcommon.HexToAddress(common.ZeroAddress), genesisConfigKey, genesisCfg)
	return nil
}

// GetGenesisConfig retrieves the genesis configuration from the given ledger.
func GetGenesisConfig(lg *ledger.Ledger) (*repo.GenesisConfig, error) {
	exist, bytes := lg.StateLedger.GetState(ethcommon.HexToAddress(common.ZeroAddress), genesisConfigKey)
	if !exist {
		return nil, nil
	}

	genesis := &repo.GenesisConfig{}
	if err := json.Unmarshal(bytes, genesis); err != nil {
		return nil, err
	}
	return genesis, nil
}
