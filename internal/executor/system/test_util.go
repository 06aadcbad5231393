package system

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const testGasLimit = 30_000_000

type TestNVM struct {
	t           testing.TB
	Rep         *repo.Repo
	StateLedger ledger.StateLedger
	VM          *NativeVM

	// Tx is the template of the tx context every call runs with
	Tx common.TxContext
}

func NewTestNVM(t testing.TB, definitions ...common.ContractDefinition) *TestNVM {
	rep := repo.MockRepo(t)
	return &TestNVM{
		t:           t,
		Rep:         rep,
		StateLedger: ledger.NewMemoryStateLedger(rep),
		VM:          New(definitions...),
		Tx: common.TxContext{
			GasPrice:          new(big.Int),
			BlockNumber:       1,
			Time:              uint64(time.Now().Unix()),
			ChainID:           big.NewInt(1356),
			MaxSignatureDepth: rep.Config.Account.MaxSignatureDepth,
		},
	}
}

func (nvm *TestNVM) Deploy(addr ethcommon.Address, name string) {
	require.Nil(nvm.t, nvm.VM.Deploy(nvm.StateLedger, addr, name))
}

func (nvm *TestNVM) DeployInstance(addr ethcommon.Address, contractABI abi.ABI, instance any) {
	nvm.VM.DeployInstance(nvm.StateLedger, addr, contractABI, instance)
}

// Call runs a top level call from from, the returned error is the execution error
func (nvm *TestNVM) Call(from, to ethcommon.Address, value *big.Int, data []byte) ([]byte, error) {
	tx := nvm.Tx
	res, err := nvm.VM.Run(nvm.StateLedger, &tx, &Message{
		From:     from,
		To:       to,
		Value:    value,
		Data:     data,
		GasLimit: testGasLimit,
	})
	require.Nil(nvm.t, err)
	return res.ReturnData, res.Err
}

func (nvm *TestNVM) CallMethod(from, to ethcommon.Address, value *big.Int, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	require.Nil(nvm.t, err)
	ret, err := nvm.Call(from, to, value, input)
	if err != nil {
		return nil, err
	}
	if len(contractABI.Methods[method].Outputs) == 0 {
		return nil, nil
	}
	return contractABI.Methods[method].Outputs.Unpack(ret)
}

// Context returns a frame context for driving a contract instance directly
func (nvm *TestNVM) Context(self, from ethcommon.Address) *common.VMContext {
	tx := nvm.Tx
	tx.Origin = from
	return &common.VMContext{
		StateLedger: nvm.StateLedger,
		VM:          nvm.VM,
		Tx:          &tx,
		Self:        self,
		CodeAddress: self,
		From:        from,
		Value:       new(big.Int),
		Gas:         common.NewGasMeter(testGasLimit),
	}
}

// RunSingleTX runs executor on a snapshot, the changes are dropped if it fails
func (nvm *TestNVM) RunSingleTX(executor func() error) error {
	snapshot := nvm.StateLedger.Snapshot()
	if err := executor(); err != nil {
		nvm.StateLedger.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}
