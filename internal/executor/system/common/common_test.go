package common

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const testABI = `[
	{"type":"event","name":"Deposited","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"totalDeposit","type":"uint256","indexed":false}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]}
]`

type mockContract struct {
	SystemContractBase
}

type EventDeposited struct {
	Account      ethcommon.Address
	TotalDeposit *big.Int
}

func (e *EventDeposited) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["Deposited"])
}

func newMockContractConfig() *SystemContractBuildConfig[*mockContract] {
	return &SystemContractBuildConfig[*mockContract]{
		Name:   "mock",
		AbiStr: testABI,
		Layout: NewStorageLayout(1, Slot{Index: 0, Name: "deposits", Type: "mapping(address=>uint256)"}),
		Constructor: func(systemContractBase SystemContractBase) *mockContract {
			return &mockContract{SystemContractBase: systemContractBase}
		},
	}
}

func newTestContext(t *testing.T, lg ledger.StateLedger, gas uint64) *VMContext {
	self := ethcommon.HexToAddress(SystemContractStartAddr)
	return &VMContext{
		StateLedger: lg,
		Tx:          &TxContext{BlockNumber: 7, MaxSignatureDepth: 2},
		Self:        self,
		CodeAddress: self,
		Gas:         NewGasMeter(gas),
		Value:       new(big.Int),
	}
}

func TestRevertError(t *testing.T) {
	sender := ethcommon.HexToAddress("0x8464135c8F25Da09e49BC8782676a84730C318bC")
	revertErr := NewRevertError("SenderAddressResult", abi.Arguments{
		abi.Argument{
			Name: "sender",
			Type: AddressType,
		},
	}, []any{sender})

	assert.True(t, errors.Is(revertErr, vm.ErrExecutionReverted))
	data := packer.RevertData(revertErr)
	assert.Equal(t, MethodID("SenderAddressResult(address)"), [4]byte(data[:4]))
	assert.Equal(t, ethcommon.LeftPadBytes(sender.Bytes(), 32), data[4:])
}

func TestMethodID(t *testing.T) {
	assert.Equal(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, MethodID("transfer(address,uint256)"))
	assert.Equal(t, [4]byte{0x16, 0x26, 0xba, 0x7e}, MethodID("isValidSignature(bytes32,bytes)"))
}

func TestEmitEvent(t *testing.T) {
	lg := ledger.NewMemoryStateLedger(repo.MockRepo(t))
	ctx := newTestContext(t, lg, 100000)
	c := newMockContractConfig().Build(ctx)
	account := ethcommon.HexToAddress("0x1")

	require.Nil(t, c.EmitEvent(&EventDeposited{Account: account, TotalDeposit: big.NewInt(5)}))
	logs := lg.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, ctx.Self, logs[0].Address)
	assert.EqualValues(t, 7, logs[0].BlockNumber)
	assert.Equal(t, c.Abi.Events["Deposited"].ID, logs[0].Topics[0])
	assert.Equal(t, ethcommon.BytesToHash(account.Bytes()), logs[0].Topics[1])
	assert.Equal(t, LogGas(logs[0]), ctx.Gas.Used())

	// not enough gas for the log
	ctx.Gas = NewGasMeter(10)
	assert.Equal(t, vm.ErrOutOfGas, c.EmitEvent(&EventDeposited{Account: account, TotalDeposit: big.NewInt(5)}))
	assert.Len(t, lg.Logs(), 1)
}

func TestBuildConfig(t *testing.T) {
	lg := ledger.NewMemoryStateLedger(repo.MockRepo(t))
	cfg := newMockContractConfig()
	assert.Equal(t, "mock", cfg.ContractName())
	assert.Contains(t, cfg.ContractABI().Methods, "balanceOf")
	assert.Equal(t, cfg.Layout, cfg.StorageLayout())

	ctx := newTestContext(t, lg, 0)
	instance := cfg.New(ctx)
	c, ok := instance.(*mockContract)
	require.True(t, ok)
	assert.Equal(t, ctx.Self, c.Address())
	assert.Equal(t, ctx.Self, c.StateAccount.GetAddress())
	assert.False(t, ctx.IsDelegated())

	broken := &SystemContractBuildConfig[*mockContract]{Name: "broken", AbiStr: "{"}
	assert.Panics(t, func() {
		broken.ContractABI()
	})
}

func TestTxContextDepth(t *testing.T) {
	tx := &TxContext{MaxSignatureDepth: 2}
	assert.Nil(t, tx.EnterSignature())
	assert.Nil(t, tx.EnterSignature())
	assert.Equal(t, ErrSignatureDepth, tx.EnterSignature())
	tx.ExitSignature()
	assert.Nil(t, tx.EnterSignature())

	for i := 0; i < MaxCallDepth; i++ {
		require.Nil(t, tx.EnterCall())
	}
	assert.Equal(t, ErrCallDepth, tx.EnterCall())
	tx.ExitCall()
	assert.Equal(t, MaxCallDepth-1, tx.CallDepth())
}

func TestReentrancyGuard(t *testing.T) {
	account := newTestAccount(t)
	rg := NewReentrancyGuard(account, SlotKey(9))
	assert.False(t, rg.IsEntered())
	assert.Nil(t, rg.Enter())
	assert.True(t, rg.IsEntered())

	// a new instance over the same storage sees the status
	again := NewReentrancyGuard(account, SlotKey(9))
	err := again.Enter()
	assert.True(t, errors.Is(err, vm.ErrExecutionReverted))

	rg.Exit()
	assert.False(t, again.IsEntered())
	assert.Nil(t, again.Enter())
}

func TestConvertOutput(t *testing.T) {
	outputs := []any{big.NewInt(3), ethcommon.HexToAddress("0x2"), [4]byte{1, 2, 3, 4}}

	n, err := ConvertOutput[*big.Int](outputs, 0)
	assert.Nil(t, err)
	assert.EqualValues(t, 3, n.Int64())

	addr, err := ConvertOutput[ethcommon.Address](outputs, 1)
	assert.Nil(t, err)
	assert.Equal(t, ethcommon.HexToAddress("0x2"), addr)

	magic, err := ConvertOutput[[4]byte](outputs, 2)
	assert.Nil(t, err)
	assert.Equal(t, [4]byte{1, 2, 3, 4}, magic)

	_, err = ConvertOutput[bool](outputs, 0)
	assert.NotNil(t, err)

	_, err = ConvertOutput[bool](outputs, 5)
	assert.NotNil(t, err)
}

func TestIsInSlice(t *testing.T) {
	assert.True(t, IsInSlice(2, []int{1, 2}))
	assert.False(t, IsInSlice("c", []string{"a", "b"}))
}
