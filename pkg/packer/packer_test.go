package packer

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
	{"type":"event","name":"Deposited","anonymous":false,"inputs":[
		{"indexed":true,"name":"account","type":"address"},
		{"indexed":false,"name":"totalDeposit","type":"uint256"}]},
	{"type":"event","name":"OwnerChanged","anonymous":false,"inputs":[
		{"indexed":true,"name":"owner","type":"address"}]},
	{"type":"error","name":"FailedOp","inputs":[
		{"name":"opIndex","type":"uint256"},
		{"name":"reason","type":"string"}]}
]`

type depositedEvent struct {
	Account      common.Address
	TotalDeposit *big.Int
}

func (e *depositedEvent) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return PackEvent(e, abi.Events["Deposited"])
}

type failedOpError struct {
	OpIndex *big.Int
	Reason  string
}

func (e *failedOpError) Pack(abi abi.ABI) error {
	return PackError(e, abi.Errors["FailedOp"])
}

func parseTestABI(t *testing.T) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(testABI))
	require.Nil(t, err)
	return parsed
}

func TestPackEvent(t *testing.T) {
	contract := parseTestABI(t)
	ev := &depositedEvent{
		Account:      common.HexToAddress("0x00000000000000000000000000000000000a11ce"),
		TotalDeposit: big.NewInt(100),
	}
	log, err := ev.Pack(contract)
	require.Nil(t, err)
	require.Len(t, log.Topics, 2)
	assert.Equal(t, contract.Events["Deposited"].ID, log.Topics[0])
	assert.Equal(t, common.BytesToHash(ev.Account.Bytes()), log.Topics[1])

	data, err := contract.Events["Deposited"].Inputs.Unpack(log.Data)
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(100), data[0])

	parsed := &depositedEvent{}
	require.Nil(t, abi.ParseTopics(parsed, abi.Arguments{contract.Events["Deposited"].Inputs[0]}, log.Topics[1:]))
	assert.Equal(t, ev.Account, parsed.Account)
}

func TestPackEventMissingField(t *testing.T) {
	contract := parseTestABI(t)
	_, err := PackEvent(&depositedEvent{}, contract.Events["OwnerChanged"])
	assert.NotNil(t, err)
	_, err = PackEvent(nil, contract.Events["Deposited"])
	assert.NotNil(t, err)
}

func TestPackError(t *testing.T) {
	contract := parseTestABI(t)
	err := (&failedOpError{OpIndex: big.NewInt(2), Reason: "AA21 didn't pay prefund"}).Pack(contract)

	var revertErr *RevertError
	require.True(t, errors.As(err, &revertErr))
	assert.True(t, errors.Is(err, vm.ErrExecutionReverted))

	failedOp := contract.Errors["FailedOp"]
	assert.Equal(t, failedOp.ID[:4], revertErr.Data[:4])
	values, unpackErr := failedOp.Inputs.Unpack(revertErr.Data[4:])
	require.Nil(t, unpackErr)
	assert.Equal(t, big.NewInt(2), values[0])
	assert.Equal(t, "AA21 didn't pay prefund", values[1])
}

func TestNewRevertStringError(t *testing.T) {
	err := NewRevertStringError("BSA010 not enough gas to execute safe transaction")
	assert.True(t, errors.Is(err, vm.ErrExecutionReverted))

	reason, unpackErr := abi.UnpackRevert(RevertData(err))
	assert.Nil(t, unpackErr)
	assert.Equal(t, "BSA010 not enough gas to execute safe transaction", reason)

	assert.Nil(t, RevertData(errors.New("plain")))
}
