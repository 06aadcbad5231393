package token

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var (
	tokenAddr = ethcommon.HexToAddress(common.TokenContractAddr)
	holder    = ethcommon.HexToAddress("0x0000000000000000000000000000000000001001")
	alice     = ethcommon.HexToAddress("0x0000000000000000000000000000000000001002")
	bob       = ethcommon.HexToAddress("0x0000000000000000000000000000000000001003")
)

func prepareToken(t *testing.T) *system.TestNVM {
	nvm := system.NewTestNVM(t, BuildConfig)
	nvm.Deploy(tokenAddr, ContractName)
	require.Nil(t, Init(nvm.StateLedger, tokenAddr, &Config{
		Name:        "Fee Token",
		Symbol:      "FEE",
		Decimals:    18,
		TotalSupply: big.NewInt(1000),
		Holder:      holder,
	}))
	return nvm
}

func call(t *testing.T, nvm *system.TestNVM, from ethcommon.Address, method string, args ...any) ([]any, error) {
	return nvm.CallMethod(from, tokenAddr, nil, ABI(), method, args...)
}

func balanceOf(t *testing.T, nvm *system.TestNVM, addr ethcommon.Address) int64 {
	outputs, err := call(t, nvm, alice, balanceOfMethod, addr)
	require.Nil(t, err)
	return outputs[0].(*big.Int).Int64()
}

func TestToken_Metadata(t *testing.T) {
	nvm := prepareToken(t)

	outputs, err := call(t, nvm, alice, nameMethod)
	require.Nil(t, err)
	assert.Equal(t, "Fee Token", outputs[0].(string))

	outputs, err = call(t, nvm, alice, symbolMethod)
	require.Nil(t, err)
	assert.Equal(t, "FEE", outputs[0].(string))

	outputs, err = call(t, nvm, alice, decimalsMethod)
	require.Nil(t, err)
	assert.EqualValues(t, 18, outputs[0].(uint8))

	outputs, err = call(t, nvm, alice, totalSupplyMethod)
	require.Nil(t, err)
	assert.EqualValues(t, 1000, outputs[0].(*big.Int).Int64())

	assert.EqualValues(t, 1000, balanceOf(t, nvm, holder))
	assert.EqualValues(t, 0, balanceOf(t, nvm, alice))
}

func TestToken_Transfer(t *testing.T) {
	nvm := prepareToken(t)

	testcases := []struct {
		name  string
		from  ethcommon.Address
		to    ethcommon.Address
		value int64
		err   error
	}{
		{name: "transfer", from: holder, to: alice, value: 100},
		{name: "all of it", from: alice, to: bob, value: 100},
		{name: "empty balance", from: alice, to: bob, value: 1, err: ErrInsufficientBalance},
		{name: "to zero", from: holder, to: ethcommon.Address{}, value: 1, err: ErrEmptyAccount},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			outputs, err := call(t, nvm, tc.from, transferMethod, tc.to, big.NewInt(tc.value))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.Nil(t, err)
			assert.True(t, outputs[0].(bool))
		})
	}

	assert.EqualValues(t, 900, balanceOf(t, nvm, holder))
	assert.EqualValues(t, 0, balanceOf(t, nvm, alice))
	assert.EqualValues(t, 100, balanceOf(t, nvm, bob))

	var transfers int
	for _, log := range nvm.StateLedger.Logs() {
		if log.Address == tokenAddr && log.Topics[0] == ABI().Events["Transfer"].ID {
			transfers++
		}
	}
	assert.Equal(t, 2, transfers)
}

func TestToken_TransferFrom(t *testing.T) {
	nvm := prepareToken(t)

	_, err := call(t, nvm, alice, transferFromMethod, holder, bob, big.NewInt(10))
	assert.ErrorIs(t, err, ErrNotEnoughAllowance)

	outputs, err := call(t, nvm, holder, approveMethod, alice, big.NewInt(30))
	require.Nil(t, err)
	assert.True(t, outputs[0].(bool))

	_, err = call(t, nvm, alice, transferFromMethod, holder, bob, big.NewInt(10))
	require.Nil(t, err)
	outputs, err = call(t, nvm, alice, allowanceMethod, holder, alice)
	require.Nil(t, err)
	assert.EqualValues(t, 20, outputs[0].(*big.Int).Int64())
	assert.EqualValues(t, 10, balanceOf(t, nvm, bob))

	_, err = call(t, nvm, alice, transferFromMethod, holder, bob, big.NewInt(21))
	assert.ErrorIs(t, err, ErrNotEnoughAllowance)

	_, err = call(t, nvm, holder, approveMethod, ethcommon.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrEmptyAccount)
}

func TestGenerateConfig(t *testing.T) {
	genesis := repo.DefaultGenesisConfig()
	config, err := GenerateConfig(genesis)
	require.Nil(t, err)
	assert.Equal(t, genesis.Token.Name, config.Name)
	assert.Equal(t, ethcommon.HexToAddress(genesis.Token.Holder), config.Holder)
	assert.Equal(t, genesis.Token.TotalSupply, config.TotalSupply.String())

	genesis.Token.TotalSupply = "-1"
	_, err = GenerateConfig(genesis)
	assert.ErrorIs(t, err, ErrTotalSupply)

	genesis.Token.TotalSupply = "lots"
	_, err = GenerateConfig(genesis)
	assert.NotNil(t, err)

	genesis = repo.DefaultGenesisConfig()
	genesis.Token.Holder = "holder"
	_, err = GenerateConfig(genesis)
	assert.NotNil(t, err)
}
