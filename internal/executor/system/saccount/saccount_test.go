package saccount

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
)

var (
	relayer   = ethcommon.HexToAddress("0x0000000000000000000000000000000000002001")
	receiver  = ethcommon.HexToAddress("0x0000000000000000000000000000000000002002")
	bundler   = ethcommon.HexToAddress("0x0000000000000000000000000000000000002003")
	tokenAddr = ethcommon.HexToAddress(common.TokenContractAddr)

	oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

func newTestNVM(t *testing.T) *system.TestNVM {
	nvm := system.NewTestNVM(t, append(Definitions(), token.BuildConfig)...)
	for _, d := range Deployments() {
		nvm.Deploy(d.Address, d.Name)
	}
	nvm.Deploy(tokenAddr, token.ContractName)
	return nvm
}

type testAccount struct {
	t       *testing.T
	nvm     *system.TestNVM
	key     *ecdsa.PrivateKey
	owner   ethcommon.Address
	address ethcommon.Address
}

// deployAccount creates an account owned by a fresh key through the factory
func deployAccount(t *testing.T, nvm *system.TestNVM, modules ...ethcommon.Address) *testAccount {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	account := deployAccountWithOwner(t, nvm, crypto.PubkeyToAddress(key.PublicKey), modules...)
	account.key = key
	return account
}

func deployAccountWithOwner(t *testing.T, nvm *system.TestNVM, owner ethcommon.Address, modules ...ethcommon.Address) *testAccount {
	if modules == nil {
		modules = []ethcommon.Address{}
	}
	outputs, err := nvm.CallMethod(relayer, AccountFactoryAddr, nil, SmartAccountFactoryBuildConfig.ContractABI(),
		"deployCounterFactualAccount", owner, modules, big.NewInt(0))
	require.Nil(t, err)
	address := outputs[0].(ethcommon.Address)
	require.Equal(t, CounterFactualAddress(AccountFactoryAddr, owner, modules, big.NewInt(0)), address)
	return &testAccount{t: t, nvm: nvm, owner: owner, address: address}
}

// call invokes an account method from from
func (a *testAccount) call(from ethcommon.Address, method string, args ...any) ([]any, error) {
	return a.nvm.CallMethod(from, a.address, nil, SmartAccountABI(), method, args...)
}

// self invokes an account method as the account itself, the way a self call through execTransaction arrives
func (a *testAccount) self(method string, args ...any) error {
	_, err := a.call(a.address, method, args...)
	return err
}

func (a *testAccount) view(method string, args ...any) []any {
	outputs, err := a.call(relayer, method, args...)
	require.Nil(a.t, err)
	return outputs
}

func (a *testAccount) nonce(batchId int64) *big.Int {
	return a.view("getNonce", big.NewInt(batchId))[0].(*big.Int)
}

func (a *testAccount) txHash(tx interfaces.Transaction, refund interfaces.FeeRefund, batchId int64) ethcommon.Hash {
	return a.txHashAt(tx, refund, batchId, a.nonce(batchId))
}

func (a *testAccount) txHashAt(tx interfaces.Transaction, refund interfaces.FeeRefund, batchId int64, nonce *big.Int) ethcommon.Hash {
	outputs := a.view("getTransactionHash", tx.To, tx.Value, tx.Data, tx.Operation, tx.TargetTxGas,
		refund.BaseGas, refund.GasPrice, refund.TokenGasPriceFactor, refund.GasToken, refund.RefundReceiver,
		big.NewInt(batchId), nonce)
	return outputs[0].([32]byte)
}

func (a *testAccount) sign(hash ethcommon.Hash) []byte {
	return signHash(a.t, a.key, hash)
}

// execTransaction relays tx claiming the current nonce of batchId
func (a *testAccount) execTransaction(from ethcommon.Address, tx interfaces.Transaction, refund interfaces.FeeRefund, batchId int64, signatures []byte) (bool, error) {
	return a.execTransactionAt(from, tx, refund, batchId, a.nonce(batchId), signatures)
}

func (a *testAccount) execTransactionAt(from ethcommon.Address, tx interfaces.Transaction, refund interfaces.FeeRefund, batchId int64, nonce *big.Int, signatures []byte) (bool, error) {
	outputs, err := a.call(from, "execTransaction", tx, big.NewInt(batchId), nonce, refund, signatures)
	if err != nil {
		return false, err
	}
	return outputs[0].(bool), nil
}

// signAndExec signs tx with the owner key and relays it
func (a *testAccount) signAndExec(tx interfaces.Transaction, refund interfaces.FeeRefund) (bool, error) {
	return a.execTransaction(relayer, tx, refund, 0, a.sign(a.txHash(tx, refund, 0)))
}

// signHash signs with a recovery byte of 27 or 28
func signHash(t *testing.T, key *ecdsa.PrivateKey, hash ethcommon.Hash) []byte {
	sig, err := crypto.Sign(hash.Bytes(), key)
	require.Nil(t, err)
	sig[64] += 27
	return sig
}

func transferTx(to ethcommon.Address, value int64) interfaces.Transaction {
	return interfaces.Transaction{
		To:          to,
		Value:       big.NewInt(value),
		Data:        []byte{},
		Operation:   uint8(interfaces.Call),
		TargetTxGas: big.NewInt(0),
	}
}

// findLogs returns the logs of event emitted by addr since the ledger was last committed
func findLogs(nvm *system.TestNVM, addr ethcommon.Address, event ethcommon.Hash) []*ethtypes.Log {
	var logs []*ethtypes.Log
	for _, log := range nvm.StateLedger.Logs() {
		if log.Address == addr && len(log.Topics) > 0 && log.Topics[0] == event {
			logs = append(logs, log)
		}
	}
	return logs
}

func newUserOp(sender ethcommon.Address, nonce *big.Int) interfaces.UserOperation {
	return interfaces.UserOperation{
		Sender:               sender,
		Nonce:                nonce,
		InitCode:             []byte{},
		CallData:             []byte{},
		CallGasLimit:         big.NewInt(1_000_000),
		VerificationGasLimit: big.NewInt(2_000_000),
		PreVerificationGas:   big.NewInt(50_000),
		MaxFeePerGas:         big.NewInt(1),
		MaxPriorityFeePerGas: big.NewInt(1),
		PaymasterAndData:     []byte{},
		Signature:            []byte{},
	}
}

func userOpHash(nvm *system.TestNVM, op *interfaces.UserOperation) ethcommon.Hash {
	return interfaces.GetUserOpHash(op, EntryPointAddr, nvm.Tx.ChainID)
}

func (a *testAccount) signUserOp(op *interfaces.UserOperation) {
	op.Signature = a.sign(userOpHash(a.nvm, op))
}

// validateUserOp calls the account the way the entry point does
func (a *testAccount) validateUserOp(op interfaces.UserOperation) (*big.Int, error) {
	outputs, err := a.call(EntryPointAddr, "validateUserOp", op, [32]byte(userOpHash(a.nvm, &op)), big.NewInt(0))
	if err != nil {
		return nil, err
	}
	return outputs[0].(*big.Int), nil
}
