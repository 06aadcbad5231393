package saccount

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces/mock_interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var (
	mockGuardAddr = ethcommon.HexToAddress("0x000000000000000000000000000000000000b000")

	multiSendDirectCall = "MultiSend should only be called via delegatecall"
)

func executionPayment(t *testing.T, nvm *system.TestNVM, account *testAccount, event string) *big.Int {
	logs := findLogs(nvm, account.address, SmartAccountABI().Events[event].ID)
	require.Len(t, logs, 1)
	return new(big.Int).SetBytes(logs[0].Data)
}

func tokenBalance(t *testing.T, nvm *system.TestNVM, holder ethcommon.Address) *big.Int {
	outputs, err := nvm.CallMethod(relayer, tokenAddr, nil, token.ABI(), "balanceOf", holder)
	require.Nil(t, err)
	return outputs[0].(*big.Int)
}

func failingCallTx(targetTxGas int64) interfaces.Transaction {
	return interfaces.Transaction{
		To:          CallbackHandlerAddr,
		Value:       big.NewInt(0),
		Data:        []byte{0xde, 0xad, 0xbe, 0xef},
		Operation:   uint8(interfaces.Call),
		TargetTxGas: big.NewInt(targetTxGas),
	}
}

func TestExecTransaction(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	ok, err := account.signAndExec(transferTx(receiver, 100), interfaces.EmptyFeeRefund())
	require.Nil(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 100, nvm.StateLedger.GetBalance(receiver).Int64())
	assert.EqualValues(t, 1, account.nonce(0).Int64())
	assert.EqualValues(t, 0, executionPayment(t, nvm, account, "ExecutionSuccess").Int64())
}

func TestExecTransaction_Failures(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	invalidOperation := transferTx(receiver, 1)
	invalidOperation.Operation = 2

	testcases := map[string]struct {
		tx   interfaces.Transaction
		kind error
		code string
	}{
		"call fails without target gas or refund": {
			tx:   failingCallTx(0),
			kind: ErrExecutionFailure,
			code: CodeTransactionFailed,
		},
		"target gas above the gas left": {
			tx: func() interfaces.Transaction {
				tx := transferTx(receiver, 1)
				tx.TargetTxGas = big.NewInt(40_000_000)
				return tx
			}(),
			kind: ErrExecutionFailure,
			code: CodeNotEnoughGas,
		},
		"invalid operation": {
			tx:   invalidOperation,
			kind: ErrExecutionFailure,
			code: CodeInvalidOperation,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			_, err := account.signAndExec(tc.tx, interfaces.EmptyFeeRefund())
			assert.Equal(t, tc.code, FailureCode(err))
			assert.ErrorIs(t, err, tc.kind)
			// the whole transaction reverted, nonce included
			assert.EqualValues(t, 0, account.nonce(0).Int64())
		})
	}
}

func TestExecTransaction_FailedCallKeepsNonce(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)

	ok, err := account.signAndExec(failingCallTx(100_000), interfaces.EmptyFeeRefund())
	require.Nil(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 1, account.nonce(0).Int64())
	assert.EqualValues(t, 0, executionPayment(t, nvm, account, "ExecutionFailure").Int64())
}

func TestExecTransaction_NativeRefund(t *testing.T) {
	nvm := newTestNVM(t)
	nvm.Tx.GasPrice = big.NewInt(1)
	nvm.StateLedger.AddBalance(relayer, big.NewInt(100_000_000))
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	refund := interfaces.FeeRefund{
		BaseGas:             big.NewInt(21_000),
		GasPrice:            big.NewInt(5),
		TokenGasPriceFactor: big.NewInt(0),
		RefundReceiver:      receiver,
	}
	ok, err := account.signAndExec(transferTx(bundler, 1), refund)
	require.Nil(t, err)
	assert.True(t, ok)

	payment := executionPayment(t, nvm, account, "ExecutionSuccess")
	assert.Equal(t, payment, nvm.StateLedger.GetBalance(receiver))
	assert.Greater(t, payment.Int64(), int64(21_000))
	// paid at the tx gas price, lower than the one the owner signed
	assert.Less(t, payment.Int64(), int64(5*21_000))
	expected := new(big.Int).Sub(oneEther, new(big.Int).Add(payment, big.NewInt(1)))
	assert.Equal(t, expected, nvm.StateLedger.GetBalance(account.address))
}

func TestExecTransaction_TokenRefund(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	require.Nil(t, token.Init(nvm.StateLedger, tokenAddr, &token.Config{
		Name:        "Gas Token",
		Symbol:      "GAS",
		Decimals:    18,
		TotalSupply: oneEther,
		Holder:      account.address,
	}))

	refund := interfaces.FeeRefund{
		BaseGas:             big.NewInt(1_000),
		GasPrice:            big.NewInt(3),
		TokenGasPriceFactor: big.NewInt(2),
		GasToken:            tokenAddr,
		RefundReceiver:      receiver,
	}
	ok, err := account.signAndExec(transferTx(bundler, 0), refund)
	require.Nil(t, err)
	assert.True(t, ok)

	payment := executionPayment(t, nvm, account, "ExecutionSuccess")
	assert.Equal(t, payment, tokenBalance(t, nvm, receiver))
	assert.GreaterOrEqual(t, payment.Int64(), int64(6_000))
	assert.Zero(t, new(big.Int).Mod(payment, big.NewInt(6)).Int64())
	assert.Equal(t, new(big.Int).Sub(oneEther, payment), tokenBalance(t, nvm, account.address))
}

func TestExecTransaction_RefundFailure(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	require.Nil(t, token.Init(nvm.StateLedger, tokenAddr, &token.Config{
		Name:        "Gas Token",
		Symbol:      "GAS",
		Decimals:    18,
		TotalSupply: oneEther,
		Holder:      relayer,
	}))

	refund := interfaces.FeeRefund{
		BaseGas:             big.NewInt(1_000),
		GasPrice:            big.NewInt(1),
		TokenGasPriceFactor: big.NewInt(0),
		GasToken:            tokenAddr,
		RefundReceiver:      receiver,
	}
	ok, err := account.signAndExec(transferTx(bundler, 0), refund)
	require.Nil(t, err)
	assert.True(t, ok)

	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["RefundFailure"].ID), 1)
	assert.EqualValues(t, 0, executionPayment(t, nvm, account, "ExecutionSuccess").Int64())
	assert.EqualValues(t, 0, tokenBalance(t, nvm, receiver).Int64())
	assert.EqualValues(t, 1, account.nonce(0).Int64())
}

func TestDelegateCallGuard(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)
	require.Nil(t, account.self("setGuard", DelegateCallGuardAddr))
	assert.Equal(t, DelegateCallGuardAddr, account.view("getGuard")[0].(ethcommon.Address))

	payload, err := MultiSendBuildConfig.ContractABI().Pack("multiSend", EncodeMultiSend(
		MultiSendTx{Operation: interfaces.Call, To: receiver, Value: big.NewInt(5), Data: []byte{}},
		MultiSendTx{Operation: interfaces.Call, To: receiver, Value: big.NewInt(7), Data: []byte{}},
	))
	require.Nil(t, err)
	batch := interfaces.Transaction{
		To:          MultiSendAddr,
		Value:       big.NewInt(0),
		Data:        payload,
		Operation:   uint8(interfaces.DelegateCall),
		TargetTxGas: big.NewInt(0),
	}

	_, err = account.signAndExec(batch, interfaces.EmptyFeeRefund())
	assert.Equal(t, CodeGuardVeto, FailureCode(err))
	assert.ErrorIs(t, err, ErrGuardVeto)
	assert.EqualValues(t, 0, nvm.StateLedger.GetBalance(receiver).Int64())
	assert.EqualValues(t, 0, account.nonce(0).Int64())

	allow, err := DelegateCallGuardBuildConfig.ContractABI().Pack("setAllowedTarget", MultiSendAddr, true)
	require.Nil(t, err)
	ok, err := account.signAndExec(interfaces.Transaction{
		To:          DelegateCallGuardAddr,
		Value:       big.NewInt(0),
		Data:        allow,
		Operation:   uint8(interfaces.Call),
		TargetTxGas: big.NewInt(0),
	}, interfaces.EmptyFeeRefund())
	require.Nil(t, err)
	assert.True(t, ok)

	outputs, err := nvm.CallMethod(relayer, DelegateCallGuardAddr, nil, DelegateCallGuardBuildConfig.ContractABI(), "isAllowedTarget", account.address, MultiSendAddr)
	require.Nil(t, err)
	assert.True(t, outputs[0].(bool))

	ok, err = account.signAndExec(batch, interfaces.EmptyFeeRefund())
	require.Nil(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 12, nvm.StateLedger.GetBalance(receiver).Int64())
}

func TestGuardHooks(t *testing.T) {
	nvm := newTestNVM(t)
	guard := mock_interfaces.NewMockIGuard(gomock.NewController(t))
	nvm.DeployInstance(mockGuardAddr, interfaces.GuardABI, guard)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	// a bad guard address is a configuration failure, not a veto
	err := account.self("setGuard", CallbackHandlerAddr)
	assert.Equal(t, CodeInvalidGuard, FailureCode(err))
	assert.ErrorIs(t, err, ErrModuleRegistry)
	assert.NotErrorIs(t, err, ErrGuardVeto)
	err = account.self("setGuard", receiver)
	assert.Equal(t, CodeInvalidGuard, FailureCode(err))
	assert.ErrorIs(t, err, ErrModuleRegistry)
	require.Nil(t, account.self("setGuard", mockGuardAddr))

	t.Run("pass", func(t *testing.T) {
		tx := transferTx(receiver, 10)
		txHash := account.txHash(tx, interfaces.EmptyFeeRefund(), 0)
		guard.EXPECT().CheckTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), relayer).
			DoAndReturn(func(guarded interfaces.Transaction, batchId *big.Int, refundInfo interfaces.FeeRefund, signatures []byte, msgSender ethcommon.Address) error {
				assert.Equal(t, receiver, guarded.To)
				assert.Len(t, signatures, staticSignatureLength)
				return nil
			}).Times(1)
		guard.EXPECT().CheckAfterExecution([32]byte(txHash), true).Return(nil).Times(1)

		ok, err := account.signAndExec(tx, interfaces.EmptyFeeRefund())
		require.Nil(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 10, nvm.StateLedger.GetBalance(receiver).Int64())
	})

	t.Run("veto before", func(t *testing.T) {
		guard.EXPECT().CheckTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(packer.NewRevertStringError("vetoed")).Times(1)

		_, err := account.signAndExec(transferTx(receiver, 10), interfaces.EmptyFeeRefund())
		assert.Equal(t, CodeGuardVeto, FailureCode(err))
		assert.EqualValues(t, 10, nvm.StateLedger.GetBalance(receiver).Int64())
	})

	t.Run("veto after", func(t *testing.T) {
		guard.EXPECT().CheckTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
		guard.EXPECT().CheckAfterExecution(gomock.Any(), true).Return(packer.NewRevertStringError("vetoed")).Times(1)

		_, err := account.signAndExec(transferTx(receiver, 10), interfaces.EmptyFeeRefund())
		assert.Equal(t, CodeGuardVeto, FailureCode(err))
		assert.EqualValues(t, 10, nvm.StateLedger.GetBalance(receiver).Int64())
	})

	t.Run("entry point execute is guarded", func(t *testing.T) {
		guard.EXPECT().CheckTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), EntryPointAddr).Return(nil).Times(1)
		guard.EXPECT().CheckAfterExecution(gomock.Any(), true).Return(nil).Times(1)

		_, err := account.call(EntryPointAddr, "execute", receiver, big.NewInt(1), []byte{})
		require.Nil(t, err)
		assert.EqualValues(t, 11, nvm.StateLedger.GetBalance(receiver).Int64())
	})
}

func TestExecute(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	_, err := account.call(EntryPointAddr, "execute", receiver, big.NewInt(10), []byte{})
	require.Nil(t, err)
	assert.EqualValues(t, 10, nvm.StateLedger.GetBalance(receiver).Int64())

	_, err = account.call(EntryPointAddr, "executeBatch",
		[]ethcommon.Address{receiver, bundler}, []*big.Int{big.NewInt(1), big.NewInt(2)}, [][]byte{{}, {}})
	require.Nil(t, err)
	assert.EqualValues(t, 11, nvm.StateLedger.GetBalance(receiver).Int64())
	assert.EqualValues(t, 2, nvm.StateLedger.GetBalance(bundler).Int64())

	// the account itself may execute too
	require.Nil(t, account.self("execute", receiver, big.NewInt(1), []byte{}))
	assert.EqualValues(t, 12, nvm.StateLedger.GetBalance(receiver).Int64())

	testcases := map[string]struct {
		from   ethcommon.Address
		method string
		args   []any
		code   string
	}{
		"execute from outside": {
			from:   relayer,
			method: "execute",
			args:   []any{receiver, big.NewInt(1), []byte{}},
			code:   CodeNotEntryPointOrSelf,
		},
		"batch from outside": {
			from:   account.owner,
			method: "executeBatch",
			args:   []any{[]ethcommon.Address{receiver}, []*big.Int{big.NewInt(1)}, [][]byte{{}}},
			code:   CodeNotEntryPointOrSelf,
		},
		"batch length mismatch": {
			from:   EntryPointAddr,
			method: "executeBatch",
			args:   []any{[]ethcommon.Address{receiver, bundler}, []*big.Int{big.NewInt(1)}, [][]byte{{}, {}}},
			code:   CodeBatchLengthMismatch,
		},
		"call fails": {
			from:   EntryPointAddr,
			method: "execute",
			args:   []any{CallbackHandlerAddr, big.NewInt(0), []byte{0xde, 0xad, 0xbe, 0xef}},
			code:   CodeTransactionFailed,
		},
		"batch is atomic": {
			from:   EntryPointAddr,
			method: "executeBatch",
			args: []any{
				[]ethcommon.Address{receiver, CallbackHandlerAddr},
				[]*big.Int{big.NewInt(1), big.NewInt(0)},
				[][]byte{{}, {0xde, 0xad, 0xbe, 0xef}},
			},
			code: CodeTransactionFailed,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			_, err := account.call(tc.from, tc.method, tc.args...)
			assert.Equal(t, tc.code, FailureCode(err))
			assert.EqualValues(t, 12, nvm.StateLedger.GetBalance(receiver).Int64())
		})
	}
}

func TestExecTransactionFromModule(t *testing.T) {
	nvm := newTestNVM(t)
	modules, _ := deployMockModules(t, nvm, 2)
	account := deployAccount(t, nvm, modules[0])
	nvm.StateLedger.AddBalance(account.address, oneEther)

	outputs, err := account.call(modules[0], "execTransactionFromModule", receiver, big.NewInt(3), []byte{}, uint8(interfaces.Call))
	require.Nil(t, err)
	assert.True(t, outputs[0].(bool))
	assert.EqualValues(t, 3, nvm.StateLedger.GetBalance(receiver).Int64())
	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["ExecutionFromModuleSuccess"].ID), 1)

	_, err = account.call(modules[1], "execTransactionFromModule", receiver, big.NewInt(3), []byte{}, uint8(interfaces.Call))
	assert.Equal(t, CodeNotModule, FailureCode(err))
	assert.ErrorIs(t, err, ErrCallerNotAllowed)

	_, err = account.call(modules[0], "execTransactionFromModule", receiver, big.NewInt(3), []byte{}, uint8(2))
	assert.Equal(t, CodeInvalidOperation, FailureCode(err))

	// a failed call is reported to the module, not reverted
	payload, err := MultiSendBuildConfig.ContractABI().Pack("multiSend", []byte{})
	require.Nil(t, err)
	outputs, err = account.call(modules[0], "execTransactionFromModuleReturnData", MultiSendAddr, big.NewInt(0), payload, uint8(interfaces.Call))
	require.Nil(t, err)
	assert.False(t, outputs[0].(bool))
	assert.Equal(t, packer.RevertData(packer.NewRevertStringError(multiSendDirectCall)), outputs[1].([]byte))
	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["ExecutionFromModuleFailure"].ID), 1)
}

func TestMultiSend_DirectCall(t *testing.T) {
	nvm := newTestNVM(t)
	_, err := nvm.CallMethod(relayer, MultiSendAddr, nil, MultiSendBuildConfig.ContractABI(), "multiSend",
		EncodeMultiSend(MultiSendTx{Operation: interfaces.Call, To: receiver}))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), multiSendDirectCall)
}

func TestMultiSend_Truncated(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)

	packed := EncodeMultiSend(MultiSendTx{Operation: interfaces.Call, To: receiver, Data: []byte{0x01, 0x02}})
	payload, err := MultiSendBuildConfig.ContractABI().Pack("multiSend", packed[:len(packed)-1])
	require.Nil(t, err)
	_, err = account.signAndExec(interfaces.Transaction{
		To:          MultiSendAddr,
		Value:       big.NewInt(0),
		Data:        payload,
		Operation:   uint8(interfaces.DelegateCall),
		TargetTxGas: big.NewInt(0),
	}, interfaces.EmptyFeeRefund())
	assert.Equal(t, CodeTransactionFailed, FailureCode(err))
}

func TestFallback(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(relayer, big.NewInt(100))

	_, err := nvm.Call(relayer, account.address, big.NewInt(5), nil)
	require.Nil(t, err)
	assert.EqualValues(t, 5, nvm.StateLedger.GetBalance(account.address).Int64())
	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["SmartAccountReceivedNativeToken"].ID), 1)

	handlerABI := CallbackHandlerBuildConfig.ContractABI()
	input, err := handlerABI.Pack("onERC721Received", relayer, relayer, big.NewInt(1), []byte{})
	require.Nil(t, err)
	ret, err := nvm.Call(relayer, account.address, nil, input)
	require.Nil(t, err)
	outputs, err := handlerABI.Methods["onERC721Received"].Outputs.Unpack(ret)
	require.Nil(t, err)
	assert.Equal(t, [4]byte{0x15, 0x0b, 0x7a, 0x02}, outputs[0].([4]byte))

	assert.Equal(t, CallbackHandlerAddr, account.view("getFallbackHandler")[0].(ethcommon.Address))
	assert.True(t, account.view("supportsInterface", [4]byte{0x01, 0xff, 0xc9, 0xa7})[0].(bool))
	assert.True(t, account.view("supportsInterface", interfaces.EIP1271MagicValue)[0].(bool))
	assert.False(t, account.view("supportsInterface", [4]byte{0xff, 0xff, 0xff, 0xff})[0].(bool))
	assert.Equal(t, AccountVersion, account.view("VERSION")[0].(string))
}

func TestTransactionEncoding(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)

	assert.EqualValues(t, 1356, account.view("getChainId")[0].(*big.Int).Int64())

	domainSeparator := account.view("domainSeparator")[0].([32]byte)
	expected, err := domainSeparatorArgs.Pack([32]byte(domainSeparatorTypeHash), big.NewInt(1356), account.address)
	require.Nil(t, err)
	assert.Equal(t, crypto.Keccak256Hash(expected), ethcommon.Hash(domainSeparator))

	tx := transferTx(receiver, 1)
	refund := interfaces.EmptyFeeRefund()
	encoded := account.view("encodeTransactionData", tx, refund, big.NewInt(4), big.NewInt(9))[0].([]byte)
	require.Len(t, encoded, 66)
	assert.Equal(t, []byte{0x19, 0x01}, encoded[:2])
	assert.Equal(t, domainSeparator[:], encoded[2:34])

	txHash := account.view("getTransactionHash", tx.To, tx.Value, tx.Data, tx.Operation, tx.TargetTxGas,
		refund.BaseGas, refund.GasPrice, refund.TokenGasPriceFactor, refund.GasToken, refund.RefundReceiver,
		big.NewInt(4), big.NewInt(9))[0].([32]byte)
	assert.Equal(t, crypto.Keccak256Hash(encoded), ethcommon.Hash(txHash))

	// every field is bound, the batch included
	otherBatch := account.view("getTransactionHash", tx.To, tx.Value, tx.Data, tx.Operation, tx.TargetTxGas,
		refund.BaseGas, refund.GasPrice, refund.TokenGasPriceFactor, refund.GasToken, refund.RefundReceiver,
		big.NewInt(5), big.NewInt(9))[0].([32]byte)
	assert.NotEqual(t, txHash, otherBatch)
}

func TestValidateUserOp_PrefundNotPaid(t *testing.T) {
	hook := logtest.NewLocal(loggers.Logger(loggers.SystemContract).(*logrus.Entry).Logger)
	defer hook.Reset()

	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)

	op := newUserOp(account.address, interfaces.PackNonce(big.NewInt(0), 0))
	account.signUserOp(&op)
	outputs, err := account.call(EntryPointAddr, "validateUserOp", op, [32]byte(userOpHash(nvm, &op)), big.NewInt(1_000))
	require.Nil(t, err)
	assert.EqualValues(t, interfaces.SigValidationSucceeded, outputs[0].(*big.Int).Int64())
	assert.EqualValues(t, 0, entryPointDeposit(t, nvm, account.address).Int64())

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Data["account"] == account.address {
			logged = true
		}
	}
	assert.True(t, logged)

	// the entry point is the one rejecting the operation
	op = newUserOp(account.address, interfaces.PackNonce(big.NewInt(1), 0))
	account.signUserOp(&op)
	err = handleOps(nvm, bundler, op)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "AA21")
}
