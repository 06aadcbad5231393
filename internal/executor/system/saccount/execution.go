package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

const (
	// gas kept back when a call gets all the remaining gas
	callGasReserve = 2500

	// extra gas required on top of the target gas before a call is made
	callGasOverhead = 500
)

var (
	domainSeparatorTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))

	accountTxTypeHash = crypto.Keccak256Hash([]byte("AccountTx(address to,uint256 value,bytes data,uint8 operation,uint256 targetTxGas,uint256 baseGas,uint256 gasPrice,uint256 tokenGasPriceFactor,address gasToken,address refundReceiver,uint256 batchId,uint256 nonce)"))

	domainSeparatorArgs = abi.Arguments{
		{Type: common.Bytes32Type},
		{Type: common.BigIntType},
		{Type: common.AddressType},
	}

	accountTxArgs = abi.Arguments{
		{Type: common.Bytes32Type},
		{Type: common.AddressType},
		{Type: common.BigIntType},
		{Type: common.Bytes32Type},
		{Type: common.UInt8Type},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
		{Type: common.AddressType},
		{Type: common.AddressType},
		{Type: common.BigIntType},
		{Type: common.BigIntType},
	}

	callArgs = abi.Arguments{
		{Type: common.AddressType},
		{Type: common.BigIntType},
		{Type: common.Bytes32Type},
		{Type: common.UInt8Type},
	}
)

func (sa *SmartAccount) GetChainId() (*big.Int, error) {
	return new(big.Int).Set(sa.Ctx.Tx.ChainID), nil
}

func (sa *SmartAccount) DomainSeparator() ([32]byte, error) {
	packed, err := domainSeparatorArgs.Pack([32]byte(domainSeparatorTypeHash), sa.Ctx.Tx.ChainID, sa.Address())
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// EncodeTransactionData returns the EIP-712 encoding 0x19 0x01 ++ domainSeparator ++ structHash the owner signs the hash of
func (sa *SmartAccount) EncodeTransactionData(tx interfaces.Transaction, refundInfo interfaces.FeeRefund, batchId *big.Int, nonce *big.Int) ([]byte, error) {
	domainSeparator, err := sa.DomainSeparator()
	if err != nil {
		return nil, err
	}
	structHash, err := accountTxStructHash(&tx, &refundInfo, batchId, nonce)
	if err != nil {
		return nil, err
	}
	encoded := make([]byte, 0, 66)
	encoded = append(encoded, 0x19, 0x01)
	encoded = append(encoded, domainSeparator[:]...)
	return append(encoded, structHash.Bytes()...), nil
}

func (sa *SmartAccount) GetTransactionHash(to ethcommon.Address, value *big.Int, data []byte, operation uint8, targetTxGas, baseGas, gasPrice, tokenGasPriceFactor *big.Int,
	gasToken, refundReceiver ethcommon.Address, batchId *big.Int, nonce *big.Int) ([32]byte, error) {
	return sa.transactionHash(&interfaces.Transaction{
		To:          to,
		Value:       value,
		Data:        data,
		Operation:   operation,
		TargetTxGas: targetTxGas,
	}, &interfaces.FeeRefund{
		BaseGas:             baseGas,
		GasPrice:            gasPrice,
		TokenGasPriceFactor: tokenGasPriceFactor,
		GasToken:            gasToken,
		RefundReceiver:      refundReceiver,
	}, batchId, nonce)
}

func (sa *SmartAccount) transactionHash(tx *interfaces.Transaction, refundInfo *interfaces.FeeRefund, batchId, nonce *big.Int) (ethcommon.Hash, error) {
	encoded, err := sa.EncodeTransactionData(*tx, *refundInfo, batchId, nonce)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

func accountTxStructHash(tx *interfaces.Transaction, refundInfo *interfaces.FeeRefund, batchId, nonce *big.Int) (ethcommon.Hash, error) {
	packed, err := accountTxArgs.Pack(
		[32]byte(accountTxTypeHash),
		tx.To,
		tx.Value,
		[32]byte(crypto.Keccak256Hash(tx.Data)),
		tx.Operation,
		tx.TargetTxGas,
		refundInfo.BaseGas,
		refundInfo.GasPrice,
		refundInfo.TokenGasPriceFactor,
		refundInfo.GasToken,
		refundInfo.RefundReceiver,
		batchId,
		nonce,
	)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// ExecTransaction is the forward flow: nonce must be the next nonce of batchId, it is consumed before the
// signatures over the transaction hash bound to it are checked, so a replay fails as a nonce failure.
// A failed call reverts everything unless the relayer is paid or a target gas was set, then the nonce stays consumed.
func (sa *SmartAccount) ExecTransaction(tx interfaces.Transaction, batchId *big.Int, nonce *big.Int, refundInfo interfaces.FeeRefund, signatures []byte) (bool, error) {
	startGas := sa.Ctx.Gas.Remaining()

	if err := sa.consumeNonce(batchId, nonce); err != nil {
		executionCounter.WithLabelValues("forward", resultLabel(false)).Inc()
		return false, err
	}
	txHash, err := sa.transactionHash(&tx, &refundInfo, batchId, nonce)
	if err != nil {
		return false, err
	}
	if _, err := sa.authorize(txHash, signatures); err != nil {
		executionCounter.WithLabelValues("forward", resultLabel(false)).Inc()
		return false, err
	}

	// anything above this exceeds every gas meter anyway
	targetTxGas := ^uint64(0) / 64
	if tx.TargetTxGas.IsUint64() && tx.TargetTxGas.Uint64() < targetTxGas {
		targetTxGas = tx.TargetTxGas.Uint64()
	}
	required := targetTxGas * 64 / 63
	if targetTxGas+callGasReserve > required {
		required = targetTxGas + callGasReserve
	}
	if sa.Ctx.Gas.Remaining() < required+callGasOverhead {
		return false, newFailure(ErrExecutionFailure, CodeNotEnoughGas, "remaining gas %d, target %d", sa.Ctx.Gas.Remaining(), targetTxGas)
	}
	if err := validOperation(tx.Operation); err != nil {
		return false, err
	}

	guard, err := sa.checkTransaction(&tx, batchId, &refundInfo, signatures)
	if err != nil {
		return false, err
	}

	gas := targetTxGas
	if tx.TargetTxGas.Sign() == 0 || refundInfo.GasPrice.Sign() == 0 {
		gas = sa.remainingCallGas()
	}
	_, callErr := sa.execute(tx.To, tx.Value, tx.Data, tx.Operation, gas)
	success := callErr == nil
	if !success && tx.TargetTxGas.Sign() == 0 && refundInfo.GasPrice.Sign() == 0 {
		executionCounter.WithLabelValues("forward", resultLabel(false)).Inc()
		return false, newFailure(ErrExecutionFailure, CodeTransactionFailed, "call %s: %v", tx.To, callErr)
	}

	payment := big.NewInt(0)
	if refundInfo.GasPrice.Sign() != 0 && refundInfo.BaseGas.Sign() != 0 {
		used := startGas - sa.Ctx.Gas.Remaining()
		payment, err = sa.handlePayment(txHash, used, &refundInfo)
		if err != nil {
			return false, err
		}
	}

	if err := sa.checkAfterExecution(guard, txHash, success); err != nil {
		return false, err
	}

	logger := sa.Logger.WithFields(logrus.Fields{
		"account": sa.Address(),
		"tx_hash": txHash,
		"payment": payment,
	})
	executionCounter.WithLabelValues("forward", resultLabel(success)).Inc()
	if !success {
		logger.Warnf("transaction failed: %v", callErr)
		return false, sa.EmitEvent(&EventExecutionFailure{TxHash: txHash, Payment: payment})
	}
	logger.Debug("transaction executed")
	return true, sa.EmitEvent(&EventExecutionSuccess{TxHash: txHash, Payment: payment})
}

// handlePayment refunds the relayer, a failed refund is reported by RefundFailure and pays nothing
func (sa *SmartAccount) handlePayment(txHash ethcommon.Hash, gasUsed uint64, refundInfo *interfaces.FeeRefund) (*big.Int, error) {
	receiver := refundInfo.RefundReceiver
	if receiver == (ethcommon.Address{}) {
		receiver = sa.Ctx.Tx.Origin
	}
	totalGas := new(big.Int).Add(refundInfo.BaseGas, new(big.Int).SetUint64(gasUsed))

	var payment *big.Int
	var err error
	if refundInfo.GasToken == (ethcommon.Address{}) {
		gasPrice := math.BigMin(refundInfo.GasPrice, sa.Ctx.Tx.GasPrice)
		payment = new(big.Int).Mul(totalGas, gasPrice)
		if _, callErr := sa.Ctx.VM.Call(sa.Ctx, receiver, payment, nil, params.CallStipend); callErr != nil {
			err = newFailure(ErrExecutionFailure, CodeNativeRefundFailed, "refund %s to %s: %v", payment, receiver, callErr)
		}
	} else {
		factor := refundInfo.TokenGasPriceFactor
		if factor.Sign() == 0 {
			factor = big.NewInt(1)
		}
		payment = new(big.Int).Mul(new(big.Int).Mul(totalGas, refundInfo.GasPrice), factor)
		err = sa.transferToken(refundInfo.GasToken, receiver, payment)
	}

	if err != nil {
		sa.Logger.WithField("account", sa.Address()).Warnf("refund failed: %v", err)
		if emitErr := sa.EmitEvent(&EventRefundFailure{TxHash: txHash, Receiver: receiver, Payment: payment}); emitErr != nil {
			return nil, emitErr
		}
		return big.NewInt(0), nil
	}
	refundGauge.Set(bigToFloat(payment))
	return payment, nil
}

func (sa *SmartAccount) transferToken(gasToken, receiver ethcommon.Address, amount *big.Int) error {
	outputs, err := common.CallMethod(sa.Ctx, gasToken, nil, token.ABI(), "transfer", sa.Ctx.Gas.Remaining(), receiver, amount)
	if err != nil {
		return newFailure(ErrExecutionFailure, CodeTokenRefundFailed, "token %s refund %s: %v", gasToken, amount, err)
	}
	ok, err := common.ConvertOutput[bool](outputs, 0)
	if err != nil || !ok {
		return newFailure(ErrExecutionFailure, CodeTokenRefundFailed, "token %s refund %s rejected", gasToken, amount)
	}
	return nil
}

// Execute runs a call on behalf of the entry point or the account itself
func (sa *SmartAccount) Execute(dest ethcommon.Address, value *big.Int, callData []byte) error {
	if err := sa.onlyEntryPointOrSelf(); err != nil {
		return err
	}
	return sa.guardedCall("execute", dest, value, callData)
}

func (sa *SmartAccount) ExecuteBatch(dest []ethcommon.Address, value []*big.Int, callData [][]byte) error {
	if err := sa.onlyEntryPointOrSelf(); err != nil {
		return err
	}
	if len(dest) != len(callData) || len(dest) != len(value) {
		return newFailure(ErrExecutionFailure, CodeBatchLengthMismatch, "dest %d, value %d, func %d", len(dest), len(value), len(callData))
	}
	for i := range dest {
		if err := sa.guardedCall("execute_batch", dest[i], value[i], callData[i]); err != nil {
			return err
		}
	}
	return nil
}

func (sa *SmartAccount) guardedCall(flow string, dest ethcommon.Address, value *big.Int, callData []byte) error {
	tx := interfaces.Transaction{
		To:          dest,
		Value:       value,
		Data:        callData,
		Operation:   uint8(interfaces.Call),
		TargetTxGas: big.NewInt(0),
	}
	refundInfo := interfaces.EmptyFeeRefund()
	guard, err := sa.checkTransaction(&tx, big.NewInt(0), &refundInfo, nil)
	if err != nil {
		return err
	}
	_, callErr := sa.execute(dest, value, callData, tx.Operation, sa.remainingCallGas())
	executionCounter.WithLabelValues(flow, resultLabel(callErr == nil)).Inc()
	if callErr != nil {
		return newFailure(ErrExecutionFailure, CodeTransactionFailed, "call %s: %v", dest, callErr)
	}
	callHash, err := hashCall(&tx)
	if err != nil {
		return err
	}
	return sa.checkAfterExecution(guard, callHash, true)
}

func (sa *SmartAccount) ExecTransactionFromModule(to ethcommon.Address, value *big.Int, data []byte, operation uint8) (bool, error) {
	success, _, err := sa.execTransactionFromModule(to, value, data, operation)
	return success, err
}

func (sa *SmartAccount) ExecTransactionFromModuleReturnData(to ethcommon.Address, value *big.Int, data []byte, operation uint8) (bool, []byte, error) {
	return sa.execTransactionFromModule(to, value, data, operation)
}

// execTransactionFromModule never reverts on a failed call, the module gets the outcome
func (sa *SmartAccount) execTransactionFromModule(to ethcommon.Address, value *big.Int, data []byte, operation uint8) (bool, []byte, error) {
	module := sa.Ctx.From
	if !sa.modules.enabled(module) {
		return false, nil, callerFailure(CodeNotModule, "caller %s is not an enabled module", module)
	}
	if err := validOperation(operation); err != nil {
		return false, nil, err
	}
	tx := interfaces.Transaction{
		To:          to,
		Value:       value,
		Data:        data,
		Operation:   operation,
		TargetTxGas: big.NewInt(0),
	}
	refundInfo := interfaces.EmptyFeeRefund()
	guard, err := sa.checkTransaction(&tx, big.NewInt(0), &refundInfo, nil)
	if err != nil {
		return false, nil, err
	}

	ret, callErr := sa.execute(to, value, data, operation, sa.remainingCallGas())
	success := callErr == nil
	if !success {
		ret = packer.RevertData(callErr)
	}
	executionCounter.WithLabelValues("module", resultLabel(success)).Inc()

	callHash, err := hashCall(&tx)
	if err != nil {
		return false, nil, err
	}
	if err := sa.checkAfterExecution(guard, callHash, success); err != nil {
		return false, nil, err
	}
	if !success {
		sa.Logger.WithField("account", sa.Address()).Warnf("module %s call to %s failed: %v", module, to, callErr)
		return false, ret, sa.EmitEvent(&EventExecutionFromModuleFailure{Module: module})
	}
	return true, ret, sa.EmitEvent(&EventExecutionFromModuleSuccess{Module: module})
}

// ValidateUserOp is the bundler flow entry, only the entry point calls it.
// A nonce mismatch reverts, a rejected signature returns SigValidationFailed so the entry point can simulate.
func (sa *SmartAccount) ValidateUserOp(userOp interfaces.UserOperation, userOpHash [32]byte, missingAccountFunds *big.Int) (*big.Int, error) {
	if err := sa.onlyEntryPoint(); err != nil {
		return nil, err
	}
	if err := sa.consumeNonce(userOp.NonceKey(), new(big.Int).SetUint64(userOp.NonceSequence())); err != nil {
		return nil, err
	}
	validationData := sa.validateUserOpSignature(&userOp, userOpHash)

	if missingAccountFunds != nil && missingAccountFunds.Sign() > 0 {
		// a short deposit is rejected by the entry point after validation with AA21 didn't pay prefund
		if _, err := common.CallMethod(sa.Ctx, sa.Ctx.From, missingAccountFunds, EntryPointABI(), "depositTo", sa.Ctx.Gas.Remaining(), sa.Address()); err != nil {
			sa.Logger.WithField("account", sa.Address()).Errorf("pay prefund %s: %v", missingAccountFunds, err)
		}
	}
	return validationData, nil
}

func (sa *SmartAccount) execute(to ethcommon.Address, value *big.Int, data []byte, operation uint8, gas uint64) ([]byte, error) {
	if interfaces.Operation(operation) == interfaces.DelegateCall {
		return sa.Ctx.VM.DelegateCall(sa.Ctx, to, data, gas)
	}
	return sa.Ctx.VM.Call(sa.Ctx, to, value, data, gas)
}

func (sa *SmartAccount) remainingCallGas() uint64 {
	remaining := sa.Ctx.Gas.Remaining()
	if remaining < callGasReserve {
		return 0
	}
	return remaining - callGasReserve
}

func validOperation(operation uint8) error {
	switch interfaces.Operation(operation) {
	case interfaces.Call, interfaces.DelegateCall:
		return nil
	}
	return newFailure(ErrExecutionFailure, CodeInvalidOperation, "operation %d", operation)
}

// hashCall identifies a call without nonce for the guard post hook
func hashCall(tx *interfaces.Transaction) (ethcommon.Hash, error) {
	packed, err := callArgs.Pack(tx.To, tx.Value, [32]byte(crypto.Keccak256Hash(tx.Data)), tx.Operation)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}
