package saccount

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var EntryPointLayout = common.NewStorageLayout(1,
	common.Slot{Index: 0, Name: "deposits", Type: "mapping(address=>uint256)"},
	common.Slot{Index: 1, Name: "reentrancyStatus", Type: "uint8"},
)

var EntryPointBuildConfig = &common.SystemContractBuildConfig[*EntryPoint]{
	Name:   EntryPointName,
	AbiStr: entryPointABI,
	Layout: EntryPointLayout,
	Constructor: func(systemContractBase common.SystemContractBase) *EntryPoint {
		return &EntryPoint{SystemContractBase: systemContractBase}
	},
}

func EntryPointABI() abi.ABI {
	return EntryPointBuildConfig.ContractABI()
}

type ErrorFailedOp struct {
	OpIndex *big.Int
	Reason  string
}

func (e *ErrorFailedOp) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["FailedOp"])
}

type ErrorSenderAddressResult struct {
	Sender ethcommon.Address
}

func (e *ErrorSenderAddressResult) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["SenderAddressResult"])
}

// userOpInfo is what validation learns about a user operation and execution needs
type userOpInfo struct {
	sender       ethcommon.Address
	nonce        *big.Int
	paymaster    ethcommon.Address
	userOpHash   ethcommon.Hash
	prefund      *big.Int
	context      []byte
	preOpGas     *big.Int
	callGasLimit uint64
	verification uint64
	gasPrice     *big.Int
	validation   *big.Int
	pmValidation *big.Int
}

// EntryPoint is the singleton bundlers submit user operations to
type EntryPoint struct {
	common.SystemContractBase
	*StakeManager
	*common.ReentrancyGuard
}

func (ep *EntryPoint) SetContext(ctx *common.VMContext) {
	ep.SystemContractBase.SetContext(ctx)

	ep.StakeManager = newStakeManager(&ep.SystemContractBase, ep.Layout.Key("deposits"))
	ep.ReentrancyGuard = common.NewReentrancyGuard(ep.StateAccount, ep.Layout.Key("reentrancyStatus"))
}

// HandleOps validates every operation first and then executes them, a failed validation reverts the whole batch.
// The gas the operations pay is sent to beneficiary.
func (ep *EntryPoint) HandleOps(ops []interfaces.UserOperation, beneficiary ethcommon.Address) error {
	if err := ep.Enter(); err != nil {
		return err
	}
	defer ep.Exit()

	infos := make([]userOpInfo, len(ops))
	for i := range ops {
		if err := ep.validatePrepayment(i, &ops[i], &infos[i]); err != nil {
			userOpCounter.WithLabelValues("rejected").Inc()
			return err
		}
		if err := ep.validateValidationData(i, &infos[i]); err != nil {
			userOpCounter.WithLabelValues("rejected").Inc()
			return err
		}
	}

	if err := ep.EmitEvent(&EventBeforeExecution{}); err != nil {
		return err
	}

	collected := new(big.Int)
	for i := range ops {
		actualGasCost, err := ep.executeUserOp(i, &ops[i], &infos[i])
		if err != nil {
			return err
		}
		collected.Add(collected, actualGasCost)
	}
	return ep.compensate(beneficiary, collected)
}

func (ep *EntryPoint) GetUserOpHash(userOp interfaces.UserOperation) ([32]byte, error) {
	return interfaces.GetUserOpHash(&userOp, ep.Address(), ep.Ctx.Tx.ChainID), nil
}

// GetNonce returns the next nonce of sender for key, the sequence lives in the account
func (ep *EntryPoint) GetNonce(sender ethcommon.Address, key *big.Int) (*big.Int, error) {
	if !ep.Ctx.VM.IsContract(ep.Ctx.StateLedger, sender) {
		return interfaces.PackNonce(key, 0), nil
	}
	outputs, err := common.StaticCallMethod(ep.Ctx, sender, SmartAccountABI(), "getNonce", ep.Ctx.Gas.Remaining(), key)
	if err != nil {
		return nil, err
	}
	seq, err := common.ConvertOutput[*big.Int](outputs, 0)
	if err != nil {
		return nil, err
	}
	return interfaces.PackNonce(key, seq.Uint64()), nil
}

// GetSenderAddress always reverts, with SenderAddressResult on success so the deployment is never kept
func (ep *EntryPoint) GetSenderAddress(initCode []byte) error {
	sender, err := ep.createSender(initCode, ep.Ctx.Gas.Remaining())
	if err != nil {
		return err
	}
	return ep.Revert(&ErrorSenderAddressResult{Sender: sender})
}

func (ep *EntryPoint) failedOp(opIndex int, format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	ep.Logger.WithField("op", opIndex).Warnf("user operation failed: %s", reason)
	return ep.Revert(&ErrorFailedOp{OpIndex: big.NewInt(int64(opIndex)), Reason: reason})
}

func (ep *EntryPoint) validatePrepayment(opIndex int, op *interfaces.UserOperation, info *userOpInfo) error {
	gasBefore := ep.Ctx.Gas.Used()

	maxGasValues := new(big.Int).Or(op.PreVerificationGas, op.VerificationGasLimit)
	maxGasValues.Or(maxGasValues, op.CallGasLimit).Or(maxGasValues, op.MaxFeePerGas).Or(maxGasValues, op.MaxPriorityFeePerGas)
	// keep every value well below 128 bits so sums and products cannot overflow
	if maxGasValues.BitLen() > 128 {
		return ep.failedOp(opIndex, "AA94 gas values overflow")
	}
	if !op.VerificationGasLimit.IsUint64() || !op.CallGasLimit.IsUint64() {
		return ep.failedOp(opIndex, "AA94 gas values overflow")
	}

	info.sender = op.Sender
	info.nonce = op.Nonce
	info.callGasLimit = op.CallGasLimit.Uint64()
	info.verification = op.VerificationGasLimit.Uint64()
	info.gasPrice = interfaces.GetGasPrice(op)
	if n := len(op.PaymasterAndData); n > 0 {
		if n < ethcommon.AddressLength {
			return ep.failedOp(opIndex, "AA93 invalid paymasterAndData")
		}
		info.paymaster = ethcommon.BytesToAddress(op.PaymasterAndData[:ethcommon.AddressLength])
	}
	info.userOpHash = interfaces.GetUserOpHash(op, ep.Address(), ep.Ctx.Tx.ChainID)
	info.prefund = requiredPrefund(op, info.paymaster)

	if err := ep.validateAccountPrepayment(opIndex, op, info); err != nil {
		return err
	}

	info.pmValidation = new(big.Int)
	if info.paymaster != (ethcommon.Address{}) {
		if err := ep.validatePaymasterPrepayment(opIndex, op, info); err != nil {
			return err
		}
	}

	gasUsed := ep.Ctx.Gas.Used() - gasBefore
	if gasUsed > info.verification {
		return ep.failedOp(opIndex, "AA40 over verificationGasLimit")
	}
	info.preOpGas = new(big.Int).Add(new(big.Int).SetUint64(gasUsed), op.PreVerificationGas)
	return nil
}

func (ep *EntryPoint) validateAccountPrepayment(opIndex int, op *interfaces.UserOperation, info *userOpInfo) error {
	if err := ep.createSenderIfNeeded(opIndex, op, info); err != nil {
		return err
	}

	missingAccountFunds := new(big.Int)
	if info.paymaster == (ethcommon.Address{}) {
		deposit, err := ep.deposit(info.sender)
		if err != nil {
			return err
		}
		if deposit.Cmp(info.prefund) < 0 {
			missingAccountFunds.Sub(info.prefund, deposit)
		}
	}

	outputs, err := common.CallMethod(ep.Ctx, info.sender, nil, SmartAccountABI(), "validateUserOp", info.verification,
		*op, [32]byte(info.userOpHash), missingAccountFunds)
	if err != nil {
		return ep.failedOp(opIndex, "AA23 reverted: %v", err)
	}
	info.validation, err = common.ConvertOutput[*big.Int](outputs, 0)
	if err != nil {
		return ep.failedOp(opIndex, "AA23 reverted: %v", err)
	}

	if info.paymaster == (ethcommon.Address{}) {
		paid, err := ep.decrementDeposit(info.sender, info.prefund)
		if err != nil {
			return err
		}
		if !paid {
			return ep.failedOp(opIndex, "AA21 didn't pay prefund")
		}
	}
	return nil
}

func (ep *EntryPoint) validatePaymasterPrepayment(opIndex int, op *interfaces.UserOperation, info *userOpInfo) error {
	if !ep.Ctx.VM.IsContract(ep.Ctx.StateLedger, info.paymaster) {
		return ep.failedOp(opIndex, "AA30 paymaster not deployed")
	}
	paid, err := ep.decrementDeposit(info.paymaster, info.prefund)
	if err != nil {
		return err
	}
	if !paid {
		return ep.failedOp(opIndex, "AA31 paymaster deposit too low")
	}

	outputs, err := common.CallMethod(ep.Ctx, info.paymaster, nil, interfaces.PaymasterABI, "validatePaymasterUserOp", info.verification,
		*op, [32]byte(info.userOpHash), info.prefund)
	if err != nil {
		return ep.failedOp(opIndex, "AA33 reverted: %v", err)
	}
	if info.context, err = common.ConvertOutput[[]byte](outputs, 0); err != nil {
		return ep.failedOp(opIndex, "AA33 reverted: %v", err)
	}
	if info.pmValidation, err = common.ConvertOutput[*big.Int](outputs, 1); err != nil {
		return ep.failedOp(opIndex, "AA33 reverted: %v", err)
	}
	return nil
}

func (ep *EntryPoint) validateValidationData(opIndex int, info *userOpInfo) error {
	now := ep.Ctx.Tx.Time
	validation := interfaces.ParseValidationData(info.validation)
	if validation.SigValidation != interfaces.SigValidationSucceeded {
		return ep.failedOp(opIndex, "AA24 signature error")
	}
	if !validation.ValidAt(now) {
		return ep.failedOp(opIndex, "AA22 expired or not due")
	}

	pmValidation := interfaces.ParseValidationData(info.pmValidation)
	if pmValidation.SigValidation != interfaces.SigValidationSucceeded {
		return ep.failedOp(opIndex, "AA34 signature error")
	}
	if !pmValidation.ValidAt(now) {
		return ep.failedOp(opIndex, "AA32 paymaster expired or not due")
	}
	return nil
}

func (ep *EntryPoint) createSenderIfNeeded(opIndex int, op *interfaces.UserOperation, info *userOpInfo) error {
	lg := ep.Ctx.StateLedger
	if len(op.InitCode) == 0 {
		if !ep.Ctx.VM.IsContract(lg, info.sender) {
			return ep.failedOp(opIndex, "AA20 account not deployed")
		}
		return nil
	}
	if ep.Ctx.VM.IsContract(lg, info.sender) {
		return ep.failedOp(opIndex, "AA10 sender already constructed")
	}

	created, err := ep.createSender(op.InitCode, info.verification)
	if err != nil {
		return ep.failedOp(opIndex, "AA13 initCode failed or OOG")
	}
	if created != info.sender {
		return ep.failedOp(opIndex, "AA14 initCode must return sender")
	}
	if !ep.Ctx.VM.IsContract(lg, info.sender) {
		return ep.failedOp(opIndex, "AA15 initCode must create sender")
	}

	factory := ethcommon.BytesToAddress(op.InitCode[:ethcommon.AddressLength])
	return ep.EmitEvent(&EventAccountDeployed{
		UserOpHash: info.userOpHash,
		Sender:     info.sender,
		Factory:    factory,
		Paymaster:  info.paymaster,
	})
}

// createSender calls the factory named by the first 20 bytes of initCode with the rest as input
func (ep *EntryPoint) createSender(initCode []byte, gas uint64) (ethcommon.Address, error) {
	if len(initCode) < ethcommon.AddressLength {
		return ethcommon.Address{}, packer.NewRevertStringError("AA99 initCode too small")
	}
	factory := ethcommon.BytesToAddress(initCode[:ethcommon.AddressLength])
	ret, err := ep.Ctx.VM.Call(ep.Ctx, factory, nil, initCode[ethcommon.AddressLength:], gas)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if len(ret) < 32 {
		return ethcommon.Address{}, packer.NewRevertStringError("AA13 initCode returned no address")
	}
	return ethcommon.BytesToAddress(ret[:32]), nil
}

// executeUserOp runs the call data of an operation and settles its gas.
// A reverted call is reported by event, the batch goes on.
func (ep *EntryPoint) executeUserOp(opIndex int, op *interfaces.UserOperation, info *userOpInfo) (*big.Int, error) {
	lg := ep.Ctx.StateLedger
	snapshot := lg.Snapshot()
	gasBefore := ep.Ctx.Gas.Used()

	mode := interfaces.OpSucceeded
	if len(op.CallData) > 0 {
		if _, err := ep.Ctx.VM.Call(ep.Ctx, info.sender, nil, op.CallData, info.callGasLimit); err != nil {
			mode = interfaces.OpReverted
			if err := ep.EmitEvent(&EventUserOperationRevertReason{
				UserOpHash:   info.userOpHash,
				Sender:       info.sender,
				Nonce:        info.nonce,
				RevertReason: packer.RevertData(err),
			}); err != nil {
				return nil, err
			}
		}
	}

	actualGas := new(big.Int).Add(new(big.Int).SetUint64(ep.Ctx.Gas.Used()-gasBefore), info.preOpGas)
	actualGasCost, err := ep.handlePostOp(opIndex, mode, info, actualGas)
	if err == nil {
		return actualGasCost, nil
	}
	if mode == interfaces.PostOpReverted || len(info.context) == 0 {
		return nil, err
	}

	// the paymaster refused the result, drop the execution and let it settle once more
	ep.Logger.WithFields(logrus.Fields{"op": opIndex, "sender": info.sender}).Warnf("postOp reverted: %v", err)
	lg.RevertToSnapshot(snapshot)
	actualGas = new(big.Int).Add(new(big.Int).SetUint64(ep.Ctx.Gas.Used()-gasBefore), info.preOpGas)
	return ep.handlePostOp(opIndex, interfaces.PostOpReverted, info, actualGas)
}

func (ep *EntryPoint) handlePostOp(opIndex int, mode interfaces.PostOpMode, info *userOpInfo, actualGas *big.Int) (*big.Int, error) {
	actualGasCost := new(big.Int).Mul(actualGas, info.gasPrice)

	refundAddress := info.sender
	if info.paymaster != (ethcommon.Address{}) {
		refundAddress = info.paymaster
		if len(info.context) > 0 {
			if _, err := common.CallMethod(ep.Ctx, info.paymaster, nil, interfaces.PaymasterABI, "postOp", info.verification,
				uint8(mode), info.context, actualGasCost); err != nil {
				return nil, ep.failedOp(opIndex, "AA50 postOp reverted: %v", err)
			}
		}
	}

	if info.prefund.Cmp(actualGasCost) < 0 {
		return nil, ep.failedOp(opIndex, "AA51 prefund below actualGasCost")
	}
	if _, err := ep.incrementDeposit(refundAddress, new(big.Int).Sub(info.prefund, actualGasCost)); err != nil {
		return nil, err
	}

	success := mode == interfaces.OpSucceeded
	userOpCounter.WithLabelValues(resultLabel(success)).Inc()
	ep.Logger.WithFields(logrus.Fields{
		"op":              opIndex,
		"sender":          info.sender,
		"success":         success,
		"actual_gas":      actualGas,
		"actual_gas_cost": actualGasCost,
	}).Info("user operation handled")
	if err := ep.EmitEvent(&EventUserOperationEvent{
		UserOpHash:    info.userOpHash,
		Sender:        info.sender,
		Paymaster:     info.paymaster,
		Nonce:         info.nonce,
		Success:       success,
		ActualGasCost: actualGasCost,
		ActualGasUsed: actualGas,
	}); err != nil {
		return nil, err
	}
	return actualGasCost, nil
}

func (ep *EntryPoint) compensate(beneficiary ethcommon.Address, amount *big.Int) error {
	if beneficiary == (ethcommon.Address{}) {
		return packer.NewRevertStringError("AA90 invalid beneficiary")
	}
	if amount.Sign() == 0 {
		return nil
	}
	if _, err := ep.Ctx.VM.Call(ep.Ctx, beneficiary, amount, nil, ep.Ctx.Gas.Remaining()); err != nil {
		return packer.NewRevertStringError("AA91 failed send to beneficiary")
	}
	return nil
}

// requiredPrefund covers the worst case gas of an operation, postOp may run twice with a paymaster
func requiredPrefund(op *interfaces.UserOperation, paymaster ethcommon.Address) *big.Int {
	mul := big.NewInt(1)
	if paymaster != (ethcommon.Address{}) {
		mul = big.NewInt(3)
	}
	requiredGas := new(big.Int).Add(op.CallGasLimit, new(big.Int).Mul(op.VerificationGasLimit, mul))
	requiredGas.Add(requiredGas, op.PreVerificationGas)
	return requiredGas.Mul(requiredGas, interfaces.GetGasPrice(op))
}
