package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
)

var guardSelectors = [][4]byte{
	[4]byte(interfaces.GuardABI.Methods["checkTransaction"].ID),
	[4]byte(interfaces.GuardABI.Methods["checkAfterExecution"].ID),
}

// SetGuard installs the guard consulted around every execution, zero removes it
func (sa *SmartAccount) SetGuard(guard ethcommon.Address) error {
	if err := sa.onlySelf(); err != nil {
		return err
	}
	if guard != (ethcommon.Address{}) && !sa.Ctx.VM.SupportsMethods(sa.Ctx.StateLedger, guard, guardSelectors...) {
		return registryFailure(CodeInvalidGuard, "%s is not a guard", guard)
	}
	if err := sa.guard.Put(guard); err != nil {
		return err
	}
	return sa.EmitEvent(&EventChangedGuard{Guard: guard})
}

func (sa *SmartAccount) GetGuard() (ethcommon.Address, error) {
	_, guard, err := sa.guard.Get()
	return guard, err
}

func (sa *SmartAccount) SetFallbackHandler(handler ethcommon.Address) error {
	if err := sa.onlySelf(); err != nil {
		return err
	}
	if err := sa.fallbackHandler.Put(handler); err != nil {
		return err
	}
	return sa.EmitEvent(&EventChangedFallbackHandler{Handler: handler})
}

func (sa *SmartAccount) GetFallbackHandler() (ethcommon.Address, error) {
	_, handler, err := sa.fallbackHandler.Get()
	return handler, err
}

// checkTransaction runs the guard pre hook and returns the guard to call after execution, zero if none is set
func (sa *SmartAccount) checkTransaction(tx *interfaces.Transaction, batchId *big.Int, refundInfo *interfaces.FeeRefund, signatures []byte) (ethcommon.Address, error) {
	guard, err := sa.GetGuard()
	if err != nil || guard == (ethcommon.Address{}) {
		return guard, err
	}
	if signatures == nil {
		signatures = []byte{}
	}
	if _, err := common.CallMethod(sa.Ctx, guard, nil, interfaces.GuardABI, "checkTransaction", sa.Ctx.Gas.Remaining(),
		*tx, batchId, *refundInfo, signatures, sa.Ctx.From); err != nil {
		return guard, newFailure(ErrGuardVeto, CodeGuardVeto, "guard %s rejected %s: %v", guard, tx.To, err)
	}
	return guard, nil
}

func (sa *SmartAccount) checkAfterExecution(guard ethcommon.Address, txHash ethcommon.Hash, success bool) error {
	if guard == (ethcommon.Address{}) {
		return nil
	}
	if _, err := common.CallMethod(sa.Ctx, guard, nil, interfaces.GuardABI, "checkAfterExecution", sa.Ctx.Gas.Remaining(), [32]byte(txHash), success); err != nil {
		return newFailure(ErrGuardVeto, CodeGuardVeto, "guard %s rejected result of %s: %v", guard, txHash, err)
	}
	return nil
}
