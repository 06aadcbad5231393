package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var DelegateCallGuardBuildConfig = &common.SystemContractBuildConfig[*DelegateCallGuard]{
	Name:   DelegateCallGuardName,
	AbiStr: delegateCallGuardABI,
	Layout: common.NewStorageLayout(1,
		common.Slot{Index: 0, Name: "allowedTargets", Type: "mapping(address=>mapping(address=>bool))"},
	),
	Constructor: func(systemContractBase common.SystemContractBase) *DelegateCallGuard {
		return &DelegateCallGuard{SystemContractBase: systemContractBase}
	},
}

type allowedTargetKey struct {
	account ethcommon.Address
	target  ethcommon.Address
}

var _ interfaces.IGuard = (*DelegateCallGuard)(nil)

// DelegateCallGuard vetoes delegatecalls of an account to targets the account did not allow, plain calls pass
type DelegateCallGuard struct {
	common.SystemContractBase

	allowedTargets *common.VMMap[allowedTargetKey, bool]
}

func (g *DelegateCallGuard) SetContext(ctx *common.VMContext) {
	g.SystemContractBase.SetContext(ctx)

	g.allowedTargets = common.NewVMMap[allowedTargetKey, bool](g.StateAccount, g.Layout.Key("allowedTargets"), func(key allowedTargetKey) []byte {
		return append(common.AddressKey(key.account), common.AddressKey(key.target)...)
	})
}

// SetAllowedTarget is called by the account itself
func (g *DelegateCallGuard) SetAllowedTarget(target ethcommon.Address, allowed bool) error {
	key := allowedTargetKey{account: g.Ctx.From, target: target}
	if allowed {
		if err := g.allowedTargets.Put(key, true); err != nil {
			return err
		}
	} else {
		g.allowedTargets.Delete(key)
	}
	return g.EmitEvent(&EventAllowedTargetSet{Account: g.Ctx.From, Target: target, Allowed: allowed})
}

func (g *DelegateCallGuard) IsAllowedTarget(account, target ethcommon.Address) (bool, error) {
	return g.allowedTargets.Has(allowedTargetKey{account: account, target: target}), nil
}

func (g *DelegateCallGuard) CheckTransaction(tx interfaces.Transaction, batchId *big.Int, refundInfo interfaces.FeeRefund, signatures []byte, msgSender ethcommon.Address) error {
	if interfaces.Operation(tx.Operation) != interfaces.DelegateCall {
		return nil
	}
	if !g.allowedTargets.Has(allowedTargetKey{account: g.Ctx.From, target: tx.To}) {
		g.Logger.Warnf("account %s delegatecall to %s vetoed", g.Ctx.From, tx.To)
		return packer.NewRevertStringError("DelegateCallGuard: target not allowed")
	}
	return nil
}

func (g *DelegateCallGuard) CheckAfterExecution(txHash [32]byte, success bool) error {
	return nil
}
