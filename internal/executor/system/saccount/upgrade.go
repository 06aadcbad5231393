package saccount

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
)

func (sa *SmartAccount) GetImplementation() (ethcommon.Address, error) {
	_, implementation, err := sa.implementation.Get()
	return implementation, err
}

// UpdateImplementation points the proxy at a new implementation whose storage layout keeps every current slot.
// The new implementation is not initialized again.
func (sa *SmartAccount) UpdateImplementation(implementation ethcommon.Address) error {
	if err := sa.onlyEntryPointOrSelf(); err != nil {
		return err
	}
	if implementation == (ethcommon.Address{}) || !sa.Ctx.VM.IsContract(sa.Ctx.StateLedger, implementation) {
		return newFailure(ErrUpgradeFailure, CodeInvalidImplementation, "%s has no code", implementation)
	}
	next, ok := sa.Ctx.VM.Definition(sa.Ctx.StateLedger, implementation)
	if !ok || next.StorageLayout() == nil {
		return newFailure(ErrUpgradeFailure, CodeInvalidImplementation, "%s declares no storage layout", implementation)
	}

	current, err := sa.GetImplementation()
	if err != nil {
		return err
	}
	if currentDef, ok := sa.Ctx.VM.Definition(sa.Ctx.StateLedger, current); ok {
		if err := next.StorageLayout().CompatibleWith(currentDef.StorageLayout()); err != nil {
			return newFailure(ErrUpgradeFailure, CodeIncompatibleLayout, "%s: %v", implementation, err)
		}
	}
	if err := next.StorageLayout().CompatibleWith(sa.Layout); err != nil {
		return newFailure(ErrUpgradeFailure, CodeIncompatibleLayout, "%s: %v", implementation, err)
	}

	if err := sa.implementation.Put(implementation); err != nil {
		return err
	}
	sa.Logger.WithField("account", sa.Address()).Infof("implementation updated from %s to %s", current, implementation)
	return sa.EmitEvent(&EventImplementationUpdated{OldImplementation: current, NewImplementation: implementation})
}
