package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

// SentinelModules heads the module list, it is never a module itself
var SentinelModules = ethcommon.HexToAddress("0x0000000000000000000000000000000000000001")

// selectors a contract must expose to be enabled as a module
var moduleSelectors = [][4]byte{
	[4]byte(interfaces.ModuleABI.Methods["validateUserOp"].ID),
	[4]byte(interfaces.ModuleABI.Methods["isValidSignature"].ID),
}

// moduleList is a singly linked list stored as next pointers, the sentinel points at the head and the tail points back at the sentinel
type moduleList struct {
	next *common.VMMap[ethcommon.Address, ethcommon.Address]
}

func newModuleList(account ledger.IAccount, slot []byte) *moduleList {
	return &moduleList{next: common.NewVMMap[ethcommon.Address, ethcommon.Address](account, slot, common.AddressKey)}
}

func (l *moduleList) initialized() bool {
	return l.next.Has(SentinelModules)
}

func (l *moduleList) setup() error {
	return l.next.Put(SentinelModules, SentinelModules)
}

func (l *moduleList) empty() bool {
	exist, head, err := l.next.Get(SentinelModules)
	return err != nil || !exist || head == SentinelModules
}

func (l *moduleList) enabled(module ethcommon.Address) bool {
	if module == SentinelModules || module == (ethcommon.Address{}) {
		return false
	}
	return l.next.Has(module)
}

func (l *moduleList) insert(module ethcommon.Address) error {
	if module == SentinelModules || module == (ethcommon.Address{}) {
		return registryFailure(CodeInvalidModule, "invalid module %s", module)
	}
	if l.next.Has(module) {
		return registryFailure(CodeModuleAlreadyEnabled, "module %s already enabled", module)
	}
	head, err := l.next.MustGet(SentinelModules)
	if err != nil {
		return err
	}
	if err := l.next.Put(module, head); err != nil {
		return err
	}
	return l.next.Put(SentinelModules, module)
}

func (l *moduleList) remove(prevModule, module ethcommon.Address) error {
	if module == SentinelModules || module == (ethcommon.Address{}) {
		return registryFailure(CodeInvalidModule, "invalid module %s", module)
	}
	exist, next, err := l.next.Get(prevModule)
	if err != nil {
		return err
	}
	if !exist || next != module {
		return registryFailure(CodeWrongPrevModule, "%s does not point to module %s", prevModule, module)
	}
	after, err := l.next.MustGet(module)
	if err != nil {
		return err
	}
	if err := l.next.Put(prevModule, after); err != nil {
		return err
	}
	l.next.Delete(module)
	return nil
}

// page walks at most pageSize modules after start.
// next is the start of the following page, or the sentinel once the list is exhausted.
func (l *moduleList) page(start ethcommon.Address, pageSize uint64) ([]ethcommon.Address, ethcommon.Address, error) {
	if start != SentinelModules && !l.enabled(start) {
		return nil, ethcommon.Address{}, registryFailure(CodeInvalidModule, "invalid start %s", start)
	}
	if pageSize == 0 {
		return nil, ethcommon.Address{}, registryFailure(CodeInvalidPageSize, "page size is zero")
	}

	array := make([]ethcommon.Address, 0)
	exist, current, err := l.next.Get(start)
	if err != nil {
		return nil, ethcommon.Address{}, err
	}
	if !exist {
		return array, SentinelModules, nil
	}
	for current != (ethcommon.Address{}) && current != SentinelModules && uint64(len(array)) < pageSize {
		array = append(array, current)
		if _, current, err = l.next.Get(current); err != nil {
			return nil, ethcommon.Address{}, err
		}
	}
	next := current
	if current != SentinelModules && len(array) > 0 {
		next = array[len(array)-1]
	}
	return array, next, nil
}

func (sa *SmartAccount) EnableModule(module ethcommon.Address) error {
	if err := sa.onlySelf(); err != nil {
		return err
	}
	return sa.enableModule(module)
}

func (sa *SmartAccount) enableModule(module ethcommon.Address) error {
	if !sa.Ctx.VM.SupportsMethods(sa.Ctx.StateLedger, module, moduleSelectors...) {
		return registryFailure(CodeModuleCapability, "%s is not a module", module)
	}
	if err := sa.modules.insert(module); err != nil {
		return err
	}
	sa.Logger.WithField("account", sa.Address()).Infof("module %s enabled", module)
	return sa.EmitEvent(&EventModuleEnabled{Module: module})
}

// DisableModule unlinks module, prevModule must be the module pointing at it
func (sa *SmartAccount) DisableModule(prevModule, module ethcommon.Address) error {
	if err := sa.onlySelf(); err != nil {
		return err
	}
	if err := sa.modules.remove(prevModule, module); err != nil {
		return err
	}
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) && sa.modules.empty() {
		return authFailure(CodeOwnerlessAccount, "last module of an ownerless account")
	}
	sa.Logger.WithField("account", sa.Address()).Infof("module %s disabled", module)
	return sa.EmitEvent(&EventModuleDisabled{Module: module})
}

func (sa *SmartAccount) IsModuleEnabled(module ethcommon.Address) (bool, error) {
	return sa.modules.enabled(module), nil
}

func (sa *SmartAccount) GetModulesPaginated(start ethcommon.Address, pageSize *big.Int) ([]ethcommon.Address, ethcommon.Address, error) {
	size := uint64(0)
	if pageSize != nil && pageSize.Sign() > 0 {
		size = ^uint64(0)
		if pageSize.IsUint64() {
			size = pageSize.Uint64()
		}
	}
	return sa.modules.page(start, size)
}
