package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
)

const AccountVersion = "2.0.0"

var (
	interfaceIdERC165  = [4]byte{0x01, 0xff, 0xc9, 0xa7}
	interfaceIdEIP1271 = interfaces.EIP1271MagicValue
)

// SmartAccountLayout is shared by the proxy and every implementation, slots are append only across upgrades
var SmartAccountLayout = common.NewStorageLayout(1,
	common.Slot{Index: 0, Name: "implementation", Type: "address"},
	common.Slot{Index: 1, Name: "owner", Type: "address"},
	common.Slot{Index: 2, Name: "entryPoint", Type: "address"},
	common.Slot{Index: 3, Name: "modules", Type: "mapping(address=>address)"},
	common.Slot{Index: 4, Name: "nonces", Type: "mapping(uint256=>uint256)"},
	common.Slot{Index: 5, Name: "guard", Type: "address"},
	common.Slot{Index: 6, Name: "fallbackHandler", Type: "address"},
	common.Slot{Index: 7, Name: "approvedHashes", Type: "mapping(address=>mapping(bytes32=>uint256))"},
)

var SmartAccountBuildConfig = NewSmartAccountBuildConfig(SmartAccountName, SmartAccountLayout)

// NewSmartAccountBuildConfig builds an account implementation under name, upgraded implementations extend layout
func NewSmartAccountBuildConfig(name string, layout *common.StorageLayout) *common.SystemContractBuildConfig[*SmartAccount] {
	return &common.SystemContractBuildConfig[*SmartAccount]{
		Name:   name,
		AbiStr: smartAccountABI,
		Layout: layout,
		Constructor: func(systemContractBase common.SystemContractBase) *SmartAccount {
			systemContractBase.Logger = loggers.Logger(loggers.Account).WithField("contract", name)
			return &SmartAccount{SystemContractBase: systemContractBase}
		},
	}
}

// SmartAccountABI is the abi accounts are called with
func SmartAccountABI() abi.ABI {
	return SmartAccountBuildConfig.ContractABI()
}

type approvedHashKey struct {
	owner ethcommon.Address
	hash  [32]byte
}

// SmartAccount runs behind a SmartAccountProxy, Ctx.Self is the proxy
type SmartAccount struct {
	common.SystemContractBase

	implementation  *common.VMSlot[ethcommon.Address]
	owner           *common.VMSlot[ethcommon.Address]
	entryPoint      *common.VMSlot[ethcommon.Address]
	guard           *common.VMSlot[ethcommon.Address]
	fallbackHandler *common.VMSlot[ethcommon.Address]
	approvedHashes  *common.VMMap[approvedHashKey, *big.Int]

	modules *moduleList
	nonces  *nonceSpace
}

func (sa *SmartAccount) SetContext(ctx *common.VMContext) {
	sa.SystemContractBase.SetContext(ctx)

	sa.implementation = common.NewVMSlot[ethcommon.Address](sa.StateAccount, sa.Layout.Key("implementation"))
	sa.owner = common.NewVMSlot[ethcommon.Address](sa.StateAccount, sa.Layout.Key("owner"))
	sa.entryPoint = common.NewVMSlot[ethcommon.Address](sa.StateAccount, sa.Layout.Key("entryPoint"))
	sa.guard = common.NewVMSlot[ethcommon.Address](sa.StateAccount, sa.Layout.Key("guard"))
	sa.fallbackHandler = common.NewVMSlot[ethcommon.Address](sa.StateAccount, sa.Layout.Key("fallbackHandler"))
	sa.approvedHashes = common.NewVMMap[approvedHashKey, *big.Int](sa.StateAccount, sa.Layout.Key("approvedHashes"), func(key approvedHashKey) []byte {
		return append(common.AddressKey(key.owner), key.hash[:]...)
	})
	sa.modules = newModuleList(sa.StateAccount, sa.Layout.Key("modules"))
	sa.nonces = newNonceSpace(sa.StateAccount, sa.Layout.Key("nonces"))
}

// Init sets up a freshly deployed proxy, a zero owner leaves the account to its modules
func (sa *SmartAccount) Init(owner, entryPoint, handler ethcommon.Address, modules []ethcommon.Address) error {
	if !sa.Ctx.IsDelegated() {
		return callerFailure(CodeNotProxied, "init called on the implementation %s", sa.Ctx.CodeAddress)
	}
	if sa.modules.initialized() {
		return callerFailure(CodeAlreadyInitialized, "account %s already initialized", sa.Address())
	}
	if entryPoint == (ethcommon.Address{}) {
		return callerFailure(CodeNotEntryPoint, "zero entry point")
	}
	if owner == (ethcommon.Address{}) && len(modules) == 0 {
		return authFailure(CodeOwnerlessAccount, "account needs an owner or a module")
	}

	if err := sa.owner.Put(owner); err != nil {
		return err
	}
	if err := sa.entryPoint.Put(entryPoint); err != nil {
		return err
	}
	if err := sa.fallbackHandler.Put(handler); err != nil {
		return err
	}
	if err := sa.modules.setup(); err != nil {
		return err
	}
	for _, module := range modules {
		if err := sa.enableModule(module); err != nil {
			return err
		}
	}

	sa.Logger.WithField("account", sa.Address()).Infof("account initialized, owner: %s, modules: %d", owner, len(modules))
	return sa.EmitEvent(&EventAccountInitialized{
		Owner:      owner,
		EntryPoint: entryPoint,
		Handler:    handler,
	})
}

func (sa *SmartAccount) Owner() (ethcommon.Address, error) {
	_, owner, err := sa.owner.Get()
	return owner, err
}

func (sa *SmartAccount) EntryPoint() (ethcommon.Address, error) {
	_, entryPoint, err := sa.entryPoint.Get()
	return entryPoint, err
}

// SetOwner hands the account to newOwner, zero is accepted only while a module can still authorize
func (sa *SmartAccount) SetOwner(newOwner ethcommon.Address) error {
	if err := sa.onlySelf(); err != nil {
		return err
	}
	if newOwner == (ethcommon.Address{}) && sa.modules.empty() {
		return authFailure(CodeOwnerlessAccount, "no module enabled")
	}
	oldOwner, err := sa.Owner()
	if err != nil {
		return err
	}
	if err := sa.owner.Put(newOwner); err != nil {
		return err
	}
	return sa.EmitEvent(&EventOwnerUpdated{OldOwner: oldOwner, NewOwner: newOwner})
}

// ApproveHash marks hashToApprove as signed by the calling owner
func (sa *SmartAccount) ApproveHash(hashToApprove [32]byte) error {
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) || sa.Ctx.From != owner {
		return callerFailure(CodeNotOwner, "caller %s", sa.Ctx.From)
	}
	if err := sa.approvedHashes.Put(approvedHashKey{owner: owner, hash: hashToApprove}, big.NewInt(1)); err != nil {
		return err
	}
	return sa.EmitEvent(&EventApproveHash{ApprovedHash: hashToApprove, Owner: owner})
}

func (sa *SmartAccount) ApprovedHashes(owner ethcommon.Address, hash [32]byte) (*big.Int, error) {
	exist, approved, err := sa.approvedHashes.Get(approvedHashKey{owner: owner, hash: hash})
	if err != nil || !exist {
		return big.NewInt(0), err
	}
	return approved, nil
}

func (sa *SmartAccount) GetDeposit() (*big.Int, error) {
	entryPoint, err := sa.EntryPoint()
	if err != nil {
		return nil, err
	}
	outputs, err := common.StaticCallMethod(sa.Ctx, entryPoint, EntryPointABI(), "balanceOf", sa.Ctx.Gas.Remaining(), sa.Address())
	if err != nil {
		return nil, err
	}
	return common.ConvertOutput[*big.Int](outputs, 0)
}

// AddDeposit forwards the call value to the entry point deposit of the account
func (sa *SmartAccount) AddDeposit() error {
	entryPoint, err := sa.EntryPoint()
	if err != nil {
		return err
	}
	_, err = common.CallMethod(sa.Ctx, entryPoint, sa.Ctx.Value, EntryPointABI(), "depositTo", sa.Ctx.Gas.Remaining(), sa.Address())
	return err
}

func (sa *SmartAccount) WithdrawDepositTo(withdrawAddress ethcommon.Address, amount *big.Int) error {
	if err := sa.onlyOwnerOrSelf(); err != nil {
		return err
	}
	entryPoint, err := sa.EntryPoint()
	if err != nil {
		return err
	}
	_, err = common.CallMethod(sa.Ctx, entryPoint, nil, EntryPointABI(), "withdrawTo", sa.Ctx.Gas.Remaining(), withdrawAddress, amount)
	return err
}

func (sa *SmartAccount) SupportsInterface(interfaceId [4]byte) (bool, error) {
	return interfaceId == interfaceIdERC165 || interfaceId == interfaceIdEIP1271, nil
}

func (sa *SmartAccount) VERSION() (string, error) {
	return AccountVersion, nil
}

// Fallback accepts plain transfers and forwards unknown calls to the fallback handler with the sender appended
func (sa *SmartAccount) Fallback(input []byte) ([]byte, error) {
	if len(input) == 0 {
		if sa.Ctx.Value.Sign() > 0 {
			return nil, sa.EmitEvent(&EventSmartAccountReceivedNativeToken{Sender: sa.Ctx.From, Value: sa.Ctx.Value})
		}
		return nil, nil
	}
	_, handler, err := sa.fallbackHandler.Get()
	if err != nil {
		return nil, err
	}
	if handler == (ethcommon.Address{}) {
		return nil, nil
	}
	data := append(ethcommon.CopyBytes(input), sa.Ctx.From.Bytes()...)
	return sa.Ctx.VM.Call(sa.Ctx, handler, nil, data, sa.Ctx.Gas.Remaining())
}

func (sa *SmartAccount) entryPointAddress() ethcommon.Address {
	_, entryPoint, _ := sa.entryPoint.Get()
	return entryPoint
}

func (sa *SmartAccount) onlySelf() error {
	if sa.Ctx.From != sa.Address() {
		return callerFailure(CodeNotSelf, "caller %s", sa.Ctx.From)
	}
	return nil
}

func (sa *SmartAccount) onlyEntryPoint() error {
	if sa.Ctx.From != sa.entryPointAddress() {
		return callerFailure(CodeNotEntryPoint, "caller %s", sa.Ctx.From)
	}
	return nil
}

func (sa *SmartAccount) onlyEntryPointOrSelf() error {
	if sa.Ctx.From != sa.Address() && sa.Ctx.From != sa.entryPointAddress() {
		return callerFailure(CodeNotEntryPointOrSelf, "caller %s", sa.Ctx.From)
	}
	return nil
}

func (sa *SmartAccount) onlyOwnerOrSelf() error {
	if sa.Ctx.From == sa.Address() {
		return nil
	}
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) || sa.Ctx.From != owner {
		return callerFailure(CodeNotOwner, "caller %s", sa.Ctx.From)
	}
	return nil
}
