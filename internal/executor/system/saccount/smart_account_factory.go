package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

var ErrAccountExists = errors.New("account already deployed")

var SmartAccountFactoryBuildConfig = &common.SystemContractBuildConfig[*SmartAccountFactory]{
	Name:   SmartAccountFactoryName,
	AbiStr: smartAccountFactoryABI,
	Layout: common.NewStorageLayout(1),
	Constructor: func(systemContractBase common.SystemContractBase) *SmartAccountFactory {
		return &SmartAccountFactory{SystemContractBase: systemContractBase}
	},
}

// SmartAccountFactory deploys account proxies at addresses derived from the owner, the initial modules and an index.
// A user operation initCode holds the factory address and a deployCounterFactualAccount call,
// so getAddressForCounterFactualAccount can be used before or after the account is created.
type SmartAccountFactory struct {
	common.SystemContractBase
}

func (f *SmartAccountFactory) BasicImplementation() (ethcommon.Address, error) {
	return AccountImplementationAddr, nil
}

func (f *SmartAccountFactory) MinimalHandler() (ethcommon.Address, error) {
	return CallbackHandlerAddr, nil
}

func (f *SmartAccountFactory) GetAddressForCounterFactualAccount(owner ethcommon.Address, modules []ethcommon.Address, index *big.Int) (ethcommon.Address, error) {
	return CounterFactualAddress(f.Address(), owner, modules, index), nil
}

func (f *SmartAccountFactory) DeployCounterFactualAccount(owner ethcommon.Address, modules []ethcommon.Address, index *big.Int) (ethcommon.Address, error) {
	account := CounterFactualAddress(f.Address(), owner, modules, index)
	lg := f.Ctx.StateLedger
	if f.Ctx.VM.IsContract(lg, account) {
		return ethcommon.Address{}, errors.Wrapf(ErrAccountExists, "address %s", account)
	}

	if err := f.Ctx.VM.Deploy(lg, account, SmartAccountProxyName); err != nil {
		return ethcommon.Address{}, err
	}
	proxyStorage := lg.GetOrCreateAccount(account)
	if err := common.NewVMSlot[ethcommon.Address](proxyStorage, SmartAccountProxyLayout.Key("implementation")).Put(AccountImplementationAddr); err != nil {
		return ethcommon.Address{}, err
	}
	if _, err := common.CallMethod(f.Ctx, account, nil, SmartAccountABI(), "init", f.Ctx.Gas.Remaining(),
		owner, EntryPointAddr, CallbackHandlerAddr, modules); err != nil {
		return ethcommon.Address{}, errors.Wrapf(err, "init account %s", account)
	}

	f.Logger.Infof("account %s created, owner: %s, index: %s", account, owner, index)
	if err := f.EmitEvent(&EventAccountCreation{Account: account, Owner: owner, Index: index}); err != nil {
		return ethcommon.Address{}, err
	}
	return account, nil
}

// CounterFactualAddress derives the create2 address of an account proxy bound to the basic implementation
func CounterFactualAddress(factory, owner ethcommon.Address, modules []ethcommon.Address, index *big.Int) ethcommon.Address {
	var packedModules []byte
	for _, module := range modules {
		packedModules = append(packedModules, common.AddressKey(module)...)
	}
	salt := crypto.Keccak256Hash(
		owner.Bytes(),
		crypto.Keccak256(packedModules),
		common.BigKey(index),
	)
	initCodeHash := crypto.Keccak256(
		common.NativeCode(SmartAccountProxyName),
		common.AddressKey(AccountImplementationAddr),
	)
	return crypto.CreateAddress2(factory, salt, initCodeHash)
}
