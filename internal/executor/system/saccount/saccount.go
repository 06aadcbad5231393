package saccount

import (
	_ "embed"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

//go:embed sol/SmartAccount.abi
var smartAccountABI string

//go:embed sol/SmartAccountProxy.abi
var smartAccountProxyABI string

//go:embed sol/SmartAccountFactory.abi
var smartAccountFactoryABI string

//go:embed sol/EntryPoint.abi
var entryPointABI string

//go:embed sol/MultiSend.abi
var multiSendABI string

//go:embed sol/CallbackHandler.abi
var callbackHandlerABI string

//go:embed sol/SessionKeyModule.abi
var sessionKeyModuleABI string

//go:embed sol/PasskeyModule.abi
var passkeyModuleABI string

//go:embed sol/DelegateCallGuard.abi
var delegateCallGuardABI string

//go:embed sol/VerifyingPaymaster.abi
var verifyingPaymasterABI string

const (
	SmartAccountName        = "smart_account"
	SmartAccountProxyName   = "smart_account_proxy"
	SmartAccountFactoryName = "smart_account_factory"
	EntryPointName          = "entry_point"
	MultiSendName           = "multi_send"
	CallbackHandlerName     = "callback_handler"
	SessionKeyModuleName    = "session_key_module"
	PasskeyModuleName       = "passkey_module"
	DelegateCallGuardName   = "delegatecall_guard"
	VerifyingPaymasterName  = "verifying_paymaster"
)

var (
	EntryPointAddr            = ethcommon.HexToAddress(common.EntryPointContractAddr)
	AccountFactoryAddr        = ethcommon.HexToAddress(common.AccountFactoryContractAddr)
	AccountImplementationAddr = ethcommon.HexToAddress(common.AccountImplementationContractAddr)
	MultiSendAddr             = ethcommon.HexToAddress(common.MultiSendContractAddr)
	CallbackHandlerAddr       = ethcommon.HexToAddress(common.CallbackHandlerContractAddr)
	SessionKeyModuleAddr      = ethcommon.HexToAddress(common.SessionKeyModuleContractAddr)
	PasskeyModuleAddr         = ethcommon.HexToAddress(common.PasskeyModuleContractAddr)
	DelegateCallGuardAddr     = ethcommon.HexToAddress(common.DelegateCallGuardContractAddr)
	VerifyingPaymasterAddr    = ethcommon.HexToAddress(common.VerifyingPaymasterContractAddr)
)

// Definitions returns every contract of the account system, the vm registers them by name
func Definitions() []common.ContractDefinition {
	return []common.ContractDefinition{
		SmartAccountBuildConfig,
		SmartAccountProxyBuildConfig,
		SmartAccountFactoryBuildConfig,
		EntryPointBuildConfig,
		MultiSendBuildConfig,
		CallbackHandlerBuildConfig,
		SessionKeyModuleBuildConfig,
		PasskeyModuleBuildConfig,
		DelegateCallGuardBuildConfig,
		VerifyingPaymasterBuildConfig,
	}
}

type Deployment struct {
	Address ethcommon.Address
	Name    string
}

// Deployments lists the contracts living at fixed system addresses
func Deployments() []Deployment {
	return []Deployment{
		{Address: EntryPointAddr, Name: EntryPointName},
		{Address: AccountFactoryAddr, Name: SmartAccountFactoryName},
		{Address: AccountImplementationAddr, Name: SmartAccountName},
		{Address: MultiSendAddr, Name: MultiSendName},
		{Address: CallbackHandlerAddr, Name: CallbackHandlerName},
		{Address: SessionKeyModuleAddr, Name: SessionKeyModuleName},
		{Address: PasskeyModuleAddr, Name: PasskeyModuleName},
		{Address: DelegateCallGuardAddr, Name: DelegateCallGuardName},
		{Address: VerifyingPaymasterAddr, Name: VerifyingPaymasterName},
	}
}
