package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

type EventAccountInitialized struct {
	Owner      ethcommon.Address
	EntryPoint ethcommon.Address
	Handler    ethcommon.Address
}

func (e *EventAccountInitialized) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["AccountInitialized"])
}

type EventOwnerUpdated struct {
	OldOwner ethcommon.Address
	NewOwner ethcommon.Address
}

func (e *EventOwnerUpdated) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["OwnerUpdated"])
}

type EventModuleEnabled struct {
	Module ethcommon.Address
}

func (e *EventModuleEnabled) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ModuleEnabled"])
}

type EventModuleDisabled struct {
	Module ethcommon.Address
}

func (e *EventModuleDisabled) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ModuleDisabled"])
}

type EventImplementationUpdated struct {
	OldImplementation ethcommon.Address
	NewImplementation ethcommon.Address
}

func (e *EventImplementationUpdated) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ImplementationUpdated"])
}

type EventExecutionSuccess struct {
	TxHash  [32]byte
	Payment *big.Int
}

func (e *EventExecutionSuccess) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ExecutionSuccess"])
}

type EventExecutionFailure struct {
	TxHash  [32]byte
	Payment *big.Int
}

func (e *EventExecutionFailure) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ExecutionFailure"])
}

type EventRefundFailure struct {
	TxHash   [32]byte
	Receiver ethcommon.Address
	Payment  *big.Int
}

func (e *EventRefundFailure) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["RefundFailure"])
}

type EventNonceAdvanced struct {
	BatchId *big.Int
	Nonce   *big.Int
}

func (e *EventNonceAdvanced) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["NonceAdvanced"])
}

type EventChangedGuard struct {
	Guard ethcommon.Address
}

func (e *EventChangedGuard) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ChangedGuard"])
}

type EventChangedFallbackHandler struct {
	Handler ethcommon.Address
}

func (e *EventChangedFallbackHandler) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ChangedFallbackHandler"])
}

type EventApproveHash struct {
	ApprovedHash [32]byte
	Owner        ethcommon.Address
}

func (e *EventApproveHash) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ApproveHash"])
}

type EventExecutionFromModuleSuccess struct {
	Module ethcommon.Address
}

func (e *EventExecutionFromModuleSuccess) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ExecutionFromModuleSuccess"])
}

type EventExecutionFromModuleFailure struct {
	Module ethcommon.Address
}

func (e *EventExecutionFromModuleFailure) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["ExecutionFromModuleFailure"])
}

type EventSmartAccountReceivedNativeToken struct {
	Sender ethcommon.Address
	Value  *big.Int
}

func (e *EventSmartAccountReceivedNativeToken) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["SmartAccountReceivedNativeToken"])
}

type EventAccountCreation struct {
	Account ethcommon.Address
	Owner   ethcommon.Address
	Index   *big.Int
}

func (e *EventAccountCreation) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["AccountCreation"])
}

type EventUserOperationEvent struct {
	UserOpHash    [32]byte
	Sender        ethcommon.Address
	Paymaster     ethcommon.Address
	Nonce         *big.Int
	Success       bool
	ActualGasCost *big.Int
	ActualGasUsed *big.Int
}

func (e *EventUserOperationEvent) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["UserOperationEvent"])
}

type EventAccountDeployed struct {
	UserOpHash [32]byte
	Sender     ethcommon.Address
	Factory    ethcommon.Address
	Paymaster  ethcommon.Address
}

func (e *EventAccountDeployed) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["AccountDeployed"])
}

type EventUserOperationRevertReason struct {
	UserOpHash   [32]byte
	Sender       ethcommon.Address
	Nonce        *big.Int
	RevertReason []byte
}

func (e *EventUserOperationRevertReason) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["UserOperationRevertReason"])
}

type EventBeforeExecution struct{}

func (e *EventBeforeExecution) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["BeforeExecution"])
}

type EventDeposited struct {
	Account      ethcommon.Address
	TotalDeposit *big.Int
}

func (e *EventDeposited) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["Deposited"])
}

type EventWithdrawn struct {
	Account         ethcommon.Address
	WithdrawAddress ethcommon.Address
	Amount          *big.Int
}

func (e *EventWithdrawn) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["Withdrawn"])
}

type EventSessionKeySet struct {
	Account    ethcommon.Address
	SessionKey ethcommon.Address
	ValidAfter *big.Int
	ValidUntil *big.Int
}

func (e *EventSessionKeySet) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["SessionKeySet"])
}

type EventSessionKeyRevoked struct {
	Account    ethcommon.Address
	SessionKey ethcommon.Address
}

func (e *EventSessionKeyRevoked) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["SessionKeyRevoked"])
}

type EventPasskeySet struct {
	Account ethcommon.Address
	KeyHash [32]byte
}

func (e *EventPasskeySet) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["PasskeySet"])
}

type EventPasskeyRemoved struct {
	Account ethcommon.Address
}

func (e *EventPasskeyRemoved) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["PasskeyRemoved"])
}

type EventAllowedTargetSet struct {
	Account ethcommon.Address
	Target  ethcommon.Address
	Allowed bool
}

func (e *EventAllowedTargetSet) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["AllowedTargetSet"])
}

type EventVerifyingSignerChanged struct {
	OldSigner ethcommon.Address
	NewSigner ethcommon.Address
}

func (e *EventVerifyingSignerChanged) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["VerifyingSignerChanged"])
}

type EventGasSponsored struct {
	Sender        ethcommon.Address
	Mode          uint8
	ActualGasCost *big.Int
}

func (e *EventGasSponsored) Pack(abi abi.ABI) (*ethtypes.Log, error) {
	return packer.PackEvent(e, abi.Events["GasSponsored"])
}
