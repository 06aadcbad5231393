package common

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

const (
	// ZeroAddress is a special address, no one has control
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// system contract address range 0x1000-0xffff, start from 1000, avoid conflicts with precompiled contracts
	// SystemContractStartAddr is the start address of system contract
	SystemContractStartAddr = "0x0000000000000000000000000000000000001000"

	// EntryPointContractAddr is the bundler entry point, it also keeps the gas deposits
	EntryPointContractAddr = "0x0000000000000000000000000000000000001000"

	// AccountFactoryContractAddr deploys account proxies at counterfactual addresses
	AccountFactoryContractAddr = "0x0000000000000000000000000000000000001001"

	// AccountImplementationContractAddr is the default implementation behind every account proxy
	AccountImplementationContractAddr = "0x0000000000000000000000000000000000001002"

	MultiSendContractAddr       = "0x0000000000000000000000000000000000001003"
	CallbackHandlerContractAddr = "0x0000000000000000000000000000000000001004"

	SessionKeyModuleContractAddr  = "0x0000000000000000000000000000000000001005"
	PasskeyModuleContractAddr     = "0x0000000000000000000000000000000000001006"
	DelegateCallGuardContractAddr = "0x0000000000000000000000000000000000001007"

	// TokenContractAddr is the erc20 token accounts may pay refunds with
	TokenContractAddr = "0x0000000000000000000000000000000000001008"

	// VerifyingPaymasterContractAddr sponsors user operations signed by an off chain service
	VerifyingPaymasterContractAddr = "0x0000000000000000000000000000000000001009"

	// SystemContractEndAddr is the end address of system contract
	SystemContractEndAddr = "0x000000000000000000000000000000000000ffff"

	// MaxCallDepth is the max depth of nested calls in one transaction
	MaxCallDepth = 1024
)

var (
	ErrSignatureDepth = errors.New("signature validation depth exceeded")
	ErrCallDepth      = errors.New("max call depth exceeded")
)

// TxContext is shared by all frames of a transaction
type TxContext struct {
	Origin      ethcommon.Address
	Coinbase    ethcommon.Address
	GasPrice    *big.Int
	BlockNumber uint64
	// unix seconds
	Time    uint64
	ChainID *big.Int

	// MaxSignatureDepth bounds nested contract signature validation
	MaxSignatureDepth int

	callDepth      int
	signatureDepth int
}

func (tx *TxContext) EnterCall() error {
	if tx.callDepth >= MaxCallDepth {
		return ErrCallDepth
	}
	tx.callDepth++
	return nil
}

func (tx *TxContext) ExitCall() {
	tx.callDepth--
}

func (tx *TxContext) CallDepth() int {
	return tx.callDepth
}

func (tx *TxContext) EnterSignature() error {
	if tx.signatureDepth >= tx.MaxSignatureDepth {
		return ErrSignatureDepth
	}
	tx.signatureDepth++
	return nil
}

func (tx *TxContext) ExitSignature() {
	tx.signatureDepth--
}

// VMContext is the context of one call frame
type VMContext struct {
	StateLedger ledger.StateLedger
	VM          VirtualMachine
	Tx          *TxContext

	// Self is the account whose storage and balance the frame works on
	Self ethcommon.Address

	// CodeAddress is the address the running code was loaded from, differs from Self under delegatecall
	CodeAddress ethcommon.Address

	From     ethcommon.Address
	Value    *big.Int
	Gas      *GasMeter
	IsStatic bool
}

func (ctx *VMContext) IsDelegated() bool {
	return ctx.Self != ctx.CodeAddress
}

type VirtualMachine interface {
	// Call runs input on to with ctx.Self as sender
	Call(ctx *VMContext, to ethcommon.Address, value *big.Int, input []byte, gas uint64) ([]byte, error)

	// StaticCall is a call that fails on any state modification
	StaticCall(ctx *VMContext, to ethcommon.Address, input []byte, gas uint64) ([]byte, error)

	// DelegateCall runs the code of codeAddr on the storage of ctx.Self, keeping sender and value
	DelegateCall(ctx *VMContext, codeAddr ethcommon.Address, input []byte, gas uint64) ([]byte, error)

	// Deploy puts the code of the registered contract name at addr
	Deploy(stateLedger ledger.StateLedger, addr ethcommon.Address, name string) error

	// IsContract judge if addr holds code
	IsContract(stateLedger ledger.StateLedger, addr ethcommon.Address) bool

	// Definition returns the contract definition deployed at addr
	Definition(stateLedger ledger.StateLedger, addr ethcommon.Address) (ContractDefinition, bool)

	// SupportsMethods judge if the abi of the contract at addr has all the selectors
	SupportsMethods(stateLedger ledger.StateLedger, addr ethcommon.Address, ids ...[4]byte) bool
}

// SystemContract must be implemented by all system contract
type SystemContract interface {
	SetContext(*VMContext)
}

// Fallback handles calls with empty data or an unknown selector
type Fallback interface {
	Fallback(input []byte) ([]byte, error)
}

type ContractDefinition interface {
	ContractName() string
	ContractABI() abi.ABI
	StorageLayout() *StorageLayout
	New(ctx *VMContext) SystemContract
}

type SystemContractBase struct {
	Logger       logrus.FieldLogger
	Abi          abi.ABI
	Layout       *StorageLayout
	Ctx          *VMContext
	StateAccount ledger.IAccount
}

func (s *SystemContractBase) SetContext(ctx *VMContext) {
	s.Ctx = ctx
	s.StateAccount = ctx.StateLedger.GetOrCreateAccount(ctx.Self)
}

func (s *SystemContractBase) Address() ethcommon.Address {
	return s.Ctx.Self
}

func (s *SystemContractBase) EmitEvent(event packer.Event) error {
	log, err := event.Pack(s.Abi)
	if err != nil {
		return err
	}
	if err := s.Ctx.Gas.Consume(LogGas(log)); err != nil {
		return err
	}
	log.Address = s.Ctx.Self
	log.BlockNumber = s.Ctx.Tx.BlockNumber
	s.Ctx.StateLedger.AddLog(log)
	return nil
}

func (s *SystemContractBase) Revert(err packer.Error) error {
	return err.Pack(s.Abi)
}

type SystemContractBuildConfig[T SystemContract] struct {
	Name        string
	AbiStr      string
	Layout      *StorageLayout
	Constructor func(systemContractBase SystemContractBase) T

	once        sync.Once
	contractABI abi.ABI
}

func (m *SystemContractBuildConfig[T]) ContractName() string {
	return m.Name
}

func (m *SystemContractBuildConfig[T]) ContractABI() abi.ABI {
	m.once.Do(func() {
		contractABI, err := abi.JSON(strings.NewReader(m.AbiStr))
		if err != nil {
			panic(fmt.Sprintf("system contract %s abi: %v", m.Name, err))
		}
		m.contractABI = contractABI
	})
	return m.contractABI
}

func (m *SystemContractBuildConfig[T]) StorageLayout() *StorageLayout {
	return m.Layout
}

func (m *SystemContractBuildConfig[T]) New(ctx *VMContext) SystemContract {
	return m.Build(ctx)
}

func (m *SystemContractBuildConfig[T]) Build(ctx *VMContext) T {
	c := m.Constructor(SystemContractBase{
		Logger: loggers.Logger(loggers.SystemContract).WithField("contract", m.Name),
		Abi:    m.ContractABI(),
		Layout: m.Layout,
	})
	c.SetContext(ctx)
	return c
}

// NewRevertError packs a solidity custom error
func NewRevertError(name string, inputs abi.Arguments, args []any) error {
	abiErr := abi.NewError(name, inputs)
	packed, err := abiErr.Inputs.Pack(args...)
	if err != nil {
		return err
	}
	return &packer.RevertError{
		Err:  vm.ErrExecutionReverted,
		Data: append(ethcommon.CopyBytes(abiErr.ID.Bytes()[:4]), packed...),
		Str:  fmt.Sprintf("%s, args: %v", abiErr.String(), args),
	}
}

// NativeCodePrefix marks code that refers to a registered native contract
const NativeCodePrefix = "native:"

// NativeCode is the code stored at the address of a native contract name
func NativeCode(name string) []byte {
	return []byte(NativeCodePrefix + name)
}

// MethodID returns the 4 bytes selector of a method signature such as "transfer(address,uint256)"
func MethodID(sig string) [4]byte {
	var id [4]byte
	copy(id[:], crypto.Keccak256([]byte(sig))[:4])
	return id
}

func IsInSlice[T comparable](value T, slice []T) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}

	return false
}
