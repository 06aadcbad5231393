package system

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

var (
	ErrNotExistSystemContract         = errors.New("not exist this system contract")
	ErrNotExistMethodName             = errors.New("not exist method name of this system contract")
	ErrNotImplementFuncSystemContract = errors.New("not implement the function for this system contract")
	ErrNotDelegatable                 = errors.New("system contract can not be delegate called")
	ErrNonPayable                     = errors.New("method is not payable")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

var _ common.VirtualMachine = (*NativeVM)(nil)

type Message struct {
	From     ethcommon.Address
	To       ethcommon.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

type instanceEntry struct {
	abi      abi.ABI
	instance any
}

// target is the code a frame runs
type target struct {
	abi         abi.ABI
	delegatable bool
	build       func(ctx *common.VMContext) any
}

// NativeVM handle abi decoding for parameters and abi encoding for return data.
// Contract code in the ledger is a reference to a registered definition, so the vm itself keeps no state.
type NativeVM struct {
	logger logrus.FieldLogger

	// contract name mapping to contract definition
	definitions map[string]common.ContractDefinition

	// address mapping to a prebuilt instance, used to plug in external contracts
	instances map[ethcommon.Address]instanceEntry
}

func New(definitions ...common.ContractDefinition) *NativeVM {
	nvm := &NativeVM{
		logger:      loggers.Logger(loggers.Executor),
		definitions: make(map[string]common.ContractDefinition),
		instances:   make(map[ethcommon.Address]instanceEntry),
	}
	for _, def := range definitions {
		nvm.Register(def)
	}
	return nvm
}

func (nvm *NativeVM) Register(def common.ContractDefinition) {
	if _, ok := nvm.definitions[def.ContractName()]; ok {
		panic(fmt.Sprintf("register system contract %s repeated", def.ContractName()))
	}
	if def.StorageLayout() != nil {
		if err := def.StorageLayout().Validate(); err != nil {
			panic(fmt.Sprintf("system contract %s layout: %v", def.ContractName(), err))
		}
	}
	// parse abi early
	def.ContractABI()
	nvm.definitions[def.ContractName()] = def
}

// Names lists the registered contract names in order
func (nvm *NativeVM) Names() []string {
	names := maps.Keys(nvm.definitions)
	slices.Sort(names)
	return names
}

// Deploy puts the code of a registered contract at addr
func (nvm *NativeVM) Deploy(lg ledger.StateLedger, addr ethcommon.Address, name string) error {
	if _, ok := nvm.definitions[name]; !ok {
		return errors.Wrapf(ErrNotExistSystemContract, "deploy %s", name)
	}
	lg.SetCode(addr, NativeCode(name))
	return nil
}

// DeployInstance binds a prebuilt contract instance to addr, calls are dispatched by contractABI
func (nvm *NativeVM) DeployInstance(lg ledger.StateLedger, addr ethcommon.Address, contractABI abi.ABI, instance any) {
	nvm.instances[addr] = instanceEntry{abi: contractABI, instance: instance}
	lg.SetCode(addr, []byte(common.NativeCodePrefix+"instance"))
}

func NativeCode(name string) []byte {
	return common.NativeCode(name)
}

func (nvm *NativeVM) IsContract(lg ledger.StateLedger, addr ethcommon.Address) bool {
	return len(lg.GetCode(addr)) > 0
}

func (nvm *NativeVM) Definition(lg ledger.StateLedger, addr ethcommon.Address) (common.ContractDefinition, bool) {
	code := lg.GetCode(addr)
	if !bytes.HasPrefix(code, []byte(common.NativeCodePrefix)) {
		return nil, false
	}
	def, ok := nvm.definitions[string(code[len(common.NativeCodePrefix):])]
	return def, ok
}

func (nvm *NativeVM) SupportsMethods(lg ledger.StateLedger, addr ethcommon.Address, ids ...[4]byte) bool {
	t, err := nvm.resolve(lg, addr)
	if err != nil || t == nil {
		return false
	}
	for _, id := range ids {
		if _, err := t.abi.MethodById(id[:]); err != nil {
			return false
		}
	}
	return true
}

func (nvm *NativeVM) resolve(lg ledger.StateLedger, addr ethcommon.Address) (*target, error) {
	if entry, ok := nvm.instances[addr]; ok {
		return &target{
			abi: entry.abi,
			build: func(ctx *common.VMContext) any {
				if c, ok := entry.instance.(common.SystemContract); ok {
					c.SetContext(ctx)
				}
				return entry.instance
			},
		}, nil
	}

	code := lg.GetCode(addr)
	if len(code) == 0 {
		return nil, nil
	}
	def, ok := nvm.Definition(lg, addr)
	if !ok {
		return nil, errors.Wrapf(ErrNotExistSystemContract, "code of %s", addr)
	}
	return &target{
		abi:         def.ContractABI(),
		delegatable: true,
		build: func(ctx *common.VMContext) any {
			return def.New(ctx)
		},
	}, nil
}

func (nvm *NativeVM) Call(ctx *common.VMContext, to ethcommon.Address, value *big.Int, input []byte, gas uint64) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if ctx.IsStatic && value.Sign() > 0 {
		return nil, vm.ErrWriteProtection
	}
	return nvm.call(ctx, &common.VMContext{
		Self:        to,
		CodeAddress: to,
		From:        ctx.Self,
		Value:       value,
		IsStatic:    ctx.IsStatic,
	}, true, input, gas)
}

func (nvm *NativeVM) StaticCall(ctx *common.VMContext, to ethcommon.Address, input []byte, gas uint64) ([]byte, error) {
	return nvm.call(ctx, &common.VMContext{
		Self:        to,
		CodeAddress: to,
		From:        ctx.Self,
		Value:       new(big.Int),
		IsStatic:    true,
	}, false, input, gas)
}

func (nvm *NativeVM) DelegateCall(ctx *common.VMContext, codeAddr ethcommon.Address, input []byte, gas uint64) ([]byte, error) {
	return nvm.call(ctx, &common.VMContext{
		Self:        ctx.Self,
		CodeAddress: codeAddr,
		From:        ctx.From,
		Value:       ctx.Value,
		IsStatic:    ctx.IsStatic,
	}, false, input, gas)
}

// call charges the parent for the call and runs child with at most all but one 64th of the parent gas
func (nvm *NativeVM) call(parent *common.VMContext, child *common.VMContext, transfer bool, input []byte, gas uint64) ([]byte, error) {
	cost := params.CallGasEIP150 + common.CallDataGas(input)
	if transfer && child.Value.Sign() > 0 {
		cost += params.CallValueTransferGas
	}
	if err := parent.Gas.Consume(cost); err != nil {
		return nil, err
	}
	if available := common.CallGasCap(parent.Gas.Remaining()); gas > available {
		gas = available
	}

	child.StateLedger = parent.StateLedger
	child.VM = nvm
	child.Tx = parent.Tx
	child.Gas = common.NewGasMeter(gas)

	ret, err := nvm.run(child, transfer, input)
	if consumeErr := parent.Gas.Consume(child.Gas.Used()); consumeErr != nil {
		return nil, consumeErr
	}
	return ret, err
}

// run executes one frame, all state changes of the frame are reverted if it fails
func (nvm *NativeVM) run(ctx *common.VMContext, transfer bool, input []byte) (ret []byte, err error) {
	if err := ctx.Tx.EnterCall(); err != nil {
		return nil, err
	}
	defer ctx.Tx.ExitCall()

	lg := ctx.StateLedger
	snapshot := lg.Snapshot()
	journalLength := lg.JournalLength()
	defer func() {
		if r := recover(); r != nil {
			nvm.logger.Errorf("system contract %s panic: %v", ctx.CodeAddress, r)
			ret, err = nil, errors.Errorf("system contract panic: %v", r)
		}
		if err == nil && ctx.IsStatic && lg.JournalLength() != journalLength {
			ret, err = nil, vm.ErrWriteProtection
		}
		if err != nil {
			lg.RevertToSnapshot(snapshot)
		}
	}()

	if transfer && ctx.Value.Sign() > 0 {
		if lg.GetBalance(ctx.From).Cmp(ctx.Value) < 0 {
			return nil, vm.ErrInsufficientBalance
		}
		lg.SubBalance(ctx.From, ctx.Value)
		lg.AddBalance(ctx.Self, ctx.Value)
	}

	t, err := nvm.resolve(lg, ctx.CodeAddress)
	if err != nil {
		return nil, err
	}
	// plain account
	if t == nil {
		return nil, nil
	}
	if ctx.IsDelegated() && !t.delegatable {
		return nil, ErrNotDelegatable
	}
	return nvm.dispatch(ctx, t, input)
}

func (nvm *NativeVM) dispatch(ctx *common.VMContext, t *target, input []byte) ([]byte, error) {
	contract := t.build(ctx)

	var method *abi.Method
	if len(input) >= 4 {
		method, _ = t.abi.MethodById(input[:4])
	}
	if method == nil {
		if fallback, ok := contract.(common.Fallback); ok {
			return fallback.Fallback(input)
		}
		if len(input) == 0 {
			return nil, nil
		}
		return nil, ErrNotExistMethodName
	}
	if ctx.Value.Sign() > 0 && !method.IsPayable() {
		return nil, ErrNonPayable
	}

	// capitalize the first letter of a function
	funcName := fmt.Sprintf("%s%s", strings.ToUpper(method.Name[:1]), method.Name[1:])
	nvm.logger.Debugf("run system contract %s method name: %s", ctx.CodeAddress, funcName)
	fn := reflect.ValueOf(contract).MethodByName(funcName)
	if !fn.IsValid() {
		return nil, ErrNotImplementFuncSystemContract
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}
	if fn.Type().NumIn() != len(args) {
		return nil, errors.Errorf("method %s expect %d args, got %d", funcName, fn.Type().NumIn(), len(args))
	}
	inputs := make([]reflect.Value, len(args))
	for i, arg := range args {
		// abi decodes tuples into anonymous structs, convert them to the declared types
		inputs[i] = reflect.ValueOf(abi.ConvertType(arg, reflect.New(fn.Type().In(i)).Interface())).Elem()
	}

	results := fn.Call(inputs)
	if n := len(results); n > 0 && fn.Type().Out(n-1) == errorType {
		if !results[n-1].IsNil() {
			return nil, results[n-1].Interface().(error)
		}
		results = results[:n-1]
	}
	if len(method.Outputs) == 0 {
		return nil, nil
	}
	outputs := make([]any, len(results))
	for i, result := range results {
		outputs[i] = result.Interface()
	}
	return method.Outputs.Pack(outputs...)
}

// Run executes a transaction message, the sender pays gasLimit*gasPrice up front and gets the unused part back
func (nvm *NativeVM) Run(lg ledger.StateLedger, tx *common.TxContext, msg *Message) (*core.ExecutionResult, error) {
	if tx.GasPrice == nil {
		tx.GasPrice = new(big.Int)
	}
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}
	tx.Origin = msg.From

	fee := new(big.Int).Mul(new(big.Int).SetUint64(msg.GasLimit), tx.GasPrice)
	if lg.GetBalance(msg.From).Cmp(new(big.Int).Add(fee, msg.Value)) < 0 {
		return nil, errors.Wrapf(core.ErrInsufficientFunds, "address %s", msg.From)
	}
	gas := common.NewGasMeter(msg.GasLimit)
	if err := gas.Consume(params.TxGas + common.CallDataGas(msg.Data)); err != nil {
		return nil, core.ErrIntrinsicGas
	}
	if fee.Sign() > 0 {
		lg.SubBalance(msg.From, fee)
	}

	ctx := &common.VMContext{
		StateLedger: lg,
		VM:          nvm,
		Tx:          tx,
		Self:        msg.To,
		CodeAddress: msg.To,
		From:        msg.From,
		Value:       msg.Value,
		Gas:         common.NewGasMeter(gas.Remaining()),
	}
	ret, err := nvm.run(ctx, true, msg.Data)
	_ = gas.Consume(ctx.Gas.Used())
	if err != nil {
		ret = packer.RevertData(err)
	}

	if fee.Sign() > 0 {
		lg.AddBalance(msg.From, new(big.Int).Mul(new(big.Int).SetUint64(gas.Remaining()), tx.GasPrice))
		lg.AddBalance(tx.Coinbase, new(big.Int).Mul(new(big.Int).SetUint64(gas.Used()), tx.GasPrice))
	}

	nvm.logger.WithFields(logrus.Fields{
		"from":     msg.From,
		"to":       msg.To,
		"used_gas": gas.Used(),
		"err":      err,
	}).Debug("run system contract tx")
	return &core.ExecutionResult{
		UsedGas:    gas.Used(),
		Err:        err,
		ReturnData: ret,
	}, nil
}
