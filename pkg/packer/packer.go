package packer

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Error(string)
var revertSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// Event is a struct that knows which event of an abi it encodes
type Event interface {
	Pack(abi abi.ABI) (*ethtypes.Log, error)
}

// Error is a struct that knows which custom error of an abi it encodes
type Error interface {
	Pack(abi abi.ABI) error
}

// RevertError is a reverted call, Data is what the caller sees as return data
type RevertError struct {
	Err  error
	Data []byte
	Str  string
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%s errdata %s", e.Err.Error(), e.Str)
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// fieldsOf reads the field named abi.ToCamelCase(input.Name) for every input
func fieldsOf(src any, inputs abi.Arguments, owner string) ([]any, error) {
	if src == nil {
		return nil, errors.Errorf("%s: nil struct", owner)
	}
	v := reflect.Indirect(reflect.ValueOf(src))
	values := make([]any, len(inputs))
	for i, input := range inputs {
		name := abi.ToCamelCase(input.Name)
		field := v.FieldByName(name)
		if !field.IsValid() {
			return nil, errors.Errorf("%s: missing field %s", owner, name)
		}
		values[i] = field.Interface()
	}
	return values, nil
}

// PackEvent turns eventStruct into a log, indexed inputs become topics after the event id
func PackEvent(eventStruct any, event abi.Event) (*ethtypes.Log, error) {
	values, err := fieldsOf(eventStruct, event.Inputs, "event "+event.Name)
	if err != nil {
		return nil, err
	}

	query := [][]any{{event.ID}}
	var data []any
	for i, input := range event.Inputs {
		if input.Indexed {
			query = append(query, []any{values[i]})
		} else {
			data = append(data, values[i])
		}
	}
	topics, err := abi.MakeTopics(query...)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s: make topics", event.Name)
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s: pack data", event.Name)
	}
	return &ethtypes.Log{
		Topics: lo.Map(topics, func(t []common.Hash, _ int) common.Hash { return t[0] }),
		Data:   packed,
	}, nil
}

// PackError returns the revert of custom error abiErr carrying errStruct
func PackError(errStruct any, abiErr abi.Error) error {
	args, err := fieldsOf(errStruct, abiErr.Inputs, "error "+abiErr.Name)
	if err != nil {
		return err
	}
	packed, err := abiErr.Inputs.Pack(args...)
	if err != nil {
		return err
	}
	return &RevertError{
		Err:  vm.ErrExecutionReverted,
		Data: append(common.CopyBytes(abiErr.ID[:4]), packed...),
		Str:  fmt.Sprintf("%s, args: %v", abiErr.String(), args),
	}
}

// NewRevertStringError is revert("msg")
func NewRevertStringError(msg string) error {
	stringType, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(msg)
	if err != nil {
		return err
	}
	return &RevertError{
		Err:  vm.ErrExecutionReverted,
		Data: append(common.CopyBytes(revertSelector), packed...),
		Str:  msg,
	}
}

// RevertData is the return data of a reverted call, nil when err is not a revert
func RevertData(err error) []byte {
	var revertErr *RevertError
	if errors.As(err, &revertErr) {
		return revertErr.Data
	}
	return nil
}
