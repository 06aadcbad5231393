package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// CallMethod packs args for the method, calls it on to and unpacks the outputs
func CallMethod(ctx *VMContext, to ethcommon.Address, value *big.Int, contractABI abi.ABI, method string, gas uint64, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	ret, err := ctx.VM.Call(ctx, to, value, input, gas)
	if err != nil {
		return nil, err
	}
	return unpackOutputs(contractABI, method, ret)
}

func StaticCallMethod(ctx *VMContext, to ethcommon.Address, contractABI abi.ABI, method string, gas uint64, args ...any) ([]any, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	ret, err := ctx.VM.StaticCall(ctx, to, input, gas)
	if err != nil {
		return nil, err
	}
	return unpackOutputs(contractABI, method, ret)
}

func unpackOutputs(contractABI abi.ABI, method string, ret []byte) ([]any, error) {
	m, ok := contractABI.Methods[method]
	if !ok || len(m.Outputs) == 0 {
		return nil, nil
	}
	if len(ret) == 0 {
		return nil, errors.Errorf("method %s returned no data", method)
	}
	return m.Outputs.Unpack(ret)
}

// ConvertOutput converts an unpacked output to T, tuples are matched by field name
func ConvertOutput[T any](outputs []any, index int) (t T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("convert output %d: %v", index, r)
		}
	}()
	if index >= len(outputs) {
		return t, errors.Errorf("output %d out of range %d", index, len(outputs))
	}
	converted, ok := abi.ConvertType(outputs[index], new(T)).(*T)
	if !ok {
		return t, errors.Errorf("output %d is %T", index, outputs[index])
	}
	return *converted, nil
}
