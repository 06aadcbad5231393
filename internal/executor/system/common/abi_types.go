package common

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	AddressType, _      = abi.NewType("address", "", nil)
	AddressSliceType, _ = abi.NewType("address[]", "", nil)
	BigIntType, _       = abi.NewType("uint256", "", nil)
	UInt8Type, _        = abi.NewType("uint8", "", nil)
	UInt48Type, _       = abi.NewType("uint48", "", nil)
	BoolType, _         = abi.NewType("bool", "", nil)
	BytesType, _        = abi.NewType("bytes", "", nil)
	Bytes4Type, _       = abi.NewType("bytes4", "", nil)
	Bytes32Type, _      = abi.NewType("bytes32", "", nil)
	StringType, _       = abi.NewType("string", "", nil)
)
