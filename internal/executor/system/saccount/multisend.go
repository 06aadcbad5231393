package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/pkg/packer"
)

// operation(1) to(20) value(32) dataLength(32)
const multiSendHeaderLength = 1 + ethcommon.AddressLength + 32 + 32

var MultiSendBuildConfig = &common.SystemContractBuildConfig[*MultiSend]{
	Name:   MultiSendName,
	AbiStr: multiSendABI,
	Layout: common.NewStorageLayout(1),
	Constructor: func(systemContractBase common.SystemContractBase) *MultiSend {
		return &MultiSend{SystemContractBase: systemContractBase}
	},
}

type MultiSendTx struct {
	Operation interfaces.Operation
	To        ethcommon.Address
	Value     *big.Int
	Data      []byte
}

// EncodeMultiSend packs txs the way multiSend reads them
func EncodeMultiSend(txs ...MultiSendTx) []byte {
	var packed []byte
	for _, tx := range txs {
		value := tx.Value
		if value == nil {
			value = new(big.Int)
		}
		packed = append(packed, byte(tx.Operation))
		packed = append(packed, tx.To.Bytes()...)
		packed = append(packed, common.BigKey(value)...)
		packed = append(packed, common.BigKey(big.NewInt(int64(len(tx.Data))))...)
		packed = append(packed, tx.Data...)
	}
	return packed
}

// MultiSend is a library an account delegatecalls to run several calls atomically
type MultiSend struct {
	common.SystemContractBase
}

// MultiSend runs every packed tx in the account context, a zero to is the account itself
func (ms *MultiSend) MultiSend(transactions []byte) error {
	if !ms.Ctx.IsDelegated() {
		return packer.NewRevertStringError("MultiSend should only be called via delegatecall")
	}

	for i := 0; i < len(transactions); {
		if len(transactions)-i < multiSendHeaderLength {
			return packer.NewRevertStringError("MultiSend: truncated transaction")
		}
		operation := interfaces.Operation(transactions[i])
		to := ethcommon.BytesToAddress(transactions[i+1 : i+21])
		value := new(big.Int).SetBytes(transactions[i+21 : i+53])
		dataLength := new(big.Int).SetBytes(transactions[i+53 : i+85])
		i += multiSendHeaderLength
		if !dataLength.IsUint64() || dataLength.Uint64() > uint64(len(transactions)-i) {
			return packer.NewRevertStringError("MultiSend: truncated transaction")
		}
		data := transactions[i : i+int(dataLength.Uint64())]
		i += len(data)

		if to == (ethcommon.Address{}) {
			to = ms.Address()
		}
		var err error
		switch operation {
		case interfaces.Call:
			_, err = ms.Ctx.VM.Call(ms.Ctx, to, value, data, ms.Ctx.Gas.Remaining())
		case interfaces.DelegateCall:
			_, err = ms.Ctx.VM.DelegateCall(ms.Ctx, to, data, ms.Ctx.Gas.Remaining())
		default:
			return packer.NewRevertStringError("MultiSend: invalid operation")
		}
		if err != nil {
			ms.Logger.Debugf("multiSend on %s, %d to %s failed: %v", ms.Address(), operation, to, err)
			return err
		}
	}
	return nil
}
