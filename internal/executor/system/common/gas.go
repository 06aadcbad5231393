package common

import (
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
)

type GasMeter struct {
	limit uint64
	used  uint64
}

func NewGasMeter(limit uint64) *GasMeter {
	return &GasMeter{limit: limit}
}

// Consume uses up all gas when amount exceeds the remaining
func (g *GasMeter) Consume(amount uint64) error {
	if amount > g.Remaining() {
		g.used = g.limit
		return vm.ErrOutOfGas
	}
	g.used += amount
	return nil
}

func (g *GasMeter) Refund(amount uint64) {
	if amount > g.used {
		amount = g.used
	}
	g.used -= amount
}

func (g *GasMeter) Remaining() uint64 {
	return g.limit - g.used
}

func (g *GasMeter) Used() uint64 {
	return g.used
}

func (g *GasMeter) Limit() uint64 {
	return g.limit
}

// CallGasCap is the max gas a frame may forward to a child frame, all but one 64th
func CallGasCap(available uint64) uint64 {
	return available - available/64
}

func CallDataGas(data []byte) uint64 {
	var gas uint64
	for _, b := range data {
		if b == 0 {
			gas += params.TxDataZeroGas
		} else {
			gas += params.TxDataNonZeroGasEIP2028
		}
	}
	return gas
}

func LogGas(log *ethtypes.Log) uint64 {
	return params.LogGas + uint64(len(log.Topics))*params.LogTopicGas + uint64(len(log.Data))*params.LogDataGas
}
