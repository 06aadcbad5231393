package events

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// ExecutedEvent is published once a block and its receipts are persisted
type ExecutedEvent struct {
	Height        uint64
	BlockHash     ethcommon.Hash
	TxPointerList []*TxPointer
}

// TxPointer summarizes the receipt of one message of the block
type TxPointer struct {
	Hash    ethcommon.Hash
	From    ethcommon.Address
	Failed  bool
	GasUsed uint64
}
