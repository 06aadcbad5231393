package executor

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/events"
)

type Executor interface {
	Start() error

	Stop() error

	AsyncExecuteBlock(block *Block)

	ExecuteBlock(block *Block) ([]*ledger.Receipt, error)

	CurrentHeader() (*ledger.BlockHeader, error)

	// Call runs msg against the latest state and drops every change it makes
	Call(msg *system.Message) (*core.ExecutionResult, error)

	SubscribeBlockEvent(chan<- events.ExecutedEvent) event.Subscription

	SubscribeLogsEvent(chan<- []*ethtypes.Log) event.Subscription
}

// Block is an ordered batch of messages applied and committed together
type Block struct {
	Number       uint64
	Timestamp    int64
	Coinbase     ethcommon.Address
	Transactions []*system.Message
}
