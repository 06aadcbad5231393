package executor

import (
	"context"
	"math/big"
	"sync"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/token"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/events"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

const (
	blockChanNumber = 1024
)

var _ Executor = (*BlockExecutor)(nil)

// NewNativeVM registers every contract the chain deploys
func NewNativeVM() *system.NativeVM {
	return system.New(append(saccount.Definitions(), token.BuildConfig)...)
}

// BlockExecutor executes blocks of messages against the ledger
type BlockExecutor struct {
	ledger            *ledger.Ledger
	logger            logrus.FieldLogger
	blockC            chan *Block
	cumulativeGasUsed uint64
	currentHeight     uint64
	blockFeed         event.Feed
	logsFeed          event.Feed
	ctx               context.Context
	cancel            context.CancelFunc

	rep      *repo.Repo
	lock     *sync.Mutex
	gasPrice *big.Int
	chainID  *big.Int

	nvm *system.NativeVM

	afterBlockHooks []func(block *Block, receipts []*ledger.Receipt)
}

// New creates executor instance
func New(rep *repo.Repo, lg *ledger.Ledger) (*BlockExecutor, error) {
	gasPrice, ok := new(big.Int).SetString(rep.Config.Account.GasPrice, 10)
	if !ok || gasPrice.Sign() < 0 {
		return nil, errors.Errorf("invalid gas price %q", rep.Config.Account.GasPrice)
	}

	ctx, cancel := context.WithCancel(context.Background())
	blockExecutor := &BlockExecutor{
		ledger:        lg,
		logger:        loggers.Logger(loggers.Executor),
		ctx:           ctx,
		cancel:        cancel,
		blockC:        make(chan *Block, blockChanNumber),
		currentHeight: lg.ChainLedger.GetChainMeta().Height,
		rep:           rep,
		lock:          &sync.Mutex{},
		gasPrice:      gasPrice,
		chainID:       new(big.Int).SetUint64(rep.GenesisConfig.ChainID),
		nvm:           NewNativeVM(),
	}

	blockExecutor.afterBlockHooks = []func(block *Block, receipts []*ledger.Receipt){
		blockExecutor.updateTxMetrics,
		blockExecutor.traceUserOperations,
	}
	return blockExecutor, nil
}

// Start starts executor
func (exec *BlockExecutor) Start() error {
	go exec.listenExecuteEvent()

	exec.logger.WithFields(logrus.Fields{
		"height": exec.currentHeight,
		"hash":   exec.ledger.ChainLedger.GetChainMeta().BlockHash,
	}).Infof("BlockExecutor started")

	return nil
}

// Stop stops executor
func (exec *BlockExecutor) Stop() error {
	exec.cancel()

	exec.logger.Info("BlockExecutor stopped")

	return nil
}

// ExecuteBlock executes block synchronously and returns its receipts
func (exec *BlockExecutor) ExecuteBlock(block *Block) ([]*ledger.Receipt, error) {
	return exec.processExecuteEvent(block)
}

func (exec *BlockExecutor) AsyncExecuteBlock(block *Block) {
	exec.blockC <- block
}

func (exec *BlockExecutor) CurrentHeader() (*ledger.BlockHeader, error) {
	return exec.ledger.ChainLedger.GetBlockHeader(exec.ledger.ChainLedger.GetChainMeta().Height)
}

// NativeVM exposes the vm the executor runs messages on
func (exec *BlockExecutor) NativeVM() *system.NativeVM {
	return exec.nvm
}

// SubscribeBlockEvent registers a subscription of ExecutedEvent.
func (exec *BlockExecutor) SubscribeBlockEvent(ch chan<- events.ExecutedEvent) event.Subscription {
	return exec.blockFeed.Subscribe(ch)
}

func (exec *BlockExecutor) SubscribeLogsEvent(ch chan<- []*ethtypes.Log) event.Subscription {
	return exec.logsFeed.Subscribe(ch)
}

func (exec *BlockExecutor) listenExecuteEvent() {
	for {
		select {
		case <-exec.ctx.Done():
			return
		case block := <-exec.blockC:
			if _, err := exec.processExecuteEvent(block); err != nil {
				exec.logger.WithFields(logrus.Fields{
					"height": block.Number,
					"err":    err,
				}).Error("Execute block failed")
			}
		}
	}
}
