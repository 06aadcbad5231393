package executor

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/events"
)

var ErrBlockHeight = errors.New("block height is not matched")

// TxHash identifies the index-th message of block number
func TxHash(msg *system.Message, number uint64, index int) ethcommon.Hash {
	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	data, err := rlp.EncodeToBytes([]any{msg.From, msg.To, value, msg.Data, msg.GasLimit, number, uint64(index)})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(data)
}

func (exec *BlockExecutor) txContext(number uint64, timestamp int64, coinbase ethcommon.Address, gasPrice *big.Int) *common.TxContext {
	return &common.TxContext{
		Coinbase:          coinbase,
		GasPrice:          gasPrice,
		BlockNumber:       number,
		Time:              uint64(timestamp),
		ChainID:           exec.chainID,
		MaxSignatureDepth: exec.rep.Config.Account.MaxSignatureDepth,
	}
}

func (exec *BlockExecutor) processExecuteEvent(block *Block) ([]*ledger.Receipt, error) {
	exec.lock.Lock()
	defer exec.lock.Unlock()

	current := time.Now()
	if block.Number != exec.currentHeight+1 {
		exec.logger.WithFields(logrus.Fields{
			"block height":  block.Number,
			"matchedHeight": exec.currentHeight + 1,
		}).Warning("current block height is not matched")
		return nil, errors.Wrapf(ErrBlockHeight, "got %d, expect %d", block.Number, exec.currentHeight+1)
	}
	parent := exec.ledger.ChainLedger.GetChainMeta()

	exec.cumulativeGasUsed = 0
	receipts := exec.applyTransactions(block)
	for _, hook := range exec.afterBlockHooks {
		hook(block, receipts)
	}
	exec.ledger.StateLedger.Finalise()

	applyTxsDuration.Observe(float64(time.Since(current)) / float64(time.Second))
	exec.logger.WithFields(logrus.Fields{
		"time":  time.Since(current),
		"count": len(block.Transactions),
	}).Debug("Apply transactions elapsed")

	receiptRoot, err := ledger.ReceiptsRoot(receipts)
	if err != nil {
		return nil, errors.Wrap(err, "calculate receipt root")
	}
	header := &ledger.BlockHeader{
		Number:      block.Number,
		Timestamp:   block.Timestamp,
		ParentHash:  parent.BlockHash,
		Coinbase:    block.Coinbase,
		GasPrice:    exec.gasPrice,
		GasUsed:     exec.cumulativeGasUsed,
		TxCount:     uint64(len(block.Transactions)),
		ReceiptRoot: receiptRoot,
		Bloom:       ledger.CreateBloom(receipts),
	}
	blockHash := header.Hash()
	exec.updateLogsBlockHash(receipts, blockHash)

	if err := exec.ledger.PersistBlockData(&ledger.BlockData{Header: header, Receipts: receipts}); err != nil {
		return nil, errors.Wrapf(err, "persist block %d", block.Number)
	}
	exec.currentHeight = block.Number

	executeBlockDuration.Observe(float64(time.Since(current)) / float64(time.Second))
	exec.logger.WithFields(logrus.Fields{
		"hash":         blockHash,
		"height":       header.Number,
		"coinbase":     header.Coinbase,
		"gas_price":    header.GasPrice,
		"gas_used":     header.GasUsed,
		"parent_hash":  header.ParentHash,
		"receipt_root": header.ReceiptRoot,
		"count":        len(block.Transactions),
		"elapse":       time.Since(current),
	}).Info("Executed block")

	exec.postBlockEvent(header, receipts)
	exec.postLogsEvent(receipts)
	return receipts, nil
}

func (exec *BlockExecutor) applyTransactions(block *Block) []*ledger.Receipt {
	receipts := make([]*ledger.Receipt, 0, len(block.Transactions))
	tx := exec.txContext(block.Number, block.Timestamp, block.Coinbase, exec.gasPrice)
	logIndex := uint(0)
	for i, msg := range block.Transactions {
		receipt := exec.applyTransaction(i, msg, block.Number, *tx)
		for _, log := range receipt.Logs {
			log.Index = logIndex
			logIndex++
		}
		receipts = append(receipts, receipt)
	}

	exec.logger.Debugf("executor executed %d txs", len(block.Transactions))
	return receipts
}

func (exec *BlockExecutor) applyTransaction(i int, msg *system.Message, height uint64, tx common.TxContext) *ledger.Receipt {
	defer exec.ledger.StateLedger.Finalise()

	if msg.GasLimit == 0 {
		msg.GasLimit = exec.rep.Config.Account.CallGasLimit
	}
	receipt := &ledger.Receipt{
		TxHash:  TxHash(msg, height, i),
		TxIndex: uint64(i),
		From:    msg.From,
		To:      msg.To,
	}

	statedb := exec.ledger.StateLedger
	logsBefore := len(statedb.Logs())
	result, err := exec.nvm.Run(statedb, &tx, msg)
	if err != nil {
		exec.logger.Errorf("apply tx failed: %s", err.Error())
		receipt.Status = ledger.ReceiptFailed
		receipt.Ret = []byte(err.Error())
		receipt.Logs = []*ethtypes.Log{}
		return receipt
	}

	if result.Failed() {
		if reason, errUnpack := abi.UnpackRevert(result.Revert()); errUnpack == nil {
			exec.logger.Warnf("execute tx failed: %s: %s", result.Err.Error(), reason)
		} else {
			exec.logger.Warnf("execute tx failed: %s", result.Err.Error())
		}
		receipt.Status = ledger.ReceiptFailed
		receipt.Ret = append([]byte(result.Err.Error()), ethcommon.CopyBytes(result.ReturnData)...)
	} else {
		receipt.Status = ledger.ReceiptSuccess
		receipt.Ret = result.Return()
	}

	receipt.GasUsed = result.UsedGas
	exec.cumulativeGasUsed += receipt.GasUsed
	receipt.CumulativeGasUsed = exec.cumulativeGasUsed
	receipt.Logs = make([]*ethtypes.Log, 0)
	for _, log := range statedb.Logs()[logsBefore:] {
		log.TxHash = receipt.TxHash
		log.TxIndex = uint(i)
		log.BlockNumber = height
		receipt.Logs = append(receipt.Logs, log)
	}
	return receipt
}

// Call runs msg on top of the latest state without gas price, every change is reverted
func (exec *BlockExecutor) Call(msg *system.Message) (*core.ExecutionResult, error) {
	exec.lock.Lock()
	defer exec.lock.Unlock()

	if msg.GasLimit == 0 {
		msg.GasLimit = exec.rep.Config.Account.CallGasLimit
	}
	statedb := exec.ledger.StateLedger
	snapshot := statedb.Snapshot()
	defer func() {
		statedb.RevertToSnapshot(snapshot)
		statedb.Finalise()
	}()
	return exec.nvm.Run(statedb, exec.txContext(exec.currentHeight+1, time.Now().Unix(), ethcommon.Address{}, new(big.Int)), msg)
}

func (exec *BlockExecutor) updateLogsBlockHash(receipts []*ledger.Receipt, hash ethcommon.Hash) {
	for _, receipt := range receipts {
		for _, log := range receipt.Logs {
			log.BlockHash = hash
		}
	}
}

func (exec *BlockExecutor) postBlockEvent(header *ledger.BlockHeader, receipts []*ledger.Receipt) {
	exec.blockFeed.Send(events.ExecutedEvent{
		Height:    header.Number,
		BlockHash: header.Hash(),
		TxPointerList: lo.Map(receipts, func(receipt *ledger.Receipt, _ int) *events.TxPointer {
			return &events.TxPointer{
				Hash:    receipt.TxHash,
				From:    receipt.From,
				Failed:  receipt.Failed(),
				GasUsed: receipt.GasUsed,
			}
		}),
	})
}

func (exec *BlockExecutor) postLogsEvent(receipts []*ledger.Receipt) {
	logs := make([]*ethtypes.Log, 0)
	for _, receipt := range receipts {
		logs = append(logs, receipt.Logs...)
	}

	exec.logsFeed.Send(logs)
}
