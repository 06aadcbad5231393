package executor

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

func (exec *BlockExecutor) updateTxMetrics(_ *Block, receipts []*ledger.Receipt) {
	for _, receipt := range receipts {
		if receipt.Failed() {
			txCounter.WithLabelValues("failed").Inc()
		} else {
			txCounter.WithLabelValues("success").Inc()
		}
	}
}

// traceUserOperations reports every user operation the entry point settled in the block
func (exec *BlockExecutor) traceUserOperations(block *Block, receipts []*ledger.Receipt) {
	event := saccount.EntryPointABI().Events["UserOperationEvent"]
	for _, receipt := range receipts {
		for _, log := range receipt.Logs {
			if log.Address != saccount.EntryPointAddr || len(log.Topics) != 4 || log.Topics[0] != event.ID {
				continue
			}
			values, err := event.Inputs.NonIndexed().Unpack(log.Data)
			if err != nil {
				exec.logger.WithField("err", err).Warn("Unpack user operation event failed")
				continue
			}
			success := values[1].(bool)
			status := "success"
			if !success {
				status = "failed"
			}
			userOperationCounter.WithLabelValues(status).Inc()
			exec.logger.WithFields(logrus.Fields{
				"height":     block.Number,
				"user_op":    log.Topics[1],
				"sender":     ethcommon.BytesToAddress(log.Topics[2].Bytes()),
				"paymaster":  ethcommon.BytesToAddress(log.Topics[3].Bytes()),
				"success":    success,
				"tx_hash":    receipt.TxHash,
				"gas_cost":   values[2],
				"tx_success": !receipt.Failed(),
			}).Info("User operation settled")
		}
	}
}
