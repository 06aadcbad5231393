package ledger

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr"
	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr/kv"
	"github.com/bcnmy/scw-contracts-sub000/pkg/loggers"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

var (
	ErrNotFound = errors.New("not found in DB")
)

const (
	ReceiptFailed  = ethtypes.ReceiptStatusFailed
	ReceiptSuccess = ethtypes.ReceiptStatusSuccessful
)

var chainMetaKey = []byte("chain-meta")

func compositeHeaderKey(height uint64) []byte {
	return []byte(fmt.Sprintf("header-%d", height))
}

func compositeReceiptsKey(height uint64) []byte {
	return []byte(fmt.Sprintf("receipts-%d", height))
}

type ChainMeta struct {
	Height    uint64         `json:"height"`
	BlockHash ethcommon.Hash `json:"block_hash"`
}

type BlockHeader struct {
	Number      uint64            `json:"number"`
	Timestamp   int64             `json:"timestamp"`
	ParentHash  ethcommon.Hash    `json:"parent_hash"`
	Coinbase    ethcommon.Address `json:"coinbase"`
	GasPrice    *big.Int          `json:"gas_price"`
	GasUsed     uint64            `json:"gas_used"`
	TxCount     uint64            `json:"tx_count"`
	ReceiptRoot ethcommon.Hash    `json:"receipt_root"`
	Bloom       ethtypes.Bloom    `json:"bloom"`
}

// Hash is the keccak of the rlp encoded header
func (h *BlockHeader) Hash() ethcommon.Hash {
	data, err := rlp.EncodeToBytes([]any{
		h.Number, uint64(h.Timestamp), h.ParentHash, h.Coinbase, h.GasPrice, h.GasUsed, h.TxCount, h.ReceiptRoot, h.Bloom,
	})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(data)
}

// Receipt is the outcome of one message of a block
type Receipt struct {
	TxHash            ethcommon.Hash    `json:"tx_hash"`
	TxIndex           uint64            `json:"tx_index"`
	From              ethcommon.Address `json:"from"`
	To                ethcommon.Address `json:"to"`
	Status            uint64            `json:"status"`
	GasUsed           uint64            `json:"gas_used"`
	CumulativeGasUsed uint64            `json:"cumulative_gas_used"`
	Ret               []byte            `json:"ret"`
	Logs              []*ethtypes.Log   `json:"logs"`
}

func (r *Receipt) Failed() bool {
	return r.Status == ReceiptFailed
}

// ReceiptsRoot commits to the status, gas and logs of every receipt
func ReceiptsRoot(receipts []*Receipt) (ethcommon.Hash, error) {
	items := make([]any, 0, len(receipts))
	for _, r := range receipts {
		items = append(items, []any{r.TxHash, r.Status, r.GasUsed, r.Logs})
	}
	data, err := rlp.EncodeToBytes(items)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

func CreateBloom(receipts []*Receipt) ethtypes.Bloom {
	var bloom ethtypes.Bloom
	for _, r := range receipts {
		for _, log := range r.Logs {
			bloom.Add(log.Address.Bytes())
			for _, topic := range log.Topics {
				bloom.Add(topic.Bytes())
			}
		}
	}
	return bloom
}

type ChainLedger interface {
	GetChainMeta() *ChainMeta

	GetBlockHeader(height uint64) (*BlockHeader, error)

	GetReceipts(height uint64) ([]*Receipt, error)

	// PersistExecutionResult stores the header and receipts of the next block and moves the chain meta to it
	PersistExecutionResult(header *BlockHeader, receipts []*Receipt) error

	Close()
}

var _ ChainLedger = (*ChainLedgerImpl)(nil)

type ChainLedgerImpl struct {
	store     kv.Storage
	chainMeta *ChainMeta
	logger    logrus.FieldLogger

	// block height -> block header
	blockHeaderCache *lru.Cache
}

func newChainLedger(rep *repo.Repo, store kv.Storage) (*ChainLedgerImpl, error) {
	c := &ChainLedgerImpl{
		store:  store,
		logger: loggers.Logger(loggers.Ledger),
	}

	var err error
	c.chainMeta, err = c.loadChainMeta()
	if err != nil {
		return nil, fmt.Errorf("load chain meta failed: %w", err)
	}

	cacheSize := rep.Config.Ledger.AccountCacheSize
	if cacheSize <= 0 {
		cacheSize = repo.DefaultConfig().Ledger.AccountCacheSize
	}
	c.blockHeaderCache, err = lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("new block header cache failed: %w", err)
	}
	return c, nil
}

func NewChainLedger(rep *repo.Repo) (*ChainLedgerImpl, error) {
	store, err := storagemgr.Open(storagemgr.GetLedgerComponentPath(rep, storagemgr.BlockChain))
	if err != nil {
		return nil, fmt.Errorf("create blockchain storage: %w", err)
	}
	return newChainLedger(rep, store)
}

func (c *ChainLedgerImpl) loadChainMeta() (*ChainMeta, error) {
	data := c.store.Get(chainMetaKey)
	if data == nil {
		return &ChainMeta{}, nil
	}
	meta := &ChainMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *ChainLedgerImpl) GetChainMeta() *ChainMeta {
	meta := *c.chainMeta
	return &meta
}

func (c *ChainLedgerImpl) GetBlockHeader(height uint64) (*BlockHeader, error) {
	if header, ok := c.blockHeaderCache.Get(height); ok {
		return header.(*BlockHeader), nil
	}
	data := c.store.Get(compositeHeaderKey(height))
	if data == nil {
		return nil, errors.Wrapf(ErrNotFound, "block header %d", height)
	}
	header := &BlockHeader{}
	if err := json.Unmarshal(data, header); err != nil {
		return nil, errors.Wrapf(err, "unmarshal block header %d", height)
	}
	c.blockHeaderCache.Add(height, header)
	return header, nil
}

func (c *ChainLedgerImpl) GetReceipts(height uint64) ([]*Receipt, error) {
	data := c.store.Get(compositeReceiptsKey(height))
	if data == nil {
		return nil, errors.Wrapf(ErrNotFound, "receipts of block %d", height)
	}
	var receipts []*Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, errors.Wrapf(err, "unmarshal receipts of block %d", height)
	}
	return receipts, nil
}

func (c *ChainLedgerImpl) PersistExecutionResult(header *BlockHeader, receipts []*Receipt) error {
	if header.Number != 0 && header.Number != c.chainMeta.Height+1 {
		return errors.Errorf("block %d does not follow chain height %d", header.Number, c.chainMeta.Height)
	}
	headerData, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal block header")
	}
	if receipts == nil {
		receipts = []*Receipt{}
	}
	receiptsData, err := json.Marshal(receipts)
	if err != nil {
		return errors.Wrap(err, "marshal receipts")
	}
	meta := &ChainMeta{Height: header.Number, BlockHash: header.Hash()}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "marshal chain meta")
	}

	batch := c.store.NewBatch()
	batch.Put(compositeHeaderKey(header.Number), headerData)
	batch.Put(compositeReceiptsKey(header.Number), receiptsData)
	batch.Put(chainMetaKey, metaData)
	batch.Commit()

	c.blockHeaderCache.Add(header.Number, header)
	c.chainMeta = meta
	c.logger.WithFields(logrus.Fields{
		"height":   meta.Height,
		"hash":     meta.BlockHash,
		"receipts": len(receipts),
	}).Debug("Persist execution result")
	return nil
}

func (c *ChainLedgerImpl) Close() {
	_ = c.store.Close()
}
