package saccount

import (
	"math/big"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

var _ interfaces.INonceManager = (*SmartAccount)(nil)

// nonceSpace keeps the next valid nonce of every batch, batches advance independently
type nonceSpace struct {
	next *common.VMMap[*big.Int, *big.Int]
}

func newNonceSpace(account ledger.IAccount, slot []byte) *nonceSpace {
	return &nonceSpace{next: common.NewVMMap[*big.Int, *big.Int](account, slot, common.BigKey)}
}

func (n *nonceSpace) get(batchId *big.Int) (*big.Int, error) {
	exist, nonce, err := n.next.Get(batchId)
	if err != nil {
		return nil, err
	}
	if !exist {
		return big.NewInt(0), nil
	}
	return nonce, nil
}

// consume advances batchId by one if claimed is its next nonce
func (n *nonceSpace) consume(batchId, claimed *big.Int) (*big.Int, error) {
	nonce, err := n.get(batchId)
	if err != nil {
		return nil, err
	}
	if claimed == nil || nonce.Cmp(claimed) != 0 {
		return nil, newFailure(ErrNonceFailure, CodeNonceMismatch, "batch %s expect nonce %s, got %s", batchId, nonce, claimed)
	}
	advanced := new(big.Int).Add(nonce, big.NewInt(1))
	if err := n.next.Put(batchId, advanced); err != nil {
		return nil, err
	}
	return advanced, nil
}

func (sa *SmartAccount) Nonces(batchId *big.Int) (*big.Int, error) {
	return sa.nonces.get(batchId)
}

func (sa *SmartAccount) GetNonce(batchId *big.Int) (*big.Int, error) {
	return sa.nonces.get(batchId)
}

func (sa *SmartAccount) consumeNonce(batchId, claimed *big.Int) error {
	advanced, err := sa.nonces.consume(batchId, claimed)
	if err != nil {
		return err
	}
	return sa.EmitEvent(&EventNonceAdvanced{BatchId: batchId, Nonce: advanced})
}
