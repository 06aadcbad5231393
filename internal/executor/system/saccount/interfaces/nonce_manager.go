package interfaces

import (
	"math/big"
)

// INonceManager is the account side of nonce keys, each batchId counts its own sequence from zero
type INonceManager interface {
	GetNonce(batchId *big.Int) (*big.Int, error)
}
