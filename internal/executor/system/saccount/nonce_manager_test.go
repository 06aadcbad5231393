package saccount

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/saccount/interfaces"
)

func TestNonceSpace_UserOp(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)

	key := big.NewInt(7)
	for seq := uint64(0); seq < 5; seq++ {
		op := newUserOp(account.address, interfaces.PackNonce(key, seq))
		account.signUserOp(&op)
		validationData, err := account.validateUserOp(op)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationSucceeded, validationData.Int64())
	}
	assert.EqualValues(t, 5, account.nonce(7).Int64())

	op := newUserOp(account.address, interfaces.PackNonce(key, 5))
	account.signUserOp(&op)
	_, err := account.validateUserOp(op)
	require.Nil(t, err)
	assert.EqualValues(t, 6, account.nonce(7).Int64())

	// replay
	_, err = account.validateUserOp(op)
	assert.Equal(t, CodeNonceMismatch, FailureCode(err))
	assert.ErrorIs(t, err, ErrNonceFailure)
	assert.EqualValues(t, 6, account.nonce(7).Int64())

	// a sequence from the future
	op = newUserOp(account.address, interfaces.PackNonce(key, 9))
	account.signUserOp(&op)
	_, err = account.validateUserOp(op)
	assert.Equal(t, CodeNonceMismatch, FailureCode(err))

	// other keys never moved
	assert.EqualValues(t, 0, account.nonce(0).Int64())
	assert.EqualValues(t, 0, account.nonce(8).Int64())

	outputs, err := nvm.CallMethod(relayer, EntryPointAddr, nil, EntryPointABI(), "getNonce", account.address, key)
	require.Nil(t, err)
	assert.Equal(t, interfaces.PackNonce(key, 6), outputs[0].(*big.Int))
}

func TestNonceSpace_Forward(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	tx := transferTx(receiver, 1)
	refund := interfaces.EmptyFeeRefund()
	for batch := int64(0); batch < 3; batch++ {
		signatures := account.sign(account.txHash(tx, refund, batch))
		ok, err := account.execTransaction(relayer, tx, refund, batch, signatures)
		require.Nil(t, err)
		assert.True(t, ok)
	}
	signatures := account.sign(account.txHash(tx, refund, 1))
	ok, err := account.execTransaction(relayer, tx, refund, 1, signatures)
	require.Nil(t, err)
	assert.True(t, ok)

	assert.EqualValues(t, 1, account.nonce(0).Int64())
	assert.EqualValues(t, 2, account.nonce(1).Int64())
	assert.EqualValues(t, 1, account.nonce(2).Int64())
	assert.Len(t, findLogs(nvm, account.address, SmartAccountABI().Events["NonceAdvanced"].ID), 4)

	// replaying the accepted transaction claims a consumed nonce
	_, err = account.execTransactionAt(relayer, tx, refund, 1, big.NewInt(1), signatures)
	assert.Equal(t, CodeNonceMismatch, FailureCode(err))
	assert.ErrorIs(t, err, ErrNonceFailure)
	assert.EqualValues(t, 2, account.nonce(1).Int64())

	// a fresh nonce does not revive a signature bound to the consumed one
	_, err = account.execTransaction(relayer, tx, refund, 1, signatures)
	assert.Equal(t, CodeSignerNotOwner, FailureCode(err))
	assert.EqualValues(t, 2, account.nonce(1).Int64())

	outputs, err := nvm.CallMethod(relayer, EntryPointAddr, nil, EntryPointABI(), "getNonce", receiver, big.NewInt(3))
	require.Nil(t, err)
	assert.Equal(t, interfaces.PackNonce(big.NewInt(3), 0), outputs[0].(*big.Int))
}

func TestNonceSpace_ForwardClaimedNonce(t *testing.T) {
	nvm := newTestNVM(t)
	account := deployAccount(t, nvm)
	nvm.StateLedger.AddBalance(account.address, oneEther)

	tx := transferTx(receiver, 1)
	refund := interfaces.EmptyFeeRefund()
	for i := 0; i < 5; i++ {
		ok, err := account.signAndExec(tx, refund)
		require.Nil(t, err)
		require.True(t, ok)
	}
	require.EqualValues(t, 5, account.nonce(0).Int64())

	testcases := map[string]int64{
		"stale":  4,
		"future": 6,
	}
	for name, claimed := range testcases {
		t.Run(name, func(t *testing.T) {
			nonce := big.NewInt(claimed)
			signatures := account.sign(account.txHashAt(tx, refund, 0, nonce))
			_, err := account.execTransactionAt(relayer, tx, refund, 0, nonce, signatures)
			assert.Equal(t, CodeNonceMismatch, FailureCode(err))
			assert.ErrorIs(t, err, ErrNonceFailure)
			assert.EqualValues(t, 5, account.nonce(0).Int64())
		})
	}

	nonce := big.NewInt(5)
	signatures := account.sign(account.txHashAt(tx, refund, 0, nonce))
	ok, err := account.execTransactionAt(relayer, tx, refund, 0, nonce, signatures)
	require.Nil(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 6, account.nonce(0).Int64())

	_, err = account.execTransactionAt(relayer, tx, refund, 0, nonce, signatures)
	assert.Equal(t, CodeNonceMismatch, FailureCode(err))
	assert.ErrorIs(t, err, ErrNonceFailure)
	assert.EqualValues(t, 6, account.nonce(0).Int64())
}
