package common

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
	"github.com/bcnmy/scw-contracts-sub000/pkg/repo"
)

func newTestAccount(t *testing.T) ledger.IAccount {
	lg := ledger.NewMemoryStateLedger(repo.MockRepo(t))
	return lg.GetOrCreateAccount(ethcommon.HexToAddress(SystemContractStartAddr))
}

func TestVMMap(t *testing.T) {
	type Value struct {
		Name   string
		Amount *big.Int
	}

	account := newTestAccount(t)
	vmMap := NewVMMap[ethcommon.Address, Value](account, SlotKey(1), AddressKey)
	user := ethcommon.HexToAddress("0x1")

	assert.False(t, vmMap.Has(user))
	exist, v, err := vmMap.Get(user)
	assert.Nil(t, err)
	assert.Empty(t, v)
	assert.False(t, exist)
	_, err = vmMap.MustGet(user)
	assert.NotNil(t, err)

	old := Value{Name: "name", Amount: big.NewInt(100)}
	require.Nil(t, vmMap.Put(user, old))
	exist, v, err = vmMap.Get(user)
	assert.Nil(t, err)
	assert.True(t, exist)
	assert.Equal(t, old.Name, v.Name)
	assert.Equal(t, 0, old.Amount.Cmp(v.Amount))

	// same key in another slot is another entry
	other := NewVMMap[ethcommon.Address, Value](account, SlotKey(2), AddressKey)
	assert.False(t, other.Has(user))

	require.Nil(t, vmMap.Put(user, Value{}))
	assert.True(t, vmMap.Has(user))
	v, err = vmMap.MustGet(user)
	assert.Nil(t, err)
	assert.Equal(t, Value{}, v)

	vmMap.Delete(user)
	assert.False(t, vmMap.Has(user))
	exist, _, err = vmMap.Get(user)
	assert.Nil(t, err)
	assert.False(t, exist)
}

func TestVMSlot(t *testing.T) {
	account := newTestAccount(t)
	slot := NewVMSlot[ethcommon.Address](account, SlotKey(0))

	assert.False(t, slot.Has())
	_, err := slot.MustGet()
	assert.NotNil(t, err)

	owner := ethcommon.HexToAddress("0xabc")
	require.Nil(t, slot.Put(owner))
	assert.True(t, slot.Has())
	v, err := slot.MustGet()
	assert.Nil(t, err)
	assert.Equal(t, owner, v)

	exist, data := account.GetState(SlotKey(0))
	assert.True(t, exist)
	assert.Equal(t, byte(1), data[0])

	slot.Delete()
	exist, v, err = slot.Get()
	assert.Nil(t, err)
	assert.False(t, exist)
	assert.Equal(t, ethcommon.Address{}, v)
}

func TestVMSlotCorrupted(t *testing.T) {
	account := newTestAccount(t)
	account.SetState(SlotKey(3), []byte{1, '{'})
	slot := NewVMSlot[uint64](account, SlotKey(3))
	_, _, err := slot.Get()
	assert.NotNil(t, err)

	account.SetState(SlotKey(3), []byte{0})
	assert.False(t, slot.Has())
}
