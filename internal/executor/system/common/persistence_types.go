package common

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/bcnmy/scw-contracts-sub000/internal/ledger"
)

// VMMap stores value of key k at keccak256(keyToBytes(k) ++ slot)
type VMMap[K, V any] struct {
	contractAccount ledger.IAccount
	slot            []byte
	keyToBytes      func(key K) []byte
}

func NewVMMap[K, V any](contractAccount ledger.IAccount, slot []byte, keyToBytes func(key K) []byte) *VMMap[K, V] {
	return &VMMap[K, V]{
		contractAccount: contractAccount,
		slot:            slot,
		keyToBytes:      keyToBytes,
	}
}

func (m *VMMap[K, V]) stateKey(key K) []byte {
	return crypto.Keccak256(m.keyToBytes(key), m.slot)
}

func (m *VMMap[K, V]) Get(k K) (exist bool, v V, err error) {
	return decodeState[V](m.contractAccount.GetState(m.stateKey(k)))
}

func (m *VMMap[K, V]) MustGet(k K) (v V, err error) {
	exist, v, err := m.Get(k)
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] map[%x] key[%x] not exist", m.contractAccount.GetAddress(), m.slot, m.keyToBytes(k))
	}
	return v, nil
}

func (m *VMMap[K, V]) Has(k K) bool {
	exist, data := m.contractAccount.GetState(m.stateKey(k))
	return exist && len(data) > 0 && data[0] != 0
}

func (m *VMMap[K, V]) Put(k K, v V) error {
	data, err := encodeState(v)
	if err != nil {
		return err
	}
	m.contractAccount.SetState(m.stateKey(k), data)
	return nil
}

func (m *VMMap[K, V]) Delete(k K) {
	m.contractAccount.SetState(m.stateKey(k), nil)
}

type VMSlot[V any] struct {
	contractAccount ledger.IAccount
	slot            []byte
}

func NewVMSlot[V any](contractAccount ledger.IAccount, slot []byte) *VMSlot[V] {
	return &VMSlot[V]{
		contractAccount: contractAccount,
		slot:            slot,
	}
}

func (s *VMSlot[V]) Get() (exist bool, v V, err error) {
	return decodeState[V](s.contractAccount.GetState(s.slot))
}

func (s *VMSlot[V]) MustGet() (v V, err error) {
	exist, v, err := s.Get()
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] slot[%x] not exist", s.contractAccount.GetAddress(), s.slot)
	}
	return v, nil
}

func (s *VMSlot[V]) Has() bool {
	exist, data := s.contractAccount.GetState(s.slot)
	return exist && len(data) > 0 && data[0] != 0
}

func (s *VMSlot[V]) Put(v V) error {
	data, err := encodeState(v)
	if err != nil {
		return err
	}
	s.contractAccount.SetState(s.slot, data)
	return nil
}

func (s *VMSlot[V]) Delete() {
	s.contractAccount.SetState(s.slot, nil)
}

// state value is a 1 byte existence flag followed by the json of the value
func encodeState[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{1}, data...), nil
}

func decodeState[V any](exist bool, data []byte) (bool, V, error) {
	var v V
	if !exist || len(data) == 0 || data[0] == 0 {
		return false, v, nil
	}
	if err := json.Unmarshal(data[1:], &v); err != nil {
		return false, v, err
	}
	return true, v, nil
}

func AddressKey(addr ethcommon.Address) []byte {
	return ethcommon.LeftPadBytes(addr.Bytes(), 32)
}

func BigKey(n *big.Int) []byte {
	return ethcommon.BigToHash(n).Bytes()
}

func HashKey(h ethcommon.Hash) []byte {
	return h.Bytes()
}
