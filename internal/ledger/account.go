package ledger

import (
	"bytes"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/bcnmy/scw-contracts-sub000/internal/storagemgr/kv"
)

var _ IAccount = (*SimpleAccount)(nil)

// hexBytes defers hex encoding until a debug line is actually written
type hexBytes []byte

func (b hexBytes) String() string {
	return hexutil.Encode(b)
}

// InnerAccount is the persisted part of an account
type InnerAccount struct {
	Balance  *big.Int `json:"balance"`
	CodeHash []byte   `json:"code_hash"`
}

func (a *InnerAccount) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *InnerAccount) Unmarshal(data []byte) error {
	return json.Unmarshal(data, a)
}

// CopyOrNewIfEmpty returns a copy, or a zero account if a is nil
func (a *InnerAccount) CopyOrNewIfEmpty() *InnerAccount {
	if a == nil {
		return &InnerAccount{Balance: big.NewInt(0)}
	}
	return &InnerAccount{
		Balance:  new(big.Int).Set(a.Balance),
		CodeHash: bytes.Clone(a.CodeHash),
	}
}

type SimpleAccount struct {
	logger        logrus.FieldLogger
	Addr          ethcommon.Address
	originAccount *InnerAccount
	dirtyAccount  *InnerAccount

	// The committed state
	originState map[string][]byte

	// The state modified since the last commit
	dirtyState map[string][]byte

	originCode []byte
	dirtyCode  []byte

	backend kv.Storage
	journal *journal
}

func NewAccount(backend kv.Storage, addr ethcommon.Address, journal *journal, logger logrus.FieldLogger) *SimpleAccount {
	return &SimpleAccount{
		logger:      logger,
		Addr:        addr,
		originState: make(map[string][]byte),
		dirtyState:  make(map[string][]byte),
		backend:     backend,
		journal:     journal,
	}
}

func (o *SimpleAccount) String() string {
	return fmt.Sprintf("{addr: %s, balance: %v, code length: %v}", o.Addr, o.GetBalance(), len(o.Code()))
}

func (o *SimpleAccount) GetAddress() ethcommon.Address {
	return o.Addr
}

// GetState looks in dirty, then committed, then the backend; a nil value means absent
func (o *SimpleAccount) GetState(key []byte) (bool, []byte) {
	if value, exist := o.dirtyState[string(key)]; exist {
		return value != nil, value
	}

	if value, exist := o.originState[string(key)]; exist {
		return value != nil, value
	}

	val := o.backend.Get(compositeStorageKey(o.Addr, key))
	o.logger.WithFields(logrus.Fields{"addr": o.Addr, "key": hexBytes(key), "value": hexBytes(val)}).Debug("Load slot")
	o.originState[string(key)] = val

	return val != nil, val
}

func (o *SimpleAccount) SetState(key []byte, value []byte) {
	_, prev := o.GetState(key)
	o.journal.record(undoState(o.Addr, bytes.Clone(key), prev))
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	o.logger.WithFields(logrus.Fields{"addr": o.Addr, "key": hexBytes(key), "prev": hexBytes(prev), "value": hexBytes(value)}).Debug("Set slot")
	o.setState(key, bytes.Clone(value))
}

func (o *SimpleAccount) setState(key []byte, value []byte) {
	o.dirtyState[string(key)] = value
}

// SetCodeAndHash replaces the code, empty code clears the code hash
func (o *SimpleAccount) SetCodeAndHash(code []byte) {
	o.journal.record(undoCode(o.Addr, o.Code()))
	o.logger.WithFields(logrus.Fields{"addr": o.Addr, "size": len(code)}).Debug("Set code")
	o.setCodeAndHash(code)
}

func (o *SimpleAccount) setCodeAndHash(code []byte) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	if len(code) == 0 {
		o.dirtyAccount.CodeHash = nil
	} else {
		o.dirtyAccount.CodeHash = crypto.Keccak256(code)
	}
	o.dirtyCode = code
}

func (o *SimpleAccount) Code() []byte {
	if o.dirtyAccount != nil {
		if len(o.dirtyAccount.CodeHash) == 0 {
			return nil
		}
		if o.dirtyCode != nil {
			return o.dirtyCode
		}
	}

	if o.originCode != nil {
		return o.originCode
	}

	codeHash := o.CodeHash()
	if len(codeHash) == 0 {
		return nil
	}

	code := o.backend.Get(compositeCodeKey(codeHash))
	o.originCode = code
	return code
}

func (o *SimpleAccount) CodeHash() []byte {
	if o.dirtyAccount != nil {
		return o.dirtyAccount.CodeHash
	}
	if o.originAccount != nil {
		return o.originAccount.CodeHash
	}
	return nil
}

func (o *SimpleAccount) GetBalance() *big.Int {
	if o.dirtyAccount != nil {
		return o.dirtyAccount.Balance
	}
	if o.originAccount != nil {
		return o.originAccount.Balance
	}
	return new(big.Int)
}

func (o *SimpleAccount) SetBalance(balance *big.Int) {
	o.journal.record(undoBalance(o.Addr, new(big.Int).Set(o.GetBalance())))
	o.logger.WithFields(logrus.Fields{"addr": o.Addr, "prev": o.GetBalance(), "balance": balance}).Debug("Set balance")
	o.setBalance(new(big.Int).Set(balance))
}

func (o *SimpleAccount) setBalance(balance *big.Int) {
	if o.dirtyAccount == nil {
		o.dirtyAccount = o.originAccount.CopyOrNewIfEmpty()
	}
	o.dirtyAccount.Balance = balance
}

func (o *SimpleAccount) SubBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	o.SetBalance(new(big.Int).Sub(o.GetBalance(), amount))
}

func (o *SimpleAccount) AddBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	o.SetBalance(new(big.Int).Add(o.GetBalance(), amount))
}

// IsEmpty reports whether the account has neither balance nor code
func (o *SimpleAccount) IsEmpty() bool {
	return o.GetBalance().Sign() == 0 && len(o.CodeHash()) == 0
}

func (o *SimpleAccount) dirty() bool {
	return o.dirtyAccount != nil || len(o.dirtyState) != 0
}

// flush writes the dirty data into the batch and promotes it to origin
func (o *SimpleAccount) flush(batch kv.Batch) (*InnerAccount, error) {
	for key, value := range o.dirtyState {
		if value == nil {
			batch.Delete(compositeStorageKey(o.Addr, []byte(key)))
		} else {
			batch.Put(compositeStorageKey(o.Addr, []byte(key)), value)
		}
		o.originState[key] = value
	}
	o.dirtyState = make(map[string][]byte)

	if o.dirtyAccount == nil {
		return o.originAccount, nil
	}

	if len(o.dirtyAccount.CodeHash) != 0 && !bytes.Equal(o.dirtyAccount.CodeHash, o.originCodeHash()) {
		batch.Put(compositeCodeKey(o.dirtyAccount.CodeHash), o.dirtyCode)
	}

	data, err := o.dirtyAccount.Marshal()
	if err != nil {
		return nil, err
	}
	batch.Put(compositeAccountKey(o.Addr), data)

	o.originAccount = o.dirtyAccount
	if len(o.originAccount.CodeHash) == 0 {
		o.originCode = nil
	} else if o.dirtyCode != nil {
		o.originCode = o.dirtyCode
	}
	o.dirtyAccount = nil
	o.dirtyCode = nil
	return o.originAccount, nil
}

func (o *SimpleAccount) originCodeHash() []byte {
	if o.originAccount == nil {
		return nil
	}
	return o.originAccount.CodeHash
}
