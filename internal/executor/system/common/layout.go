package common

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var ErrIncompatibleLayout = errors.New("incompatible storage layout")

type Slot struct {
	Index uint64
	Name  string
	// solidity style type name, e.g. address, mapping(uint256=>uint256)
	Type string
}

// StorageLayout declares where a contract keeps its state.
// Contracts running behind a proxy share the proxy storage, so a new implementation must keep every slot of the old one.
type StorageLayout struct {
	Version uint64
	Slots   []Slot

	byName map[string]Slot
}

func NewStorageLayout(version uint64, slots ...Slot) *StorageLayout {
	l := &StorageLayout{
		Version: version,
		Slots:   slots,
		byName:  make(map[string]Slot, len(slots)),
	}
	for _, s := range slots {
		l.byName[s.Name] = s
	}
	return l
}

func (l *StorageLayout) Validate() error {
	indexes := make(map[uint64]string)
	names := make(map[string]struct{})
	for _, s := range l.Slots {
		if name, ok := indexes[s.Index]; ok {
			return errors.Errorf("slot %d declared twice: %s and %s", s.Index, name, s.Name)
		}
		if _, ok := names[s.Name]; ok {
			return errors.Errorf("slot name %s declared twice", s.Name)
		}
		indexes[s.Index] = s.Name
		names[s.Name] = struct{}{}
	}
	return nil
}

func (l *StorageLayout) Slot(name string) (Slot, bool) {
	s, ok := l.byName[name]
	return s, ok
}

// Key returns the storage key of the named slot, panic if the slot is not declared
func (l *StorageLayout) Key(name string) []byte {
	s, ok := l.byName[name]
	if !ok {
		panic(errors.Errorf("slot %s not declared in layout v%d", name, l.Version))
	}
	return SlotKey(s.Index)
}

// CompatibleWith checks that every slot of old stays at the same index with the same type
func (l *StorageLayout) CompatibleWith(old *StorageLayout) error {
	if old == nil {
		return nil
	}
	current := make(map[uint64]Slot, len(l.Slots))
	for _, s := range l.Slots {
		current[s.Index] = s
	}
	for _, s := range old.Slots {
		c, ok := current[s.Index]
		if !ok {
			return errors.Wrapf(ErrIncompatibleLayout, "slot %d(%s) removed", s.Index, s.Name)
		}
		if c.Type != s.Type {
			return errors.Wrapf(ErrIncompatibleLayout, "slot %d(%s) type changed from %s to %s", s.Index, s.Name, s.Type, c.Type)
		}
	}
	return nil
}

func SlotKey(index uint64) []byte {
	return ethcommon.BigToHash(new(big.Int).SetUint64(index)).Bytes()
}
