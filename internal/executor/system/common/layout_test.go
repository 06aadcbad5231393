package common

import (
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStorageLayout(t *testing.T) {
	l := NewStorageLayout(1,
		Slot{Index: 0, Name: "implementation", Type: "address"},
		Slot{Index: 1, Name: "owner", Type: "address"},
	)
	assert.Nil(t, l.Validate())
	assert.Equal(t, ethcommon.BigToHash(ethcommon.Big1).Bytes(), l.Key("owner"))
	assert.Panics(t, func() {
		l.Key("missing")
	})

	s, ok := l.Slot("implementation")
	assert.True(t, ok)
	assert.EqualValues(t, 0, s.Index)

	dupIndex := NewStorageLayout(1,
		Slot{Index: 0, Name: "a", Type: "address"},
		Slot{Index: 0, Name: "b", Type: "address"},
	)
	assert.NotNil(t, dupIndex.Validate())

	dupName := NewStorageLayout(1,
		Slot{Index: 0, Name: "a", Type: "address"},
		Slot{Index: 1, Name: "a", Type: "address"},
	)
	assert.NotNil(t, dupName.Validate())
}

func TestStorageLayoutCompatibleWith(t *testing.T) {
	old := NewStorageLayout(1,
		Slot{Index: 0, Name: "implementation", Type: "address"},
		Slot{Index: 1, Name: "owner", Type: "address"},
	)

	testcase := map[string]struct {
		layout *StorageLayout
		ok     bool
	}{
		"same": {
			layout: old,
			ok:     true,
		},
		"append slot": {
			layout: NewStorageLayout(2,
				Slot{Index: 0, Name: "implementation", Type: "address"},
				Slot{Index: 1, Name: "owner", Type: "address"},
				Slot{Index: 2, Name: "limit", Type: "uint256"},
			),
			ok: true,
		},
		"rename slot": {
			layout: NewStorageLayout(2,
				Slot{Index: 0, Name: "implementation", Type: "address"},
				Slot{Index: 1, Name: "admin", Type: "address"},
			),
			ok: true,
		},
		"remove slot": {
			layout: NewStorageLayout(2,
				Slot{Index: 0, Name: "implementation", Type: "address"},
			),
			ok: false,
		},
		"move slot": {
			layout: NewStorageLayout(2,
				Slot{Index: 0, Name: "implementation", Type: "address"},
				Slot{Index: 2, Name: "owner", Type: "address"},
			),
			ok: false,
		},
		"change type": {
			layout: NewStorageLayout(2,
				Slot{Index: 0, Name: "implementation", Type: "address"},
				Slot{Index: 1, Name: "owner", Type: "uint256"},
			),
			ok: false,
		},
	}

	for name, tc := range testcase {
		t.Run(name, func(t *testing.T) {
			err := tc.layout.CompatibleWith(old)
			if tc.ok {
				assert.Nil(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrIncompatibleLayout))
			}
		})
	}

	assert.Nil(t, old.CompatibleWith(nil))
}
