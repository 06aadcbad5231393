package ledger

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	accountKeyPrefix = 'a'
	storageKeyPrefix = 's'
	codeKeyPrefix    = 'c'
)

func compositeAccountKey(addr ethcommon.Address) []byte {
	return append([]byte{accountKeyPrefix}, addr.Bytes()...)
}

func compositeStorageKey(addr ethcommon.Address, key []byte) []byte {
	k := make([]byte, 0, 1+ethcommon.AddressLength+len(key))
	k = append(k, storageKeyPrefix)
	k = append(k, addr.Bytes()...)
	return append(k, key...)
}

func compositeCodeKey(codeHash []byte) []byte {
	return append([]byte{codeKeyPrefix}, codeHash...)
}
