package saccount

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bcnmy/scw-contracts-sub000/internal/executor/system/common"
)

type SignatureKind uint8

const (
	KindECDSA SignatureKind = iota
	KindEthSign
	KindApprovedHash
	KindContract
	KindModule
)

func (k SignatureKind) String() string {
	switch k {
	case KindECDSA:
		return "ecdsa"
	case KindEthSign:
		return "eth_sign"
	case KindApprovedHash:
		return "approved_hash"
	case KindContract:
		return "contract"
	case KindModule:
		return "module"
	}
	return "unknown"
}

// r(32) s(32) v(1)
const staticSignatureLength = 65

var moduleSignatureArgs = abi.Arguments{
	{Name: "moduleSignature", Type: common.BytesType},
	{Name: "module", Type: common.AddressType},
}

// DecodedSignature is the first signature of a signature blob
type DecodedSignature struct {
	Kind SignatureKind

	// recovered key for ecdsa and eth_sign, the claimed signer for approved hash and contract signatures
	Signer ethcommon.Address

	// Module is set for module signatures
	Module ethcommon.Address

	// Data is the module inner signature, or the dynamic part of a contract signature
	Data []byte
}

// DecodeSignature identifies the shape of signatures and resolves the signer of dataHash.
// Module tagged tuples win over the static shapes, anything unrecognized or followed by extra bytes fails.
func DecodeSignature(dataHash ethcommon.Hash, signatures []byte) (*DecodedSignature, error) {
	if module, inner, ok := decodeModuleSignature(signatures); ok {
		return &DecodedSignature{Kind: KindModule, Module: module, Data: inner}, nil
	}

	if len(signatures) < staticSignatureLength {
		return nil, authFailure(CodeInvalidSignature, "signature length %d", len(signatures))
	}
	r := signatures[0:32]
	s := signatures[32:64]
	v := signatures[64]

	if v != 0 && len(signatures) != staticSignatureLength {
		return nil, authFailure(CodeInvalidSignature, "signature length %d, v %d", len(signatures), v)
	}

	switch {
	case v == 0:
		data, err := contractSignatureData(signatures, new(big.Int).SetBytes(s))
		if err != nil {
			return nil, err
		}
		return &DecodedSignature{Kind: KindContract, Signer: ethcommon.BytesToAddress(r), Data: data}, nil
	case v == 1:
		return &DecodedSignature{Kind: KindApprovedHash, Signer: ethcommon.BytesToAddress(r)}, nil
	case v > 30:
		// eth_sign flow, v was shifted by 4
		signer, err := recoverSigner(accounts.TextHash(dataHash.Bytes()), r, s, v-4)
		if err != nil {
			return nil, err
		}
		return &DecodedSignature{Kind: KindEthSign, Signer: signer}, nil
	case v == 27 || v == 28:
		signer, err := recoverSigner(dataHash.Bytes(), r, s, v)
		if err != nil {
			return nil, err
		}
		return &DecodedSignature{Kind: KindECDSA, Signer: signer}, nil
	}
	return nil, authFailure(CodeInvalidSignature, "invalid v %d", v)
}

// contractSignatureData locates len(32) ++ bytes at offset, which must lie after the static part and end the blob
func contractSignatureData(signatures []byte, offset *big.Int) ([]byte, error) {
	if offset.Cmp(big.NewInt(staticSignatureLength)) < 0 {
		return nil, authFailure(CodeContractSigInside, "dynamic part offset %s inside static part", offset)
	}
	total := big.NewInt(int64(len(signatures)))
	if new(big.Int).Add(offset, big.NewInt(32)).Cmp(total) > 0 {
		return nil, authFailure(CodeContractSigLength, "dynamic part length out of bounds")
	}
	start := offset.Uint64()
	length := new(big.Int).SetBytes(signatures[start : start+32])
	end := new(big.Int).Add(length, new(big.Int).SetUint64(start+32))
	switch end.Cmp(total) {
	case 1:
		return nil, authFailure(CodeContractSigData, "dynamic part data out of bounds")
	case -1:
		return nil, authFailure(CodeContractSigData, "%s trailing bytes after dynamic part", new(big.Int).Sub(total, end))
	}
	return ethcommon.CopyBytes(signatures[start+32 : end.Uint64()]), nil
}

func recoverSigner(hash []byte, r, s []byte, v byte) (ethcommon.Address, error) {
	if v != 27 && v != 28 {
		return ethcommon.Address{}, authFailure(CodeInvalidSignature, "invalid v %d", v)
	}
	sig := make([]byte, staticSignatureLength)
	copy(sig[0:32], r)
	copy(sig[32:64], s)
	// go-ethereum expects the recovery id
	sig[64] = v - 27
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return ethcommon.Address{}, authFailure(CodeInvalidSignature, "recover signer: %v", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// decodeModuleSignature accepts only the canonical abi encoding of (bytes, address)
func decodeModuleSignature(signatures []byte) (ethcommon.Address, []byte, bool) {
	if len(signatures) < 128 || len(signatures)%32 != 0 {
		return ethcommon.Address{}, nil, false
	}
	if new(big.Int).SetBytes(signatures[0:32]).Cmp(big.NewInt(0x40)) != 0 {
		return ethcommon.Address{}, nil, false
	}
	values, err := moduleSignatureArgs.Unpack(signatures)
	if err != nil || len(values) != 2 {
		return ethcommon.Address{}, nil, false
	}
	inner, ok := values[0].([]byte)
	if !ok {
		return ethcommon.Address{}, nil, false
	}
	module, ok := values[1].(ethcommon.Address)
	if !ok {
		return ethcommon.Address{}, nil, false
	}
	repacked, err := moduleSignatureArgs.Pack(inner, module)
	if err != nil || !bytes.Equal(repacked, signatures) {
		return ethcommon.Address{}, nil, false
	}
	return module, inner, true
}

// EncodeModuleSignature tags an inner signature with the module that validates it
func EncodeModuleSignature(module ethcommon.Address, inner []byte) ([]byte, error) {
	return moduleSignatureArgs.Pack(inner, module)
}

// Signature is one signer's share of a signature blob
type Signature struct {
	Signer ethcommon.Address

	// Data is a 65 bytes static signature, or the signature a contract signer validates when Contract is set
	Data     []byte
	Contract bool
}

// EncodeContractSignature builds the static part pointing at offset and the dynamic part of a contract signature
func EncodeContractSignature(signer ethcommon.Address, offset uint64, data []byte) (static []byte, dynamic []byte) {
	static = make([]byte, 0, staticSignatureLength)
	static = append(static, ethcommon.LeftPadBytes(signer.Bytes(), 32)...)
	static = append(static, ethcommon.LeftPadBytes(new(big.Int).SetUint64(offset).Bytes(), 32)...)
	static = append(static, 0)
	dynamic = append(ethcommon.LeftPadBytes(big.NewInt(int64(len(data))).Bytes(), 32), data...)
	return static, dynamic
}

// CombineSignatures concatenates signatures sorted ascending by signer, dynamic parts follow all static parts.
// Duplicated signers are kept.
func CombineSignatures(signatures ...Signature) []byte {
	sorted := make([]Signature, len(signatures))
	copy(sorted, signatures)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Signer.Bytes(), sorted[j].Signer.Bytes()) < 0
	})

	var static, dynamic []byte
	offset := uint64(len(sorted) * staticSignatureLength)
	for _, sig := range sorted {
		if !sig.Contract {
			static = append(static, sig.Data...)
			continue
		}
		s, d := EncodeContractSignature(sig.Signer, offset+uint64(len(dynamic)), sig.Data)
		static = append(static, s...)
		dynamic = append(dynamic, d...)
	}
	return append(static, dynamic...)
}

// ApprovedHashSignature is the static part that refers to a hash approved on chain by signer
func ApprovedHashSignature(signer ethcommon.Address) []byte {
	sig := make([]byte, 0, staticSignatureLength)
	sig = append(sig, ethcommon.LeftPadBytes(signer.Bytes(), 32)...)
	sig = append(sig, make([]byte, 32)...)
	return append(sig, 1)
}
