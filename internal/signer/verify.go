package signer

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Recover returns the address that produced signature over the typed data.
func Recover(typedData json.RawMessage, signature string) (common.Address, error) {
	hash, err := HashTypedData(typedData)
	if err != nil {
		return common.Address{}, err
	}
	rawSig, err := decodeSignature(signature)
	if err != nil {
		return common.Address{}, err
	}
	// Normalize V to 0/1 for recovery.
	if rawSig[64] >= 27 {
		rawSig[64] -= 27
	}
	pub, err := crypto.SigToPub(hash, rawSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that signature over typedData was produced by expected.
func Verify(typedData json.RawMessage, signature string, expected common.Address) error {
	recovered, err := Recover(typedData, signature)
	if err != nil {
		return err
	}
	if recovered != expected {
		return fmt.Errorf("signature mismatch: recovered %s, expected %s", recovered.Hex(), expected.Hex())
	}
	return nil
}
