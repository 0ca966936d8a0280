package signer

import (
	"fmt"
	"strings"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const signatureLength = 65

// Split breaks a 65-byte hex signature into r, s and v. A recovery byte of 0
// or 1 is promoted to 27 or 28; any other value is kept as is.
func Split(signature string) (model.SplitSignature, error) {
	raw, err := decodeSignature(signature)
	if err != nil {
		return model.SplitSignature{}, err
	}

	v := raw[64]
	if v == 0 || v == 1 {
		v += 27
	}

	return model.SplitSignature{
		R:             hexutil.Encode(raw[0:32]),
		S:             hexutil.Encode(raw[32:64]),
		V:             v,
		SignatureType: model.SignatureTypeEIP712,
	}, nil
}

func decodeSignature(signature string) ([]byte, error) {
	s := strings.TrimSpace(signature)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != signatureLength {
		return nil, fmt.Errorf("invalid signature length %d, want %d", len(raw), signatureLength)
	}
	return raw, nil
}
