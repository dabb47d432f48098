package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignatureHeader is the request header carrying the hex signature.
const SignatureHeader = "CloudConvert-Signature"

// SignatureSize is the length of a decoded signature in bytes.
const SignatureSize = sha256.Size

// Signature is an HMAC-SHA256 digest of a webhook body.
type Signature [SignatureSize]byte

// String returns the lowercase hex encoding, as sent in SignatureHeader.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Sign computes the signature CloudConvert sends for payload.
func Sign(payload, secret []byte) Signature {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)

	var sig Signature
	copy(sig[:], mac.Sum(nil))
	return sig
}

// decodeSignature parses a header value without touching the payload.
func decodeSignature(s string) (Signature, error) {
	var sig Signature
	if len(s) != hex.EncodedLen(SignatureSize) {
		return sig, fmt.Errorf("expected %d hex characters, got %d", hex.EncodedLen(SignatureSize), len(s))
	}
	if _, err := hex.Decode(sig[:], []byte(s)); err != nil {
		return Signature{}, err
	}
	return sig, nil
}
