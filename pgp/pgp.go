// Package pgp provides signature verification for uploaded control documents
package pgp

import (
	"fmt"
	"io"
	"os"
)

// Key is key in PGP representation (short, long ID or fingerprint)
type Key string

// Matches checks two keys for equality, allowing short/long ID comparison
func (key1 Key) Matches(key2 Key) bool {
	if key1 == key2 {
		return true
	}

	if len(key1) < len(key2) {
		key1, key2 = key2, key1
	}

	if len(key2) >= 8 && len(key1) > len(key2) {
		return key1[len(key1)-len(key2):] == key2
	}

	return false
}

// KeyFromUint64 converts openpgp uint64 into hex human-readable
func KeyFromUint64(key uint64) Key {
	return Key(fmt.Sprintf("%016X", key))
}

// SignatureInfo describes one good signature on a document
type SignatureInfo struct {
	KeyID       Key
	Fingerprint string
}

// KeyInfo is response from signature verification
type KeyInfo struct {
	GoodKeys    []SignatureInfo
	MissingKeys []Key
}

// Verifier interface describes signature verification facility
type Verifier interface {
	InitKeyring() error
	AddKeyring(keyring string)
	VerifyDetachedSignature(signature, cleartext io.Reader) (*KeyInfo, error)
	IsClearSigned(clearsigned io.Reader) (bool, error)
	VerifyClearsigned(clearsigned io.Reader) (*KeyInfo, error)
	ExtractClearsigned(clearsigned io.Reader) (text *os.File, err error)
}
