package pgp

import (
	"bufio"
	"io"
	"io/ioutil"
	"os"
	"strings"
)

// NullVerifier is a test stub for signature verification
type NullVerifier struct {
}

// Test interface
var (
	_ Verifier = &NullVerifier{}
)

// InitKeyring does nothing
func (n *NullVerifier) InitKeyring() error {
	return nil
}

// AddKeyring does nothing
func (n *NullVerifier) AddKeyring(_ string) {
}

// VerifyDetachedSignature does nothing, verification is always successful
func (n *NullVerifier) VerifyDetachedSignature(_, _ io.Reader) (*KeyInfo, error) {
	return &KeyInfo{}, nil
}

// IsClearSigned detects based on PGP signature presence in the document
func (n *NullVerifier) IsClearSigned(clearsigned io.Reader) (bool, error) {
	scanner := bufio.NewScanner(clearsigned)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "-----BEGIN PGP SIGNED MESSAGE-----") {
			return true, nil
		}
	}

	return false, scanner.Err()
}

// VerifyClearsigned does nothing, verification is always successful
func (n *NullVerifier) VerifyClearsigned(_ io.Reader) (*KeyInfo, error) {
	return &KeyInfo{}, nil
}

// ExtractClearsigned strips PGP armor without verification
func (n *NullVerifier) ExtractClearsigned(clearsigned io.Reader) (text *os.File, err error) {
	scanner := bufio.NewScanner(clearsigned)

	text, err = ioutil.TempFile("", "importer-clearsigned")
	if err != nil {
		return
	}
	defer os.Remove(text.Name())

	inBody := false
	pastHeaders := false
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "-----BEGIN PGP SIGNED MESSAGE-----") {
			inBody = true
			continue
		}

		if strings.HasPrefix(line, "-----BEGIN PGP SIGNATURE-----") {
			break
		}

		if inBody && !pastHeaders {
			if line == "" {
				pastHeaders = true
			}
			continue
		}

		if inBody && pastHeaders {
			if strings.HasPrefix(line, "- ") {
				line = line[2:]
			}
			if _, err = text.WriteString(line + "\n"); err != nil {
				return
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	_, err = text.Seek(0, 0)
	return
}
