package pgp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	openpgperrors "github.com/ProtonMail/go-crypto/openpgp/errors"
	"github.com/pkg/errors"
)

// Test interface
var (
	_ Verifier = &GoVerifier{}
)

// GoVerifier is implementation of Verifier interface using Go OpenPGP library
type GoVerifier struct {
	keyRingFiles []string

	trustedKeyring openpgp.EntityList
}

// InitKeyring loads all configured keyring files
func (g *GoVerifier) InitKeyring() error {
	if len(g.keyRingFiles) == 0 {
		return errors.New("no keyrings configured for signature verification")
	}

	for _, file := range g.keyRingFiles {
		keyring, err := loadKeyRing(file)
		if err != nil {
			return errors.Wrapf(err, "failure loading %s keyring", file)
		}

		g.trustedKeyring = append(g.trustedKeyring, keyring...)
	}

	return nil
}

// AddKeyring adds custom keyring to the list
func (g *GoVerifier) AddKeyring(keyring string) {
	g.keyRingFiles = append(g.keyRingFiles, keyring)
}

// IsClearSigned returns true if file starts with clearsigned block
func (g *GoVerifier) IsClearSigned(clearsigned io.Reader) (bool, error) {
	scanner := bufio.NewScanner(clearsigned)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, "-----BEGIN PGP SIGNED MESSAGE-----"), nil
	}

	return false, scanner.Err()
}

// VerifyClearsigned verifies clearsigned document against trusted keyring
func (g *GoVerifier) VerifyClearsigned(clearsigned io.Reader) (*KeyInfo, error) {
	contents, err := ioutil.ReadAll(clearsigned)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read clearsigned document")
	}

	block, _ := clearsign.Decode(contents)
	if block == nil {
		return nil, errors.New("no clearsigned block found")
	}

	signer, err := openpgp.CheckDetachedSignature(g.trustedKeyring,
		bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil)

	return g.keyInfo(signer, block.ArmoredSignature.Body, err)
}

// VerifyDetachedSignature verifies detached signature of cleartext
func (g *GoVerifier) VerifyDetachedSignature(signature, cleartext io.Reader) (*KeyInfo, error) {
	signer, err := openpgp.CheckArmoredDetachedSignature(g.trustedKeyring, cleartext, signature, nil)

	return g.keyInfo(signer, nil, err)
}

func (g *GoVerifier) keyInfo(signer *openpgp.Entity, _ io.Reader, err error) (*KeyInfo, error) {
	if err == openpgperrors.ErrUnknownIssuer {
		return &KeyInfo{MissingKeys: []Key{"unknown"}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "signature verification failed")
	}

	primary := signer.PrimaryKey
	info := &KeyInfo{
		GoodKeys: []SignatureInfo{
			{
				KeyID:       KeyFromUint64(primary.KeyId),
				Fingerprint: fmt.Sprintf("%X", primary.Fingerprint),
			},
		},
	}

	return info, nil
}

// ExtractClearsigned extracts cleartext from clearsigned document to a temporary file
func (g *GoVerifier) ExtractClearsigned(clearsigned io.Reader) (text *os.File, err error) {
	var contents []byte
	contents, err = ioutil.ReadAll(clearsigned)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read clearsigned document")
	}

	block, _ := clearsign.Decode(contents)
	if block == nil {
		return nil, errors.New("no clearsigned block found")
	}

	text, err = ioutil.TempFile("", "importer-clearsigned")
	if err != nil {
		return
	}
	defer os.Remove(text.Name())

	_, err = text.Write(block.Plaintext)
	if err != nil {
		return
	}

	_, err = text.Seek(0, 0)

	return
}

func loadKeyRing(name string) (openpgp.EntityList, error) {
	path, err := expandKeyringPath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keyring, err := openpgp.ReadKeyRing(f)
	if err == nil {
		return keyring, nil
	}

	// fallback to armored keyrings
	_, _ = f.Seek(0, 0)
	return openpgp.ReadArmoredKeyRing(f)
}

func expandKeyringPath(name string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}

	// bare names are resolved against ~/.gnupg
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".gnupg", name), nil
}
