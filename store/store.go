// Package store persists upload, package and repository records
package store

import (
	"bytes"

	"github.com/ugorji/go/codec"

	"github.com/mentors-dev/importer/database"
)

// Collections gives access to all record collections sharing one database
type Collections struct {
	db          database.Storage
	codecHandle *codec.MsgpackHandle
}

// NewCollections binds collections to database
func NewCollections(db database.Storage) *Collections {
	return &Collections{
		db:          db,
		codecHandle: &codec.MsgpackHandle{},
	}
}

// Database returns the underlying storage
func (c *Collections) Database() database.Storage {
	return c.db
}

// Users returns the uploader identity collection
func (c *Collections) Users() *UserCollection {
	return &UserCollection{c}
}

// Uploads returns the upload log collection
func (c *Collections) Uploads() *UploadCollection {
	return &UploadCollection{c}
}

// Packages returns the source/binary package collection
func (c *Collections) Packages() *PackageCollection {
	return &PackageCollection{c}
}

// Results returns the QA result collection
func (c *Collections) Results() *ResultCollection {
	return &ResultCollection{c}
}

// RepositoryFiles returns the pool file record collection
func (c *Collections) RepositoryFiles() *RepositoryFileCollection {
	return &RepositoryFileCollection{c}
}

func (c *Collections) encode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer

	encoder := codec.NewEncoder(&buf, c.codecHandle)
	err := encoder.Encode(value)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c *Collections) decode(data []byte, value interface{}) error {
	decoder := codec.NewDecoderBytes(data, c.codecHandle)
	return decoder.Decode(value)
}
