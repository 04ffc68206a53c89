package store

import (
	"github.com/mentors-dev/importer/database"
)

// Upload is one accepted upload of a source package
type Upload struct {
	Source       string
	Version      string
	Distribution string
	Component    string
	Uploader     string
	Changes      string
	ClosedBugs   []int
	GitRef       string
	Date         string
}

// UploadCollection does management of Upload records in DB
type UploadCollection struct {
	*Collections
}

func (c *UploadCollection) dbKey(source, version string) []byte {
	return []byte("L" + source + " " + version)
}

// Save stores upload record through the given writer (usually a transaction)
func (c *UploadCollection) Save(w database.Writer, upload *Upload) error {
	encoded, err := c.encode(upload)
	if err != nil {
		return err
	}

	return w.Put(c.dbKey(upload.Source, upload.Version), encoded)
}

// BySourceVersion finds upload record, nil if not found
func (c *UploadCollection) BySourceVersion(source, version string) (*Upload, error) {
	encoded, err := c.db.Get(c.dbKey(source, version))
	if err != nil {
		if err == database.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	upload := &Upload{}
	err = c.decode(encoded, upload)
	if err != nil {
		return nil, err
	}

	return upload, nil
}

// BySource returns all uploads of given source package
func (c *UploadCollection) BySource(source string) ([]*Upload, error) {
	var result []*Upload

	err := c.db.ProcessByPrefix([]byte("L"+source+" "), func(_, value []byte) error {
		upload := &Upload{}
		if err := c.decode(value, upload); err != nil {
			return err
		}
		result = append(result, upload)
		return nil
	})

	return result, err
}

// Delete removes upload record
func (c *UploadCollection) Delete(w database.Writer, source, version string) error {
	return w.Delete(c.dbKey(source, version))
}
