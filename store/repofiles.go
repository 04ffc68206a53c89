package store

import (
	"github.com/mentors-dev/importer/database"
)

// RepositoryFile is a record of one physical file in the repository pool.
//
// Deliberately not foreign-keyed to package records: files may outlive the
// package rows, and removal tolerates missing rows.
type RepositoryFile struct {
	Package      string
	Version      string
	Component    string
	Distribution string
	Path         string
	Size         int64
	SHA256       string
}

// RepositoryFileCollection does management of RepositoryFile records in DB
type RepositoryFileCollection struct {
	*Collections
}

func (c *RepositoryFileCollection) dbKey(pkg, version, path string) []byte {
	return []byte("R" + pkg + " " + version + "\x00" + path)
}

func (c *RepositoryFileCollection) pathKey(path, pkg, version string) []byte {
	return []byte("F" + path + "\x00" + pkg + " " + version)
}

// Create stores a record, maintaining the by-path index
func (c *RepositoryFileCollection) Create(w database.Writer, file *RepositoryFile) error {
	encoded, err := c.encode(file)
	if err != nil {
		return err
	}

	err = w.Put(c.dbKey(file.Package, file.Version, file.Path), encoded)
	if err != nil {
		return err
	}

	return w.Put(c.pathKey(file.Path, file.Package, file.Version), encoded)
}

// Get finds a record by its unique (package, version, path), nil if not found
func (c *RepositoryFileCollection) Get(pkg, version, path string) (*RepositoryFile, error) {
	encoded, err := c.db.Get(c.dbKey(pkg, version, path))
	if err != nil {
		if err == database.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	file := &RepositoryFile{}
	err = c.decode(encoded, file)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ByPackage returns records for a package, all versions when version is empty
func (c *RepositoryFileCollection) ByPackage(pkg, version string) ([]*RepositoryFile, error) {
	prefix := "R" + pkg + " "
	if version != "" {
		prefix += version + "\x00"
	}

	var result []*RepositoryFile
	err := c.db.ProcessByPrefix([]byte(prefix), func(_, value []byte) error {
		file := &RepositoryFile{}
		if err := c.decode(value, file); err != nil {
			return err
		}
		result = append(result, file)
		return nil
	})

	return result, err
}

// ByPath returns all records referencing the same physical path
func (c *RepositoryFileCollection) ByPath(path string) ([]*RepositoryFile, error) {
	var result []*RepositoryFile

	err := c.db.ProcessByPrefix([]byte("F"+path+"\x00"), func(_, value []byte) error {
		file := &RepositoryFile{}
		if err := c.decode(value, file); err != nil {
			return err
		}
		result = append(result, file)
		return nil
	})

	return result, err
}

// IsShared is true when another record references the same path
func (c *RepositoryFileCollection) IsShared(file *RepositoryFile) (bool, error) {
	records, err := c.ByPath(file.Path)
	if err != nil {
		return false, err
	}

	for _, record := range records {
		if record.Package != file.Package || record.Version != file.Version {
			return true, nil
		}
	}

	return false, nil
}

// Delete removes a record and its by-path index entry
func (c *RepositoryFileCollection) Delete(w database.Writer, file *RepositoryFile) error {
	err := w.Delete(c.dbKey(file.Package, file.Version, file.Path))
	if err != nil {
		return err
	}

	return w.Delete(c.pathKey(file.Path, file.Package, file.Version))
}

// ForEach iterates over every repository file record
func (c *RepositoryFileCollection) ForEach(handler func(*RepositoryFile) error) error {
	return c.db.ProcessByPrefix([]byte("R"), func(_, value []byte) error {
		file := &RepositoryFile{}
		if err := c.decode(value, file); err != nil {
			return err
		}
		return handler(file)
	})
}
