package store

import (
	"github.com/mentors-dev/importer/database"
)

// SourcePackage is a persisted source package record
type SourcePackage struct {
	Name       string
	Version    string
	Maintainer string
	Homepage   string
	Vcs        string
	Priority   string
	Section    string
	InDebian   bool
}

// BinaryPackage is a persisted binary package record built from a source package
type BinaryPackage struct {
	Source      string
	Version     string
	Name        string
	Description string
	Homepage    string
	Priority    string
	Section     string
}

// PackageCollection does management of package records in DB
type PackageCollection struct {
	*Collections
}

func (c *PackageCollection) sourceKey(name, version string) []byte {
	return []byte("P" + name + " " + version)
}

func (c *PackageCollection) binaryKey(source, version, name string) []byte {
	return []byte("B" + source + " " + version + " " + name)
}

// SaveSource stores source package record
func (c *PackageCollection) SaveSource(w database.Writer, pkg *SourcePackage) error {
	encoded, err := c.encode(pkg)
	if err != nil {
		return err
	}

	return w.Put(c.sourceKey(pkg.Name, pkg.Version), encoded)
}

// SaveBinary stores binary package record
func (c *PackageCollection) SaveBinary(w database.Writer, pkg *BinaryPackage) error {
	encoded, err := c.encode(pkg)
	if err != nil {
		return err
	}

	return w.Put(c.binaryKey(pkg.Source, pkg.Version, pkg.Name), encoded)
}

// Source finds source package record, nil if not found
func (c *PackageCollection) Source(name, version string) (*SourcePackage, error) {
	encoded, err := c.db.Get(c.sourceKey(name, version))
	if err != nil {
		if err == database.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	pkg := &SourcePackage{}
	err = c.decode(encoded, pkg)
	if err != nil {
		return nil, err
	}

	return pkg, nil
}

// Binaries returns all binary package records of a source package version
func (c *PackageCollection) Binaries(source, version string) ([]*BinaryPackage, error) {
	var result []*BinaryPackage

	err := c.db.ProcessByPrefix(c.binaryKey(source, version, ""), func(_, value []byte) error {
		pkg := &BinaryPackage{}
		if err := c.decode(value, pkg); err != nil {
			return err
		}
		result = append(result, pkg)
		return nil
	})

	return result, err
}

// DeleteSourceVersion removes source package + its binaries
func (c *PackageCollection) DeleteSourceVersion(w database.Writer, name, version string) error {
	err := w.Delete(c.sourceKey(name, version))
	if err != nil {
		return err
	}

	for _, key := range c.db.KeysByPrefix(c.binaryKey(name, version, "")) {
		if err = w.Delete(key); err != nil {
			return err
		}
	}

	return nil
}
