package store

import (
	"github.com/mentors-dev/importer/database"
)

// User is an uploader identity resolved by OpenPGP key fingerprint
type User struct {
	Name        string
	Email       string
	Fingerprint string
}

// UserCollection does management of User records in DB
type UserCollection struct {
	*Collections
}

func (c *UserCollection) dbKey(fingerprint string) []byte {
	return []byte("U" + fingerprint)
}

// ByFingerprint finds user by OpenPGP key fingerprint
func (c *UserCollection) ByFingerprint(fingerprint string) (*User, error) {
	encoded, err := c.db.Get(c.dbKey(fingerprint))
	if err != nil {
		if err == database.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	user := &User{}
	err = c.decode(encoded, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update adds or updates user record
func (c *UserCollection) Update(user *User) error {
	encoded, err := c.encode(user)
	if err != nil {
		return err
	}

	return c.db.Put(c.dbKey(user.Fingerprint), encoded)
}
