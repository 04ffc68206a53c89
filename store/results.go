package store

import (
	"github.com/mentors-dev/importer/database"
)

// PluginResult is one persisted QA check outcome
type PluginResult struct {
	Plugin   string
	Test     string
	Outcome  string
	Severity int
	Data     string
}

// ResultCollection does management of QA results in DB
type ResultCollection struct {
	*Collections
}

func (c *ResultCollection) dbKey(source, version, plugin, test string) []byte {
	return []byte("Q" + source + " " + version + " " + plugin + " " + test)
}

// Save stores one QA result for the given upload
func (c *ResultCollection) Save(w database.Writer, source, version string, result *PluginResult) error {
	encoded, err := c.encode(result)
	if err != nil {
		return err
	}

	return w.Put(c.dbKey(source, version, result.Plugin, result.Test), encoded)
}

// ByUpload returns all QA results recorded for an upload
func (c *ResultCollection) ByUpload(source, version string) ([]*PluginResult, error) {
	var results []*PluginResult

	err := c.db.ProcessByPrefix([]byte("Q"+source+" "+version+" "), func(_, value []byte) error {
		result := &PluginResult{}
		if err := c.decode(value, result); err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})

	return results, err
}
