package utils

import (
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
)

type ConfigSuite struct {
	config ConfigStructure
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) TestLoadJSONConfig(c *C) {
	configname := filepath.Join(c.MkDir(), "importer.json")
	f, _ := os.Create(configname)
	// JsonConfigReader tolerates comments and trailing commas
	_, _ = f.WriteString(`{
  "spoolDir": "/tmp/spool", // comment
  "distributions": ["unstable"],
  "gpgSkipVerify": true,
}`)
	_ = f.Close()

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.SpoolDir, Equals, "/tmp/spool")
	c.Check(s.config.Distributions, DeepEquals, []string{"unstable"})
	c.Check(s.config.GpgSkipVerify, Equals, true)
}

func (s *ConfigSuite) TestLoadYAMLConfig(c *C) {
	configname := filepath.Join(c.MkDir(), "importer.yaml")
	f, _ := os.Create(configname)
	_, _ = f.WriteString("spool_dir: /srv/spool\nlintian_timeout: 300\nplugins:\n  - native\n  - lintian\n")
	_ = f.Close()

	err := LoadConfig(configname, &s.config)
	c.Assert(err, IsNil)
	c.Check(s.config.SpoolDir, Equals, "/srv/spool")
	c.Check(s.config.LintianTimeout, Equals, 300)
	c.Check(s.config.Plugins, DeepEquals, []string{"native", "lintian"})
}

func (s *ConfigSuite) TestLoadMissingConfig(c *C) {
	err := LoadConfig(filepath.Join(c.MkDir(), "nope.json"), &s.config)
	c.Check(err, NotNil)
	c.Check(os.IsNotExist(err), Equals, true)
}

func (s *ConfigSuite) TestDefaults(c *C) {
	config := NewConfig()
	c.Check(config.DpkgSourceCommand, Equals, "dpkg-source")
	c.Check(config.Distributions, DeepEquals, []string{"unstable", "experimental"})
	c.Check(config.Plugins[0], Equals, "distribution")
	c.Check(config.LockTTL, Equals, 60)
}
