package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/DisposaBoy/JsonConfigReader"
	yaml "gopkg.in/yaml.v3"
)

// ConfigStructure is structure of main configuration
type ConfigStructure struct { // nolint: maligned
	// General
	SpoolDir     string `json:"spoolDir"              yaml:"spool_dir"`
	RepoDir      string `json:"repoDir"               yaml:"repo_dir"`
	DatabasePath string `json:"databasePath"          yaml:"database_path"`
	LogLevel     string `json:"logLevel"              yaml:"log_level"`
	LogFormat    string `json:"logFormat"             yaml:"log_format"`

	// Distributions
	Distributions []string `json:"distributions"     yaml:"distributions"`

	// Signature verification
	GpgSkipVerify bool     `json:"gpgSkipVerify"     yaml:"gpg_skip_verify"`
	GpgKeyrings   []string `json:"gpgKeyrings"       yaml:"gpg_keyrings"`

	// External tools
	DpkgSourceCommand string `json:"dpkgSourceCommand" yaml:"dpkg_source_command"`
	LintianCommand    string `json:"lintianCommand"    yaml:"lintian_command"`
	UscanCommand      string `json:"uscanCommand"      yaml:"uscan_command"`
	ExternalTimeout   int    `json:"externalTimeout"   yaml:"external_timeout"`
	LintianTimeout    int    `json:"lintianTimeout"    yaml:"lintian_timeout"`

	// QA plugins, in execution order
	Plugins []string `json:"plugins"               yaml:"plugins"`

	// Official archive
	ArchiveAPIURL    string  `json:"archiveAPIURL"     yaml:"archive_api_url"`
	MaxDownloadSize  int64   `json:"maxDownloadSize"   yaml:"max_download_size"`
	ArchiveRateLimit float64 `json:"archiveRateLimit"  yaml:"archive_rate_limit"`

	// Source history snapshots; empty path disables snapshotting
	GitStoragePath string `json:"gitStoragePath"    yaml:"git_storage_path"`

	// Locking
	EtcdEndpoints []string `json:"etcdEndpoints"     yaml:"etcd_endpoints"`
	LockTTL       int      `json:"lockTTL"           yaml:"lock_ttl"`

	// Notifications
	SMTPServer string `json:"smtpServer"            yaml:"smtp_server"`
	MailFrom   string `json:"mailFrom"              yaml:"mail_from"`
	AdminEmail string `json:"adminEmail"            yaml:"admin_email"`
	SkipEmail  bool   `json:"skipEmail"             yaml:"skip_email"`

	// Server
	ListenAddr            string `json:"listenAddr"            yaml:"listen_addr"`
	EnableMetricsEndpoint bool   `json:"enableMetricsEndpoint" yaml:"enable_metrics_endpoint"`
}

// NewConfig creates configuration with defaults filled in
func NewConfig() *ConfigStructure {
	return &ConfigStructure{
		SpoolDir:          "/var/spool/importer",
		RepoDir:           "/var/lib/importer/repo",
		DatabasePath:      "/var/lib/importer/db",
		LogLevel:          "info",
		LogFormat:         "default",
		Distributions:     []string{"unstable", "experimental"},
		DpkgSourceCommand: "dpkg-source",
		LintianCommand:    "lintian --info --show-overrides",
		UscanCommand:      "uscan --dehs",
		ExternalTimeout:   120,
		LintianTimeout:    600,
		Plugins: []string{
			"distribution", "native", "buildsystem", "rfstemplate",
			"watchfile", "closes", "debianarchive", "lintian",
		},
		ArchiveAPIURL:    "https://snapshot.debian.org",
		MaxDownloadSize:  100 * 1024 * 1024,
		ArchiveRateLimit: 5,
		LockTTL:          60,
		MailFrom:         "support@mentors.debian.net",
		ListenAddr:       ":8080",
	}
}

// LoadConfig loads configuration from json or yaml file
func LoadConfig(filename string, config *ConfigStructure) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	decJSON := json.NewDecoder(JsonConfigReader.New(f))
	if err = decJSON.Decode(&config); err != nil {
		_, _ = f.Seek(0, 0)
		decYAML := yaml.NewDecoder(f)
		if err2 := decYAML.Decode(&config); err2 != nil {
			err = fmt.Errorf("invalid yaml (%s) or json (%s)", err2, err)
		} else {
			err = nil
		}
	}
	return err
}

// SaveConfig write configuration to json file
func SaveConfig(filename string, config *ConfigStructure) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	encoded, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		return err
	}

	_, err = f.Write(encoded)
	return err
}

// GetSpoolDir returns the SpoolDir with expanded ~ as home directory
func (conf *ConfigStructure) GetSpoolDir() string {
	return strings.Replace(conf.SpoolDir, "~", os.Getenv("HOME"), 1)
}

// GetRepoDir returns the RepoDir with expanded ~ as home directory
func (conf *ConfigStructure) GetRepoDir() string {
	return strings.Replace(conf.RepoDir, "~", os.Getenv("HOME"), 1)
}
