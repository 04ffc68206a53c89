package deb

// Version is a parsed Debian package version
type Version struct {
	Epoch          string
	Upstream       string
	DebianRevision string
}

// ParseVersion splits full version into epoch, upstream version and debian revision
func ParseVersion(full string) Version {
	result := Version{Upstream: full}

	i := 0
	for i < len(full) && full[i] >= '0' && full[i] <= '9' {
		i++
	}
	if i < len(full) && full[i] == ':' {
		result.Epoch = full[:i]
		result.Upstream = full[i+1:]
	}

	for i = len(result.Upstream) - 1; i >= 0; i-- {
		if result.Upstream[i] == '-' {
			result.DebianRevision = result.Upstream[i+1:]
			result.Upstream = result.Upstream[:i]
			break
		}
	}

	return result
}

// IsNative is true for packages without a debian revision
func (v Version) IsNative() bool {
	return v.DebianRevision == ""
}

// String reassembles the full version
func (v Version) String() string {
	result := v.Upstream
	if v.Epoch != "" {
		result = v.Epoch + ":" + result
	}
	if v.DebianRevision != "" {
		result = result + "-" + v.DebianRevision
	}
	return result
}
