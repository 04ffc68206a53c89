package deb

// PoolBucket returns the pool subdirectory for a package: "lib" packages are
// bucketed by their first four characters, all others by their first one
func PoolBucket(pkg string) string {
	if len(pkg) > 3 && pkg[:3] == "lib" {
		return pkg[:4]
	}
	if pkg == "" {
		return ""
	}
	return pkg[:1]
}
