package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashID returns the uppercase hex MD5 digest of s, the identity scheme
// plugins key packages and types by. Empty input has no id.
func HashID(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// PackageID computes the id of the package name within dir.
func PackageID(dir, name string) string {
	if dir == "" {
		return HashID(name)
	}
	return HashID(dir + "." + name)
}

// TypeID computes the id of a type from its declared name.
func TypeID(name string) string { return HashID(name) }

// SplitPackagePath splits "a/b/name" into ("a/b", "name"). Empty segments
// are dropped from the directory.
func SplitPackagePath(path string) (dir, name string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	var segs []string
	for _, s := range strings.Split(path[:i], "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, "/"), path[i+1:]
}
