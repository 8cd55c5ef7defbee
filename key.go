package webcite

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	schemeRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
	keyUnsafeRe = regexp.MustCompile(`[^A-Za-z0-9/.]`)
)

// GenerateKey derives the citation key of a record.
// A concrete doi takes priority: the key is the hash of the DOI string.
// Otherwise the key is the hash of the normalized url.
// Returns EKEYGEN if neither field is available.
func GenerateKey(f *Fields) (string, error) {
	if doi, ok := f.Get(FieldDOI); ok {
		return HashKey(doi), nil
	}
	if u, ok := f.Get(FieldURL); ok {
		return HashKey(NormalizeKeyURL(u)), nil
	}
	return "", Errorf(EKEYGEN, "cannot generate key: no doi or url")
}

// HashKey returns the hex MD5 digest of s.
func HashKey(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NormalizeKeyURL strips the scheme and a leading "www." and replaces every
// character outside [A-Za-z0-9/.] with a hyphen.
func NormalizeKeyURL(u string) string {
	u = schemeRe.ReplaceAllString(strings.TrimSpace(u), "")
	u = strings.TrimPrefix(u, "www.")
	return keyUnsafeRe.ReplaceAllString(u, "-")
}
