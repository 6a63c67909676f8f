package artifact

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Sidecar extensions probed for a published digest, strongest first.
var sidecarExtensions = []string{".sha512", ".sha256", ".sha1", ".md5"}

// digesterFor returns the hash implementation matching a hex digest, inferred
// from its length: 32 md5, 40 sha1, 56 sha224, 64 sha256, 96 sha384,
// 128 sha512.
func digesterFor(hexDigest string) (hash.Hash, error) {
	switch len(hexDigest) {
	case 32:
		return md5.New(), nil
	case 40:
		return sha1.New(), nil
	case 56:
		return sha256.New224(), nil
	case 64:
		return sha256.New(), nil
	case 96:
		return sha512.New384(), nil
	case 128:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("no known digest algorithm for a %d character digest", len(hexDigest))
	}
}

// parseDigest extracts the hex digest from sidecar content, tolerating the
// "HEX  filename" layout emitted by sha256sum and friends.
func parseDigest(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return ""
	}
	digest := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(digest); err != nil {
		return ""
	}
	return digest
}

// verifyFile computes the digest of the file at path and compares it against
// wantHex.
func verifyFile(path, wantHex string) error {
	wantHex = strings.ToLower(wantHex)
	digester, err := digesterFor(wantHex)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(digester, f); err != nil {
		return err
	}

	got := hex.EncodeToString(digester.Sum(nil))
	if got != wantHex {
		return fmt.Errorf("digest mismatch: got %s, want %s", got, wantHex)
	}
	return nil
}
