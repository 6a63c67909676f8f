package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigesterFor(t *testing.T) {
	// Algorithm is inferred from the hex digest length.
	tests := []struct {
		length   int
		wantSize int
	}{
		{32, 16},  // md5
		{40, 20},  // sha1
		{56, 28},  // sha224
		{64, 32},  // sha256
		{96, 48},  // sha384
		{128, 64}, // sha512
	}

	for _, tt := range tests {
		digester, err := digesterFor(strings.Repeat("a", tt.length))
		require.NoError(t, err, "length %d", tt.length)
		assert.Equal(t, tt.wantSize, digester.Size(), "length %d", tt.length)
	}

	_, err := digesterFor("abc")
	assert.Error(t, err)
	_, err = digesterFor("")
	assert.Error(t, err)
}

func TestParseDigest(t *testing.T) {
	want := strings.Repeat("ab", 32)

	assert.Equal(t, want, parseDigest(want))
	assert.Equal(t, want, parseDigest(want+"  bundle-1.0.zip\n"))
	assert.Equal(t, want, parseDigest(strings.ToUpper(want)))
	assert.Equal(t, "", parseDigest(""))
	assert.Equal(t, "", parseDigest("not hex digits here!"))
}

func TestVerifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.zip")
	content := []byte("functional test bundle payload")
	require.NoError(t, os.WriteFile(path, content, 0644))

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	assert.NoError(t, verifyFile(path, want))
	assert.NoError(t, verifyFile(path, strings.ToUpper(want)))

	err := verifyFile(path, strings.Repeat("0", 64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")

	err = verifyFile(filepath.Join(dir, "missing.zip"), want)
	assert.Error(t, err)
}
