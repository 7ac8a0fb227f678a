package accesscode

import (
	"errors"
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeShape = regexp.MustCompile(`^[A-Z0-9]{4}[0-9A-F]{4}$`)

func neverExists(string) (bool, error) { return false, nil }

func TestGenerateCodeShape(t *testing.T) {
	code, err := Generate("John Doe", neverExists)
	require.NoError(t, err)

	assert.Len(t, code, 8)
	assert.Equal(t, "JOHN", code[:4])
	assert.Regexp(t, codeShape, code)
}

func TestGenerateStripsWhitespaceFromName(t *testing.T) {
	code, err := Generate("  J o hn   Doe ", neverExists)
	require.NoError(t, err)
	assert.Equal(t, "JOHN", code[:4])
}

func TestGeneratePadsShortNames(t *testing.T) {
	code, err := Generate("Al", neverExists)
	require.NoError(t, err)
	assert.Equal(t, "ALXX", code[:4])

	code, err = Generate("", neverExists)
	require.NoError(t, err)
	assert.Equal(t, "XXXX", code[:4])
}

func TestGenerateHandlesMultiByteNames(t *testing.T) {
	code, err := Generate("山田太郎", neverExists)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(code))
	prefix := []rune(code)
	require.Len(t, prefix, 8)
	assert.Equal(t, "山田太郎", string(prefix[:4]))

	// A mixed name whose four-byte cut would land inside the second rune.
	code, err = Generate("Añjali", neverExists)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(code))
	assert.Equal(t, "AÑJA", string([]rune(code)[:4]))
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(code string) (bool, error) {
		calls++
		return calls <= 2, nil
	}

	code, err := Generate("Jane Roe", exists)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "JANE", code[:4])
}

func TestGeneratePropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Generate("Jane Roe", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
