package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, expiresAt, err := signer.Generate("doc-1", "applications/doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	docID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", docID)
	assert.Equal(t, "applications/doc-1.pdf", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedURLTamperedSignature(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, _, err := signer.Generate("doc-1", "applications/doc-1.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[3] = strings.Repeat("0", len(parts[3]))
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	assert.Error(t, err)
}

func TestSignedURLWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	other := NewSignedURLSigner("other-secret", time.Minute)

	token, _, err := signer.Generate("doc-1", "applications/doc-1.pdf")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	// The constructor clamps non-positive TTLs, so sign an already
	// expired token by hand.
	expired := &SignedURLSigner{secret: []byte("test-secret"), ttl: -time.Hour}
	expiredToken, _, err := expired.Generate("doc-1", "applications/doc-1.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(expiredToken, false)
	assert.Error(t, err)

	// Cleanup paths may still parse expired tokens.
	docID, _, _, err := signer.Parse(expiredToken, true)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", docID)
}

func TestSignedURLMalformedToken(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	_, _, _, err := signer.Parse("not-a-token", false)
	assert.Error(t, err)
}
