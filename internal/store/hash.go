package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunkSize bounds memory during hashing: files are read in fixed-size
// chunks into a streaming hasher rather than loaded whole.
const hashChunkSize = 8 * 1024

// HashFile computes the hex-encoded SHA-256 content hash of the file at
// path, streaming it in hashChunkSize chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	defer f.Close()
	return HashReader(f)
}

// HashReader computes the hex-encoded SHA-256 digest of r, streamed in
// fixed-size chunks so callers needn't hold the whole file in memory.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash reader: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the hex-encoded SHA-256 digest of content directly;
// used by callers that already hold the bytes in memory (e.g. after a
// parser read) and don't want a second filesystem pass.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
