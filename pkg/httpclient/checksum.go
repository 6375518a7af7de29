// pkg/httpclient/checksum.go

package httpclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
)

// FileSHA256 returns the hex SHA-256 of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySHA256 compares digests case-insensitively. An empty want always passes.
func VerifySHA256(ctx context.Context, subject, got, want string) error {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(got, want) {
		return nil
	}
	return nyx_err.NewExpectedError(ctx, nyx_err.NewIntegrityError(subject, strings.ToLower(want), strings.ToLower(got)))
}
