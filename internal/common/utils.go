package common

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// Checksum returns the hex encoded BLAKE3 digest of data
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SizeKB converts a byte count to kilobytes (1 KB = 1024 bytes)
func SizeKB(n int) float64 {
	return float64(n) / 1024
}

// FormatKB renders a byte count the way status lines show it
func FormatKB(n int) string {
	return fmt.Sprintf("%.2f KB", SizeKB(n))
}

// OutputFilename builds a timestamped output name, replacing the extension
func OutputFilename(original, suffix, ext string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "document"
	}
	return fmt.Sprintf("%s_%s_%s%s", base, now.UTC().Format("20060102_150405"), suffix, ext)
}

// CopyFile copies src to dst, creating parent directories of dst as needed
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), DefaultFilePermissions); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CleanupOlderThan removes regular files in dir whose modification time is older than maxAge.
// It returns the number of files removed.
func CleanupOlderThan(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
