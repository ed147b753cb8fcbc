// Package hash computes content digests off the caller's goroutine. The
// digest doubles as the upload idempotency key and the integrity check on
// the remote store (Content-MD5).
package hash

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Result carries a finished digest computation. A failed computation is
// delivered as a Result with Err set; the caller must treat it as an upload
// failure, not retry silently.
type Result struct {
	Digest string
	Size   int64
	Err    error
}

// Sum computes the lowercase hex MD5 digest of r. The context is checked
// between copy chunks so a cancelled upload does not keep hashing.
func Sum(ctx context.Context, r io.Reader) (string, int64, error) {
	h := md5.New()

	var total int64
	buf := make([]byte, 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return "", total, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", total, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", total, err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), total, nil
}

// SumFile starts the digest computation for the named file in a separate
// goroutine and returns a channel that delivers exactly one Result.
func SumFile(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		f, err := os.Open(path)
		if err != nil {
			out <- Result{Err: fmt.Errorf("open %s: %w", path, err)}
			return
		}
		defer f.Close()

		digest, size, err := Sum(ctx, f)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{Digest: digest, Size: size}
	}()

	return out
}
