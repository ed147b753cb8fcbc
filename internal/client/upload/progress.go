package upload

import "io"

// progressReader wraps the upload body and reports integer percent progress
// derived from bytes read / total. Reports are monotonically non-decreasing;
// the report callback decides what to do with late events (the session
// suppresses them after cancellation).
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report func(percent int)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		percent := 100
		if pr.total > 0 {
			percent = int(pr.sent * 100 / pr.total)
		}
		if percent > 100 {
			percent = 100
		}
		if percent > pr.last {
			pr.last = percent
			pr.report(percent)
		}
	}
	return n, err
}
