package upload

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_MonotonicPercent(t *testing.T) {
	t.Parallel()

	var reports []int
	pr := &progressReader{
		r:      bytes.NewReader(make([]byte, 1000)),
		total:  1000,
		report: func(p int) { reports = append(reports, p) },
	}

	buf := make([]byte, 100)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	require.NotEmpty(t, reports)
	assert.Equal(t, 100, reports[len(reports)-1])
	for i := 1; i < len(reports); i++ {
		assert.Greater(t, reports[i], reports[i-1])
	}
}

func TestProgressReader_UnknownTotal(t *testing.T) {
	t.Parallel()

	var reports []int
	pr := &progressReader{
		r:      bytes.NewReader([]byte("abc")),
		total:  0,
		report: func(p int) { reports = append(reports, p) },
	}

	_, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)

	// Zero total reports a single 100 once anything was read.
	assert.Equal(t, []int{100}, reports)
}
