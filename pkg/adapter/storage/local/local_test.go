package local

import (
	"bytes"
	"context"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Upload(ctx, "WEEK/2024/02/topics.parquet", bytes.NewBufferString("abc"), "application/octet-stream"))
	require.NoError(t, s.Upload(ctx, "WEEK/2024/02/master.parquet", bytes.NewBufferString("m"), ""))
	require.NoError(t, s.Upload(ctx, "MONTH/2024/01/master.parquet", bytes.NewBufferString("x"), ""))

	r, err := s.Download(ctx, "WEEK/2024/02/topics.parquet")
	require.NoError(t, err)
	body, _ := io.ReadAll(r)
	r.Close()
	assert.Equal(t, "abc", string(body))

	var names []string
	require.NoError(t, s.List(ctx, "WEEK/", func(n string) error { names = append(names, n); return nil }))
	sort.Strings(names)
	assert.Equal(t, []string{"WEEK/2024/02/master.parquet", "WEEK/2024/02/topics.parquet"}, names)

	require.NoError(t, s.Delete(ctx, "WEEK/2024/02/topics.parquet"))
	require.NoError(t, s.Delete(ctx, "WEEK/2024/02/topics.parquet"), "deleting twice is fine")
}

func TestStore_RejectsEscapingNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	err = s.Upload(context.Background(), "../outside", bytes.NewBufferString("x"), "")
	assert.Error(t, err)
}
