package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-cuesplit/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParseS3URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target     string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{target: "s3://music", wantBucket: "music"},
		{target: "s3://music/", wantBucket: "music"},
		{target: "s3://music/albums/2019", wantBucket: "music", wantPrefix: "albums/2019"},
		{target: "s3://music//albums/", wantBucket: "music", wantPrefix: "albums"},
		{target: "s3://", wantErr: true},
		{target: "s3:///albums", wantErr: true},
		{target: "/srv/music", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()

			bucket, prefix, err := storage.ParseS3URL(tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, storage.ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("directory target", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "published")
		p, err := storage.NewPublisher(ctx, dir, storage.S3Config{}, nil)
		require.NoError(t, err)

		local, ok := p.(*storage.LocalPublisher)
		require.True(t, ok, "got %T", p)
		assert.Equal(t, dir, local.Dir())
		assert.DirExists(t, dir)
	})

	t.Run("s3 target", func(t *testing.T) {
		t.Parallel()

		p, err := storage.NewPublisher(ctx, "s3://music/albums", storage.S3Config{
			Region:          "eu-west-1",
			Endpoint:        "http://localhost:9000",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}, nil)
		require.NoError(t, err)

		remote, ok := p.(*storage.S3Publisher)
		require.True(t, ok, "got %T", p)
		assert.Equal(t, "albums/001_Song.flac", remote.Key("/tmp/out/001_Song.flac"))
	})

	t.Run("invalid targets", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"", "   ", "s3://"} {
			_, err := storage.NewPublisher(ctx, target, storage.S3Config{}, nil)
			assert.ErrorIs(t, err, storage.ErrInvalidTarget, "target %q", target)
		}
	})
}

// ---------------------------------------------------------------------------
// PublishAll
// ---------------------------------------------------------------------------

type mockPublisher struct {
	publishFunc func(ctx context.Context, path string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockPublisher) Publish(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()
	return m.publishFunc(ctx, path)
}

func TestPublishAll(t *testing.T) {
	t.Parallel()

	t.Run("all published in order", func(t *testing.T) {
		t.Parallel()

		m := &mockPublisher{publishFunc: func(_ context.Context, p string) (string, error) {
			return "dst/" + p, nil
		}}
		got, err := storage.PublishAll(context.Background(), m, []string{"a", "b"})

		require.NoError(t, err)
		assert.Equal(t, []string{"dst/a", "dst/b"}, got)
	})

	t.Run("failure does not stop the rest", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		m := &mockPublisher{publishFunc: func(_ context.Context, p string) (string, error) {
			if p == "b" {
				return "", boom
			}
			return "dst/" + p, nil
		}}
		got, err := storage.PublishAll(context.Background(), m, []string{"a", "b", "c"})

		require.ErrorIs(t, err, storage.ErrPublishFailed)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "1 of 3 files")
		assert.Equal(t, []string{"dst/a", "dst/c"}, got)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, m.calls)
	})

	t.Run("order kept beyond the upload limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		m := &mockPublisher{publishFunc: func(_ context.Context, p string) (string, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return "dst/" + p, nil
		}}

		var paths, want []string
		for i := range 10 {
			paths = append(paths, strconv.Itoa(i))
			want = append(want, "dst/"+strconv.Itoa(i))
		}
		got, err := storage.PublishAll(context.Background(), m, paths)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.LessOrEqual(t, peak.Load(), int32(storage.MaxParallelUploads))
	})

	t.Run("cancelled context stops", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m := &mockPublisher{publishFunc: func(context.Context, string) (string, error) {
			return "x", nil
		}}
		_, err := storage.PublishAll(ctx, m, []string{"a", "b"})

		assert.ErrorIs(t, err, storage.ErrPublishFailed)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, m.calls)
	})
}
