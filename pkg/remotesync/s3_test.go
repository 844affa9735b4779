package remotesync

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]collector.ObjectInfo
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string]collector.ObjectInfo)}
}

func (m *memoryStore) put(key string, size int64, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = collector.ObjectInfo{Key: key, Size: size, LastModified: modified}
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]collector.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []collector.ObjectInfo
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) Upload(_ context.Context, key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	m.put(key, info.Size(), time.Now())
	return nil
}

func withStore(t *testing.T, store objectStore) {
	t.Helper()
	orig := dialS3
	dialS3 = func(context.Context, s3Config) (objectStore, error) { return store, nil }
	t.Cleanup(func() { dialS3 = orig })
}

var s3Options = backend.Options{
	"endpoint":  "s3.example.com",
	"bucket":    "backups",
	"accessKey": "key",
	"secretKey": "secret",
	"path":      "db/%Y",
}

func withOptions(extra map[string]string) backend.Options {
	opts := backend.Options{}
	for k, v := range s3Options {
		opts[k] = v
	}
	for k, v := range extra {
		opts[k] = v
	}
	return opts
}

func artifactTarget(t *testing.T, ref time.Time) *pathtemplate.Target {
	t.Helper()
	target, err := pathtemplate.New(t.TempDir(), "dump-%Y%m%d.sql", ref)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target.Path(), []byte("dump"), 0644); err != nil {
		t.Fatal(err)
	}
	return target
}

func TestS3Setup(t *testing.T) {
	t.Run("Missing bucket", func(t *testing.T) {
		opts := withOptions(nil)
		delete(opts, "bucket")
		if err := (&S3{}).Setup(backend.Env{}, opts); !faults.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("Invalid remote cleanup", func(t *testing.T) {
		opts := withOptions(map[string]string{"cleanup.type": "quantity", "cleanup.amount": "0"})
		if err := (&S3{}).Setup(backend.Env{}, opts); !faults.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})
}

func TestS3Sync(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2024, 5, 17, 3, 0, 0, 0, time.Local)

	t.Run("Uploads to the resolved key", func(t *testing.T) {
		store := newMemoryStore()
		withStore(t, store)
		s := &S3{}
		if err := s.Setup(backend.Env{}, withOptions(nil)); err != nil {
			t.Fatal(err)
		}
		if err := s.Sync(ctx, artifactTarget(t, ref)); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if keys := store.keys(); len(keys) != 1 || keys[0] != "db/2024/dump-20240517.sql" {
			t.Errorf("unexpected keys %v", keys)
		}
	})

	t.Run("Applies remote cleanup", func(t *testing.T) {
		store := newMemoryStore()
		store.put("db/2024/dump-20240515.sql", 4, ref.Add(-48*time.Hour))
		store.put("db/2024/dump-20240516.sql", 4, ref.Add(-24*time.Hour))
		store.put("db/2024/notes.txt", 4, ref.Add(-72*time.Hour))
		withStore(t, store)

		s := &S3{}
		opts := withOptions(map[string]string{"cleanup.type": "quantity", "cleanup.amount": "2"})
		if err := s.Setup(backend.Env{}, opts); err != nil {
			t.Fatal(err)
		}
		if err := s.Sync(ctx, artifactTarget(t, ref)); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		want := []string{"db/2024/dump-20240516.sql", "db/2024/dump-20240517.sql", "db/2024/notes.txt"}
		got := store.keys()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Remote cleanup metrics follow the run setting", func(t *testing.T) {
		for _, enabled := range []bool{true, false} {
			var logBuf bytes.Buffer
			plog.SetOutput(&logBuf)
			t.Cleanup(func() { plog.SetOutput(os.Stderr) })

			store := newMemoryStore()
			store.put("db/2024/dump-20240515.sql", 4, ref.Add(-48*time.Hour))
			withStore(t, store)

			s := &S3{}
			opts := withOptions(map[string]string{"cleanup.type": "quantity", "cleanup.amount": "1"})
			if err := s.Setup(backend.Env{Metrics: enabled}, opts); err != nil {
				t.Fatal(err)
			}
			if err := s.Sync(ctx, artifactTarget(t, ref)); err != nil {
				t.Fatalf("Sync failed: %v", err)
			}
			logged := strings.Contains(logBuf.String(), "artifacts_deleted=1")
			if logged != enabled {
				t.Errorf("metrics=%v: expected summary logged=%v, got output: %s", enabled, enabled, logBuf.String())
			}
		}
	})

	t.Run("Simulate does not upload or delete", func(t *testing.T) {
		store := newMemoryStore()
		store.put("db/2024/dump-20240515.sql", 4, ref.Add(-48*time.Hour))
		withStore(t, store)

		s := &S3{}
		opts := withOptions(map[string]string{"cleanup.type": "quantity", "cleanup.amount": "1"})
		if err := s.Setup(backend.Env{}, opts); err != nil {
			t.Fatal(err)
		}
		if err := s.Simulate(ctx, artifactTarget(t, ref)); err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		if keys := store.keys(); len(keys) != 1 {
			t.Errorf("expected the store to be untouched, got %v", keys)
		}
	})

	t.Run("Upload failure", func(t *testing.T) {
		withStore(t, newMemoryStore())
		s := &S3{}
		if err := s.Setup(backend.Env{}, withOptions(nil)); err != nil {
			t.Fatal(err)
		}
		target, _ := pathtemplate.New(filepath.Join(t.TempDir(), "none"), "missing.sql", ref)
		err := s.Sync(ctx, target)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not exist error, got %v", err)
		}
	})
}
