package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctvmap/pkg/dataset"
	"cctvmap/pkg/model"
	"cctvmap/pkg/session"
)

var categories = []model.Category{model.CategoryGovernment, model.CategoryHospital}

type fakeTarget struct {
	mu    sync.Mutex
	loads [][]model.Location
}

func (f *fakeTarget) Reload(records []model.Location) session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, records)
	return session.Snapshot{Visible: records, Version: uint64(len(f.loads))}
}

func (f *fakeTarget) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

type fakeMessages struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func (f *fakeMessages) Messages() <-chan kafka.Message { return f.ch }

func (f *fakeMessages) CommitOffset(_ context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg.Offset)
	return nil
}

type fakeLoader struct {
	records []model.Location
	err     error
	keys    []string
}

func (f *fakeLoader) Matches(bucket, key string) bool {
	return bucket == "cctvmap" && key == "gta/locations.yaml"
}

func (f *fakeLoader) LoadObject(_ context.Context, bucket, key string) ([]model.Location, error) {
	f.keys = append(f.keys, bucket+"/"+key)
	return f.records, f.err
}

func event(name, bucket, key string) []byte {
	return []byte(`{"EventName":"` + name + `","Key":"` + bucket + `/` + key + `","Records":[{"eventName":"` + name +
		`","s3":{"bucket":{"name":"` + bucket + `"},"object":{"key":"` + key + `"}}}]}`)
}

func runBucket(t *testing.T, loader *fakeLoader, values ...[]byte) (*fakeTarget, *fakeMessages) {
	t.Helper()
	msgs := &fakeMessages{ch: make(chan kafka.Message, len(values))}
	for i, v := range values {
		msgs.ch <- kafka.Message{Offset: int64(i), Value: v}
	}
	close(msgs.ch)

	target := &fakeTarget{}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	NewBucketWatcher(msgs, loader, target, categories).Run(ctx)
	return target, msgs
}

func TestBucketWatcher(t *testing.T) {
	valid := []model.Location{{ID: "hosp-05", Name: "Mount Zonah", Category: model.CategoryHospital, Enabled: true}}

	tests := []struct {
		name          string
		loader        *fakeLoader
		values        [][]byte
		wantReloads   int
		wantCommitted []int64
		wantKeys      []string
	}{
		{
			name:          "MatchingObjectReloads",
			loader:        &fakeLoader{records: valid},
			values:        [][]byte{event("s3:ObjectCreated:Put", "cctvmap", "gta%2Flocations.yaml")},
			wantReloads:   1,
			wantCommitted: []int64{0},
			wantKeys:      []string{"cctvmap/gta/locations.yaml"},
		},
		{
			name:          "UnrelatedObjectCommittedWithoutReload",
			loader:        &fakeLoader{records: valid},
			values:        [][]byte{event("s3:ObjectCreated:Put", "cctvmap", "other.yaml")},
			wantCommitted: []int64{0},
		},
		{
			name:          "RemovalIgnored",
			loader:        &fakeLoader{records: valid},
			values:        [][]byte{event("s3:ObjectRemoved:Delete", "cctvmap", "gta%2Flocations.yaml")},
			wantCommitted: []int64{0},
		},
		{
			name:          "MalformedMessageSkipped",
			loader:        &fakeLoader{records: valid},
			values:        [][]byte{[]byte("not json"), event("s3:ObjectCreated:Put", "cctvmap", "gta%2Flocations.yaml")},
			wantReloads:   1,
			wantCommitted: []int64{0, 1},
			wantKeys:      []string{"cctvmap/gta/locations.yaml"},
		},
		{
			name:          "LoadErrorSkippedAndCommitted",
			loader:        &fakeLoader{err: errors.New("access denied")},
			values:        [][]byte{event("s3:ObjectCreated:Put", "cctvmap", "gta%2Flocations.yaml")},
			wantCommitted: []int64{0},
			wantKeys:      []string{"cctvmap/gta/locations.yaml"},
		},
		{
			name:          "InvalidDatasetSkippedAndCommitted",
			loader:        &fakeLoader{records: []model.Location{{ID: "g", Category: model.CategoryGas}}},
			values:        [][]byte{event("s3:ObjectCreated:Put", "cctvmap", "gta%2Flocations.yaml")},
			wantCommitted: []int64{0},
			wantKeys:      []string{"cctvmap/gta/locations.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, msgs := runBucket(t, tt.loader, tt.values...)
			assert.Equal(t, tt.wantReloads, target.count())
			assert.Equal(t, tt.wantCommitted, msgs.committed)
			assert.Equal(t, tt.wantKeys, tt.loader.keys)
		})
	}
}

func TestBucketWatcher_StopsOnContextCancel(t *testing.T) {
	msgs := &fakeMessages{ch: make(chan kafka.Message)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewBucketWatcher(msgs, &fakeLoader{}, &fakeTarget{}, categories).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFileWatcher_Poll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locations: []\n"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	target := &fakeTarget{}
	w, err := NewFileWatcher(dataset.FileSource{Path: path}, target, categories, time.Second)
	require.NoError(t, err)

	reloaded, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)

	content := "locations:\n  - {id: gov-01, name: Mission Row, category: government, enabled: true, coordinates: {x: -994.5, y: 457.6}}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	reloaded, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	require.Equal(t, 1, target.count())
	assert.Equal(t, "gov-01", target.loads[0][0].ID)

	// An edit that fails validation keeps the current dataset.
	require.NoError(t, os.WriteFile(path, []byte("locations:\n  - {id: x, category: bakery}\n"), 0o644))
	later := future.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	reloaded, err = w.Poll(context.Background())
	assert.Error(t, err)
	assert.False(t, reloaded)
	assert.Equal(t, 1, target.count())
}

func TestNewFileWatcher_RejectsBadInterval(t *testing.T) {
	_, err := NewFileWatcher(dataset.FileSource{Path: "locations.yaml"}, &fakeTarget{}, categories, 0)
	assert.Error(t, err)
}
