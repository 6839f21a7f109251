package enrich

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/assetfill/internal/apperr"
	"github.com/starford/assetfill/internal/history"
	"github.com/starford/assetfill/internal/models"
	"github.com/starford/assetfill/internal/storage"
	"github.com/starford/assetfill/internal/testutil"
)

type fakeResolver struct {
	dates map[string]string
	calls atomic.Int32
}

func (f *fakeResolver) Resolve(_ context.Context, path string) (string, bool) {
	f.calls.Add(1)
	d, ok := f.dates[path]
	return d, ok
}

func setup(t *testing.T, files map[string]int) (*storage.FS, string) {
	t.Helper()
	root, store := testutil.Assets(t, files)
	return store, root
}

func quietLogger() *slog.Logger {
	return testutil.Logger()
}

func partial(url string) models.Descriptor {
	var d models.Descriptor
	_ = d.Set(models.KeyURL, url)
	_ = d.Set(models.KeyInfo, "x")
	_ = d.Set(models.KeyAuthor, "e")
	return d
}

func TestEnrich_FillsMissingFields(t *testing.T) {
	store, root := setup(t, map[string]int{"a.glb": 2048})
	t0 := time.Date(2021, 5, 28, 1, 41, 28, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.glb"), t0, t0))

	e := New(store, history.Nop{}, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), []models.Descriptor{partial("a.glb")})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "a.glb", got[0].Name)
	assert.Equal(t, "2 KB", got[0].Size)
	assert.Equal(t, "2021-05-28 01:41:28 +0000", got[0].DateModified)
	assert.Equal(t, []string{"url", "info", "author", "size", "dateModified", "name"}, got[0].Keys())
}

func TestEnrich_NameIsLastSegment(t *testing.T) {
	store, _ := setup(t, map[string]int{"assets/3d/tree.glb": 10})

	e := New(store, history.Nop{}, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), []models.Descriptor{partial("./assets/3d/tree.glb")})
	require.NoError(t, err)
	assert.Equal(t, "tree.glb", got[0].Name)
}

func TestEnrich_UsesHistoryWhenAvailable(t *testing.T) {
	store, _ := setup(t, map[string]int{"a.glb": 1})
	r := &fakeResolver{dates: map[string]string{"a.glb": "2021-06-24 12:11:03 +0300"}}

	e := New(store, r, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), []models.Descriptor{partial("a.glb")})
	require.NoError(t, err)
	assert.Equal(t, "2021-06-24 12:11:03 +0300", got[0].DateModified)
}

func TestEnrich_Idempotent(t *testing.T) {
	store, _ := setup(t, map[string]int{"a.glb": 2048})
	full := partial("a.glb")
	_ = full.Set(models.KeyName, "custom")
	_ = full.Set(models.KeySize, "big")
	_ = full.Set(models.KeyDateModified, "yesterday")
	r := &fakeResolver{}

	e := New(store, r, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), []models.Descriptor{full})
	require.NoError(t, err)
	assert.Equal(t, []models.Descriptor{full}, got)
	assert.Equal(t, int32(0), r.calls.Load(), "resolver must not run when the date is set")

	again, err := e.Enrich(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	store, _ := setup(t, map[string]int{"a.glb": 1})
	in := []models.Descriptor{partial("a.glb")}

	e := New(store, history.Nop{}, quietLogger(), 0)
	_, err := e.Enrich(context.Background(), in)
	require.NoError(t, err)

	assert.Empty(t, in[0].Name)
	assert.Empty(t, in[0].Size)
	assert.Equal(t, []string{"url", "info", "author"}, in[0].Keys())
}

func TestEnrich_PreservesOrder(t *testing.T) {
	files := map[string]int{}
	var in []models.Descriptor
	for _, n := range []string{"e.glb", "d.glb", "c.glb", "b.glb", "a.glb"} {
		files[n] = 1
		in = append(in, partial(n))
	}
	store, _ := setup(t, files)

	e := New(store, history.Nop{}, quietLogger(), 2)
	got, err := e.Enrich(context.Background(), in)
	require.NoError(t, err)
	for i := range in {
		assert.Equal(t, in[i].URL, got[i].URL)
	}
}

func TestEnrich_MissingAssetFails(t *testing.T) {
	store, _ := setup(t, map[string]int{"a.glb": 1})

	e := New(store, history.Nop{}, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), []models.Descriptor{partial("a.glb"), partial("missing.glb")})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperr.ErrAssetNotFound))
	assert.Contains(t, err.Error(), "missing.glb")
}

func TestEnrich_DirectoryFails(t *testing.T) {
	store, root := setup(t, nil)
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))

	e := New(store, history.Nop{}, quietLogger(), 0)
	_, err := e.Enrich(context.Background(), []models.Descriptor{partial("dir")})
	assert.ErrorIs(t, err, apperr.ErrAssetNotFound)
}

func TestEnrich_OutsideRootFails(t *testing.T) {
	store, _ := setup(t, nil)

	e := New(store, history.Nop{}, quietLogger(), 0)
	_, err := e.Enrich(context.Background(), []models.Descriptor{partial("../secret.glb")})
	assert.ErrorIs(t, err, apperr.ErrAssetNotFound)
}

func TestEnrich_Empty(t *testing.T) {
	store, _ := setup(t, nil)

	e := New(store, history.Nop{}, quietLogger(), 0)
	got, err := e.Enrich(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnrich_CancelledContext(t *testing.T) {
	store, _ := setup(t, map[string]int{"a.glb": 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(store, history.Nop{}, quietLogger(), 0)
	_, err := e.Enrich(ctx, []models.Descriptor{partial("a.glb")})
	assert.ErrorIs(t, err, context.Canceled)
}
