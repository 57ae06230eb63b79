// Package testutil collects the small helpers every package's tests share,
// grounded on dinodb's test/utils.GetTempDbFile and test/utils.CheckEntry.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	cp "github.com/otiai10/copy"

	"storagecore/internal/entry"
	"storagecore/internal/recordid"
)

// TempFile returns the path to a not-yet-created file under t.TempDir(),
// named with a random UUID so concurrent t.Parallel() subtests never
// collide on the same backing file.
func TempFile(t *testing.T, ext string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+ext)
}

// CheckEntry verifies that got has the expected key and RecordId.
func CheckEntry(t *testing.T, got entry.Entry, wantKey int32, wantRID recordid.RecordId) {
	t.Helper()
	if got.Key != wantKey {
		t.Errorf("expected entry key %d, got %d", wantKey, got.Key)
		return
	}
	if got.RID != wantRID {
		t.Errorf("entry %d: expected rid %+v, got %+v", wantKey, wantRID, got.RID)
	}
}

// SnapshotDir copies the contents of src into a fresh temp directory and
// returns its path, for tests that need to mutate a fixture without
// disturbing the original (e.g. reopening an index from a copy of its
// closed file).
func SnapshotDir(t *testing.T, src string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), uuid.NewString())
	if err := cp.Copy(src, dst); err != nil {
		t.Fatalf("snapshotting %s: %s", src, err)
	}
	return dst
}

// RequireNoError fails the test immediately if err is non-nil.
func RequireNoError(t *testing.T, err error, msgf string, args ...any) {
	t.Helper()
	if err != nil {
		args = append(args, err)
		t.Fatalf(msgf+": %s", args...)
	}
}
