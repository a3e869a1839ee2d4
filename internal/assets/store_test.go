package assets_test

import (
	"bytes"
	"context"
	"testing"

	"storyforge/internal/testsupport"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	payload := []byte{0x00, 0x01, 0xfe, 0xff}
	if err := store.Put(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8-img-0", "image/png", payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	blob, err := store.Get(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8-img-0")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if blob == nil {
		t.Fatal("expected blob, got absent")
	}
	if blob.MIME != "image/png" {
		t.Fatalf("expected image/png, got %q", blob.MIME)
	}
	if !bytes.Equal(blob.Data, payload) {
		t.Fatal("stored bytes differ from payload")
	}
}

func TestGetAbsentReturnsNil(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))

	blob, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if blob != nil {
		t.Fatal("expected absent blob to return nil")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.Put(ctx, "k", "image/png", []byte("one")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "k", "image/jpeg", []byte("two")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	blob, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(blob.Data) != "two" || blob.MIME != "image/jpeg" {
		t.Fatalf("expected replacement, got %q %q", blob.MIME, blob.Data)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single row after replace, got %d", count)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.Put(ctx, "k", "", []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	existed, err := store.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !existed {
		t.Fatal("expected delete of existing key to report true")
	}
	existed, err = store.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if existed {
		t.Fatal("expected delete of missing key to report false")
	}
}

func TestKeysPrefixFilter(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, key := range []string{"p1-img-0", "p1-img-1", "p1-vid-0", "p2-img-0"} {
		if err := store.Put(ctx, key, "", []byte("x")); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}
	keys, err := store.Keys(ctx, "p1-")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys with prefix p1-, got %d (%v)", len(keys), keys)
	}
}

func TestDeletePrefix(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, key := range []string{"p1-img-0", "p1-img-1", "p1-vid-0", "p2-img-0"} {
		if err := store.Put(ctx, key, "", []byte("x")); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}

	removed, err := store.DeletePrefix(ctx, "p1-")
	if err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "p2-img-0" {
		t.Fatalf("expected only p2-img-0 to survive, got %v", keys)
	}

	if _, err := store.DeletePrefix(ctx, ""); err == nil {
		t.Fatal("expected empty prefix rejection")
	}
}

func TestPutRejectsEmptyKeyOrData(t *testing.T) {
	store := testsupport.MustOpenAssets(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.Put(ctx, "", "", []byte("x")); err == nil {
		t.Fatal("expected empty key rejection")
	}
	if err := store.Put(ctx, "k", "", nil); err == nil {
		t.Fatal("expected empty data rejection")
	}
}
