package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	pgsn "github.com/yoriyuki/pgsn/core"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "terms.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	x := pgsn.Var("x")
	term := pgsn.Apply(pgsn.Lambda(x, pgsn.Apply(pgsn.Plus, x, 1)), 41)

	if err := s.Put(ctx, "answer", term); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "answer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !pgsn.Equal(got, term) {
		t.Fatalf("expected %s, got %s", term, got)
	}
	v, err := pgsn.ValueOf(got, 100)
	if err != nil || v != int64(42) {
		t.Fatalf("stored term evaluates to %v, %v", v, err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.Put(ctx, "t", pgsn.Int(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "t", pgsn.Str("two")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "t", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !pgsn.Equal(got, pgsn.Str("two")) {
		t.Fatalf("expected replacement, got %s", got)
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %v", entries)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	err := s.PutAll(ctx, map[string]pgsn.Term{
		"b": pgsn.ListOf(1, 2),
		"a": pgsn.RecordOf(map[string]any{"k": true}),
		"c": pgsn.BaseClass,
	})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Name != "a" || entries[1].Name != "b" || entries[2].Name != "c" {
		t.Fatalf("unexpected entries %v", entries)
	}
	if entries[0].Updated == "" {
		t.Fatal("missing timestamp")
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "b", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTest(t)
	if _, err := s.Get(context.Background(), "nope", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(context.Background(), "", pgsn.Int(1)); err == nil {
		t.Fatal("empty name must be rejected")
	}
}

func TestGetUnknownBuiltin(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	double := pgsn.Prim("double", 1,
		func(args []pgsn.Term) bool { _, ok := args[0].(*pgsn.Integer); return ok },
		func(args []pgsn.Term) pgsn.Term { return pgsn.NewInteger(false, 2*args[0].(*pgsn.Integer).Value()) })
	reg := pgsn.NewRegistry(append(pgsn.StdlibPrimitives(), double)...)
	d, _ := reg.Term("double")
	if err := s.Put(ctx, "d", pgsn.Apply(d, 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "d", nil); err == nil {
		t.Fatal("decoding against the standard library should fail")
	}
	got, err := s.Get(ctx, "d", reg)
	if err != nil {
		t.Fatal(err)
	}
	v, err := pgsn.ValueOf(got, 10)
	if err != nil || v != int64(4) {
		t.Fatalf("expected 4, got %v, %v", v, err)
	}
}
