package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRegistryRegionLookup(t *testing.T) {
	global, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer global.Close()

	reg := NewRegistry(global)
	if _, ok := reg.Region("r1"); ok {
		t.Fatal("expected no pool registered for an unknown region")
	}

	regionDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	reg.RegisterRegion("r1", regionDB)

	db, ok := reg.Region("r1")
	if !ok || db != regionDB {
		t.Fatal("expected registered region pool to be returned")
	}

	if err := reg.UnregisterRegion("r1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, ok := reg.Region("r1"); ok {
		t.Fatal("expected region pool to be gone after unregister")
	}
}

func TestRegistryGlobal(t *testing.T) {
	global, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer global.Close()
	reg := NewRegistry(global)
	if reg.Global() != global {
		t.Fatal("expected Global() to return the constructor's pool")
	}
}
