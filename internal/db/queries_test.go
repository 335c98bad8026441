package db

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestGetUser_FirstContactDefaults(t *testing.T) {
	d := testDB(t)
	u, err := d.GetUser("42")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.ID != "42" {
		t.Errorf("ID = %q, want %q", u.ID, "42")
	}
	if u.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", u.Model, DefaultModel)
	}
	if u.Credits != DefaultCredits {
		t.Errorf("Credits = %d, want %d", u.Credits, DefaultCredits)
	}
}

func TestGetUser_Idempotent(t *testing.T) {
	d := testDB(t)
	if _, err := d.DebitCredits("42", 100); err == nil {
		t.Fatal("expected error debiting a user that does not exist yet")
	}
	if _, err := d.GetUser("42"); err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if _, err := d.DebitCredits("42", 100); err != nil {
		t.Fatalf("DebitCredits: %v", err)
	}
	u, err := d.GetUser("42")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Credits != DefaultCredits-100 {
		t.Errorf("Credits = %d, want %d (second GetUser must not reset the row)", u.Credits, DefaultCredits-100)
	}
}

func TestDebitCredits(t *testing.T) {
	d := testDB(t)
	if _, err := d.GetUser("7"); err != nil {
		t.Fatal(err)
	}
	balance, err := d.DebitCredits("7", 123)
	if err != nil {
		t.Fatalf("DebitCredits: %v", err)
	}
	if balance != DefaultCredits-123 {
		t.Errorf("balance = %d, want %d", balance, DefaultCredits-123)
	}
}

func TestDebitCredits_MayGoNegative(t *testing.T) {
	// Budgeting rounding can leave slack; the store accepts the drift.
	d := testDB(t)
	if _, err := d.GetUser("7"); err != nil {
		t.Fatal(err)
	}
	balance, err := d.DebitCredits("7", DefaultCredits+3)
	if err != nil {
		t.Fatalf("DebitCredits: %v", err)
	}
	if balance != -3 {
		t.Errorf("balance = %d, want -3", balance)
	}
}

func TestAddCredits_Refund(t *testing.T) {
	d := testDB(t)
	if _, err := d.GetUser("7"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.DebitCredits("7", 200); err != nil {
		t.Fatal(err)
	}
	balance, err := d.AddCredits("7", 200)
	if err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if balance != DefaultCredits {
		t.Errorf("balance = %d, want %d after refund", balance, DefaultCredits)
	}
}

func TestSetModel(t *testing.T) {
	d := testDB(t)
	if err := d.SetModel("9", "gpt-4"); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	u, err := d.GetUser("9")
	if err != nil {
		t.Fatal(err)
	}
	if u.Model != "gpt-4" {
		t.Errorf("Model = %q, want gpt-4", u.Model)
	}
	if u.Credits != DefaultCredits {
		t.Errorf("Credits = %d, want %d (SetModel must not touch the balance)", u.Credits, DefaultCredits)
	}
}

func TestTopUpBelow(t *testing.T) {
	d := testDB(t)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := d.GetUser(id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.DebitCredits("a", 400); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddCredits("b", 1000); err != nil {
		t.Fatal(err)
	}

	n, err := d.TopUpBelow(DefaultCredits)
	if err != nil {
		t.Fatalf("TopUpBelow: %v", err)
	}
	if n != 1 {
		t.Errorf("refilled %d accounts, want 1", n)
	}

	ua, _ := d.GetUser("a")
	if ua.Credits != DefaultCredits {
		t.Errorf("a: credits = %d, want %d", ua.Credits, DefaultCredits)
	}
	ub, _ := d.GetUser("b")
	if ub.Credits != DefaultCredits+1000 {
		t.Errorf("b: credits = %d, want %d (refill must not lower rich balances)", ub.Credits, DefaultCredits+1000)
	}
}
