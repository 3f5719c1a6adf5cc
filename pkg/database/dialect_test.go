package database

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", SQLite, false},
		{"SQLite3", SQLite, false},
		{" postgres ", Postgres, false},
		{"postgresql", Postgres, false},
		{"pgx", Pgx, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM entries WHERE collection_id = ? AND status = ? AND note = 'why?' LIMIT ?"
	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite query must be unchanged, got %q", got)
	}
	want := "SELECT * FROM entries WHERE collection_id = $1 AND status = $2 AND note = 'why?' LIMIT $3"
	for _, d := range []Dialect{Postgres, Pgx} {
		if got := d.Rebind(q); got != want {
			t.Errorf("%s: got %q", d, got)
		}
	}
}

func TestJSONText(t *testing.T) {
	if got := SQLite.JSONText("data", "category"); got != "json_extract(data, '$.category')" {
		t.Errorf("sqlite: %q", got)
	}
	if got := Postgres.JSONText("data", "category"); got != "data->>'category'" {
		t.Errorf("postgres: %q", got)
	}
}

func TestTimeValueRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.UTC)
	s, ok := SQLite.TimeValue(now).(string)
	if !ok {
		t.Fatalf("sqlite timestamps bind as text")
	}
	got, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime(%q): %v", s, err)
	}
	if !got.Equal(now) {
		t.Errorf("round trip mismatch: %v != %v", got, now)
	}
	if _, ok := Postgres.TimeValue(now).(time.Time); !ok {
		t.Errorf("postgres timestamps bind as time.Time")
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-03-01T10:30:00Z", "2024-03-01 10:30:00.5+02:00", "2024-03-01 10:30:00"} {
		if _, err := ParseTime(s); err != nil {
			t.Errorf("ParseTime(%q): %v", s, err)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", ErrUniqueViolation)
	if !SQLite.IsUniqueViolation(wrapped) {
		t.Error("wrapped sentinel must be recognised")
	}
	if SQLite.IsUniqueViolation(errors.New("boom")) || Postgres.IsUniqueViolation(nil) {
		t.Error("unrelated errors are not unique violations")
	}
}

func TestAddConnectionParams(t *testing.T) {
	tests := []struct{ dsn, want string }{
		{"postgres://u@h/db", "postgres://u@h/db?connect_timeout=10"},
		{"postgres://u@h/db?sslmode=require", "postgres://u@h/db?sslmode=require&connect_timeout=10"},
		{"host=h dbname=db", "host=h dbname=db connect_timeout=10"},
	}
	for _, tt := range tests {
		if got := addConnectionParams(tt.dsn, "connect_timeout=10"); got != tt.want {
			t.Errorf("addConnectionParams(%q) = %q", tt.dsn, got)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("/tmp/cms.db")
	want := "/tmp/cms.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	if got != want {
		t.Errorf("sqliteDSN = %q", got)
	}
}
