package database

import "testing"

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		dsn        string
		wantSQLite bool
		wantErr    bool
	}{
		{"postgres://u:p@localhost:5432/portfolio", false, false},
		{"host=localhost user=u dbname=portfolio", false, false},
		{"sqlite::memory:", true, false},
		{"file:portfolio.db?cache=shared", true, false},
		{"./data/portfolio.db", true, false},
		{"mysql://nope", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			_, isSQLite, err := dialectorFor(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if isSQLite != tt.wantSQLite {
				t.Errorf("sqlite = %v, want %v", isSQLite, tt.wantSQLite)
			}
		})
	}
}

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	for _, table := range []string{"categories", "collections", "analytics", "settings"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing", table)
		}
	}
}
