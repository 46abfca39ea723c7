package progress

import (
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return dbConn
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	dbConn := setupLedgerDB(t)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	first := Entry{UserID: 1, Date: datatypes.Date(day), CigarettesSmoked: 5, HealthStatus: "rough"}
	if err := Upsert(dbConn, &first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := Entry{UserID: 1, Date: datatypes.Date(day), CigarettesSmoked: 2, HealthStatus: "better"}
	if err := Upsert(dbConn, &second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := dbConn.Model(&Entry{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row for the day, got %d", count)
	}

	var got Entry
	if err := dbConn.Where("user_id = ?", 1).First(&got).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CigarettesSmoked != 2 || got.HealthStatus != "better" {
		t.Errorf("expected updated values, got %+v", got)
	}
}

func TestUpsert_SeparateUsersAndDays(t *testing.T) {
	dbConn := setupLedgerDB(t)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	entries := []Entry{
		{UserID: 1, Date: datatypes.Date(day), CigarettesSmoked: 1},
		{UserID: 2, Date: datatypes.Date(day), CigarettesSmoked: 2},
		{UserID: 1, Date: datatypes.Date(day.AddDate(0, 0, 1)), CigarettesSmoked: 3},
	}
	for i := range entries {
		if err := Upsert(dbConn, &entries[i]); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	var count int64
	if err := dbConn.Model(&Entry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 distinct rows, got %d", count)
	}
}

func TestEntriesInRange(t *testing.T) {
	dbConn := setupLedgerDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := Entry{UserID: 1, Date: datatypes.Date(base.AddDate(0, 0, i)), CigarettesSmoked: i}
		if err := Upsert(dbConn, &e); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	got, err := EntriesInRange(dbConn, 1, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("range query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries in range, got %d", len(got))
	}
	if got[0].CigarettesSmoked != 1 || got[2].CigarettesSmoked != 3 {
		t.Errorf("expected oldest-first ordering, got %+v", got)
	}
}
