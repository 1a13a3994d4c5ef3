package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

type pageRow struct {
	ID int64 `gorm:"primaryKey"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
	if base.Conn() != db {
		t.Fatalf("expected Conn to return the raw connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestPageScopeUsesPageIndex(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&pageRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 1; i <= 7; i++ {
		if err := db.Create(&pageRow{ID: int64(i)}).Error; err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}

	cases := []struct {
		from, size int
		want       []int64
	}{
		{0, 3, []int64{1, 2, 3}},
		{3, 3, []int64{4, 5, 6}},
		{4, 3, []int64{4, 5, 6}},
		{6, 3, []int64{7}},
	}
	for _, tc := range cases {
		var rows []pageRow
		if err := db.Scopes(Page(pagination.Params{From: tc.from, Size: tc.size})).Order("id").Find(&rows).Error; err != nil {
			t.Fatalf("query page: %v", err)
		}
		got := make([]int64, 0, len(rows))
		for _, r := range rows {
			got = append(got, r.ID)
		}
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("from=%d size=%d: expected %v got %v", tc.from, tc.size, tc.want, got)
		}
	}
}

func TestSharedLookups(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	owner := models.User{Name: "owner", Email: "owner@example.com"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	item := models.Item{Name: "drill", Description: "cordless", Available: true, OwnerID: owner.ID}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	base := NewBase(db)
	ctx := context.Background()

	ok, err := base.UserExists(ctx, owner.ID)
	if err != nil || !ok {
		t.Fatalf("expected user to exist, ok=%v err=%v", ok, err)
	}
	ok, err = base.UserExists(ctx, owner.ID+100)
	if err != nil || ok {
		t.Fatalf("expected missing user, ok=%v err=%v", ok, err)
	}

	found, err := base.FindItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	if found.OwnerID != owner.ID {
		t.Fatalf("expected owner %d got %d", owner.ID, found.OwnerID)
	}
	if _, err := base.FindItem(ctx, item.ID+100); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
	if _, err := base.FindUser(ctx, owner.ID+100); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
