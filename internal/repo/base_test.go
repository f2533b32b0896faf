package repo

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/internal/repo/repotest"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := repotest.Open(t)
	base := NewBase(db)

	if base.Conn() != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := repotest.Open(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil || withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	//nolint:staticcheck // nil context is part of the contract
	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)) {
		t.Fatalf("expected wrapped not found to match")
	}
	if IsNotFound(fmt.Errorf("other")) {
		t.Fatalf("unexpected match")
	}
}
