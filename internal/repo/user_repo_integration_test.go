//go:build integration

package repo

import (
	"context"
	"errors"
	"testing"

	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/testutil"
)

func TestPostgresUserRepo(t *testing.T) {
	r := NewUserRepo(testutil.NewPostgres(t))
	ctx := context.Background()

	for _, email := range []string{"ana@example.com", "Bob@Example.com"} {
		if err := r.Create(ctx, &domain.User{Email: email, PasswordHash: "h", FirstName: "F", LastName: "L", IsActive: true}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	err := r.Create(ctx, &domain.User{Email: "ana@example.com", PasswordHash: "h", FirstName: "F", LastName: "L", IsActive: true})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// LIKE 在 postgres 上区分大小写
	users, total, err := r.FindMany(ctx, domain.UserFilter{Search: "Example"}, domain.Page{}, domain.Sort{})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if total != 1 || users[0].Email != "Bob@Example.com" {
		t.Errorf("expected only Bob, got %d rows", total)
	}

	ana, _ := r.FindByEmail(ctx, "ana@example.com")
	updated, err := r.Update(ctx, ana.ID, map[string]any{"is_active": false})
	if err != nil || updated == nil || updated.IsActive {
		t.Fatalf("deactivate: %+v, %v", updated, err)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
}
