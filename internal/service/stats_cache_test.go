package service

import (
	"context"
	"testing"
	"time"

	"gin-gorm-accounts/internal/testutil"
)

func TestStatsCacheFollowsEveryWrite(t *testing.T) {
	c, mr := testutil.NewRedis(t)
	f := newFixture(t)
	f.auth.WithStatsCache(c)
	f.users.WithStatsCache(c, time.Minute)
	ctx := context.Background()

	expect := func(step string, total, active, admins int64) {
		t.Helper()
		st, err := f.users.Stats(ctx)
		if err != nil {
			t.Fatalf("%s: Stats: %v", step, err)
		}
		if st.Total != total || st.Active != active || st.Admins != admins {
			t.Errorf("%s: got total=%d active=%d admins=%d, want %d/%d/%d",
				step, st.Total, st.Active, st.Admins, total, active, admins)
		}
		if !mr.Exists(statsCacheKey) {
			t.Errorf("%s: stats not cached", step)
		}
	}

	expect("empty", 0, 0, 0)

	reg, err := f.auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "pw", FirstName: "Ana", LastName: "Garcia"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	expect("register", 1, 1, 0)

	boss, err := f.users.AdminCreate(ctx, AdminCreateInput{Email: "boss@example.com", Password: "pw", FirstName: "B", LastName: "O", IsAdmin: true})
	if err != nil {
		t.Fatalf("AdminCreate: %v", err)
	}
	expect("admin create", 2, 2, 1)

	if err := f.users.SoftDelete(ctx, reg.User.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	expect("soft delete", 2, 1, 1)

	if _, err := f.users.ToggleAdmin(ctx, reg.User.ID); err != nil {
		t.Fatalf("ToggleAdmin: %v", err)
	}
	expect("toggle admin", 2, 1, 2)

	if _, err := f.users.Reactivate(ctx, reg.User.ID); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	expect("reactivate", 2, 2, 2)

	if _, err := f.users.AdminUpdate(ctx, boss.ID, AdminUpdateInput{IsAdmin: boolPtr(false)}); err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	expect("admin update", 2, 2, 1)

	if _, err := f.users.UpdateProfile(ctx, reg.User.ID, ProfileInput{FirstName: strPtr("Anita")}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if mr.Exists(statsCacheKey) {
		t.Error("profile update should invalidate stats")
	}
}

func TestStatsServedFromCache(t *testing.T) {
	c, _ := testutil.NewRedis(t)
	f := newFixture(t)
	f.users.WithStatsCache(c, time.Minute)
	ctx := context.Background()

	if _, err := f.auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "pw", FirstName: "A", LastName: "G"}); err != nil {
		t.Fatal(err)
	}
	first, err := f.users.Stats(ctx)
	if err != nil || first.Total != 1 {
		t.Fatalf("Stats: %+v, %v", first, err)
	}

	// 绕过包装直接写库，缓存命中时看不到
	u, _ := f.repo.FindByEmail(ctx, "ana@example.com")
	if _, err := f.repo.Update(ctx, u.ID, map[string]any{"is_admin": true}); err != nil {
		t.Fatal(err)
	}
	cached, err := f.users.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if cached.Admins != 0 {
		t.Errorf("expected cached admins=0, got %d", cached.Admins)
	}
}

func TestInvalidateStatsOnIsIdempotent(t *testing.T) {
	c, _ := testutil.NewRedis(t)
	f := newFixture(t)

	once := InvalidateStatsOn(f.repo, c)
	if twice := InvalidateStatsOn(once, c); twice != once {
		t.Error("wrapping twice should return the same repository")
	}
	if plain := InvalidateStatsOn(f.repo, nil); plain != f.repo {
		t.Error("nil cache should leave the repository unwrapped")
	}
}
