package profiles

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	repo.Put(&Profile{ID: "user-1", FirstName: "Ada", Phone: "5550000000"})

	t.Run("get by id", func(t *testing.T) {
		p, err := repo.GetByID(ctx, "user-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if p.FirstName != "Ada" || p.Phone != "5550000000" {
			t.Fatalf("profile = %+v", p)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("err = %v, want ErrProfileNotFound", err)
		}
	})

	t.Run("update phone", func(t *testing.T) {
		if err := repo.UpdatePhone(ctx, "user-1", "5551234567"); err != nil {
			t.Fatalf("UpdatePhone: %v", err)
		}
		p, _ := repo.GetByID(ctx, "user-1")
		if p.Phone != "5551234567" {
			t.Fatalf("phone = %q after update", p.Phone)
		}
	})

	t.Run("update phone unknown user", func(t *testing.T) {
		if err := repo.UpdatePhone(ctx, "missing", "5551234567"); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("err = %v, want ErrProfileNotFound", err)
		}
	})
}
