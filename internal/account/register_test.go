package account

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRegisterCreatesAccount(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "Lucia",
		Email:      "Lucia@Example.COM",
		Password:   validTestPassword,
		ClientAddr: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !result.Created {
		t.Fatal("expected Created")
	}

	// Email identity is case-insensitive: stored lowercased.
	user := f.store.mustFind(t, "lucia@example.com")
	if user.Verified {
		t.Fatal("fresh account must start unverified")
	}
	if user.VerificationToken == "" {
		t.Fatal("fresh account must carry a verification token")
	}
	// 15 bytes, hex-encoded.
	if len(user.VerificationToken) != 30 {
		t.Fatalf("verification token length = %d, want 30", len(user.VerificationToken))
	}
	if user.PasswordHash == validTestPassword {
		t.Fatal("password stored in plaintext")
	}

	f.engine.Close()
	sent := f.notify.byKind("verification")
	if len(sent) != 1 {
		t.Fatalf("verification emails = %d, want 1", len(sent))
	}
	if sent[0].email != "lucia@example.com" || sent[0].token != user.VerificationToken {
		t.Fatalf("verification email = %+v", sent[0])
	}
}

func TestRegisterExistingEmailIsSilentNoOp(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "Lucia", "lucia@example.com")

	result, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "Impostor",
		Email:      "lucia@example.com",
		Password:   validTestPassword,
		ClientAddr: "203.0.113.8",
	})
	if err != nil {
		t.Fatalf("duplicate register must not error: %v", err)
	}
	if result.Created {
		t.Fatal("duplicate register must not report creation")
	}
	if f.store.count() != 1 {
		t.Fatalf("records = %d, want 1", f.store.count())
	}

	f.engine.Close()
	if sent := f.notify.byKind("verification"); len(sent) != 1 {
		t.Fatalf("verification emails = %d, want 1 (no email for the duplicate)", len(sent))
	}

	// Original account untouched.
	if user := f.store.mustFind(t, "lucia@example.com"); user.Name != "Lucia" {
		t.Fatalf("name = %q, want Lucia", user.Name)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Email: "a@b.com", Password: validTestPassword}},
		{"blank name", RegisterRequest{Name: "  ", Email: "a@b.com", Password: validTestPassword}},
		{"missing email", RegisterRequest{Name: "A", Password: validTestPassword}},
		{"missing password", RegisterRequest{Name: "A", Email: "a@b.com"}},
		{"blank password", RegisterRequest{Name: "A", Email: "a@b.com", Password: "   "}},
	}

	f := newFixture(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ClientAddr = "203.0.113.7"
			_, err := f.engine.Register(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
	if f.store.count() != 0 {
		t.Fatalf("records = %d, want 0", f.store.count())
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "Lucia",
		Email:      "lucia@example.com",
		Password:   "short",
		ClientAddr: "203.0.113.7",
	})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("err = %v, want ErrPasswordPolicy", err)
	}
	if f.store.count() != 0 {
		t.Fatal("no record must be created for a rejected password")
	}
}

func TestRegisterThrottle(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Throttle.Ceiling = 3
	})

	for i := 0; i < 3; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		if _, err := f.engine.Register(context.Background(), RegisterRequest{
			Name:       "User",
			Email:      email,
			Password:   validTestPassword,
			ClientAddr: "203.0.113.7",
		}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	_, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "User",
		Email:      "overflow@example.com",
		Password:   validTestPassword,
		ClientAddr: "203.0.113.7",
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	// Other addresses are unaffected.
	if _, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "Other",
		Email:      "other@example.com",
		Password:   validTestPassword,
		ClientAddr: "198.51.100.9",
	}); err != nil {
		t.Fatalf("register from other address: %v", err)
	}

	// The window slides: once the oldest attempts age out the address
	// may register again.
	f.clock.Advance(16 * time.Minute)
	if _, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "User",
		Email:      "later@example.com",
		Password:   validTestPassword,
		ClientAddr: "203.0.113.7",
	}); err != nil {
		t.Fatalf("register after window: %v", err)
	}
}

func TestRegisterRejectedInputDoesNotConsumeThrottle(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Throttle.Ceiling = 1
	})

	// Invalid attempts pass the gate but are not recorded.
	for i := 0; i < 5; i++ {
		_, err := f.engine.Register(context.Background(), RegisterRequest{
			Name:       "",
			Email:      "a@b.com",
			Password:   validTestPassword,
			ClientAddr: "203.0.113.7",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	}

	if _, err := f.engine.Register(context.Background(), RegisterRequest{
		Name:       "Lucia",
		Email:      "lucia@example.com",
		Password:   validTestPassword,
		ClientAddr: "203.0.113.7",
	}); err != nil {
		t.Fatalf("valid register after invalid burst: %v", err)
	}
}
