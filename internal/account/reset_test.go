package account

import (
	"context"
	"errors"
	"testing"
	"time"
)

const newTestPassword = `Fr3sh?Credent1al!Zq`

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.engine.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("forgot for unknown email must succeed silently: %v", err)
	}

	f.engine.Close()
	if sent := f.notify.byKind("recovery"); len(sent) != 0 {
		t.Fatalf("recovery emails = %d, want 0", len(sent))
	}
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}

	user := f.store.mustFind(t, "lucia@example.com")
	if user.ResetToken == "" {
		t.Fatal("no reset token issued")
	}
	if want := f.clock.Now().Add(time.Hour); !user.ResetExpiry.Equal(want) {
		t.Fatalf("expiry = %v, want %v", user.ResetExpiry, want)
	}

	f.engine.Close()
	sent := f.notify.byKind("recovery")
	if len(sent) != 1 || sent[0].token != user.ResetToken {
		t.Fatalf("recovery emails = %+v", sent)
	}
}

func TestForgotPasswordRepeatResendsSameToken(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	first := f.store.mustFind(t, "lucia@example.com").ResetToken

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("second forgot: %v", err)
	}
	if got := f.store.mustFind(t, "lucia@example.com").ResetToken; got != first {
		t.Fatal("repeat request replaced the pending token")
	}

	f.engine.Close()
	if sent := f.notify.byKind("recovery"); len(sent) != 2 {
		t.Fatalf("recovery emails = %d, want 2", len(sent))
	}
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := f.store.mustFind(t, "lucia@example.com").ResetToken

	if err := f.engine.ResetPassword(context.Background(), token, newTestPassword); err != nil {
		t.Fatalf("reset: %v", err)
	}

	user := f.store.mustFind(t, "lucia@example.com")
	if user.ResetToken != "" {
		t.Fatal("reset token not cleared on consume")
	}

	// Old credential dead, new one live.
	if _, err := f.engine.Login(context.Background(), "lucia@example.com", validTestPassword); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("old password err = %v, want ErrLoginFailed", err)
	}
	if _, err := f.engine.Login(context.Background(), "lucia@example.com", newTestPassword); err != nil {
		t.Fatalf("new password login: %v", err)
	}

	// Single use.
	if err := f.engine.ResetPassword(context.Background(), token, newTestPassword); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("replay err = %v, want ErrTokenNotFound", err)
	}
}

func TestResetPasswordEnforcesPolicy(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := f.store.mustFind(t, "lucia@example.com").ResetToken

	if err := f.engine.ResetPassword(context.Background(), token, "weak"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("err = %v, want ErrPasswordPolicy", err)
	}

	// The rejected attempt must not consume the token.
	if err := f.engine.ResetPassword(context.Background(), token, newTestPassword); err != nil {
		t.Fatalf("reset after rejected attempt: %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := f.store.mustFind(t, "lucia@example.com").ResetToken

	f.clock.Advance(2 * time.Hour)

	if err := f.engine.ResetPassword(context.Background(), token, newTestPassword); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if user := f.store.mustFind(t, "lucia@example.com"); user.ResetToken != "" {
		t.Fatal("expired token not cleared from record")
	}
}

func TestResetPasswordUnlocksLockedAccount(t *testing.T) {
	f := newFixture(t, nil)
	f.registerVerified(t, "Lucia", "lucia@example.com")

	// Lock the account.
	for i := 0; i < 6; i++ {
		f.engine.Login(context.Background(), "lucia@example.com", "Wr0ng?Passw0rd!Xkq")
	}
	if _, err := f.engine.Login(context.Background(), "lucia@example.com", validTestPassword); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected lock, got %v", err)
	}

	// Reset via email recovers it.
	if err := f.engine.ForgotPassword(context.Background(), "lucia@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := f.store.mustFind(t, "lucia@example.com").ResetToken
	if err := f.engine.ResetPassword(context.Background(), token, newTestPassword); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if user := f.store.mustFind(t, "lucia@example.com"); user.FailedLoginCount != 0 {
		t.Fatalf("failed count = %d, want 0 after reset", user.FailedLoginCount)
	}
	if _, err := f.engine.Login(context.Background(), "lucia@example.com", newTestPassword); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}
