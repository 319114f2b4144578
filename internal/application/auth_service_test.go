package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

var testPasskeyParams = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func newAuthServiceForTest(t *testing.T, users *userRepoStub) (*AuthService, *tokenStub) {
	t.Helper()
	hash, err := HashPasskey("admin123", testPasskeyParams)
	if err != nil {
		t.Fatalf("HashPasskey returned error: %v", err)
	}
	tokens := newTokenStub()
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	return NewAuthService(users, tokens, hash, sequentialIDs("user"), fixedNow(now)), tokens
}

func TestAuthService_AdminLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthServiceForTest(t, &userRepoStub{})

	session, err := svc.AdminLogin(context.Background(), "admin123")
	if err != nil {
		t.Fatalf("AdminLogin returned error: %v", err)
	}
	if !session.Principal.IsAdmin() || session.Token == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	for _, passkey := range []string{"", "admin1234", "ADMIN123"} {
		if _, err := svc.AdminLogin(context.Background(), passkey); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("passkey %q: expected ErrInvalidCredentials, got %v", passkey, err)
		}
	}
}

func TestAuthService_TeacherLogin(t *testing.T) {
	t.Parallel()

	t.Run("registers unknown emails as pending", func(t *testing.T) {
		t.Parallel()
		users := &userRepoStub{}
		svc, _ := newAuthServiceForTest(t, users)

		result, err := svc.TeacherLogin(context.Background(), TeacherLoginParams{Email: " New@Example.com ", Name: "Dr. New"})
		if err != nil {
			t.Fatalf("TeacherLogin returned error: %v", err)
		}
		if result.Outcome != LoginRegistered || result.Message != MessageRequestSent || result.Session.Token != "" {
			t.Fatalf("unexpected result %+v", result)
		}
		if len(users.users) != 1 || users.users[0].Email != "new@example.com" || users.users[0].Status != StatusPending {
			t.Fatalf("expected pending teacher to be stored, got %+v", users.users)
		}

		again, err := svc.TeacherLogin(context.Background(), TeacherLoginParams{Email: "new@example.com", Name: "Dr. New"})
		if err != nil || again.Outcome != LoginPending || again.Message != MessagePendingApproval {
			t.Fatalf("expected pending outcome, got %+v err=%v", again, err)
		}
	})

	t.Run("rejected teachers get no session", func(t *testing.T) {
		t.Parallel()
		users := &userRepoStub{users: []User{{ID: "u1", Email: "r@example.com", Name: "R", Role: RoleTeacher, Status: StatusRejected}}}
		svc, _ := newAuthServiceForTest(t, users)

		result, err := svc.TeacherLogin(context.Background(), TeacherLoginParams{Email: "r@example.com", Name: "R"})
		if err != nil || result.Outcome != LoginRejected || result.Message != MessageRequestDeclined {
			t.Fatalf("expected rejected outcome, got %+v err=%v", result, err)
		}
	})

	t.Run("approved teachers receive a session", func(t *testing.T) {
		t.Parallel()
		users := &userRepoStub{users: []User{{ID: "u1", Email: "ok@example.com", Name: "Dr. Ok", Role: RoleTeacher, Status: StatusApproved}}}
		svc, _ := newAuthServiceForTest(t, users)

		result, err := svc.TeacherLogin(context.Background(), TeacherLoginParams{Email: "ok@example.com", Name: "ignored"})
		if err != nil || result.Outcome != LoginGranted {
			t.Fatalf("expected granted outcome, got %+v err=%v", result, err)
		}
		if result.Session.Principal.UserID != "u1" || result.Session.Principal.Name != "Dr. Ok" || !result.Session.Principal.IsTeacher() {
			t.Fatalf("unexpected principal %+v", result.Session.Principal)
		}
	})

	t.Run("validates the identity", func(t *testing.T) {
		t.Parallel()
		svc, _ := newAuthServiceForTest(t, &userRepoStub{})
		_, err := svc.TeacherLogin(context.Background(), TeacherLoginParams{Email: "not-an-email"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["email"] == "" || vErr.FieldErrors["name"] == "" {
			t.Fatalf("expected email and name validation errors, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	users := &userRepoStub{users: []User{{ID: "u1", Email: "ok@example.com", Name: "Dr. Ok", Role: RoleTeacher, Status: StatusApproved}}}
	svc, _ := newAuthServiceForTest(t, users)
	ctx := context.Background()

	student, err := svc.StudentLogin(ctx, "")
	if err != nil {
		t.Fatalf("StudentLogin returned error: %v", err)
	}
	principal, err := svc.ValidateSession(ctx, student.Token)
	if err != nil || principal.Role != RoleStudent || principal.Name != "Student" {
		t.Fatalf("expected student principal, got %+v err=%v", principal, err)
	}

	teacher, err := svc.TeacherLogin(ctx, TeacherLoginParams{Email: "ok@example.com", Name: "Dr. Ok"})
	if err != nil {
		t.Fatalf("TeacherLogin returned error: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, teacher.Session.Token); err != nil {
		t.Fatalf("expected approved teacher token to validate, got %v", err)
	}

	users.users[0].Status = StatusRejected
	if _, err := svc.ValidateSession(ctx, teacher.Session.Token); !errors.Is(err, ErrAccountRejected) {
		t.Fatalf("expected ErrAccountRejected once the account is declined, got %v", err)
	}

	for _, token := range []string{"", "bogus"} {
		if _, err := svc.ValidateSession(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("token %q: expected ErrInvalidCredentials, got %v", token, err)
		}
	}
}

func TestPasskeyHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPasskey("admin123", testPasskeyParams)
	if err != nil {
		t.Fatalf("HashPasskey returned error: %v", err)
	}
	if err := VerifyPasskey(hash, "admin123"); err != nil {
		t.Fatalf("expected passkey to verify, got %v", err)
	}
	if err := VerifyPasskey(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := VerifyPasskey("not-a-hash", "admin123"); !errors.Is(err, ErrInvalidPasskeyHash) {
		t.Fatalf("expected ErrInvalidPasskeyHash, got %v", err)
	}
	if _, err := HashPasskey("", testPasskeyParams); err == nil {
		t.Fatalf("expected empty passkey to be refused")
	}
}
