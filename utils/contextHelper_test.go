package utils

import (
	"context"
	"testing"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	ctx = SetTokenInContext(ctx, "tok")
	if token, ok := GetTokenFromContext(ctx); !ok || token != "tok" {
		t.Fatalf("token = %q ok = %v", token, ok)
	}

	ctx = SetUsernameInContext(ctx, "enroll01")
	if username, ok := GetUsernameFromContext(ctx); !ok || username != "enroll01" {
		t.Fatalf("username = %q ok = %v", username, ok)
	}

	ctx = SetCorrelationIdInContext(ctx, "cid-1")
	if cid, ok := GetCorrelationIdFromContext(ctx); !ok || cid != "cid-1" {
		t.Fatalf("correlation id = %q ok = %v", cid, ok)
	}

	ctx = SetIsAdminInContext(ctx, true)
	if isAdmin, ok := GetIsAdminFromContext(ctx); !ok || !isAdmin {
		t.Fatalf("isAdmin = %v ok = %v", isAdmin, ok)
	}
}

func TestAuditUserIdFallsBackToUserId(t *testing.T) {
	ctx := SetUserIdInContext(context.Background(), 7)
	if id, ok := GetAuditUserIdFromContext(ctx); !ok || id != 7 {
		t.Fatalf("audit user id = %d ok = %v, want the user id", id, ok)
	}

	ctx = SetAuditUserIdInContext(ctx, 9)
	if id, ok := GetAuditUserIdFromContext(ctx); !ok || id != 9 {
		t.Fatalf("audit user id = %d ok = %v, want the explicit id", id, ok)
	}

	if _, ok := GetAuditUserIdFromContext(context.Background()); ok {
		t.Fatal("empty context must not report an audit user id")
	}
}
