package auth

import (
	"context"
	"testing"
	"time"
)

func TestIdentity_Roles(t *testing.T) {
	id := &Identity{Principal: "ops", Roles: []string{"viewer", "health:details"}}

	if !id.HasRole("viewer") || id.HasRole("admin") {
		t.Error("HasRole mismatch")
	}
	if !id.HasAnyRole() {
		t.Error("HasAnyRole() with no roles should match")
	}
	if !id.HasAnyRole("admin", "health:details") {
		t.Error("HasAnyRole(admin, health:details) = false")
	}
	if id.HasAnyRole("admin") {
		t.Error("HasAnyRole(admin) = true")
	}
}

func TestIdentity_Expiry(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"never", time.Time{}, false},
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}
	for _, tt := range tests {
		if got := (&Identity{ExpiresAt: tt.expiresAt}).IsExpired(); got != tt.want {
			t.Errorf("%s: IsExpired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIdentity_Anonymous(t *testing.T) {
	if !AnonymousIdentity().IsAnonymous() {
		t.Error("AnonymousIdentity().IsAnonymous() = false")
	}
	if !(&Identity{Method: AuthMethodJWT}).IsAnonymous() {
		t.Error("identity without principal should be anonymous")
	}
	if (&Identity{Principal: "ops", Method: AuthMethodAPIKey}).IsAnonymous() {
		t.Error("named identity reported anonymous")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Fatal("empty context returned an identity")
	}

	id := &Identity{Principal: "ops"}
	ctx = WithIdentity(ctx, id)
	if IdentityFromContext(ctx) != id {
		t.Error("IdentityFromContext() did not return the attached identity")
	}
	if PrincipalFromContext(ctx) != "ops" {
		t.Errorf("PrincipalFromContext() = %q, want ops", PrincipalFromContext(ctx))
	}
}
