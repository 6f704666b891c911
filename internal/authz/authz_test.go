package authz

import "testing"

func TestParseRoleRoundTrip(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleDonor, RoleRecipient, RoleAdmin} {
		if got := ParseRole(role.Label()); got != role {
			t.Errorf("ParseRole(%q) = %v, want %v", role.Label(), got, role)
		}
	}
	if got := ParseRole(" donor "); got != RoleDonor {
		t.Errorf("ParseRole with whitespace/case = %v, want RoleDonor", got)
	}
	if got := ParseRole("banker"); got != RoleUnspecified {
		t.Errorf("ParseRole unknown = %v, want RoleUnspecified", got)
	}
}

func TestIdentityAnonymous(t *testing.T) {
	t.Parallel()

	if !Anonymous.IsAnonymous() {
		t.Fatal("zero identity should be anonymous")
	}
	if (Identity{Subject: "  "}).IsAnonymous() != true {
		t.Fatal("whitespace subject should be anonymous")
	}
	if (Identity{Subject: "user-1", Role: RoleAdmin}).IsAdmin() != true {
		t.Fatal("admin identity not recognized")
	}
	if (Identity{Role: RoleAdmin}).IsAdmin() {
		t.Fatal("anonymous identity must not pass the admin check")
	}
}
