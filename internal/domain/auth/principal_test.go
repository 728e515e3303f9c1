package auth

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":  RoleAdministrator,
		" Agent": RoleAgent,
		"user":   RoleAgent,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q): want=%s got=%s err=%v", in, want, got, err)
		}
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatalf("ParseRole(root): expected error")
	}
}

func TestOwnerID(t *testing.T) {
	if Administrator(3).OwnerID() != nil {
		t.Fatalf("administrator should write under a null owner")
	}
	owner := Agent(11, 3).OwnerID()
	if owner == nil || *owner != 11 {
		t.Fatalf("agent owner: want=11 got=%v", owner)
	}
}
