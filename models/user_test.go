package models

import "testing"

func TestHasAnyRight(t *testing.T) {
	user := User{Rights: "131001, 131002,131005"}

	if !user.HasAnyRight([]string{"131002"}) {
		t.Fatal("held right rejected")
	}
	if !user.HasAnyRight([]string{"131000", "131005"}) {
		t.Fatal("one held right out of many rejected")
	}
	if user.HasAnyRight([]string{"131000"}) {
		t.Fatal("unheld right accepted")
	}
	if user.HasAnyRight(nil) {
		t.Fatal("empty requirement must not pass for a plain user")
	}
}

func TestHasAnyRightAdminBypass(t *testing.T) {
	admin := User{IsAdmin: true}
	if !admin.HasAnyRight([]string{"131000"}) {
		t.Fatal("admins hold every right")
	}
}
