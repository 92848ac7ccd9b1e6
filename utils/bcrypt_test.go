package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "s3cret" {
		t.Fatal("password must not be stored in clear")
	}
	if !ComparePassword(hashed, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if ComparePassword(hashed, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
