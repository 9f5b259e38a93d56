package identity

import "testing"

func TestHashAndCheckCredential(t *testing.T) {
	hash, err := HashCredential("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashCredential failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash must not equal the plaintext password")
	}

	if !CheckCredential(hash, "correct horse battery staple") {
		t.Error("Expected matching password to verify")
	}
	if CheckCredential(hash, "wrong password") {
		t.Error("Expected non-matching password to fail")
	}
	if CheckCredential("not-a-bcrypt-hash", "anything") {
		t.Error("Expected malformed hash to fail")
	}
}

func TestHashCredential_UniqueSalts(t *testing.T) {
	first, err := HashCredential("same password")
	if err != nil {
		t.Fatalf("HashCredential failed: %v", err)
	}
	second, err := HashCredential("same password")
	if err != nil {
		t.Fatalf("HashCredential failed: %v", err)
	}
	if first == second {
		t.Error("Expected distinct hashes for the same password")
	}
}
