package crypto

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("service should be configured")
	}

	sealed, err := svc.EncryptString("IBAN DE89 3704 0044 0532 0130 00")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if strings.Contains(sealed, "IBAN") {
		t.Error("ciphertext leaks plaintext")
	}

	plain, err := svc.DecryptString(sealed)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if plain != "IBAN DE89 3704 0044 0532 0130 00" {
		t.Errorf("round trip mismatch: %q", plain)
	}
}

func TestUnconfiguredPassthrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key should leave service unconfigured")
	}
	out, err := svc.EncryptString("plain")
	if err != nil || out != "plain" {
		t.Errorf("unconfigured service should pass through, got %q, %v", out, err)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Error("short key should be rejected")
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	svc, _ := New(testKey)
	sealed, err := svc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Decrypt(sealed); err == nil {
		t.Error("tampered ciphertext should fail authentication")
	}
}
