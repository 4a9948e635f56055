package utils

import "testing"

func TestHashBodySHA256(t *testing.T) {
	if got := HashBodySHA256(nil); got != EmptyBodyHash {
		t.Errorf("HashBodySHA256(nil) = %s", got)
	}
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashBodySHA256([]byte("abc")); got != want {
		t.Errorf("HashBodySHA256(abc) = %s, want %s", got, want)
	}
}

func TestSignRequest(t *testing.T) {
	sig := SignRequest("secret", "DELETE", "/api/v1/photos/owner/shelter/2", 1700000000, nil)
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64", len(sig))
	}
	if sig != SignRequest("secret", "DELETE", "/api/v1/photos/owner/shelter/2", 1700000000, nil) {
		t.Error("signature is not deterministic")
	}

	tampered := []string{
		SignRequest("other", "DELETE", "/api/v1/photos/owner/shelter/2", 1700000000, nil),
		SignRequest("secret", "GET", "/api/v1/photos/owner/shelter/2", 1700000000, nil),
		SignRequest("secret", "DELETE", "/api/v1/photos/owner/shelter/3", 1700000000, nil),
		SignRequest("secret", "DELETE", "/api/v1/photos/owner/shelter/2", 1700000001, nil),
	}
	for i, other := range tampered {
		if SecureCompare(sig, other) {
			t.Errorf("tampered signature %d matched", i)
		}
	}
}

func TestAbs(t *testing.T) {
	if Abs(-5) != 5 || Abs(5) != 5 || Abs(0) != 0 {
		t.Error("Abs")
	}
}
