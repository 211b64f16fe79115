package payment

import (
	"testing"
)

func TestSign_KnownVector(t *testing.T) {
	// echo -n "order_123|pay_456" | openssl dgst -sha256 -hmac secret
	const want = "18bfc0baafae8f6367711ee362f2201aaa3654274683100e5367bb9a2bd29cbe"
	if got := Sign("secret", "order_123", "pay_456"); got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestVerifySignature_Symmetry(t *testing.T) {
	const (
		secret    = "rzp_test_secret"
		orderID   = "order_Nf8aQ1b2C3d4E5"
		paymentID = "pay_Nf8bR6s7T8u9V0"
	)
	sig := Sign(secret, orderID, paymentID)

	if !VerifySignature(secret, orderID, paymentID, sig) {
		t.Fatal("VerifySignature() rejected a correct signature")
	}

	mutate := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'a' {
			b[i] = 'b'
		} else {
			b[i] = 'a'
		}
		return string(b)
	}

	for i := range orderID {
		if VerifySignature(secret, mutate(orderID, i), paymentID, sig) {
			t.Fatalf("accepted orderID mutated at %d", i)
		}
	}
	for i := range paymentID {
		if VerifySignature(secret, orderID, mutate(paymentID, i), sig) {
			t.Fatalf("accepted paymentID mutated at %d", i)
		}
	}
	for i := range sig {
		if VerifySignature(secret, orderID, paymentID, mutate(sig, i)) {
			t.Fatalf("accepted signature mutated at %d", i)
		}
	}
}

func TestVerifySignature_Rejects(t *testing.T) {
	sig := Sign("secret", "o", "p")

	tests := []struct {
		name      string
		secret    string
		signature string
	}{
		{"wrong secret", "other", sig},
		{"empty secret", "", sig},
		{"empty signature", "secret", ""},
		{"uppercase hex", "secret", upper(sig)},
		{"truncated", "secret", sig[:63]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.secret, "o", "p", tt.signature) {
				t.Error("VerifySignature() = true, want false")
			}
		})
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 32
		}
	}
	return string(b)
}
