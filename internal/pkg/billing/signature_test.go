package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestPaymentSignature_KnownVector(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("S"))
	mac.Write([]byte("order_1|pay_1"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := PaymentSignature("order_1", "pay_1", "S"); got != want {
		t.Fatalf("PaymentSignature = %q, want %q", got, want)
	}
	if !VerifyPaymentSignature("order_1", "pay_1", want, "S") {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerifyPaymentSignature_SingleCharMutationRejected(t *testing.T) {
	sig := PaymentSignature("order_1", "pay_1", "S")

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if VerifyPaymentSignature("order_1", "pay_1", string(mutated), "S") {
			t.Fatalf("expected mutation at index %d to be rejected", i)
		}
	}
}

func TestVerifyPaymentSignature_Rejections(t *testing.T) {
	sig := PaymentSignature("order_1", "pay_1", "S")

	if VerifyPaymentSignature("order_1", "pay_1", "", "S") {
		t.Fatalf("expected empty signature to be rejected")
	}
	if VerifyPaymentSignature("order_1", "pay_1", sig, "") {
		t.Fatalf("expected empty secret to be rejected")
	}
	if VerifyPaymentSignature("order_1", "pay_1", "not-hex!", "S") {
		t.Fatalf("expected non-hex signature to be rejected")
	}
	if VerifyPaymentSignature("order_2", "pay_1", sig, "S") {
		t.Fatalf("expected signature for different order to be rejected")
	}
	// Uppercase hex of the valid mac is accepted.
	upper := make([]byte, len(sig))
	for i := range sig {
		c := sig[i]
		if c >= 'a' && c <= 'f' {
			c = c - 'a' + 'A'
		}
		upper[i] = c
	}
	if !VerifyPaymentSignature("order_1", "pay_1", string(upper), "S") {
		t.Fatalf("expected uppercase hex signature to verify")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"payment.captured"}`)
	secret := "webhook-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, valid, secret) {
		t.Fatalf("expected valid webhook signature to verify")
	}
	if VerifyWebhookSignature(payload, valid, "other-secret") {
		t.Fatalf("expected wrong secret to be rejected")
	}
	if VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid, secret) {
		t.Fatalf("expected tampered body to be rejected")
	}
}
