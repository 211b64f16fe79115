package validator

import (
	"testing"
)

type sample struct {
	Email      string `json:"email" validate:"required,email"`
	Plan       string `json:"plan" validate:"required,paidplan"`
	AnyPlan    string `json:"anyPlan" validate:"omitempty,plan"`
	DeviceType string `json:"deviceType" validate:"omitempty,devicetype"`
	LicenseKey string `json:"licenseKey" validate:"omitempty,licensekey"`
}

func TestValidate(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		in        sample
		wantField string
		wantTag   string
	}{
		{name: "valid", in: sample{Email: "a@b.io", Plan: "pro", AnyPlan: "enterprise", DeviceType: "mac", LicenseKey: "QSEC-AAAA"}},
		{name: "missing email", in: sample{Plan: "pro"}, wantField: "email", wantTag: "required"},
		{name: "enterprise is not purchasable", in: sample{Email: "a@b.io", Plan: "enterprise"}, wantField: "plan", wantTag: "paidplan"},
		{name: "unknown plan", in: sample{Email: "a@b.io", Plan: "pro", AnyPlan: "gold"}, wantField: "anyPlan", wantTag: "plan"},
		{name: "bad device type", in: sample{Email: "a@b.io", Plan: "pro", DeviceType: "ios"}, wantField: "deviceType", wantTag: "devicetype"},
		{name: "key with space", in: sample{Email: "a@b.io", Plan: "pro", LicenseKey: "QSEC AAAA"}, wantField: "licenseKey", wantTag: "licensekey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(tt.in)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate() = %+v, want no errors", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate() = %+v, want one error", errs)
			}
			if errs[0].Field != tt.wantField || errs[0].Tag != tt.wantTag {
				t.Errorf("error = %+v, want %s/%s", errs[0], tt.wantField, tt.wantTag)
			}
			if errs[0].Message == "" {
				t.Error("missing message")
			}
		})
	}
}
