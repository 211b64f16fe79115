package device

import "testing"

func TestType_Valid(t *testing.T) {
	for _, typ := range []Type{TypeWindows, TypeMac, TypeLinux, TypeAndroid} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	for _, typ := range []Type{"", "ios", "MAC"} {
		if typ.Valid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}
