//go:build !darwin

package secrets

import "testing"

func TestKeychainHelpersAreInertOffMacOS(t *testing.T) {
	if err := EnsureKeychainAccess(); err != nil {
		t.Fatalf("EnsureKeychainAccess() = %v", err)
	}
	if err := UnlockKeychain(); err != nil {
		t.Fatalf("UnlockKeychain() = %v", err)
	}
	if CheckKeychainLocked() || IsKeychainLockedError("errSecInteractionNotAllowed") {
		t.Fatal("expected the keychain never to report locked")
	}
}
