//go:build darwin

package secrets

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/term"
)

func loginKeychainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, "Library", "Keychains", "login.keychain-db")
}

// IsKeychainLockedError reports whether errStr comes from a locked keychain.
func IsKeychainLockedError(errStr string) bool {
	return isLockedKeychainMessage(errStr)
}

// CheckKeychainLocked reports whether the login keychain is locked.
func CheckKeychainLocked() bool {
	return exec.Command("security", "show-keychain-info", loginKeychainPath()).Run() != nil
}

// UnlockKeychain prompts for the login password through the security tool.
func UnlockKeychain() error {
	cmd := exec.Command("security", "unlock-keychain", loginKeychainPath())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unlocking keychain: %w", err)
	}
	return nil
}

// EnsureKeychainAccess unlocks the login keychain when it is locked and a
// terminal is available to ask for the password.
func EnsureKeychainAccess() error {
	if !CheckKeychainLocked() {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("the login keychain is locked; run: security unlock-keychain %s", loginKeychainPath())
	}
	return UnlockKeychain()
}
