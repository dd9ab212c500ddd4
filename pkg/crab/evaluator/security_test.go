package evaluator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckPathAccess(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "secret")
	if err := os.Mkdir(secret, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		policy  *SecurityPolicy
		path    string
		op      string
		allowed bool
	}{
		{"nil policy", nil, filepath.Join(secret, "a"), "read", true},
		{"no read", &SecurityPolicy{NoRead: true}, filepath.Join(dir, "a"), "read", false},
		{"no read allows write", &SecurityPolicy{NoRead: true}, filepath.Join(dir, "a"), "write", true},
		{"restricted read", &SecurityPolicy{RestrictRead: []string{secret}}, filepath.Join(secret, "a"), "read", false},
		{"restricted dir itself", &SecurityPolicy{RestrictRead: []string{secret}}, secret, "read", false},
		{"sibling prefix", &SecurityPolicy{RestrictRead: []string{secret}}, secret + "s", "read", true},
		{"no write", &SecurityPolicy{NoWrite: true}, filepath.Join(dir, "a"), "write", false},
		{"restricted write", &SecurityPolicy{RestrictWrite: []string{secret}}, filepath.Join(secret, "new"), "write", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.CheckPathAccess(tt.path, tt.op)
			if tt.allowed && err != nil {
				t.Errorf("Expected access, got %v", err)
			}
			if !tt.allowed && err == nil {
				t.Error("Expected access to be denied")
			}
		})
	}
}
