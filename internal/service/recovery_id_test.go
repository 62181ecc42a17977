package service

import (
	"regexp"
	"testing"
)

var recoveryIDPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{3}$`)

func TestGenerateRecoveryIDFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		id, err := GenerateRecoveryID()
		if err != nil {
			t.Fatalf("generate recovery id failed: %v", err)
		}
		if !recoveryIDPattern.MatchString(id) {
			t.Fatalf("unexpected recovery id format: %q", id)
		}
	}
}
