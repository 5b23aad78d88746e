package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testModulePrefix = "ballotbox/contexts/elections/voting-core"

func writeSource(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.go")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestDomainMayNotImportAdapters(t *testing.T) {
	path := writeSource(t, `package entities

import (
	"time"

	_ "ballotbox/contexts/elections/voting-core/adapters/memory"
)

var _ time.Time
`)
	got := validateFile(path, "domain/entities/x.go", "domain", testModulePrefix)
	if len(got) == 0 {
		t.Fatalf("expected a violation for adapter import")
	}
	for _, v := range got {
		if v.Line != 6 {
			t.Fatalf("expected violation on line 6, got %+v", v)
		}
	}
}

func TestApplicationMayImportContracts(t *testing.T) {
	path := writeSource(t, `package commands

import (
	_ "ballotbox/contexts/elections/voting-core/ports"
	_ "ballotbox/contracts/events/v1"
	_ "context"
)
`)
	if got := validateFile(path, "application/commands/x.go", "application", testModulePrefix); len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestApplicationMayNotImportPlatform(t *testing.T) {
	path := writeSource(t, `package commands

import _ "ballotbox/internal/platform/db"
`)
	got := validateFile(path, "application/commands/x.go", "application", testModulePrefix)
	if len(got) != 2 {
		t.Fatalf("expected infrastructure and allowlist violations, got %+v", got)
	}
}

func TestCrossContextImportIsReported(t *testing.T) {
	path := writeSource(t, `package memory

import _ "ballotbox/contexts/identity/accounts/ports"
`)
	got := validateFile(path, "adapters/memory/x.go", "adapters", testModulePrefix)
	if len(got) != 1 || got[0].Rule != "cross-module imports are forbidden" {
		t.Fatalf("expected one cross-module violation, got %+v", got)
	}
}

func TestThirdPartyImportsAreNotStdlib(t *testing.T) {
	cases := map[string]bool{
		"context":             true,
		"net/http":            true,
		"gorm.io/gorm":        false,
		"ballotbox/contracts": false,
	}
	for path, want := range cases {
		if got := isStdlib(path); got != want {
			t.Fatalf("isStdlib(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestPortsMayNotImportInfrastructure(t *testing.T) {
	path := writeSource(t, `package ports

import (
	_ "ballotbox/contexts/elections/voting-core/domain/entities"
	_ "ballotbox/contracts/events/v1"
	_ "ballotbox/internal/platform/messaging"
)
`)
	got := validateFile(path, "ports/ports.go", "ports", testModulePrefix)
	if len(got) != 2 {
		t.Fatalf("expected two violations for the platform import, got %+v", got)
	}
	for _, v := range got {
		if v.Line != 6 || v.Import != "ballotbox/internal/platform/messaging" {
			t.Fatalf("unexpected violation %+v", v)
		}
	}
}

func TestCollectViolationsSkipsTestsAndServiceRoot(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"contexts/elections/voting-core/module.go":                  "package votingcore\n\nimport _ \"ballotbox/internal/platform/db\"\n",
		"contexts/elections/voting-core/domain/rules/rules_test.go": "package rules\n\nimport _ \"ballotbox/contexts/elections/voting-core/adapters/memory\"\n",
		"contexts/elections/voting-core/domain/rules/rules.go":      "package rules\n\nimport _ \"gorm.io/gorm\"\n",
	}
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(root)

	got, err := collectViolations("contexts")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the domain allowlist violation, got %+v", got)
	}
	if got[0].File != "contexts/elections/voting-core/domain/rules/rules.go" || got[0].Rule != "domain import is outside explicit allowlist" {
		t.Fatalf("unexpected violation %+v", got[0])
	}
}
