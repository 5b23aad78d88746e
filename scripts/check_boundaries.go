// Command check_boundaries enforces the hexagonal import rules of every
// service under contexts/. Run it from the repository root.
package main

import (
	"cmp"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const modulePath = "ballotbox"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerPolicy lists what an inner layer may depend on. Paths in allow are
// relative to the owning service unless they start with the module path.
type layerPolicy struct {
	allow              []string
	denyAdapters       bool
	denyInfrastructure bool
}

var policies = map[string]layerPolicy{
	"domain": {
		allow:              []string{"/domain"},
		denyAdapters:       true,
		denyInfrastructure: true,
	},
	"ports": {
		allow:              []string{"/domain", modulePath + "/contracts"},
		denyAdapters:       true,
		denyInfrastructure: true,
	},
	"application": {
		allow:              []string{"/application", "/domain", "/ports", modulePath + "/contracts"},
		denyAdapters:       true,
		denyInfrastructure: true,
	},
}

func main() {
	found, err := collectViolations("contexts")
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk contexts: %v\n", err)
		os.Exit(2)
	}
	if len(found) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	slices.SortFunc(found, func(a, b violation) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Import, b.Import),
		)
	})
	fmt.Printf("%d boundary violation(s):\n", len(found))
	for _, v := range found {
		fmt.Printf("  %s:%d %q: %s\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks contexts/<context>/<service>/<layer>/... and checks
// every non-test source file.
func collectViolations(root string) ([]violation, error) {
	var found []violation
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		slashed := filepath.ToSlash(path)
		segments := strings.SplitN(slashed, "/", 5)
		if len(segments) < 5 {
			return nil
		}
		service := strings.Join([]string{modulePath, segments[0], segments[1], segments[2]}, "/")
		found = append(found, validateFile(path, slashed, segments[3], service)...)
		return nil
	})
	return found, err
}

func validateFile(path string, normalizedPath string, layer string, modulePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	policy, guarded := policies[layer]
	var found []violation
	for _, spec := range file.Imports {
		importPath := strings.Trim(spec.Path.Value, `"`)
		report := func(rule string) {
			found = append(found, violation{
				File:   normalizedPath,
				Line:   fset.Position(spec.Pos()).Line,
				Import: importPath,
				Rule:   rule,
			})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, modulePrefix) {
			report("cross-module imports are forbidden")
		}
		if !guarded {
			continue
		}
		if policy.denyAdapters && strings.Contains(importPath, "/adapters/") {
			report(layer + " must not import adapters")
		}
		if policy.denyInfrastructure && isInfrastructure(importPath) {
			report(layer + " must not import runtime infrastructure")
		}
		if !isStdlib(importPath) && !policy.permits(importPath, modulePrefix) {
			report(layer + " import is outside explicit allowlist")
		}
	}
	return found
}

func (p layerPolicy) permits(importPath string, service string) bool {
	for _, allowed := range p.allow {
		if !strings.HasPrefix(allowed, modulePath) {
			allowed = service + allowed
		}
		if hasPrefix(importPath, allowed) {
			return true
		}
	}
	return false
}

func isInfrastructure(importPath string) bool {
	for _, dir := range []string{"/internal", "/cmd"} {
		if hasPrefix(importPath, modulePath+dir) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isStdlib treats any import whose first element has no dot as standard
// library, except this module's own packages.
func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
