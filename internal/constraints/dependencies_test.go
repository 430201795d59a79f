package constraints

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type goListPackage struct {
	ImportPath string
	Imports    []string
}

const modulePrefix = "github.com/jacoelho/yamlpath/internal/"

func TestEnginePackagesDoNotImportCommandLinePackages(t *testing.T) {
	t.Parallel()

	engine := map[string]struct{}{
		modulePrefix + "ypath":     {},
		modulePrefix + "yamlnode":  {},
		modulePrefix + "search":    {},
		modulePrefix + "processor": {},
		modulePrefix + "eyaml":     {},
		modulePrefix + "jsonquery": {},
		modulePrefix + "document":  {},
	}
	commandLine := []string{"cli", "config", "console", "exit"}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := engine[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			for _, name := range commandLine {
				if imp == modulePrefix+name {
					violations = append(violations, pkg.ImportPath+" imports "+imp)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden engine->command line imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestGrammarAndDocumentPackagesStayIndependent(t *testing.T) {
	t.Parallel()

	forbidden := map[string][]string{
		modulePrefix + "ypath":    {modulePrefix + "yamlnode", modulePrefix + "processor", modulePrefix + "search"},
		modulePrefix + "yamlnode": {modulePrefix + "ypath", modulePrefix + "processor", modulePrefix + "search"},
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/ypath", "./internal/yamlnode") {
		for _, imp := range pkg.Imports {
			for _, banned := range forbidden[pkg.ImportPath] {
				if imp == banned {
					violations = append(violations, pkg.ImportPath+" imports "+imp)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports between grammar and document packages:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPurePackagesAvoidSideEffectImports(t *testing.T) {
	t.Parallel()

	purePackages := map[string]struct{}{
		modulePrefix + "ypath":     {},
		modulePrefix + "yamlnode":  {},
		modulePrefix + "search":    {},
		modulePrefix + "processor": {},
		modulePrefix + "jsonquery": {},
	}

	forbidden := map[string]struct{}{
		"os":           {},
		"os/exec":      {},
		"net/http":     {},
		"math/rand":    {},
		"math/rand/v2": {},
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := purePackages[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports forbidden package "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports in pure packages:\n%s", strings.Join(violations, "\n"))
	}
}

func goList(t *testing.T, patterns ...string) []goListPackage {
	t.Helper()

	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	cmd.Dir = repoRoot(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("go list failed: %v\nstderr:\n%s", err, stderr.String())
	}

	decoder := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var packages []goListPackage
	for decoder.More() {
		var pkg goListPackage
		if err := decoder.Decode(&pkg); err != nil {
			t.Fatalf("decode go list json: %v", err)
		}
		packages = append(packages, pkg)
	}

	return packages
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
