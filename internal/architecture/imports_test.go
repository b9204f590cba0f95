package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestImportBoundaries(t *testing.T) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}

	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		layer := layerFor(rel)
		if layer == "" {
			return nil
		}
		disallowed := disallowedImports(modulePath, layer)
		if len(disallowed) == 0 {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range disallowed {
				if strings.HasPrefix(imp, bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// layers lists the internal layers from the bottom up. A layer may import
// anything below it and nothing above it.
var layers = []struct {
	name   string
	prefix string
}{
	{"platform", "internal/platform/"},
	{"domain", "internal/domain/"},
	{"modules", "internal/modules/"},
	{"observability", "internal/observability/"},
	{"clients", "internal/clients/"},
	{"data", "internal/data/"},
	{"services", "internal/services/"},
	{"http", "internal/http/"},
	{"app", "internal/app/"},
}

func layerFor(rel string) string {
	for _, l := range layers {
		if strings.HasPrefix(rel, l.prefix) {
			return l.name
		}
	}
	return ""
}

// disallowedImports returns the import prefixes above layer.
func disallowedImports(modulePath string, layer string) []string {
	var out []string
	above := false
	for _, l := range layers {
		if above {
			out = append(out, modulePath+"/"+strings.TrimSuffix(l.prefix, "/"))
		}
		if l.name == layer {
			above = true
		}
	}
	return out
}

func TestDisallowedImportsOrdering(t *testing.T) {
	got := disallowedImports("m", "services")
	want := []string{"m/internal/http", "m/internal/app"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("disallowedImports(services)=%v, want %v", got, want)
	}
	if got := disallowedImports("m", "app"); len(got) != 0 {
		t.Fatalf("app should have no restrictions, got %v", got)
	}
	if got := layerFor("internal/http/handlers/quiz.go"); got != "http" {
		t.Fatalf("layerFor handlers=%q", got)
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
