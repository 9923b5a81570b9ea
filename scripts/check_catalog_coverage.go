//go:build tools
// +build tools

package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/asimihsan/manup/internal/text"
)

// getRequiredKeys scans keys.go for MessageKey constants
func getRequiredKeys(path string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var keys []string
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		typ, ok := spec.Type.(*ast.Ident)
		if !ok || typ.Name != "MessageKey" {
			return true
		}
		for _, v := range spec.Values {
			lit, ok := v.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			key, err := strconv.Unquote(lit.Value)
			if err == nil {
				keys = append(keys, key)
			}
		}
		return true
	})
	return keys, nil
}

// checkCatalog reports required keys missing from one catalog file and keys
// it carries that nothing uses
func checkCatalog(path string, required []string) (missing, unknown []string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	flat, err := text.FlattenCatalog(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	want := make(map[string]bool, len(required))
	for _, key := range required {
		want[key] = true
		if strings.TrimSpace(flat[key]) == "" {
			missing = append(missing, key)
		}
	}
	for key := range flat {
		if !want[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return missing, unknown, nil
}

func main() {
	required, err := getRequiredKeys("internal/text/keys.go")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting message keys: %v\n", err)
		os.Exit(1)
	}
	if len(required) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no MessageKey constants found")
		os.Exit(1)
	}

	catalogs, err := filepath.Glob("internal/text/i18n/*.json")
	if err != nil || len(catalogs) == 0 {
		fmt.Fprintf(os.Stderr, "Error finding catalogs: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, path := range catalogs {
		missing, unknown, err := checkCatalog(path, required)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking %s: %v\n", path, err)
			os.Exit(1)
		}
		if len(missing) > 0 {
			failed = true
			fmt.Fprintf(os.Stderr, "ERROR: %s is missing translations:\n", path)
			for _, key := range missing {
				fmt.Fprintf(os.Stderr, "  - %s\n", key)
			}
		}
		for _, key := range unknown {
			fmt.Fprintf(os.Stderr, "WARNING: %s has unused key %s\n", path, key)
		}
	}
	if failed {
		os.Exit(1)
	}

	fmt.Printf("SUCCESS: All %d catalogs translate all %d message keys.\n", len(catalogs), len(required))
}
