// Command mkapps packages a directory of compiled riscv64 application
// ELF binaries into a Go source file that embeds them as an apps.Bundle
//, the idiomatic-Go replacement for the
// original's hand-built _num_app/_app_names offset table: each app
// becomes a go:embed'd []byte and the generated source is gofmt/import
// organized via golang.org/x/tools/imports, the same host-tooling role
// cmd/chentry plays for ELF entry-point patching.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/tools/imports"
)

var tmpl = template.Must(template.New("bundle").Parse(`// Code generated by mkapps. DO NOT EDIT.

package {{.Package}}

import (
	_ "embed"

	"github.com/achilleasa/riscv-sv39-kernel/apps"
)

{{range.Apps}}
//go:embed {{.File}}
var {{.Var}} []byte
{{end}}

// Bundle is the kernel's embedded application table.
var Bundle = apps.New(
	[]string{ {{range.Apps}}{{printf "%q".Name}}, {{end}} },
	[][]byte{ {{range.Apps}}{{.Var}}, {{end}} },
)
`))

type app struct {
	Name string // NFC-normalized app name used at the shell prompt
	File string // source file relative to the output directory
	Var  string // generated Go variable name
}

type bundleData struct {
	Package string
	Apps    []app
}

// collectApps scans dir for regular files and returns them sorted by
// name, each carrying its NFC-normalized app name so names compare
// consistently once packed into the embedded app-name table.
func collectApps(dir string) ([]app, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var apps []app
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		apps = append(apps, app{
			Name: norm.NFC.String(e.Name()),
			File: e.Name(),
		})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	for i := range apps {
		apps[i].Var = fmt.Sprintf("app%d", i)
	}
	return apps, nil
}

func main() {
	appDir := flag.String("apps", "", "directory of compiled app ELF binaries")
	pkg := flag.String("package", "appbundle", "package name for the generated file")
	out := flag.String("out", "", "output.go file path")
	flag.Parse()

	if *appDir == "" || *out == "" {
		log.Fatal("usage: mkapps -apps <dir> -out <file.go> [-package name]")
	}

	apps, err := collectApps(*appDir)
	if err != nil {
		log.Fatal(err)
	}
	if len(apps) == 0 {
		log.Fatalf("no application binaries found in %s", *appDir)
	}

	var raw strings.Builder
	if err := tmpl.Execute(&raw, bundleData{Package: *pkg, Apps: apps}); err != nil {
		log.Fatal(err)
	}

	formatted, err := imports.Process(*out, []byte(raw.String()), nil)
	if err != nil {
		log.Fatalf("formatting generated bundle: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, formatted, 0o644); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("wrote %s with %d apps\n", *out, len(apps))
}
