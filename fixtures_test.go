package varname_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/mirlang/varname"
	"github.com/mirlang/varname/internal/irtext"
)

// TestFixtures runs the query fixtures under testdata. Each archive holds
// an input.ir program, a queries file with one value name per line, the
// expected diagnostic output, and optionally an options file.
func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures found")
	}

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			runFixture(t, path)
		})
	}
}

func runFixture(t *testing.T, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	archive := txtar.Parse(data)

	files := make(map[string]string, len(archive.Files))
	for _, f := range archive.Files {
		files[f.Name] = string(f.Data)
	}
	for _, required := range []string{"input.ir", "queries", "expected"} {
		if _, ok := files[required]; !ok {
			t.Fatalf("fixture is missing %q", required)
		}
	}

	file, err := irtext.Parse(files["input.ir"])
	if err != nil {
		t.Fatalf("parsing input.ir: %v", err)
	}

	var opts varname.Options
	for _, line := range strings.Fields(files["options"]) {
		switch line {
		case "all-accessors":
			opts |= varname.InferSelfThroughAllAccessors
		default:
			t.Fatalf("unknown option %q", line)
		}
	}

	var sb strings.Builder
	first := true
	for _, name := range strings.Fields(files["queries"]) {
		v := file.Value(name)
		if v == nil {
			t.Fatalf("no value named %q in input.ir", name)
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		varname.Fprint(&sb, v, opts)
	}

	if got, want := sb.String(), files["expected"]; got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}
