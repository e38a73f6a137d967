// Package clitest runs the testdata/script files of a tool against a freshly
// built binary.
package clitest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// RunScripts builds the main package in the working directory as name and
// runs testdata/script/*.txt with it first on PATH.
func RunScripts(t *testing.T, name string) {
	t.Helper()

	bin := filepath.Join(t.TempDir(), name)
	if out, err := exec.Command("go", "build", "-o", bin).CombinedOutput(); err != nil {
		t.Fatalf("go build %s: %v\n%s", name, err, out)
	}

	engine := &script.Engine{
		Cmds:  scripttest.DefaultCmds(),
		Conds: scripttest.DefaultConds(),
	}
	env := append(os.Environ(), "PATH="+filepath.Dir(bin)+string(os.PathListSeparator)+os.Getenv("PATH"))

	scripttest.Test(t, context.Background(), engine, env, filepath.Join("testdata", "script", "*.txt"))
}
