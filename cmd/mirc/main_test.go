package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/regalloc"
)

func writeModuleFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const addOneModule = `{
	"name": "m",
	"functions": [{
		"name": "addOne",
		"params": ["i32"],
		"blocks": [{
			"id": 0,
			"instrs": [
				{"op": "const_int", "type": "i32", "int_imm": 1},
				{"op": "add", "type": "i32", "operands": [
					{"kind": "param", "param": 0},
					{"kind": "instr", "block": 0, "index": 0}
				]},
				{"op": "ret", "operands": [{"kind": "instr", "block": 0, "index": 1}]}
			]
		}]
	}]
}`

func TestDoMain_compileWritesAssemblyToStdout(t *testing.T) {
	path := writeModuleFile(t, addOneModule)

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", path}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "addOne:")
	require.Contains(t, stdout.String(), ".text")
	require.Empty(t, stderr.String())
}

func TestDoMain_compileWritesToOutputFileWhenGiven(t *testing.T) {
	path := writeModuleFile(t, addOneModule)
	outPath := filepath.Join(t.TempDir(), "out.s")

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", path, "-o", outPath}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Empty(t, stdout.String())

	contents, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "addOne:")
}

func TestDoMain_compileAcceptsGraphColoringStrategy(t *testing.T) {
	path := writeModuleFile(t, addOneModule)

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", path, "--ra", "graph-coloring"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "addOne:")
}

func TestDoMain_compileRejectsUnknownStrategy(t *testing.T) {
	path := writeModuleFile(t, addOneModule)

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", path, "--ra", "bogus"}, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unknown register allocation strategy")
}

func TestDoMain_compileRejectsUnknownTarget(t *testing.T) {
	path := writeModuleFile(t, addOneModule)

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", path, "--target", "bogus"}, &stdout, &stderr)

	require.Equal(t, 1, code)
}

func TestDoMain_compileRejectsMissingIRFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"compile", filepath.Join(t.TempDir(), "nope.json")}, &stdout, &stderr)
	require.Equal(t, 1, code)
}

func TestDoMain_targetsListsRegisteredNames(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"targets"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "aarch64\n")
}

func TestParseStrategy(t *testing.T) {
	ra, err := parseStrategy("")
	require.NoError(t, err)
	require.Equal(t, regalloc.LinearScan, ra)

	ra, err = parseStrategy("linear-scan")
	require.NoError(t, err)
	require.Equal(t, regalloc.LinearScan, ra)

	ra, err = parseStrategy("graph-coloring")
	require.NoError(t, err)
	require.Equal(t, regalloc.GraphColoring, ra)

	_, err = parseStrategy("bogus")
	require.Error(t, err)
}
