package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var (
	litBinary     string
	litBinaryOnce sync.Once
	litBinaryErr  error
)

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// getLitBinary builds the lit binary once and returns its path.
func getLitBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI test in short mode")
	}
	litBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			litBinaryErr = os.ErrInvalid
			return
		}
		pkgDir := filepath.Dir(filename)

		tmpDir, err := os.MkdirTemp("", "lit-test-*")
		if err != nil {
			litBinaryErr = err
			return
		}
		litBinary = filepath.Join(tmpDir, "lit")

		cmd := exec.Command("go", "build", "-o", litBinary, ".")
		cmd.Dir = pkgDir
		if output, err := cmd.CombinedOutput(); err != nil {
			litBinaryErr = &buildError{output: string(output), err: err}
		}
	})
	if litBinaryErr != nil {
		t.Fatalf("failed to build lit: %v", litBinaryErr)
	}
	return litBinary
}

// runLit executes lit in dir and returns stdout and the exit code.
// XDG_CONFIG_HOME points at an empty directory so no global config applies.
func runLit(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getLitBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(dir, ".xdg"))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running lit %v: %v", args, err)
	}
	if code != 0 {
		t.Logf("lit %v stderr:\n%s", args, stderr.String())
	}
	return stdout.String(), code
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const exportA = `TY  - JOUR
TI  - Debugging block programs in kindergarten
AU  - Bers, Marina
PY  - 2019
DO  - 10.1000/abc
AB  - Children practiced debugging with block programming in kindergarten classrooms.
ER  - 
`

const exportB = `TY  - JOUR
TI  - Debugging block programs in kindergarten
AU  - Bers, Marina
PY  - 2019
DO  - 10.1000/ABC
ER  - 

TY  - CONF
TI  - Unplugged activities for preschool
AU  - Rojas, Ana
PY  - 2021
UR  - https://example.org/unplugged
AB  - Preschool children explored algorithms through unplugged activities.
ER  - 
`

// setupProject runs lit init in a fresh directory and seeds two exports.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if out, code := runLit(t, dir, "init"); code != ExitSuccess {
		t.Fatalf("init exit = %d, output: %s", code, out)
	}
	writeFile(t, filepath.Join(dir, "exports", "a.ris"), exportA)
	writeFile(t, filepath.Join(dir, "exports", "b.ris"), exportB)
	return dir
}

func TestCLI_MergeAndAnalyze(t *testing.T) {
	dir := setupProject(t)

	out, code := runLit(t, dir, "merge")
	if code != ExitSuccess {
		t.Fatalf("merge exit = %d, output: %s", code, out)
	}
	var merged struct {
		Stats struct {
			Records     int `json:"records"`
			AddedUnique int `json:"added_unique"`
			Duplicates  int `json:"duplicates_recorded"`
		} `json:"stats"`
		UniqueSize    int `json:"unique_size"`
		DuplicateSize int `json:"duplicate_size"`
	}
	if err := json.Unmarshal([]byte(out), &merged); err != nil {
		t.Fatalf("merge output is not JSON: %v\n%s", err, out)
	}
	if merged.Stats.Records != 3 || merged.Stats.AddedUnique != 2 || merged.Stats.Duplicates != 1 {
		t.Errorf("merge stats = %+v, want 3 records, 2 unique, 1 duplicate", merged.Stats)
	}
	if merged.UniqueSize != 2 || merged.DuplicateSize != 1 {
		t.Errorf("table sizes = %d/%d, want 2/1", merged.UniqueSize, merged.DuplicateSize)
	}

	out, code = runLit(t, dir, "analyze")
	if code != ExitSuccess {
		t.Fatalf("analyze exit = %d, output: %s", code, out)
	}
	var analyzed struct {
		Manifest struct {
			RunID   string   `json:"run_id"`
			Records int      `json:"records"`
			Files   []string `json:"files"`
		} `json:"manifest"`
		Graph string `json:"graph"`
	}
	if err := json.Unmarshal([]byte(out), &analyzed); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, out)
	}
	if analyzed.Manifest.Records != 2 || analyzed.Manifest.RunID == "" {
		t.Errorf("manifest = %+v, want 2 records and a run id", analyzed.Manifest)
	}
	for _, name := range []string{"term_frequencies.csv", "co_occurrences.json", "manifest.json", GraphFile, CytoscapeFile} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestCLI_TermsNormalize(t *testing.T) {
	dir := setupProject(t)

	out, code := runLit(t, dir, "terms", "normalize", "kindergarten", "no such term")
	if code != ExitSuccess {
		t.Fatalf("terms normalize exit = %d, output: %s", code, out)
	}
	var got []NormalizedTerm
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Canonical != "Early childhood education" || !got[0].Known {
		t.Errorf("kindergarten -> %+v, want Early childhood education", got[0])
	}
	if got[1].Canonical != "no such term" || got[1].Known {
		t.Errorf("unknown term -> %+v, want unchanged and unknown", got[1])
	}
}

func TestCLI_ExitCodes(t *testing.T) {
	t.Run("not in project", func(t *testing.T) {
		if _, code := runLit(t, t.TempDir(), "merge"); code != ExitConfigError {
			t.Errorf("exit = %d, want %d", code, ExitConfigError)
		}
	})

	t.Run("too few records to cluster", func(t *testing.T) {
		dir := setupProject(t)
		if _, code := runLit(t, dir, "merge"); code != ExitSuccess {
			t.Fatalf("merge exit = %d", code)
		}
		// Neither record has keywords
		if _, code := runLit(t, dir, "cluster"); code != ExitDegenerate {
			t.Errorf("exit = %d, want %d", code, ExitDegenerate)
		}
	})

	t.Run("corrupt export", func(t *testing.T) {
		dir := setupProject(t)
		writeFile(t, filepath.Join(dir, "exports", "c.ris"), "TY  - JOUR\nTI  - Never ends\n")
		if _, code := runLit(t, dir, "merge"); code != ExitDataError {
			t.Errorf("exit = %d, want %d", code, ExitDataError)
		}
		if _, err := os.Stat(filepath.Join(dir, "unique.ris")); !os.IsNotExist(err) {
			t.Errorf("unique table should not be written after a corrupt export, stat err = %v", err)
		}
	})

	t.Run("missing taxonomy", func(t *testing.T) {
		dir := setupProject(t)
		cmd := exec.Command(getLitBinary(t), "analyze")
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"XDG_CONFIG_HOME="+filepath.Join(dir, ".xdg"),
			"LIT_TAXONOMY_FILE="+filepath.Join(dir, "missing.yaml"))
		err := cmd.Run()
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != ExitConfigError {
			t.Errorf("err = %v, want exit %d", err, ExitConfigError)
		}
	})
}
