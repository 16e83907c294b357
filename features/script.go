package features

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ScriptExtractor delegates extraction to an external script, typically a
// Python program living in its own conda environment. The script is called as
//
//	<interpreter> <script> --wav_path=<file> --feature_save_path=<csv>
//
// and must write a CSV feature table to the save path.
type ScriptExtractor struct {
	Interpreter string // defaults to "python"
	Script      string
	Env         string // conda environment; empty runs the interpreter directly
	CondaPath   string // defaults to "conda"
}

// NewScriptExtractor returns an extractor for script run inside env.
func NewScriptExtractor(script, env string) *ScriptExtractor {
	return &ScriptExtractor{Interpreter: "python", Script: script, Env: env, CondaPath: "conda"}
}

// Command returns the argv used to extract path into savePath.
func (s *ScriptExtractor) Command(path, savePath string) []string {
	interpreter := s.Interpreter
	if interpreter == "" {
		interpreter = "python"
	}

	var argv []string
	if s.Env != "" {
		conda := s.CondaPath
		if conda == "" {
			conda = "conda"
		}
		argv = append(argv, conda, "run", "-n", s.Env)
	}
	return append(argv, interpreter, s.Script, "--wav_path="+path, "--feature_save_path="+savePath)
}

func (s *ScriptExtractor) Extract(ctx context.Context, path string) (*Table, error) {
	tmp, err := os.CreateTemp("", "features-*.csv")
	if err != nil {
		return nil, err
	}
	savePath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(savePath)

	argv := s.Command(path, savePath)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("feature script %s failed: %w\nstderr: %s", s.Script, err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(savePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("feature script %s: %w", s.Script, err)
	}
	return t, nil
}
