package sox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

// ErrSoxNotFound is returned by CheckSoxInstalled when the binary cannot be run.
var ErrSoxNotFound = errors.New("sox not found or not executable")

// ErrNotStarted means the sox process was never started, so its output file
// was not touched.
var ErrNotStarted = errors.New("failed to start sox")

// ExecError describes a SoX process that exited unsuccessfully.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("sox conversion failed: %v", e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// Converter handles one-shot audio format conversion using SoX
type Converter struct {
	Input   AudioFormat
	Output  AudioFormat
	Options ConversionOptions

	// Breaker, when set, guards every conversion.
	Breaker *CircuitBreaker
}

// NewConverter creates a new Converter with the specified input and output formats
func NewConverter(input, output AudioFormat) *Converter {
	return &Converter{
		Input:   input,
		Output:  output,
		Options: DefaultOptions(),
	}
}

// WithOptions sets custom conversion options
func (c *Converter) WithOptions(opts ConversionOptions) *Converter {
	c.Options = opts
	return c
}

// WithCircuitBreaker routes conversions through cb
func (c *Converter) WithCircuitBreaker(cb *CircuitBreaker) *Converter {
	c.Breaker = cb
	return c
}

// Convert streams input through SoX and writes the converted audio to output.
func (c *Converter) Convert(ctx context.Context, input io.Reader, output io.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}
	return c.guard(func() error {
		return c.run(ctx, c.BuildArgs("-", "-"), input, output)
	})
}

// ConvertFile converts audio from an input file to an output file
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) error {
	if err := c.validate(); err != nil {
		return err
	}
	return c.guard(func() error {
		return c.run(ctx, c.BuildArgs(inputPath, outputPath), nil, nil)
	})
}

// BuildArgs constructs the complete SoX argument vector for one conversion.
// Paths are passed as separate arguments, never through a shell.
func (c *Converter) BuildArgs(inputPath, outputPath string) []string {
	args := c.Options.buildGlobalArgs()
	args = append(args, c.Input.buildArgs(true)...)
	args = append(args, inputPath)
	args = append(args, c.Output.buildArgs(false)...)
	args = append(args, outputPath)
	return append(args, c.Options.Effects...)
}

func (c *Converter) validate() error {
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}
	return nil
}

func (c *Converter) guard(fn func() error) error {
	if c.Breaker == nil {
		return fn()
	}
	return c.Breaker.Call(fn)
}

func (c *Converter) run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if c.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Options.binary(), args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if c.Options.Verbose {
		log.Printf("sox %s", strings.Join(args, " "))
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	if err := cmd.Start(); err != nil {
		return &ExecError{Args: args, Err: fmt.Errorf("%w: %w", ErrNotStarted, err)}
	}

	pid := cmd.Process.Pid
	GetMonitor().TrackProcess(pid)
	defer GetMonitor().UntrackProcess(pid)

	if err := cmd.Wait(); err != nil {
		GetMonitor().RecordFailure()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return &ExecError{Args: args, Stderr: stderr.String(), Err: err}
	}

	return nil
}

// CheckSoxInstalled verifies that SoX is installed and accessible
func CheckSoxInstalled(ctx context.Context, soxPath string) error {
	if soxPath == "" {
		soxPath = "sox"
	}

	cmd := exec.CommandContext(ctx, soxPath, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSoxNotFound, soxPath, err)
	}

	return nil
}
