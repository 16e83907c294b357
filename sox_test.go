package sox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SoxTestSuite holds the tests that need a real sox binary
type SoxTestSuite struct {
	suite.Suite
	tmpDir string
}

// SetupSuite runs once before all tests
func (s *SoxTestSuite) SetupSuite() {
	if err := CheckSoxInstalled(context.Background(), ""); err != nil {
		s.T().Skipf("SoX not installed, skipping tests: %v", err)
	}
}

// SetupTest runs before each test
func (s *SoxTestSuite) SetupTest() {
	s.tmpDir = s.T().TempDir()
	GetMonitor().Reset()
}

func TestConverterSuite(t *testing.T) {
	suite.Run(t, new(SoxTestSuite))
}

// generatePCMData generates a 16-bit mono ramp
func generatePCMData(sampleRate, durationMs int) []byte {
	numSamples := (sampleRate * durationMs) / 1000
	buffer := make([]byte, numSamples*2)
	for i := 0; i < numSamples; i++ {
		value := int16((i % 1000) * 32)
		buffer[i*2] = byte(value & 0xFF)
		buffer[i*2+1] = byte((value >> 8) & 0xFF)
	}
	return buffer
}

var pcmRaw16kMono = AudioFormat{
	Type:       TYPE_RAW,
	Encoding:   SIGNED_INTEGER,
	SampleRate: 16000,
	Channels:   1,
	BitDepth:   16,
}

// writeWAV renders PCM through sox into a WAV file at path
func (s *SoxTestSuite) writeWAV(path string, durationMs int) {
	conv := NewConverter(pcmRaw16kMono, AudioFormat{Type: TYPE_WAV})
	err := conv.Convert(context.Background(), bytes.NewReader(generatePCMData(16000, durationMs)), mustCreate(s.T(), path))
	require.NoError(s.T(), err)
}

func mustCreate(t *testing.T, path string) *os.File {
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func (s *SoxTestSuite) TestConvert_BytesToBytes() {
	conv := NewConverter(pcmRaw16kMono, WAV_8K_MONO_PCM16)
	out := &bytes.Buffer{}

	err := conv.Convert(context.Background(), bytes.NewReader(generatePCMData(16000, 500)), out)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), out.Len(), 44, "Output should carry a WAV header and samples")
	assert.Equal(s.T(), "RIFF", string(out.Bytes()[:4]))
}

func (s *SoxTestSuite) TestConvertFile_GSMRoundTrip() {
	wavPath := filepath.Join(s.tmpDir, "in.wav")
	gsmPath := filepath.Join(s.tmpDir, "in.wav.gsm")
	outPath := filepath.Join(s.tmpDir, "out.wav")
	s.writeWAV(wavPath, 1000)

	enc := NewConverter(WAV_AUTO, GSM_8K_MONO)
	enc.Options.Effects = []string{"lowpass", "4000"}
	require.NoError(s.T(), enc.ConvertFile(context.Background(), wavPath, gsmPath))

	dec := NewConverter(WAV_AUTO, WAV_8K_MONO_PCM16)
	require.NoError(s.T(), dec.ConvertFile(context.Background(), gsmPath, outPath))

	info, err := os.Stat(outPath)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), info.Size(), int64(44))

	stats := GetMonitor().GetStats()
	assert.Equal(s.T(), int64(2), stats.TotalConversions)
	assert.Equal(s.T(), int64(0), stats.FailedConversions)
	assert.Equal(s.T(), 0, stats.ActiveProcesses)
}

func (s *SoxTestSuite) TestConvertFile_InputNotFound() {
	conv := NewConverter(WAV_AUTO, WAV_8K_MONO_PCM16)
	err := conv.ConvertFile(context.Background(), filepath.Join(s.tmpDir, "missing.wav"), filepath.Join(s.tmpDir, "out.wav"))
	require.Error(s.T(), err)

	var execErr *ExecError
	require.ErrorAs(s.T(), err, &execErr)
	assert.NotEmpty(s.T(), execErr.Stderr)
	assert.Equal(s.T(), int64(1), GetMonitor().GetStats().FailedConversions)
}

func (s *SoxTestSuite) TestConvert_ContextCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := NewConverter(pcmRaw16kMono, WAV_8K_MONO_PCM16)
	err := conv.Convert(ctx, bytes.NewReader(generatePCMData(16000, 100)), &bytes.Buffer{})
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, context.Canceled)
}

func (s *SoxTestSuite) TestConvert_BreakerOpensAfterFailures() {
	cb := NewCircuitBreakerWithConfig(2, 0)
	conv := NewConverter(WAV_AUTO, WAV_8K_MONO_PCM16).WithCircuitBreaker(cb)
	missing := filepath.Join(s.tmpDir, "missing.wav")
	out := filepath.Join(s.tmpDir, "out.wav")

	for i := 0; i < 2; i++ {
		err := conv.ConvertFile(context.Background(), missing, out)
		require.Error(s.T(), err)
		assert.NotErrorIs(s.T(), err, ErrCircuitOpen)
	}

	err := conv.ConvertFile(context.Background(), missing, out)
	assert.ErrorIs(s.T(), err, ErrCircuitOpen)
	assert.Equal(s.T(), int64(2), GetMonitor().GetStats().TotalConversions, "open breaker must not start sox")
}

func TestBuildArgs_EncodeCommand(t *testing.T) {
	conv := NewConverter(WAV_AUTO, GSM_8K_MONO)
	conv.Options.Normalize = true
	conv.Options.Effects = []string{"lowpass", "4000"}

	args := conv.BuildArgs("/in/a b.wav", "/out/a b.wav.gsm")

	assert.Equal(t, []string{
		"-q", "--norm",
		"/in/a b.wav",
		"-t", "gsm", "-c", "1", "-r", "8000",
		"/out/a b.wav.gsm",
		"lowpass", "4000",
	}, args)
}

func TestBuildArgs_Verbose(t *testing.T) {
	conv := NewConverter(WAV_AUTO, WAV_8K_MONO_PCM16)
	conv.Options.Verbose = true

	args := conv.BuildArgs("x.gsm", "x.wav")

	assert.Equal(t, []string{
		"-V",
		"x.gsm",
		"-t", "wav", "-e", "signed-integer", "-b", "16", "-r", "8000",
		"x.wav",
	}, args)
}

func TestBuildArgs_PipeMode(t *testing.T) {
	conv := NewConverter(AudioFormat{IgnoreLength: true}, RAW_F32_MONO(22050))

	args := conv.BuildArgs("-", "-")

	assert.Equal(t, []string{
		"-q",
		"--ignore-length", "-",
		"-t", "raw", "-e", "floating-point", "-b", "32", "--endian", "little", "-c", "1", "-r", "22050",
		"-",
	}, args)
}

func TestAudioFormat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		format  AudioFormat
		wantErr bool
	}{
		{name: "auto", format: WAV_AUTO},
		{name: "gsm", format: GSM_8K_MONO},
		{name: "pcm16 wav", format: WAV_8K_MONO_PCM16},
		{name: "raw float", format: RAW_F32_MONO(16000)},
		{name: "raw without encoding", format: AudioFormat{Type: TYPE_RAW, SampleRate: 8000}, wantErr: true},
		{name: "raw without rate", format: AudioFormat{Type: TYPE_RAW, Encoding: SIGNED_INTEGER}, wantErr: true},
		{name: "bad endian", format: AudioFormat{Endian: "middle"}, wantErr: true},
		{name: "negative channels", format: AudioFormat{Channels: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConvertFile_InvalidFormatDoesNotRun(t *testing.T) {
	GetMonitor().Reset()
	conv := NewConverter(AudioFormat{Type: TYPE_RAW}, WAV_8K_MONO_PCM16)
	conv.Options.SoxPath = filepath.Join(t.TempDir(), "no-such-sox")

	err := conv.ConvertFile(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, int64(0), GetMonitor().GetStats().TotalConversions)
}

func TestConvertFile_MissingBinary(t *testing.T) {
	conv := NewConverter(WAV_AUTO, WAV_8K_MONO_PCM16)
	conv.Options.SoxPath = filepath.Join(t.TempDir(), "no-such-sox")

	err := conv.ConvertFile(context.Background(), "a.wav", "b.wav")
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Contains(t, err.Error(), "failed to start sox")
}

func TestCheckSoxInstalled_Missing(t *testing.T) {
	err := CheckSoxInstalled(context.Background(), filepath.Join(t.TempDir(), "no-such-sox"))
	assert.ErrorIs(t, err, ErrSoxNotFound)
}

func TestCircuitBreaker_States(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	cb := NewCircuitBreakerWithConfig(3, time.Minute)
	fail := errors.New("boom")

	for i := 0; i < 2; i++ {
		assert.Equal(t, fail, cb.Call(func() error { return fail }))
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 2, cb.Failures())

	// a success clears the run of failures
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, 0, cb.Failures())

	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return fail })
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	// after the reset timeout a single probe is let through
	now = now.Add(2 * time.Minute)
	_ = cb.Call(func() error { return fail })
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens the breaker")

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_NoResetTimeoutStaysOpen(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(1, 0)
	_ = cb.Call(func() error { return errors.New("boom") })

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Call(func() error { return nil }))
}

func TestCircuitBreaker_DisabledNeverOpens(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(0, 0)
	for i := 0; i < 10; i++ {
		_ = cb.Call(func() error { return errors.New("boom") })
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestResourceMonitor_Stats(t *testing.T) {
	m := &ResourceMonitor{activeProcesses: make(map[int]time.Time)}
	assert.Equal(t, 100.0, m.GetStats().SuccessRate)

	m.TrackProcess(10)
	m.TrackProcess(11)
	assert.Equal(t, 2, m.GetStats().ActiveProcesses)

	m.UntrackProcess(10)
	m.UntrackProcess(11)
	m.RecordFailure()

	stats := m.GetStats()
	assert.Equal(t, 0, stats.ActiveProcesses)
	assert.Equal(t, int64(2), stats.TotalConversions)
	assert.Equal(t, int64(1), stats.FailedConversions)
	assert.InDelta(t, 50.0, stats.SuccessRate, 1e-9)
}
