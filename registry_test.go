package formula

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesSlotCount(t *testing.T) {
	_, err := New(0)
	require.NotNil(t, err)
	_, err = New(-3)
	require.NotNil(t, err)
	r, err := New(1)
	require.Nil(t, err)
	require.Equal(t, 1, r.Slots())
	r.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	r, err := New(2)
	require.Nil(t, err)
	r.Close()
	r.Close()
	require.Equal(t, 0, r.Slots())
}

func TestParseSlotOutOfRange(t *testing.T) {
	r, err := New(2)
	require.Nil(t, err)
	defer r.Close()
	require.NotNil(t, r.Parse(0, "1", nil))
	require.NotNil(t, r.Parse(3, "1", nil))
	require.Nil(t, r.Parse(2, "1", nil))
}

func TestEvaluateMisusePanics(t *testing.T) {
	r, err := New(1)
	require.Nil(t, err)
	defer r.Close()
	require.Panics(t, func() { r.Evaluate(2, nil) })
	require.Panics(t, func() { r.Evaluate(1, nil) }) // never parsed
}

func TestFailedParseLeavesSlotUnchanged(t *testing.T) {
	r, err := New(1)
	require.Nil(t, err)
	defer r.Close()
	require.Nil(t, r.Parse(1, "x+1", []string{"x"}))
	require.NotNil(t, r.Parse(1, "x+", []string{"x"}))
	require.Equal(t, 4.0, r.Evaluate(1, []float64{3}))
	require.Equal(t, "x+1", r.Code(1).Source())
}

func TestCheckDoesNotMutate(t *testing.T) {
	r, err := New(1)
	require.Nil(t, err)
	defer r.Close()
	require.Nil(t, r.Check("x*2", []string{"x"}))
	require.Nil(t, r.Code(1))
	require.Panics(t, func() { r.Evaluate(1, []float64{1}) })
}

func TestSetMu0AffectsLaterParsesOnly(t *testing.T) {
	r, err := New(2)
	require.Nil(t, err)
	defer r.Close()
	require.Nil(t, r.Parse(1, "mu", nil))
	r.SetMu0(12.5)
	require.Equal(t, 12.5, r.Mu0())
	require.Nil(t, r.Parse(2, "mu", nil))
	require.Equal(t, 1.0, r.Evaluate(1, nil))
	require.Equal(t, 12.5, r.Evaluate(2, nil))
}

func TestDefaultRegistryLifecycle(t *testing.T) {
	defer Teardown()
	require.Nil(t, Init(2))
	require.Nil(t, Parse(1, "x^2", []string{"x"}))
	require.Equal(t, 9.0, Evaluate(1, []float64{3}))
	require.Equal(t, "", EvalErrMsg())
	require.Nil(t, Check("x+1", []string{"x"}))
	require.NotNil(t, Parse(1, "x+", []string{"x"}))
	SetMu0(2)
	require.Equal(t, 2.0, Mu0())
	require.Nil(t, Parse(2, "mu", nil))
	require.Equal(t, 2.0, Evaluate(2, nil))
	Teardown()
	Teardown()
	require.Panics(t, func() { Evaluate(1, nil) })
}

func TestReinitWithoutTeardownLogsWarning(t *testing.T) {
	defer Teardown()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	require.Nil(t, Init(1, WithLogger(logger)))
	require.Empty(t, buf.String())
	require.Nil(t, Init(1, WithLogger(logger)))
	out := buf.String()
	require.Contains(t, out, "already initialised")
	require.Contains(t, out, strings.ToLower(zerolog.LevelWarnValue))
}

func TestLoggerReceivesParseEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r, err := New(1, WithLogger(logger))
	require.Nil(t, err)
	defer r.Close()
	require.Nil(t, r.Parse(1, "x+1", []string{"x"}))
	require.Contains(t, buf.String(), "formula parsed")
}
