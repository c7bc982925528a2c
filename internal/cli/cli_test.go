package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/towerbench/pkg/adapters/process"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, sizes ...int) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Model = ReferenceModel
	cfg.PuzzleSizes = sizes
	cfg.OutputDir = filepath.Join(dir, "results")
	cfg.Store = config.Store{Backend: config.BackendFile, Path: filepath.Join(dir, "sessions")}
	return cfg
}

func TestCreateStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		st, err := createStore(config.Store{Backend: config.BackendMemory})
		require.NoError(t, err)
		defer st.Close()
		assert.Nil(t, st.Locker)
		ports.RunSessionStoreContract(t, st.Store)
	})

	t.Run("file", func(t *testing.T) {
		st, err := createStore(config.Store{Backend: config.BackendFile, Path: t.TempDir()})
		require.NoError(t, err)
		defer st.Close()
		ports.RunSessionStoreContract(t, st.Store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		st, err := createStore(config.Store{Backend: config.BackendRedis, RedisURL: "redis://" + mr.Addr(), Prefix: "cli:"})
		require.NoError(t, err)
		defer st.Close()
		require.NotNil(t, st.Locker)

		unlock, err := st.Locker.Lock(context.Background(), "episode", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(context.Background()))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := createStore(config.Store{Backend: "etcd"})
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}

func TestCreateAgentFactory(t *testing.T) {
	cfg := config.Default()
	cfg.Model = ReferenceModel
	newAgent, err := createAgentFactory(cfg, createLogger(false))
	require.NoError(t, err)
	a, err := newAgent(3)
	require.NoError(t, err)
	resp, err := a.Respond(context.Background(), ports.AgentRequest{SessionID: "s", Size: 1, Turn: 1})
	require.NoError(t, err)
	assert.Equal(t, "[[1, 0, 2]]", resp.Content)

	cfg.Model = "some-model"
	_, err = createAgentFactory(cfg, createLogger(false))
	assert.ErrorIs(t, err, process.ErrNoCommand)
}

func TestCreateEngine_TemplateDir(t *testing.T) {
	cfg := config.Default()
	cfg.PromptTemplateDir = filepath.Join(t.TempDir(), "missing")
	_, err := createEngine(context.Background(), cfg, createLogger(false), false, domain.LifecycleHooks{})
	assert.Error(t, err)
}

func TestRunExperiment(t *testing.T) {
	cfg := testConfig(t, 1, 3, 4)
	var out bytes.Buffer

	results, path, err := RunExperiment(context.Background(), ExperimentOptions{Config: cfg, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, ResultsFileName), path)
	assert.Equal(t, 3, results.Summary.Episodes)
	assert.Equal(t, 3, results.Summary.Solved)
	require.Len(t, results.Episodes, 3)
	assert.Equal(t, 1, results.Episodes[0].Result.PuzzleSize)
	assert.Equal(t, 4, results.Episodes[2].Result.PuzzleSize)
	assert.Contains(t, out.String(), "Results written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Results
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ReferenceModel, decoded.Model)
	assert.NotEmpty(t, decoded.Episodes[1].Transcript)
	assert.True(t, decoded.Episodes[1].Result.Solved)

	t.Run("inspect", func(t *testing.T) {
		id := results.Episodes[1].Result.SessionID

		var buf bytes.Buffer
		require.NoError(t, Inspect(context.Background(), InspectOptions{Config: cfg, SessionID: id, Format: FormatMermaid, Out: &buf}))
		assert.True(t, strings.HasPrefix(buf.String(), "graph TD"))

		buf.Reset()
		require.NoError(t, Inspect(context.Background(), InspectOptions{Config: cfg, SessionID: id, Format: FormatJSON, Out: &buf}))
		var s domain.Session
		require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
		assert.Equal(t, domain.StatusSolved, s.Status)

		buf.Reset()
		require.NoError(t, ListSessions(context.Background(), cfg, &buf))
		assert.Contains(t, buf.String(), id)

		err := Inspect(context.Background(), InspectOptions{Config: cfg, SessionID: "nope", Out: &buf})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestRunExperiment_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.Model = ""
	_, _, err := RunExperiment(context.Background(), ExperimentOptions{Config: cfg})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRunPlay(t *testing.T) {
	cfg := testConfig(t, 2)
	in := strings.NewReader("[[1, 0, 1], [2, 0, 2]]\n[[1, 1, 2]]\n")
	var out bytes.Buffer

	s, err := RunPlay(context.Background(), PlayOptions{Config: cfg, Size: 2, SessionID: "human", In: in, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSolved, s.Status)
	assert.Equal(t, 2, s.Turn)
	assert.Contains(t, out.String(), "Episode human finished: solved")
}

func TestRunPlay_EOFGivesUp(t *testing.T) {
	cfg := testConfig(t, 3)
	var out bytes.Buffer

	s, err := RunPlay(context.Background(), PlayOptions{Config: cfg, Size: 3, In: strings.NewReader(""), Out: &out})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGaveUp, s.Status)
}

func TestRunMCP_UnknownTransport(t *testing.T) {
	cfg := testConfig(t, 3)
	err := RunMCP(context.Background(), MCPOptions{Config: cfg, Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := NewSignalContext(parent)
	defer ctx.Cancel()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
	assert.Nil(t, ctx.Signal())
}
