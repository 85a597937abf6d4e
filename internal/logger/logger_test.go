package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "launchpad.log")
	cfg := DefaultConfig()
	cfg.LogFile = logFile
	cfg.Console = false
	cfg.Compress = false

	log, err := New(cfg)
	require.NoError(t, err)

	log.WithOperation("estimate").Info("Estimate computed", zap.Float64("eth", 0.1))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation":"estimate"`)
	assert.Contains(t, string(data), `"correlation_id"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	log, err := New(&Config{})
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, log.Sync())
}

func TestTrackPerformance(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "perf.log")
	log, err := New(&Config{LogFile: logFile, Development: true, MaxSize: 1})
	require.NoError(t, err)

	end := log.TrackPerformance("pin_image")
	end()
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Operation completed")
	assert.Contains(t, string(data), `"duration_ms"`)
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		fields []zap.Field
		want   string
	}{
		{"listening", "Server listening", []zap.Field{zap.String("addr", ":8080")}, "listening on :8080"},
		{"pinned", "Image pinned", []zap.Field{zap.String("cid", "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")}, "bafybeig...5fbzdi"},
		{"discovered", "Tokens discovered", []zap.Field{zap.Int("count", 4)}, "Discovered 4 tokens"},
		{"fees", "Fees checked", []zap.Field{zap.String("token", "0x4200000000000000000000000000000000000006")}, "0x4200...0006"},
		{"passthrough", "something else", nil, "something else"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, FormatMessage(tt.msg, tt.fields...), tt.want)
		})
	}
}

func TestActivityBufferRing(t *testing.T) {
	buf := NewActivityBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Add(LogEntry{Level: "info", Message: fmt.Sprintf("entry %d", i)})
	}

	logs := buf.GetRecentLogs(0)
	require.Len(t, logs, 3)
	assert.Equal(t, "entry 2", logs[0].Message)
	assert.Equal(t, "entry 4", logs[2].Message)

	last := buf.GetRecentLogs(2)
	require.Len(t, last, 2)
	assert.Equal(t, "entry 3", last[0].Message)

	total, malformed := buf.GetStats()
	assert.Equal(t, uint64(5), total)
	assert.Zero(t, malformed)
}

func TestTUILoggerFeedsBuffer(t *testing.T) {
	buf := NewActivityBuffer(10)
	log, err := CreateTUILogger(false, buf)
	require.NoError(t, err)

	log.Info("Plan exported", zap.String("path", "/tmp/plan.json"))
	log.Debug("hidden")

	logs := buf.GetRecentLogs(0)
	require.Len(t, logs, 1)
	assert.Equal(t, "info", logs[0].Level)
	assert.Equal(t, "Plan exported", logs[0].Message)
	assert.False(t, logs[0].Timestamp.IsZero())

	_, err = CreateTUILogger(false, nil)
	assert.Error(t, err)
}

func TestActivityBufferConcurrentAccess(t *testing.T) {
	buf := NewActivityBuffer(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = buf.Write([]byte(fmt.Sprintf(`{"level":"info","msg":"g%d-%d"}`+"\n", id, j)))
				_ = buf.GetRecentLogs(5)
			}
		}(g)
	}
	wg.Wait()

	total, _ := buf.GetStats()
	assert.Equal(t, uint64(800), total)
	assert.Len(t, buf.GetRecentLogs(0), 50)
}
