package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 这些测试修改全局 log 输出，不并行

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")
	require.NoError(t, Init(path))
	defer Close()

	assert.Equal(t, path, GetLogPath())
	LogError("房间 %s 出错", "ABC234")
	LogPanic("boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[ERROR] 房间 ABC234 出错")
	assert.Contains(t, content, "[PANIC] boom")
}

func TestInit_RotatesLargeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(path, make([]byte, maxLogSize+1), 0o600))

	require.NoError(t, Init(path))
	defer Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "server.log.") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(maxLogSize))
}

func TestInit_EmptyPath(t *testing.T) {
	assert.NoError(t, Init(""))
	Close()
}
