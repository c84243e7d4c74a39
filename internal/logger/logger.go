package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// maxLogSize 超过该大小时启动会轮转日志文件
const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Init 初始化日志：同时写入标准输出和 path 指定的文件，path 为空时只写标准输出
func Init(path string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if path == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := openRotated(path)
	if err != nil {
		return err
	}

	logFile = f
	logPath = path
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	LogInfo("日志文件: %s", logPath)
	return nil
}

// openRotated 打开日志文件，文件过大时先改名备份
func openRotated(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		if err := os.Rename(path, backupPath); err != nil {
			return nil, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		log.SetOutput(os.Stdout)
		_ = logFile.Close()
		logFile = nil
	}
}

// LogInfo 记录普通信息
func LogInfo(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// LogError 记录错误
func LogError(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// LogPanic 记录 panic 及调用栈
func LogPanic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath 返回当前日志文件路径
func GetLogPath() string {
	return logPath
}
