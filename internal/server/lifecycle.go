package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-s.stopMonitor:
			return
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 房间: %d | 对局中: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.roomManager.GetRoomCount(),
			s.roomManager.GetActiveGamesCount(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接，禁止建房和加入
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.announce("👷🏻‍♂️ 维护模式：停止新的房间创建", true)

	log.Println("🔧 进入维护模式：停止新连接和房间创建")
}

// announce 发送维护通知，lobbyOnly 时只发给不在房间内的玩家
func (s *Server) announce(text string, lobbyOnly bool) {
	msg := codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, text)

	s.clientsMu.RLock()
	targets := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		if !lobbyOnly || client.GetRoom() == "" {
			targets = append(targets, client)
		}
	}
	s.clientsMu.RUnlock()

	for _, client := range targets {
		client.SendMessage(msg)
	}
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束或超时后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			log.Printf("✅ 所有对局已结束，将在 %ds 后关闭服务器！", s.config.Game.RoomCleanupDelay)
			s.announce(fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay), false)
			break
		}
		log.Printf("⏳ 等待 %d 个对局结束...", activeGames)
		<-ticker.C
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		log.Printf("⚠️ 超时，仍有 %d 个对局进行中，强制关闭", activeGames)
	}

	time.Sleep(s.config.Game.RoomCleanupDelayDuration())
	s.Shutdown()
}

// Shutdown 立即关闭：断开所有客户端，停止后台任务，关闭 Redis
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stopMonitor)
		s.rateLimiter.Stop()

		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("HTTP 服务关闭失败: %v", err)
			}
		}

		if s.redis != nil {
			_ = s.redis.Close()
		}

		log.Println("服务器已关闭")
	})
}
