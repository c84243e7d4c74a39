package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/fourteen/internal/config"
	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/server/handler"
	"github.com/palemoky/fourteen/internal/server/storage"
	"github.com/palemoky/fourteen/internal/types"
)

// Server WebSocket 服务器
type Server struct {
	config       *config.Config
	redis        *redis.Client // 未启用时为 nil
	redisStore   *storage.RedisStore
	leaderboard  *storage.LeaderboardManager
	roomManager  *room.RoomManager
	handler      *handler.Handler
	defaultCodec codec.Codec
	upgrader     websocket.Upgrader
	httpServer   *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	stopMonitor chan struct{}
	stopOnce    sync.Once
}

// NewServer 创建服务器实例。启用 Redis 时连接失败直接返回错误
func NewServer(cfg *config.Config) (*Server, error) {
	defaultCodec, err := codec.ForName(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:       cfg,
		defaultCodec: defaultCodec,
		clients:      make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.BlockedIPs...),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stopMonitor:    make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 来源在升级前已由 originChecker 校验
		CheckOrigin: func(*http.Request) bool { return true },
	}

	var store room.RoomStore
	var leaderboard types.Leaderboard
	if cfg.Redis.Enabled {
		if err := s.connectRedis(); err != nil {
			return nil, err
		}
		store = s.redisStore
		leaderboard = s.leaderboard
	} else {
		log.Println("ℹ️ 未启用 Redis：不镜像房间，排行榜不可用")
	}

	s.roomManager = room.NewRoomManager(store)
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		Leaderboard: leaderboard,
	})

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 最大连接数=%d, 默认编码=%s",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Server.MaxConnections, defaultCodec.Name())

	return s, nil
}

// connectRedis 连接 Redis 并清理上次运行遗留的房间镜像
func (s *Server) connectRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.config.Redis.Addr,
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	s.redis = rdb
	s.redisStore = storage.NewRedisStore(rdb)
	s.leaderboard = storage.NewLeaderboardManager(rdb)

	n, err := s.redisStore.ClearRooms(ctx)
	if err != nil {
		log.Printf("⚠️ 清理房间镜像失败: %v", err)
	} else if n > 0 {
		log.Printf("🧹 已清理 %d 个遗留房间镜像", n)
	}
	return nil
}

// Routes 返回服务器的 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务器，正常关闭时返回 nil
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	go s.monitorStats()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager 返回房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}
