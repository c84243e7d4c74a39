package server

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制建立连接的频率，超限后封禁一段时间
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*ipWindow

	perSecond   int
	perMinute   int
	banDuration time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// ipWindow 固定窗口计数
type ipWindow struct {
	second      window
	minute      window
	bannedUntil time.Time
	lastSeen    time.Time
}

type window struct {
	start time.Time
	count int
}

// hit 计数一次，窗口过期时重新开始
func (w *window) hit(now time.Time, size time.Duration) int {
	if now.Sub(w.start) >= size {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*ipWindow),
		perSecond:   maxPerSecond,
		perMinute:   maxPerMinute,
		banDuration: banDuration,
		stop:        make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Allow 检查是否允许该 IP 建立连接
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[ip]
	if !ok {
		w = &ipWindow{}
		rl.clients[ip] = w
	}
	w.lastSeen = now

	if now.Before(w.bannedUntil) {
		return false
	}

	perSecond := w.second.hit(now, time.Second)
	perMinute := w.minute.hit(now, time.Minute)
	if perSecond > rl.perSecond || perMinute > rl.perMinute {
		w.bannedUntil = now.Add(rl.banDuration)
		log.Printf("⚠️ IP %s 连接过于频繁，封禁 %v", ip, rl.banDuration)
		return false
	}
	return true
}

// IsBanned 检查 IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[ip]
	return ok && time.Now().Before(w.bannedUntil)
}

// Stop 停止后台清理
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanupLoop 清理 10 分钟内没有活动且未封禁的记录
func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, w := range rl.clients {
				if now.Sub(w.lastSeen) > 10*time.Minute && now.After(w.bannedUntil) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// --- 来源验证 ---

// OriginChecker 校验 WebSocket 握手的 Origin 头
type OriginChecker struct {
	allowAll bool
	allowed  map[string]struct{}
}

// NewOriginChecker 创建来源验证器，"*" 表示不限制
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		oc.allowed[strings.ToLower(strings.TrimSpace(origin))] = struct{}{}
	}
	return oc
}

// Check 检查请求来源，没有 Origin 头的请求（本地客户端、机器人）直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if oc.allowAll || origin == "" {
		return true
	}
	_, ok := oc.allowed[strings.ToLower(origin)]
	return ok
}

// --- IP 黑白名单 ---

// IPFilter IP 过滤器：配置了白名单时只放行白名单，黑名单始终优先
type IPFilter struct {
	mu    sync.RWMutex
	allow map[string]struct{}
	deny  map[string]struct{}
}

// NewIPFilter 创建 IP 过滤器，blocked 为初始黑名单
func NewIPFilter(blocked ...string) *IPFilter {
	f := &IPFilter{
		allow: make(map[string]struct{}),
		deny:  make(map[string]struct{}),
	}
	for _, ip := range blocked {
		f.deny[ip] = struct{}{}
	}
	return f
}

// AddToWhitelist 添加到白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allow[ip] = struct{}{}
}

// AddToBlacklist 添加到黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deny[ip] = struct{}{}
}

// RemoveFromBlacklist 从黑名单移除
func (f *IPFilter) RemoveFromBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.deny, ip)
}

// IsAllowed 检查 IP 是否允许
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, denied := f.deny[ip]; denied {
		return false
	}
	if len(f.allow) == 0 {
		return true
	}
	_, ok := f.allow[ip]
	return ok
}

// GetClientIP 获取客户端真实 IP，优先使用代理头
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageRateLimiter 限制已连接客户端每秒发送的消息数
type MessageRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*messageWindow

	perSecond int
	warnAt    int // 超过该值时提醒放慢速度
}

type messageWindow struct {
	window
	warnings int // 超限次数
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		clients:   make(map[string]*messageWindow),
		perSecond: maxPerSecond,
		warnAt:    maxPerSecond / 2,
	}
}

// AllowMessage 返回是否允许处理该消息，以及是否需要提醒客户端
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	w, ok := ml.clients[clientID]
	if !ok {
		w = &messageWindow{}
		ml.clients[clientID] = w
	}

	count := w.hit(time.Now(), time.Second)
	switch {
	case count > ml.perSecond:
		w.warnings++
		return false, true
	case count > ml.warnAt && count > 1:
		return true, true
	default:
		return true, false
	}
}

// GetWarningCount 获取超限次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if w, ok := ml.clients[clientID]; ok {
		return w.warnings
	}
	return 0
}

// ClearRateLimit 移除客户端记录（断开连接时调用）
func (ml *MessageRateLimiter) ClearRateLimit(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.clients, clientID)
}
