package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/fourteen/internal/logger"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 10 * time.Second
)

var (
	ErrClientClosed = errors.New("连接已关闭")
	ErrSendBufFull  = errors.New("发送缓冲区已满")
)

// Client 机器人使用的 WebSocket 客户端
type Client struct {
	ServerURL string
	PlayerID  string

	codec   codec.Codec
	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建客户端，c 为上下行使用的编码
func NewClient(serverURL string, c codec.Codec) *Client {
	return &Client{
		ServerURL: serverURL,
		codec:     c,
		send:      make(chan []byte, 64),
		receive:   make(chan *protocol.Message, 64),
		done:      make(chan struct{}),
	}
}

// dialURL 在服务器地址上附加 codec 参数
func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("无效的服务器地址: %w", err)
	}
	q := u.Query()
	q.Set("codec", c.codec.Name())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect 连接服务器并启动读写协程
func (c *Client) Connect(ctx context.Context) error {
	target, err := c.dialURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("连接 %s 失败: %w", target, err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()
	return nil
}

// Messages 返回收到的消息，连接断开后关闭
func (c *Client) Messages() <-chan *protocol.Message {
	return c.receive
}

func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] bot readPump panic recovered: %v", r)
		}
		close(c.receive)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("🤖 读取错误: %v", err)
			}
			return
		}

		msg, err := codec.ForFrame(frameType).Decode(data)
		if err != nil {
			log.Printf("🤖 消息解析错误: %v", err)
			continue
		}

		if msg.Type == protocol.MsgConnected {
			if payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
				c.PlayerID = payload.PlayerID
			}
		}

		select {
		case c.receive <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// 先发完已排队的消息再关闭
			for {
				select {
				case message := <-c.send:
					if err := c.write(message); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Client) write(message []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(c.codec.FrameType(), message)
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufFull
	}
}

// Close 关闭连接，可重复调用
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// --- 便捷方法 ---

func (c *Client) CreateRoom(name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: name}))
}

func (c *Client) JoinRoom(code, name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   code,
		PlayerName: name,
	}))
}

func (c *Client) StartGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartGame, nil))
}

func (c *Client) Combine(handIndices []int, faceUpIndex int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCombine, protocol.CombinePayload{
		HandIndices: handIndices,
		FaceUpIndex: faceUpIndex,
	}))
}

func (c *Client) Pass() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPass, nil))
}

func (c *Client) LeaveRoom() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, nil))
}
