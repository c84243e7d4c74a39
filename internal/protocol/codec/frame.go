package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/fourteen/internal/protocol"
)

// 线上编码名称
const (
	NameJSON     = "json"
	NameProtobuf = "protobuf"
)

var errEmptyType = errors.New("消息缺少 type 字段")

// Codec 负责 Message 与 WebSocket 帧之间的转换
type Codec interface {
	Name() string
	// FrameType 返回 websocket.TextMessage 或 websocket.BinaryMessage
	FrameType() int
	Encode(msg *protocol.Message) ([]byte, error)
	Decode(data []byte) (*protocol.Message, error)
}

// ForName 按名称选择编码，空名称使用 JSON
func ForName(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSON{}, nil
	case NameProtobuf:
		return Protobuf{}, nil
	default:
		return nil, fmt.Errorf("未知的编码: %s", name)
	}
}

// ForFrame 根据收到的帧类型选择解码器，文本帧为 JSON，二进制帧为 Protobuf
func ForFrame(frameType int) Codec {
	if frameType == websocket.BinaryMessage {
		return Protobuf{}
	}
	return JSON{}
}

// JSON 文本帧：{"type": "...", "payload": {...}}
type JSON struct{}

func (JSON) Name() string   { return NameJSON }
func (JSON) FrameType() int { return websocket.TextMessage }

func (JSON) Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

func (JSON) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errEmptyType
	}
	return msg, nil
}

// Protobuf 二进制帧：google.protobuf.Struct{type, payload}
type Protobuf struct{}

func (Protobuf) Name() string   { return NameProtobuf }
func (Protobuf) FrameType() int { return websocket.BinaryMessage }

func (Protobuf) Encode(msg *protocol.Message) ([]byte, error) {
	fields := map[string]any{"type": string(msg.Type)}
	if len(msg.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, err
		}
		fields["payload"] = payload
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (Protobuf) Decode(data []byte) (*protocol.Message, error) {
	s := GetStruct()
	defer PutStruct(s)

	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}

	msgType := s.GetFields()["type"].GetStringValue()
	if msgType == "" {
		return nil, errEmptyType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)
	if payload, ok := s.GetFields()["payload"]; ok {
		raw, err := json.Marshal(payload.AsInterface())
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = raw
	}
	return msg, nil
}
