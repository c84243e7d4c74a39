package codec

import (
	"bytes"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/fourteen/internal/protocol"
)

// 对象池，减少高频收发消息时的 GC 压力
var (
	messagePool = sync.Pool{
		New: func() any {
			return &protocol.Message{}
		},
	}

	structPool = sync.Pool{
		New: func() any {
			return &structpb.Struct{}
		},
	}

	bufferPool = sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	}
)

// GetMessage 从池中取出 Message
func GetMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage 归还 Message，字段会被清空
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Type = ""
	msg.Payload = nil
	messagePool.Put(msg)
}

// GetStruct 从池中取出 structpb.Struct
func GetStruct() *structpb.Struct {
	return structPool.Get().(*structpb.Struct)
}

// PutStruct 归还 structpb.Struct
func PutStruct(s *structpb.Struct) {
	if s == nil {
		return
	}
	s.Reset()
	structPool.Put(s)
}

// GetBuffer 从池中取出 bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// PutBuffer 归还 bytes.Buffer，保留容量
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
