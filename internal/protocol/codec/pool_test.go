package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	// 再次取出应已重置
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestPools_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutStruct(nil)
		PutBuffer(nil)
	})
}

func TestStructPool_GetPut(t *testing.T) {
	t.Parallel()

	s := GetStruct()
	s.Fields = map[string]*structpb.Value{"type": structpb.NewStringValue("ping")}
	PutStruct(s)

	s2 := GetStruct()
	assert.Empty(t, s2.GetFields())
}

func TestBufferPool_CapacityPreserved(t *testing.T) {
	t.Parallel()

	buf := GetBuffer()
	buf.Write(make([]byte, 1024))
	capacity := buf.Cap()
	assert.GreaterOrEqual(t, capacity, 1024)
	PutBuffer(buf)

	buf2 := GetBuffer()
	assert.Equal(t, 0, buf2.Len())
}

func TestPools_Concurrency(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			msg := GetMessage()
			msg.Type = "concurrent"
			PutMessage(msg)

			buf := GetBuffer()
			buf.WriteString("concurrent test")
			PutBuffer(buf)
		})
	}
	wg.Wait()
}

func BenchmarkMessagePool_GetPut(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			msg := GetMessage()
			msg.Type = "benchmark"
			PutMessage(msg)
		}
	})
}
