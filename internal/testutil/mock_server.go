//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fourteen/internal/types"
)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) GetClientByID(id string) types.ClientInterface {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.ClientInterface)
}

// ClientDirectory 以 map 实现的 types.ServerInterface，按 ID 返回已登记的客户端
type ClientDirectory struct {
	Maintenance bool
	Clients     map[string]types.ClientInterface
}

// NewClientDirectory 创建客户端目录
func NewClientDirectory(clients ...types.ClientInterface) *ClientDirectory {
	d := &ClientDirectory{Clients: make(map[string]types.ClientInterface)}
	for _, c := range clients {
		d.Clients[c.GetID()] = c
	}
	return d
}

func (d *ClientDirectory) IsMaintenanceMode() bool { return d.Maintenance }
func (d *ClientDirectory) GetOnlineCount() int     { return len(d.Clients) }

func (d *ClientDirectory) GetClientByID(id string) types.ClientInterface {
	if c, ok := d.Clients[id]; ok {
		return c
	}
	return nil
}
