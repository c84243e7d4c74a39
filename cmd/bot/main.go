package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palemoky/fourteen/internal/bot"
	"github.com/palemoky/fourteen/internal/protocol/codec"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:1780/ws", "服务器地址")
	name := flag.String("name", "", "机器人昵称，为空时自动生成")
	roomCode := flag.String("room", "", "要加入的房间号，为空时创建房间")
	codecName := flag.String("codec", codec.NameJSON, "编码：json/protobuf")
	rounds := flag.Int("rounds", 1, "打满多少局后离开")
	delay := flag.Duration("delay", 800*time.Millisecond, "每次行动前的思考时间")
	flag.Parse()

	c, err := codec.ForName(*codecName)
	if err != nil {
		log.Fatalf("无效的编码: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bot.NewClient(*serverURL, c)
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("连接服务器失败: %v", err)
	}
	defer client.Close()

	b := bot.New(client, bot.Options{
		Name:     *name,
		RoomCode: *roomCode,
		Rounds:   *rounds,
		Delay:    *delay,
		OnRoom: func(code string) {
			log.Printf("🏠 房间号: %s", code)
		},
	})

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("机器人退出: %v", err)
		return
	}
	log.Println("👋 机器人已离开")
}
