package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/pkg/database"
	"github.com/mizerolucky/Follow-Up/pkg/logger"
	"github.com/mizerolucky/Follow-Up/pkg/middlewares"
	testtool "github.com/mizerolucky/Follow-Up/pkg/test_tool"
	"github.com/mizerolucky/Follow-Up/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// **測試用的容器**
var mongoContainer testcontainers.Container
var redisContainer testcontainers.Container
var chatApp *fiber.App
var testMsgRepo repository.MessageRepository

// **TestMain 初始化測試環境**
func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()
	var err error

	// **啟動 MongoDB**
	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MongoDB container: %v", err)
	}
	fmt.Printf("✅ MongoDB running at %s:%s\n", mongoHost, mongoPort)

	// **啟動 Redis**
	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start Redis container: %v", err)
	}
	fmt.Printf("✅ Redis running at %s:%s\n", redisHost, redisPort)

	// **初始化 MongoDB**
	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5,
	}, "test_followup_db")
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongo.Close(ctx)

	// **初始化 Redis**
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort),
		DB:   0,
	})

	// **member 資料用 mock, 不另起 PostgreSQL**
	memberRepo := new(MockMemberRepository)
	memberRepo.On("FindByMember", mock.Anything, mock.MatchedBy(func(q *memberdomain.MemberQuery) bool {
		return q.MemberID != nil && *q.MemberID == "member-a"
	})).Return(&memberdomain.Member{MemberID: "member-a", Username: "alice", Email: "alice@mail.com"}, nil)
	memberRepo.On("FindByMember", mock.Anything, mock.MatchedBy(func(q *memberdomain.MemberQuery) bool {
		return q.MemberID != nil && *q.MemberID == "member-b"
	})).Return(&memberdomain.Member{MemberID: "member-b", Username: "bob", Email: "bob@mail.com"}, nil)
	memberRepo.On("UpdatePresence", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// **初始化 Repository**
	chatRepo := repository.NewMongoChatRepository(mongo.Database)
	testMsgRepo = repository.NewMongoChatMessageRepository(mongo.Database)
	userChatRepo := repository.NewMongoUserChatRepository(mongo.Database)
	typingRepo := repository.NewRedisTypingRepository(redisClient)
	presenceRepo := repository.NewRedisPresenceRepository(redisClient)
	pub := repository.NewRedisPubSub(redisClient)

	// **初始化 UseCases**
	chatUC := NewChatUseCase(chatRepo, userChatRepo, memberRepo)
	sendMessageUC := NewSendMessageUseCase(chatRepo, testMsgRepo, userChatRepo, typingRepo, pub, nil, nil)
	typingUC := NewTypingUseCase(typingRepo)
	presenceUC := NewPresenceUseCase(presenceRepo, memberRepo, time.Second, 3*time.Second)

	chatHandler := NewChatWebsocketHandler(chatUC, sendMessageUC, typingUC, presenceUC, nil)

	// **初始化 Fiber WebSocket Server**
	chatApp = fiber.New()
	chatApp.Use(middlewares.JWTMiddleware())
	chatApp.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatHandler.HandleConnection(context.Background(), c)
	}))

	// **啟動 WebSocket Server**
	go func() {
		err := chatApp.Listen(":8091")
		if err != nil {
			log.Fatalf("❌ Failed to start WebSocket server: %v", err)
		}
	}()
	fmt.Println("✅ WebSocket Server started at ws://localhost:8091/ws")

	// **等待 WebSocket Server 啟動**
	time.Sleep(5 * time.Second)

	// **執行測試**
	code := m.Run()

	// **清理測試環境**
	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	chatApp.Shutdown()

	os.Exit(code)
}

func dialMember(t *testing.T, memberID string) *gws.Conn {
	t.Helper()
	jwt, err := token.GenerateJWT(memberID, string(token.RoleMember), "followup-test")
	assert.NoError(t, err)

	conn, _, err := gws.DefaultDialer.Dial("ws://127.0.0.1:8091/ws?auth="+jwt, nil)
	assert.NoError(t, err, "WebSocket 連線失敗")
	return conn
}

// 讀到指定 action 的回應為止, 其餘推播先略過
func readUntil(t *testing.T, conn *gws.Conn, action string) domain.WSResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		assert.NoError(t, err, "接收訊息失敗")

		var resp domain.WSResponse
		assert.NoError(t, json.Unmarshal(raw, &resp))
		if resp.Action == action {
			return resp
		}
	}
	t.Fatalf("no %s response", action)
	return domain.WSResponse{}
}

// ✅ 1️⃣ start_chat 測試: 兩邊開聊天室只會有一間
func TestWebSocketStartChat(t *testing.T) {
	connA := dialMember(t, "member-a")
	defer connA.Close()
	connB := dialMember(t, "member-b")
	defer connB.Close()

	err := connA.WriteMessage(gws.TextMessage, []byte(`{"action": "start_chat", "other_member_id": "member-b"}`))
	assert.NoError(t, err, "開聊天室請求失敗")
	respA := readUntil(t, connA, "start_chat")
	assert.True(t, respA.Success)
	chatID := respA.Payload["chat_id"].(string)
	assert.NotEmpty(t, chatID)

	// 對方反向再開一次, 拿到同一間
	err = connB.WriteMessage(gws.TextMessage, []byte(`{"action": "start_chat", "other_member_id": "member-a"}`))
	assert.NoError(t, err)
	respB := readUntil(t, connB, "start_chat")
	assert.True(t, respB.Success)
	assert.Equal(t, chatID, respB.Payload["chat_id"].(string))
	assert.Equal(t, false, respB.Payload["created"])
}

// ✅ 2️⃣ send_message 測試: 同一個 sender 連送兩則只留最新一則
func TestWebSocketSendMessage_SingleSlot(t *testing.T) {
	connA := dialMember(t, "member-a")
	defer connA.Close()

	err := connA.WriteMessage(gws.TextMessage, []byte(`{"action": "start_chat", "other_member_id": "member-b"}`))
	assert.NoError(t, err)
	chatID := readUntil(t, connA, "start_chat").Payload["chat_id"].(string)

	send := func(text string) {
		req, _ := json.Marshal(map[string]interface{}{"action": "send_message", "chat_id": chatID, "text": text})
		assert.NoError(t, connA.WriteMessage(gws.TextMessage, req))
		resp := readUntil(t, connA, "send_message")
		assert.True(t, resp.Success)
	}
	send("first message")
	send("second message")

	count, err := testMsgRepo.CountBySender(context.Background(), chatID, "member-a")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	last, err := testMsgRepo.FindBySender(context.Background(), chatID, "member-a")
	assert.NoError(t, err)
	assert.Equal(t, "second message", last.Text)
}

// ✅ 3️⃣ notify_message 測試: 對方會收到推播
func TestWebSocketNotifyMessage(t *testing.T) {
	connA := dialMember(t, "member-a")
	defer connA.Close()
	connB := dialMember(t, "member-b")
	defer connB.Close()

	err := connA.WriteMessage(gws.TextMessage, []byte(`{"action": "start_chat", "other_member_id": "member-b"}`))
	assert.NoError(t, err)
	chatID := readUntil(t, connA, "start_chat").Payload["chat_id"].(string)

	req, _ := json.Marshal(map[string]interface{}{"action": "send_message", "chat_id": chatID, "text": "hello bob"})
	assert.NoError(t, connA.WriteMessage(gws.TextMessage, req))

	notify := readUntil(t, connB, "notify_message")
	assert.True(t, notify.Success)
	assert.Equal(t, chatID, notify.Payload["chat_id"].(string))
	assert.Equal(t, "hello bob", notify.Payload["text"].(string))
}

// ✅ 4️⃣ notify_typing 測試: 進聊天室後會收到對方輸入中
func TestWebSocketNotifyTyping(t *testing.T) {
	connA := dialMember(t, "member-a")
	defer connA.Close()
	connB := dialMember(t, "member-b")
	defer connB.Close()

	err := connA.WriteMessage(gws.TextMessage, []byte(`{"action": "start_chat", "other_member_id": "member-b"}`))
	assert.NoError(t, err)
	chatID := readUntil(t, connA, "start_chat").Payload["chat_id"].(string)

	enterReq, _ := json.Marshal(map[string]interface{}{"action": "enter_chat", "chat_id": chatID})
	assert.NoError(t, connB.WriteMessage(gws.TextMessage, enterReq))
	assert.True(t, readUntil(t, connB, "enter_chat").Success)

	typingReq, _ := json.Marshal(map[string]interface{}{"action": "set_typing", "chat_id": chatID, "is_typing": true})
	assert.NoError(t, connA.WriteMessage(gws.TextMessage, typingReq))

	notify := readUntil(t, connB, "notify_typing")
	assert.True(t, notify.Success)
	ids := notify.Payload["member_ids"].([]interface{})
	assert.Contains(t, ids, "member-a")
}
