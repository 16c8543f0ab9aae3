package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	memberapp "github.com/mizerolucky/Follow-Up/internal/member/app"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"
	"github.com/mizerolucky/Follow-Up/pkg/middlewares"
	"github.com/mizerolucky/Follow-Up/pkg/timer"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	chatUC     ChatUseCase
	messageUC  *SendMessageUseCase
	typingUC   TypingUseCase
	presenceUC PresenceUseCase
	memberUC   memberapp.MemberUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	chatUC ChatUseCase,
	messageUC *SendMessageUseCase,
	typingUC TypingUseCase,
	presenceUC PresenceUseCase,
	memberUC memberapp.MemberUseCase,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		chatUC:     chatUC,
		messageUC:  messageUC,
		typingUC:   typingUC,
		presenceUC: presenceUC,
		memberUC:   memberUC,
	}
}

// connState 單一連線的狀態: 目前所在聊天室與其訂閱
type connState struct {
	currentChatID  string
	typingDebounce *timer.Debouncer
	typingSub      *TypingSubscription
}

// messageWriter 單一連線可寫入的最小介面
type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// connWriter 把同一條連線上的寫入序列化
// read-loop 回覆, pubsub 推播, typing 推播, ping 會同時寫同一個 conn
type connWriter struct {
	mu   sync.Mutex
	conn messageWriter
}

func (w *connWriter) sendResponse(resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (w *connWriter) sendError(errorMsg string) {
	w.sendResponse(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}

func (w *connWriter) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.PingMessage, []byte("ping message"))
}

func (w *connWriter) pong(appData string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember := conn.Locals(middlewares.TokenMemberID)
	memberID, ok := tokenMember.(string)
	logger.Log.Info("websocket handle memberID", zap.String("memberID", memberID), zap.String("ok", strconv.FormatBool(ok)))

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	state := &connState{typingDebounce: timer.NewDebouncer(TypingDebounceInterval)}
	w := &connWriter{conn: conn}

	defer func() {
		ticker.Stop()
		h.leaveCurrentChat(memberID, state)
		state.typingDebounce.Stop()
		if err := h.presenceUC.Disconnect(context.Background(), memberID); err != nil {
			logger.Log.Warn("presence disconnect failed", zap.String("memberID", memberID), zap.Error(err))
		}
		logger.Log.Info("websocket close", zap.String("memberID", memberID))
		conn.Close()
		cancel()
	}()

	// 上線: 寫入 online 紀錄並啟動心跳, 連線死掉靠 TTL 過期自動離線
	if err := h.presenceUC.Connect(ctxClose, memberID); err != nil {
		logger.Log.Error("presence connect failed", zap.String("memberID", memberID), zap.Error(err))
	}

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	//fiber會自動處理回傳pong,故需要SetPongHandler另外接出
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	//client發出ping
	//fiber會自動處理ping,故需要SetPingHandler另外接出
	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING:", appData)
		return w.pong(appData)
	})

	//啟用sub訂閱自己的訊息
	h.messageUC.memberPubSub.Subscribe(ctxClose, repository.MemberChannel(memberID), func(resp domain.WSResponse) {
		w.sendResponse(resp)
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := w.ping(); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Errorf("Connection closed:", err)
			} else {
				//直接斷線 1006
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, w, memberID, state, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, w *connWriter, memberID string, state *connState, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, w, memberID, state, msg)

	//! close ping pong fiber會自動處理，故需使用setHandler處理
	default:
		w.sendError("unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, w *connWriter, memberID string, state *connState, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("json unmarshal error: %v", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	//開啟(或取回既有的)一對一聊天室
	case string(domain.StartChat):
		chatID, created, err := h.chatUC.StartChat(ctx, memberID, req.OtherMemberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["chat_id"] = chatID
			resp.Payload["created"] = created
		}

	//進入聊天室: 回傳訊息列表與對方狀態, 並開始收 typing 通知
	case string(domain.EnterChat):
		h.leaveCurrentChat(memberID, state)

		msgs, err := h.messageUC.ListMessages(ctx, req.ChatID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		if err := h.chatUC.MarkChatRead(ctx, memberID, req.ChatID); err != nil {
			resp.Error = err.Error()
			break
		}

		state.currentChatID = req.ChatID
		state.typingSub = h.typingUC.ListenToTypingStatus(context.Background(), req.ChatID, memberID,
			func(typingMemberIDs []string) {
				w.sendResponse(domain.WSResponse{
					Action:  string(domain.NotifyTyping),
					Success: true,
					Payload: map[string]interface{}{
						"chat_id":    req.ChatID,
						"member_ids": typingMemberIDs,
					},
				})
			})

		resp.Success = true
		resp.Payload["chat_id"] = req.ChatID
		resp.Payload["messages"] = msgs

	//離開聊天室: 停止 typing 訂閱並送出最後的 "not typing"
	case string(domain.LeaveChat):
		h.leaveCurrentChat(memberID, state)
		resp.Success = true
		resp.Payload["leave_chat"] = req.ChatID

	//傳送訊息: 同一個 sender 在同一間聊天室只保留最新一則
	case string(domain.SendMessage):
		attachment, err := decodeAttachment(&req)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		msgID, err := h.messageUC.Execute(ctx, req.ChatID, memberID, req.Text, attachment)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = msgID
		}

	//輸入中狀態, true 走 debounce, false 立即清除
	case string(domain.SetTyping):
		chatID := req.ChatID
		if req.IsTyping {
			state.typingDebounce.Call(func() {
				if err := h.typingUC.SetTypingStatus(context.Background(), chatID, memberID, true); err != nil {
					logger.Log.Warn("set typing failed", zap.String("chatID", chatID), zap.Error(err))
				}
			})
			resp.Success = true
		} else {
			state.typingDebounce.Cancel()
			if err := h.typingUC.SetTypingStatus(ctx, chatID, memberID, false); err != nil {
				resp.Error = err.Error()
			} else {
				resp.Success = true
			}
		}

	//聊天室列表 (含對方名稱/頭像/上線狀態)
	case string(domain.ListChats):
		entries, err := h.chatUC.ListChats(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		resp.Success = true
		resp.Payload["chats"] = h.withPresence(ctx, entries)

	//用 email 或 username 找人
	case string(domain.SearchMember):
		members, err := h.memberUC.SearchMembers(ctx, req.SearchTerm, memberID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		results := make([]map[string]interface{}, 0, len(members))
		for _, m := range members {
			results = append(results, map[string]interface{}{
				"member_id": m.MemberID,
				"username":  m.Username,
				"email":     m.Email,
				"avatar":    m.Avatar,
				"status":    m.Status,
			})
		}
		resp.Success = true
		resp.Payload["members"] = results

	//更新個人資料
	case string(domain.UpdateProfile):
		err := h.memberUC.UpdateProfile(ctx, memberID, &memberdomain.ProfileUpdate{
			Username: req.Username,
			Status:   req.Status,
			Bio:      req.Bio,
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	default:
		w.sendError("unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("MemberID", memberID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	w.sendResponse(resp)
}

// leaveCurrentChat 停掉 typing 訂閱與 debounce 中的寫入, 並清掉自己的 marker
func (h *ChatWebsocketHandler) leaveCurrentChat(memberID string, state *connState) {
	if state.currentChatID == "" {
		return
	}
	chatID := state.currentChatID
	state.currentChatID = ""

	if state.typingSub != nil {
		state.typingSub.Cancel()
		state.typingSub = nil
	}
	state.typingDebounce.Cancel()
	if err := h.typingUC.SetTypingStatus(context.Background(), chatID, memberID, false); err != nil {
		logger.Log.Warn("clear typing on leave failed", zap.String("chatID", chatID), zap.Error(err))
	}
}

// withPresence 聊天室索引附上對方目前的 presence
func (h *ChatWebsocketHandler) withPresence(ctx context.Context, entries []domain.ChatIndexEntry) []map[string]interface{} {
	chats := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		item := map[string]interface{}{
			"chat_id":           entry.ChatID,
			"other_member_id":   entry.OtherUserID,
			"other_username":    entry.OtherUserName,
			"other_avatar":      entry.OtherUserAvatar,
			"last_read":         entry.LastRead,
			"other_presence":    string(domain.PresenceOffline),
			"other_last_change": int64(0),
		}
		if record, err := h.presenceUC.GetStatus(ctx, entry.OtherUserID); err == nil {
			item["other_presence"] = string(record.State)
			item["other_last_change"] = record.LastChanged
		}
		chats = append(chats, item)
	}
	return chats
}

func decodeAttachment(req *domain.WSRequest) (*domain.Attachment, error) {
	if req.ImageData == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		return nil, err
	}
	return &domain.Attachment{
		Filename:    req.ImageName,
		ContentType: req.ImageType,
		Data:        data,
	}, nil
}
