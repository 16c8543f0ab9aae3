package domain

// PresenceState presence 狀態值
type PresenceState string

const (
	//PresenceOnline member 在線
	PresenceOnline PresenceState = "online"
	//PresenceOffline member 離線
	PresenceOffline PresenceState = "offline"
)

// PresenceRecord ephemeral store 內的 status:{uid} 紀錄
type PresenceRecord struct {
	State       PresenceState `json:"state"`
	LastChanged int64         `json:"last_changed"` // unix ms
}

// PresenceEvent presence mirror 訂閱的轉換事件
type PresenceEvent struct {
	MemberID    string        `json:"member_id"`
	State       PresenceState `json:"state"`
	LastChanged int64         `json:"last_changed"`
}

// TypingMarker ephemeral store 內的 typing:{chatID}:{uid} 紀錄
// 不存在即代表 "not typing"
type TypingMarker struct {
	Timestamp int64 `json:"timestamp"` // unix ms
}
