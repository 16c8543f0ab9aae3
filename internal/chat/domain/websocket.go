package domain

// Action websocket request action
type Action string

const (
	// StartChat websocket action start_chat
	StartChat Action = "start_chat"

	// EnterChat websocket action enter_chat
	EnterChat Action = "enter_chat"
	// LeaveChat websocket action leave_chat
	LeaveChat Action = "leave_chat"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// SetTyping websocket action set_typing
	SetTyping Action = "set_typing"

	// ListChats websocket action list_chats
	ListChats Action = "list_chats"
	// SearchMember websocket action search_member
	SearchMember Action = "search_member"
	// UpdateProfile websocket action update_profile
	UpdateProfile Action = "update_profile"

	// NotifyMessage websocket action notify_message
	NotifyMessage Action = "notify_message"
	// NotifyTyping websocket action notify_typing
	NotifyTyping Action = "notify_typing"
	// NotifyPresence websocket action notify_presence
	NotifyPresence Action = "notify_presence"
)

// WSRequest websocket Request
type WSRequest struct {
	Action        string `json:"action"`
	ChatID        string `json:"chat_id"`
	OtherMemberID string `json:"other_member_id"`
	Text          string `json:"text"`
	IsTyping      bool   `json:"is_typing"`
	SearchTerm    string `json:"search_term"`

	// 附件 (base64), 選填
	ImageName string `json:"image_name,omitempty"`
	ImageType string `json:"image_type,omitempty"`
	ImageData string `json:"image_data,omitempty"`

	// update_profile 用, nil 表示不更動
	Username *string `json:"username,omitempty"`
	Status   *string `json:"status,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
