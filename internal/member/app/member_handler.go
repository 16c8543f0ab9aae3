package app

import (
	"errors"
	"fmt"

	"github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/pkg/encrypt"
	"github.com/mizerolucky/Follow-Up/pkg/logger"
	"github.com/mizerolucky/Follow-Up/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler 处理用户相关的 HTTP 请求
type MemberHandler struct {
	Usecase MemberUseCase
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(usecase MemberUseCase) *MemberHandler {
	return &MemberHandler{Usecase: usecase}
}

// Register 注册新用户
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Info("Register request", zap.String("email", req.Email), zap.String("username", req.Username))

	if err := h.Usecase.Register(c.Context(), req.Email, req.Password, req.Username); err != nil {
		logger.Log.Error("Register Err", zap.String("email", req.Email), zap.String("Err :", err.Error()))
		return c.Status(registerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "register success"})
}

// Login 用户登录
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("Email", req.Email))

	token, err := h.Usecase.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		logger.Log.Error("Login Err", zap.String("email", req.Email), zap.String("Err :", err.Error()))
		if errors.Is(err, ErrTooManyRequests) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"token": token, "message": "login success"})
}

// Logout 用户登出
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	token := c.Query("auth")
	if token == "" {
		token = c.Cookies("auth_token")
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	if err := h.Usecase.Logout(c.Context(), token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.ClearCookie("auth_token")
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Me 查自己的个人资料
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenMemberID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenMemberID)})
	}

	member, err := h.Usecase.FindMember(c.Context(), &domain.MemberQuery{MemberID: &memberID})
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"member": fiber.Map{
			"member_id": member.MemberID,
			"email":     member.Email,
			"username":  member.Username,
			"avatar":    member.Avatar,
			"status":    member.Status,
			"bio":       member.Bio,
			"online":    member.Online,
			"last_seen": member.LastSeen,
		},
	})
}

// UploadAvatar 上传头像 (multipart), 回传可直接使用的 URL
func (h *MemberHandler) UploadAvatar(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenMemberID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenMemberID)})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	defer file.Close()

	url, err := h.Usecase.UploadAvatar(c.Context(), memberID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		logger.Log.Error("UploadAvatar Err", zap.String("memberID", memberID), zap.String("Err :", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"avatar": url, "message": "upload success"})
}

func registerStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, encrypt.ErrWeakPassword):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
