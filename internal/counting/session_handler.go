package counting

import (
	"fmt"

	"mahzen-backend/internal/auth"
	"mahzen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StartSessionRequest struct {
	LocationID *uint  `json:"location_id"` // Opsiyonel
	Notes      string `json:"notes"`
}

type CancelSessionRequest struct {
	Reason string `json:"reason"`
}

type SessionResponse struct {
	ID                    uint                 `json:"id"`
	Code                  string               `json:"code"`
	Status                models.SessionStatus `json:"status"`
	LocationID            *uint                `json:"location_id"`
	Notes                 string               `json:"notes"`
	StartedBy             uint                 `json:"started_by"`
	StartedAt             string               `json:"started_at"`
	ExpectedStockLoadedAt *string              `json:"expected_stock_loaded_at"`
	ExpectedStockCount    int                  `json:"expected_stock_count"`
	CompletedBy           *uint                `json:"completed_by"`
	CompletedAt           *string              `json:"completed_at"`
	ApprovedBy            *uint                `json:"approved_by"`
	ApprovedAt            *string              `json:"approved_at"`
	ExternalDocumentID    string               `json:"external_document_id,omitempty"`
}

func toSessionResponse(s *models.CountingSession) SessionResponse {
	resp := SessionResponse{
		ID:                 s.ID,
		Code:               s.Code,
		Status:             s.Status,
		LocationID:         s.LocationID,
		Notes:              s.Notes,
		StartedBy:          s.StartedBy,
		StartedAt:          s.StartedAt.Format("2006-01-02 15:04:05"),
		ExpectedStockCount: s.ExpectedStockCount,
		CompletedBy:        s.CompletedBy,
		ApprovedBy:         s.ApprovedBy,
		ExternalDocumentID: s.ExternalDocumentID,
	}
	if s.ExpectedStockLoadedAt != nil {
		v := s.ExpectedStockLoadedAt.Format("2006-01-02 15:04:05")
		resp.ExpectedStockLoadedAt = &v
	}
	if s.CompletedAt != nil {
		v := s.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &v
	}
	if s.ApprovedAt != nil {
		v := s.ApprovedAt.Format("2006-01-02 15:04:05")
		resp.ApprovedAt = &v
	}
	return resp
}

// POST /api/counting-sessions
func StartSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body StartSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		session, err := svc.StartSession(c.Context(), userID, body.LocationID, body.Notes)
		if err != nil {
			return httpError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toSessionResponse(session))
	}
}

// GET /api/counting-sessions
func ListSessionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessions, err := svc.ListSessions(userID)
		if err != nil {
			return httpError(err)
		}

		resp := make([]SessionResponse, 0, len(sessions))
		for i := range sessions {
			resp = append(resp, toSessionResponse(&sessions[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/counting-sessions/:id
func GetSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		session, err := svc.GetSession(userID, sessionID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(toSessionResponse(session))
	}
}

// POST /api/counting-sessions/:id/complete
func CompleteSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		session, err := svc.CompleteSession(c.Context(), userID, sessionID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(toSessionResponse(session))
	}
}

// POST /api/counting-sessions/:id/approve
func ApproveSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		session, report, err := svc.ApproveSession(c.Context(), userID, sessionID)
		if err != nil {
			return httpError(err)
		}

		return c.JSON(fiber.Map{
			"session":  toSessionResponse(session),
			"variance": report,
		})
	}
}

// POST /api/counting-sessions/:id/cancel
func CancelSessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body CancelSessionRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		session, err := svc.CancelSession(c.Context(), userID, sessionID, body.Reason)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(toSessionResponse(session))
	}
}

// GET /api/counting-sessions/:id/variance
func VarianceReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		sessionID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		report, err := svc.Variance(userID, sessionID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(report)
	}
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz oturum ID")
	}
	return id, nil
}
