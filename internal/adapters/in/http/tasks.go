package http

import (
	"net/http"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
)

// GetOrderTasks handles GET /api/v1/orders/:id/tasks - open tasks of the order's process.
func (s *Server) GetOrderTasks(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	tasks, err := s.h.Tasks.ActiveTasksFor(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toTasks(tasks))
}

// CompleteTask handles POST /api/v1/orders/:id/tasks/:taskId/complete - records
// the approval decision of the X-User caller.
func (s *Server) CompleteTask(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req CompleteTaskRequest
	if err = c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	cmd, err := commands.NewRecordApprovalCommand(orderID, c.Param("taskId"), req.Approved,
		req.Comments, c.Request().Header.Get(UserHeader))
	if err != nil {
		return writeError(c, err)
	}
	if err = s.h.RecordApproval.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPendingApprovals handles GET /api/v1/tasks/approvals.
func (s *Server) GetPendingApprovals(c echo.Context) error {
	tasks, err := s.h.Tasks.PendingApprovalTasks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toTasks(tasks))
}
