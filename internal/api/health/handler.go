package health

import (
	"net/http"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/response"
)

// Handler reports liveness together with the loaded snapshot
type Handler struct {
	status entity.HealthResponse
}

func NewHandler(chunks int, snapshotID, backend string) *Handler {
	return &Handler{
		status: entity.HealthResponse{
			Status:     "healthy",
			Chunks:     chunks,
			SnapshotID: snapshotID,
			Backend:    backend,
		},
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.status)
}
