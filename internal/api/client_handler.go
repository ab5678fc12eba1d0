package api

import (
	"errors"
	"net/http"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service dependency.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type ActivePlanRefResponse struct {
	PlanID string `json:"planId"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type ClientResponse struct {
	ID              string                  `json:"id"`
	TherapistID     string                  `json:"therapistId"`
	Name            string                  `json:"name"`
	Email           string                  `json:"email,omitempty"`
	AssignedPlanIDs []string                `json:"assignedPlanIds"`
	ActivePlans     []ActivePlanRefResponse `json:"activePlans"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func mapClientToResponse(client *domain.Client) ClientResponse {
	if client == nil {
		return ClientResponse{}
	}
	planIDs := make([]string, len(client.AssignedPlanIDs))
	for i, id := range client.AssignedPlanIDs {
		planIDs[i] = id.Hex()
	}
	activePlans := make([]ActivePlanRefResponse, len(client.ActivePlans))
	for i, ref := range client.ActivePlans {
		activePlans[i] = ActivePlanRefResponse{
			PlanID: ref.PlanID.Hex(),
			Name:   ref.Name,
			Type:   ref.Type,
			Status: string(ref.Status),
		}
	}
	return ClientResponse{
		ID:              client.ID.Hex(),
		TherapistID:     client.TherapistID.Hex(),
		Name:            client.Name,
		Email:           client.Email,
		AssignedPlanIDs: planIDs,
		ActivePlans:     activePlans,
		CreatedAt:       client.CreatedAt,
		UpdatedAt:       client.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateClient adds a client to the therapist's roster.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), therapistID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrClientValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create client.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapClientToResponse(client))
}

// GetClients lists the therapist's roster.
func (h *ClientHandler) GetClients(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}

	clients, err := h.clientService.GetClientsByTherapist(c.Request.Context(), therapistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = mapClientToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClientByID returns one roster entry.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	client, err := h.clientService.GetClientByID(c.Request.Context(), therapistID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, "Client not found.")
		case errors.Is(err, service.ErrClientAccessDenied):
			abortWithError(c, http.StatusForbidden, "This client belongs to another therapist.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve client.")
		}
		return
	}
	c.JSON(http.StatusOK, mapClientToResponse(client))
}
