// Package api provides the HTTP admin surface of the call bridge.
package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kenniferm/eunoia-backend/internal/callhub"
	"github.com/kenniferm/eunoia-backend/internal/config"
	"github.com/kenniferm/eunoia-backend/internal/domain"
	"github.com/kenniferm/eunoia-backend/internal/store"
	"github.com/kenniferm/eunoia-backend/internal/telephony"
)

// Handler handles HTTP requests.
type Handler struct {
	store     store.Store
	telephony *telephony.Client
	hub       *callhub.Hub
	config    *config.Config
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, tel *telephony.Client, hub *callhub.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:     st,
		telephony: tel,
		hub:       hub,
		config:    cfg,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Call lifecycle
	e.POST("/register-call", h.RegisterCall)
	e.GET("/calls", h.ListCalls)
	e.GET("/calls/:call_id", h.GetCall)
	e.POST("/calls/:call_id/end", h.EndCall)

	// Phone number provisioning
	e.POST("/phone-numbers", h.CreatePhoneNumber)
	e.DELETE("/phone-numbers/:number", h.DeletePhoneNumber)
	e.POST("/outbound-calls", h.CreateOutboundCall)

	// Bookings made by the agent
	e.GET("/appointments", h.ListAppointments)

	e.GET("/healthz", h.Health)
}

// Health returns health status.
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"active_calls": h.hub.Count(),
	})
}

// RegisterCallRequest is the request to register a call for an agent.
type RegisterCallRequest struct {
	AgentID string `json:"agent_id"`
}

// RegisterCall registers a call with the provider on behalf of a frontend,
// so the frontend never holds the provider API key.
// POST /register-call
func (h *Handler) RegisterCall(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.AgentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_id is required"})
	}

	resp, err := h.telephony.RegisterCall(ctx, &telephony.RegisterCallRequest{
		AgentID:                req.AgentID,
		AudioWebsocketProtocol: "web",
		AudioEncoding:          "s16le",
		SampleRate:             24000,
	})
	if err != nil {
		log.Printf("ERROR: failed to register call: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to register call"})
	}

	call := &domain.Call{
		CallID:  resp.CallID,
		AgentID: req.AgentID,
		Status:  domain.CallStatusRegistered,
	}
	if err := h.store.CreateCall(ctx, call); err != nil {
		log.Printf("WARN: failed to record call %s: %v", resp.CallID, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// ListCalls returns the most recent calls.
// GET /calls
func (h *Handler) ListCalls(c echo.Context) error {
	calls, err := h.store.ListCalls(c.Request().Context(), 100)
	if err != nil {
		log.Printf("ERROR: failed to list calls: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list calls"})
	}
	if calls == nil {
		calls = []domain.Call{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"calls": calls})
}

// GetCall returns a single call.
// GET /calls/:call_id
func (h *Handler) GetCall(c echo.Context) error {
	callID := c.Param("call_id")
	call, err := h.store.GetCall(c.Request().Context(), callID)
	if err != nil {
		log.Printf("ERROR: failed to get call %s: %v", callID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get call"})
	}
	if call == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "call not found"})
	}
	return c.JSON(http.StatusOK, call)
}

// EndCall forcibly ends an ongoing call.
// POST /calls/:call_id/end
func (h *Handler) EndCall(c echo.Context) error {
	ctx := c.Request().Context()
	callID := c.Param("call_id")

	if err := h.telephony.EndCall(ctx, callID); err != nil {
		log.Printf("WARN: telephony end call failed for %s: %v", callID, err)
	}
	terminated := h.hub.Terminate(callID)
	if err := h.store.EndCall(ctx, callID, "operator"); err != nil {
		log.Printf("WARN: failed to record call end for %s: %v", callID, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":               true,
		"channel_was_open": terminated,
	})
}

// CreatePhoneNumberRequest provisions a number for an agent.
type CreatePhoneNumberRequest struct {
	AreaCode int    `json:"area_code"`
	AgentID  string `json:"agent_id"`
}

// CreatePhoneNumber provisions a new phone number routed to an agent.
// POST /phone-numbers
func (h *Handler) CreatePhoneNumber(c echo.Context) error {
	var req CreatePhoneNumberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.AgentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_id is required"})
	}

	number, err := h.telephony.CreatePhoneNumber(c.Request().Context(), &telephony.CreatePhoneNumberRequest{
		AreaCode: req.AreaCode,
		AgentID:  req.AgentID,
	})
	if err != nil {
		log.Printf("ERROR: failed to create phone number: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create phone number"})
	}
	return c.JSON(http.StatusOK, number)
}

// DeletePhoneNumber releases a provisioned number.
// DELETE /phone-numbers/:number
func (h *Handler) DeletePhoneNumber(c echo.Context) error {
	number := c.Param("number")
	if err := h.telephony.DeletePhoneNumber(c.Request().Context(), number); err != nil {
		log.Printf("ERROR: failed to delete phone number %s: %v", number, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete phone number"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// CreateOutboundCallRequest starts an outbound call.
type CreateOutboundCallRequest struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	AgentID    string `json:"agent_id"`
}

// CreateOutboundCall starts an outbound call from a provisioned number.
// POST /outbound-calls
func (h *Handler) CreateOutboundCall(c echo.Context) error {
	var req CreateOutboundCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.FromNumber == "" || req.ToNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from_number and to_number are required"})
	}

	err := h.telephony.CreatePhoneCall(c.Request().Context(), &telephony.CreatePhoneCallRequest{
		FromNumber: req.FromNumber,
		ToNumber:   req.ToNumber,
		AgentID:    req.AgentID,
	})
	if err != nil {
		log.Printf("ERROR: failed to create outbound call: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create outbound call"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ListAppointments returns the most recent appointments booked by the agent.
// GET /appointments
func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.store.ListAppointments(c.Request().Context(), 100)
	if err != nil {
		log.Printf("ERROR: failed to list appointments: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list appointments"})
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"appointments": appts})
}
