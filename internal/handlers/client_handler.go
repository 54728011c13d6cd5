package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/services"
)

type ClientHandler struct {
	Service *services.ClientService
	Log     *logger.Logger
}

type ClientDeactivationResponse struct {
	Message              string            `json:"message" example:"client deactivated"`
	Client               *models.Client    `json:"client"`
	DeactivatedContracts []models.Contract `json:"deactivated_contracts"`
}

type ClientResponse struct {
	Message string         `json:"message" example:"client activated"`
	Client  *models.Client `json:"client"`
}

func NewClientHandler(service *services.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{Service: service, Log: orNop(log)}
}

// @Summary      Create a client
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client"
// @Success      201     {object}  models.Client
// @Failure      400     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req models.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	client, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// @Summary      Update a client
// @Description  The id travels in the body. Only the fields sent are changed.
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client with id"
// @Success      200     {object}  models.Client
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/clients [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req models.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	client, err := h.Service.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// @Summary      Deactivate a client
// @Description  Also closes every active contract of the client.
// @Tags         Clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  ClientDeactivationResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.Service.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	requestLog(c, h.Log).Info("[client][deactivate] done",
		"client_id", id, "deactivated_contracts", len(res.DeactivatedContracts))
	c.JSON(http.StatusOK, ClientDeactivationResponse{
		Message:              "client deactivated",
		Client:               res.Client,
		DeactivatedContracts: res.DeactivatedContracts,
	})
}

// @Summary      Activate a client
// @Tags         Clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  ClientResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/clients/{id}/activate [put]
func (h *ClientHandler) Activate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	client, err := h.Service.Activate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	requestLog(c, h.Log).Info("[client][activate] done", "client_id", id)
	c.JSON(http.StatusOK, ClientResponse{Message: "client activated", Client: client})
}

// @Summary      Get a client
// @Tags         Clients
// @Produce      json
// @Param        id       path      int     true   "Client ID"
// @Param        details  query     string  false  "contract,card"
// @Success      200      {object}  models.Client
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opts, err := parseDetails(c, models.KindClient)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	client, err := h.Service.Get(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// @Summary      List clients
// @Tags         Clients
// @Produce      json
// @Param        active       query     bool    false  "Filter by active flag"
// @Param        national_id  query     string  false  "Exact national id"
// @Param        details      query     string  false  "contract,card"
// @Success      200          {array}   models.Client
// @Failure      400          {object}  ErrorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	opts, err := parseDetails(c, models.KindClient)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	filter := models.ClientFilter{Active: active, NationalID: c.Query("national_id")}
	clients, err := h.Service.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}
