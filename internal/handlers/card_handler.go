package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/services"
)

type CardHandler struct {
	Service *services.CardService
	Log     *logger.Logger
}

type CardDeactivationResponse struct {
	Message              string            `json:"message" example:"card deactivated"`
	Card                 *models.Card      `json:"card"`
	DeactivatedContracts []models.Contract `json:"deactivated_contracts"`
}

func NewCardHandler(service *services.CardService, log *logger.Logger) *CardHandler {
	return &CardHandler{Service: service, Log: orNop(log)}
}

// @Summary      Create a card
// @Tags         Cards
// @Accept       json
// @Produce      json
// @Param        card  body      models.CardInput  true  "Card"
// @Success      201   {object}  models.Card
// @Failure      400   {object}  ErrorResponse
// @Router       /api/cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	var req models.CardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	card, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// @Summary      Update a card
// @Tags         Cards
// @Accept       json
// @Produce      json
// @Param        card  body      models.CardInput  true  "Card with id"
// @Success      200   {object}  models.Card
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/cards [put]
func (h *CardHandler) Update(c *gin.Context) {
	var req models.CardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	card, err := h.Service.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// @Summary      Deactivate a card
// @Description  Ends the card today and closes its active contracts.
// @Tags         Cards
// @Produce      json
// @Param        id   path      int  true  "Card ID"
// @Success      200  {object}  CardDeactivationResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/cards/{id} [delete]
func (h *CardHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.Service.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	requestLog(c, h.Log).Info("[card][deactivate] done",
		"card_id", id, "deactivated_contracts", len(res.DeactivatedContracts))
	c.JSON(http.StatusOK, CardDeactivationResponse{
		Message:              "card deactivated",
		Card:                 res.Card,
		DeactivatedContracts: res.DeactivatedContracts,
	})
}

// @Summary      Get a card
// @Tags         Cards
// @Produce      json
// @Param        id       path      int     true   "Card ID"
// @Param        details  query     string  false  "contract,client"
// @Success      200      {object}  models.Card
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/cards/{id} [get]
func (h *CardHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opts, err := parseDetails(c, models.KindCard)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	card, err := h.Service.Get(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// @Summary      List cards
// @Tags         Cards
// @Produce      json
// @Param        active   query     bool    false  "Filter by active flag"
// @Param        details  query     string  false  "contract,client"
// @Success      200      {array}   models.Card
// @Failure      400      {object}  ErrorResponse
// @Router       /api/cards [get]
func (h *CardHandler) List(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	opts, err := parseDetails(c, models.KindCard)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	cards, err := h.Service.List(c.Request.Context(), models.CardFilter{Active: active}, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}
