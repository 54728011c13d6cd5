package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardhub/internal/apperrors"
	"cardhub/internal/clock"
	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/pdf"
	"cardhub/internal/services"
)

type ContractHandler struct {
	Service *services.ContractService
	Docs    pdf.Generator
	Clock   clock.Clock
	Log     *logger.Logger
}

type ContractResponse struct {
	Message  string           `json:"message" example:"contract deactivated"`
	Contract *models.Contract `json:"contract"`
}

func NewContractHandler(service *services.ContractService, gen pdf.Generator, clk clock.Clock, log *logger.Logger) *ContractHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &ContractHandler{Service: service, Docs: gen, Clock: clk, Log: orNop(log)}
}

// @Summary      Create a contract
// @Description  The client must be active with a regular national id and the card must be active and valid today.
// @Tags         Contracts
// @Accept       json
// @Produce      json
// @Param        contract  body      models.ContractInput  true  "Contract"
// @Success      201       {object}  models.Contract
// @Failure      400       {object}  ErrorResponse
// @Router       /api/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req models.ContractInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	contract, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// @Summary      Update a contract
// @Tags         Contracts
// @Accept       json
// @Produce      json
// @Param        contract  body      models.ContractInput  true  "Contract with id"
// @Success      200       {object}  models.Contract
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /api/contracts [put]
func (h *ContractHandler) Update(c *gin.Context) {
	var req models.ContractInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	contract, err := h.Service.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// @Summary      Deactivate a contract
// @Tags         Contracts
// @Produce      json
// @Param        id   path      int  true  "Contract ID"
// @Success      200  {object}  ContractResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contracts/{id} [delete]
func (h *ContractHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contract, err := h.Service.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	requestLog(c, h.Log).Info("[contract][deactivate] done", "contract_id", id)
	c.JSON(http.StatusOK, ContractResponse{Message: "contract deactivated", Contract: contract})
}

// @Summary      Get a contract
// @Tags         Contracts
// @Produce      json
// @Param        id       path      int     true   "Contract ID"
// @Param        details  query     string  false  "client,card"
// @Success      200      {object}  models.Contract
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opts, err := parseDetails(c, models.KindContract)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	contract, err := h.Service.Get(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// @Summary      List contracts
// @Tags         Contracts
// @Produce      json
// @Param        active     query     bool    false  "Filter by active flag"
// @Param        client_id  query     int     false  "Filter by client"
// @Param        card_id    query     int     false  "Filter by card"
// @Param        details    query     string  false  "client,card"
// @Success      200        {array}   models.Contract
// @Failure      400        {object}  ErrorResponse
// @Router       /api/contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	clientID, err := parseOptionalID(c, "client_id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	cardID, err := parseOptionalID(c, "card_id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	opts, err := parseDetails(c, models.KindContract)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	filter := models.ContractFilter{Active: active, ClientID: clientID, CardID: cardID}
	contracts, err := h.Service.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// @Summary      Contract as PDF
// @Tags         Contracts
// @Produce      application/pdf
// @Param        id   path      int  true  "Contract ID"
// @Success      200  {file}    file
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contracts/{id}/pdf [get]
func (h *ContractHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contract, err := h.Service.Get(c.Request.Context(), id, models.DetailOptions{Client: true, Card: true})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if contract.Client == nil || contract.Card == nil {
		respondError(c, h.Log, apperrors.Newf(apperrors.CodeInternal, "contract %d references are missing", id))
		return
	}

	var buf bytes.Buffer
	err = h.Docs.ContractPDF(&buf, pdf.ContractData{
		Contract: *contract,
		Client:   *contract.Client,
		Card:     *contract.Card,
		IssuedAt: h.Clock.Now(),
		Issuer:   "cardhub",
	})
	if err != nil {
		respondError(c, h.Log, apperrors.Wrap(err, apperrors.CodeInternal, "pdf generation failed"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="contract_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
