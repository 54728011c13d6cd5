package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cardhub/internal/apperrors"
	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/services"
)

// PageHandler renders the read-only HTML views over the same services the
// JSON API uses.
type PageHandler struct {
	Clients   *services.ClientService
	Cards     *services.CardService
	Contracts *services.ContractService
	Log       *logger.Logger
}

func NewPageHandler(clients *services.ClientService, cards *services.CardService, contracts *services.ContractService, log *logger.Logger) *PageHandler {
	return &PageHandler{Clients: clients, Cards: cards, Contracts: contracts, Log: orNop(log)}
}

type listPage struct {
	Title  string
	Filter string
	Items  any
}

type viewPage struct {
	Title  string
	Filter string
	Item   any
}

type errorPage struct {
	Title   string
	Filter  string
	Message string
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		requestLog(c, h.Log).Error("[page][error] render failed", "path", c.FullPath(), "error", err)
	}
	c.HTML(status, "error", errorPage{Title: http.StatusText(status), Message: apperrors.PublicMessage(err)})
}

func filterLabel(active *bool) string {
	switch {
	case active == nil:
		return "all"
	case *active:
		return "active"
	default:
		return "inactive"
	}
}

func (h *PageHandler) ClientsIndex(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	filter := models.ClientFilter{Active: active, NationalID: c.Query("national_id")}
	clients, err := h.Clients.List(c.Request.Context(), filter, models.DetailOptions{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "clients", listPage{Title: "Clients", Filter: filterLabel(active), Items: clients})
}

func (h *PageHandler) ClientView(c *gin.Context) {
	id, err := pageID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	client, err := h.Clients.Get(c.Request.Context(), id, models.DetailOptions{Contract: true, Card: true})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "client", viewPage{Title: client.Name, Item: client})
}

func (h *PageHandler) CardsIndex(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	cards, err := h.Cards.List(c.Request.Context(), models.CardFilter{Active: active}, models.DetailOptions{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "cards", listPage{Title: "Cards", Filter: filterLabel(active), Items: cards})
}

func (h *PageHandler) CardView(c *gin.Context) {
	id, err := pageID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	card, err := h.Cards.Get(c.Request.Context(), id, models.DetailOptions{Contract: true, Client: true})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "card", viewPage{Title: card.Name, Item: card})
}

func (h *PageHandler) ContractsIndex(c *gin.Context) {
	active, err := parseActive(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	contracts, err := h.Contracts.List(c.Request.Context(), models.ContractFilter{Active: active}, models.DetailOptions{Client: true, Card: true})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "contracts", listPage{Title: "Contracts", Filter: filterLabel(active), Items: contracts})
}

func (h *PageHandler) ContractView(c *gin.Context) {
	id, err := pageID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	contract, err := h.Contracts.Get(c.Request.Context(), id, models.DetailOptions{Client: true, Card: true})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "contract", viewPage{Title: "Contract #" + c.Param("id"), Item: contract})
}

func pageID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}
