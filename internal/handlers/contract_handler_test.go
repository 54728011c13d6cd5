package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/clock"
	"cardhub/internal/models"
	"cardhub/internal/pdf"
	"cardhub/internal/repositories/memory"
	"cardhub/internal/services"
)

type recordingGenerator struct {
	got pdf.ContractData
	err error
}

func (g *recordingGenerator) ContractPDF(w io.Writer, data pdf.ContractData) error {
	g.got = data
	if g.err != nil {
		return g.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 test")
	return err
}

func contractRouter(t *testing.T, gen pdf.Generator, clk clock.Clock) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	client := &models.Client{Name: "Ana", NationalID: "111", BirthDate: models.NewDate(1990, time.January, 1), IDRegular: true, Active: true}
	require.NoError(t, store.Clients().Create(ctx, client))
	card := &models.Card{Name: "Visa Gold", Type: models.CardTypeCredit, Network: "Visa", Active: true,
		StartDate: models.NewDate(2024, time.January, 1), EndDate: models.InfiniteDate}
	require.NoError(t, store.Cards().Create(ctx, card))
	contract := &models.Contract{ClientID: client.ID, CardID: card.ID, Active: true,
		StartDate: models.NewDate(2025, time.January, 2), EndDate: models.InfiniteDate}
	require.NoError(t, store.Contracts().Create(ctx, contract))

	lifecycle := services.NewLifecycleManager(services.LifecycleDeps{
		Clients: store.Clients(), Cards: store.Cards(), Contracts: store.Contracts(), Tx: store, Clock: clk,
	})
	svc := services.NewContractService(store.Contracts(), services.NewValidator(store.Clients()),
		services.NewRelationshipValidator(store.Clients(), store.Cards(), clk), lifecycle, clk)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewContractHandler(svc, gen, clk, nil)
	r.GET("/api/contracts/:id/pdf", h.PDF)
	return r
}

func TestContractPDFUsesInjectedClock(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)
	gen := &recordingGenerator{}
	r := contractRouter(t, gen, clock.Fixed{T: now})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contracts/1/pdf", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="contract_1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, now, gen.got.IssuedAt)
	assert.Equal(t, "Ana", gen.got.Client.Name)
	assert.Equal(t, "Visa Gold", gen.got.Card.Name)
	assert.Equal(t, int64(1), gen.got.Contract.ID)
}

func TestContractPDFGeneratorFailure(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("font missing")}
	r := contractRouter(t, gen, clock.Fixed{T: time.Now()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contracts/1/pdf", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"internal","message":"pdf generation failed"}}`, w.Body.String())
}
