package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/models"
)

func TestContractPDF(t *testing.T) {
	email := "ana@example.com"
	data := ContractData{
		Contract: models.Contract{ID: 7, ClientID: 1, CardID: 2, Active: true,
			StartDate: models.NewDate(2025, time.March, 10), EndDate: models.InfiniteDate},
		Client: models.Client{ID: 1, Name: "Ana Conceição", NationalID: "111", Email: &email,
			BirthDate: models.NewDate(1990, time.January, 1), IDRegular: true, Active: true},
		Card: models.Card{ID: 2, Name: "Visa Gold", Type: models.CardTypeCredit, Network: "Visa",
			AnnualFee: decimal.RequireFromString("120")},
		IssuedAt: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		Issuer:   "cardhub",
	}

	var buf bytes.Buffer
	require.NoError(t, NewDocumentGenerator("").ContractPDF(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestContractPDFMissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := NewDocumentGenerator("/nonexistent/font.ttf").ContractPDF(&buf, ContractData{})
	assert.Error(t, err)
}

func TestEndDate(t *testing.T) {
	assert.Equal(t, "open", endDate(models.InfiniteDate))
	assert.Equal(t, "2025-03-10", endDate(models.NewDate(2025, time.March, 10)))
}
