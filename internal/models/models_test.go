package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/apperrors"
)

func TestDateJSON(t *testing.T) {
	var in struct {
		D Date  `json:"d"`
		P *Date `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"1990-01-01","p":"2024-03-05T15:04:05Z"}`), &in))
	assert.Equal(t, NewDate(1990, time.January, 1), in.D)
	require.NotNil(t, in.P)
	assert.Equal(t, NewDate(2024, time.March, 5), *in.P)

	out, err := json.Marshal(in.D)
	require.NoError(t, err)
	assert.JSONEq(t, `"1990-01-01"`, string(out))

	var bad Date
	require.Error(t, json.Unmarshal([]byte(`"01/02/1990"`), &bad))
}

func TestWindowContainsComparesCalendarDays(t *testing.T) {
	w := Window{Start: NewDate(2024, time.January, 1), End: NewDate(2024, time.January, 31)}

	assert.True(t, w.Contains(NewDate(2024, time.January, 1)))
	assert.True(t, w.Contains(NewDate(2024, time.January, 31)))
	assert.True(t, w.Contains(DateOf(time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC))))
	assert.False(t, w.Contains(NewDate(2024, time.February, 1)))
	assert.False(t, w.Contains(NewDate(2023, time.December, 31)))
}

func TestDateOfUsesUTCDay(t *testing.T) {
	west := time.FixedZone("-03", -3*60*60)
	assert.Equal(t, NewDate(2024, time.May, 2), DateOf(time.Date(2024, time.May, 1, 23, 30, 0, 0, west)))

	d, err := ParseDate("2024-05-01T23:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", d.String())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := InfiniteDate.Value()
	require.NoError(t, err)
	assert.Equal(t, InfiniteDate.Time, v)
	assert.True(t, InfiniteDate.IsInfinite())
}

func TestParseCardType(t *testing.T) {
	for in, want := range map[string]CardType{"credito": CardTypeCredit, "Credit": CardTypeCredit, "débito": CardTypeDebit} {
		got, ok := ParseCardType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseCardType("prepaid")
	assert.False(t, ok)
}

func TestClientCanActivate(t *testing.T) {
	irregular := &Client{IDRegular: false, Active: false}
	assert.True(t, apperrors.HasCode(irregular.CanActivate(), apperrors.CodeInvalidState))

	irregularActive := &Client{IDRegular: false, Active: true}
	assert.True(t, apperrors.HasCode(irregularActive.CanActivate(), apperrors.CodeInvalidState))

	active := &Client{IDRegular: true, Active: true}
	assert.True(t, apperrors.HasCode(active.CanActivate(), apperrors.CodeInvalidState))

	inactive := &Client{IDRegular: true, Active: false}
	assert.NoError(t, inactive.CanActivate())
}

func TestParseDetails(t *testing.T) {
	opts, err := ParseDetails(KindContract, []string{"client", "cartao"})
	require.NoError(t, err)
	assert.Equal(t, DetailOptions{Client: true, Card: true}, opts)

	opts, err = ParseDetails(KindClient, []string{"contract,card", ""})
	require.NoError(t, err)
	assert.Equal(t, DetailOptions{Contract: true, Card: true}, opts)

	_, err = ParseDetails(KindClient, []string{"client", "bogus"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))
	assert.Equal(t, []string{"client", "bogus"}, apperrors.DetailsOf(err))
}

func TestResolveIncludeSpec(t *testing.T) {
	assert.Equal(t, IncludeSpec{Contracts: true, Card: true}, DetailOptions{Card: true}.Resolve(KindClient))
	assert.Equal(t, IncludeSpec{Contracts: true}, DetailOptions{Contract: true}.Resolve(KindClient))
	assert.Equal(t, IncludeSpec{Contracts: true, Client: true}, DetailOptions{Client: true}.Resolve(KindCard))
	assert.Equal(t, IncludeSpec{Client: true}, DetailOptions{Client: true}.Resolve(KindContract))
	assert.Equal(t, IncludeSpec{}, DetailOptions{}.Resolve(KindContract))
}
