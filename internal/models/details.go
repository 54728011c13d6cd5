package models

import (
	"sort"
	"strings"

	"cardhub/internal/apperrors"
)

type Kind string

const (
	KindClient   Kind = "client"
	KindCard     Kind = "card"
	KindContract Kind = "contract"
)

// DetailOptions are the related entities a caller asked to embed.
type DetailOptions struct {
	Client   bool
	Card     bool
	Contract bool
}

// legal detail names per kind; an entity never embeds its own kind
var allowedDetails = map[Kind]map[string]bool{
	KindClient:   {"contract": true, "card": true},
	KindCard:     {"contract": true, "client": true},
	KindContract: {"client": true, "card": true},
}

// ParseDetails turns the raw `details` query values into DetailOptions.
// Values may repeat or be comma separated. The Portuguese names are
// accepted too.
func ParseDetails(kind Kind, raw []string) (DetailOptions, error) {
	allowed, ok := allowedDetails[kind]
	if !ok {
		return DetailOptions{}, apperrors.Newf(apperrors.CodeInternal, "unknown entity kind %q", kind)
	}
	var opts DetailOptions
	var invalid []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			name := normalizeDetail(part)
			if name == "" {
				continue
			}
			if !allowed[name] {
				invalid = append(invalid, strings.TrimSpace(part))
				continue
			}
			switch name {
			case "client":
				opts.Client = true
			case "card":
				opts.Card = true
			case "contract":
				opts.Contract = true
			}
		}
	}
	if len(invalid) > 0 {
		legal := make([]string, 0, len(allowed))
		for k := range allowed {
			legal = append(legal, k)
		}
		sort.Strings(legal)
		return DetailOptions{}, apperrors.Aggregate(apperrors.CodeBadRequest,
			"invalid details for "+string(kind)+" (allowed: "+strings.Join(legal, ", ")+")", invalid)
	}
	return opts, nil
}

func normalizeDetail(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "clients", "cliente":
		return "client"
	case "card", "cards", "cartao":
		return "card"
	case "contract", "contracts", "contrato":
		return "contract"
	case "":
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// IncludeSpec is the eager-load plan consumed by the store.
//
// For Client and Card lookups Contracts embeds the related contracts and
// Client/Card embed the counterpart on each of those contracts. For
// Contract lookups Client/Card embed the contract's own references.
type IncludeSpec struct {
	Contracts bool
	Client    bool
	Card      bool
}

// Resolve maps the caller's options onto the store's eager-load plan.
func (o DetailOptions) Resolve(kind Kind) IncludeSpec {
	switch kind {
	case KindClient:
		return IncludeSpec{Contracts: o.Contract || o.Card, Card: o.Card}
	case KindCard:
		return IncludeSpec{Contracts: o.Contract || o.Client, Client: o.Client}
	case KindContract:
		return IncludeSpec{Client: o.Client, Card: o.Card}
	}
	return IncludeSpec{}
}
