package extend

import (
	"context"
	"iter"
	"net/http"

	"github.com/google/go-querystring/query"
)

// CreditCard is a funding card virtual cards are issued from.
type CreditCard struct {
	ID          string           `json:"id"`
	Status      CreditCardStatus `json:"status"`
	DisplayName string           `json:"displayName"`
	CompanyName string           `json:"companyName,omitempty"`
	// Last4 are the last four digits of the card number.
	Last4    string `json:"last4,omitempty"`
	Currency string `json:"currency,omitempty"`
	// Issuer describes the bank that issued the card.
	Issuer    *Issuer `json:"issuer,omitempty"`
	ValidFrom Time    `json:"validFrom"`
	ValidTo   Time    `json:"validTo"`
}

// CreditCardStatus defines the state of a credit card.
type CreditCardStatus string

const (
	CreditCardStatusActive    CreditCardStatus = "ACTIVE"
	CreditCardStatusCancelled CreditCardStatus = "CANCELLED"
	CreditCardStatusPending   CreditCardStatus = "PENDING"
)

// Issuer holds issuer metadata of a credit card.
type Issuer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// ListCreditCardsParams filters and pages the credit card list.
type ListCreditCardsParams struct {
	PageParams
	Statuses      []CreditCardStatus `url:"statuses,omitempty,comma"`
	Search        string             `url:"search,omitempty"`
	SortField     string             `url:"sortField,omitempty"`
	SortDirection SortDirection      `url:"sortDirection,omitempty"`
}

// CreditCardsList is a page of credit cards.
type CreditCardsList struct {
	Pagination  Pagination   `json:"pagination"`
	CreditCards []CreditCard `json:"creditCards"`
}

// CreditCardsService groups the credit card endpoints.
type CreditCardsService struct {
	client *Client
}

// List retrieves a page of the credit cards associated with the account.
func (s *CreditCardsService) List(ctx context.Context, params ListCreditCardsParams) (*CreditCardsList, error) {
	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, "creditcards", v, nil)
	if err != nil {
		return nil, err
	}

	var result CreditCardsList
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListIter returns an iterator over all credit cards matching params.
func (s *CreditCardsService) ListIter(ctx context.Context, params ListCreditCardsParams) iter.Seq2[CreditCard, error] {
	return iterate(ctx, func(ctx context.Context, p PageParams) ([]CreditCard, Pagination, error) {
		params.PageParams = p
		list, err := s.List(ctx, params)
		if err != nil {
			return nil, Pagination{}, err
		}
		return list.CreditCards, list.Pagination, nil
	})
}
