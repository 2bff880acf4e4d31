package extend

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
)

// Transaction represents a spend event against a virtual card.
type Transaction struct {
	// ID is the unique identifier of the transaction.
	ID string `json:"id"`
	// Status is the settlement state of the transaction.
	Status TransactionStatus `json:"status"`
	// Type distinguishes authorizations from clearings.
	Type TransactionType `json:"type"`
	// VirtualCardID is the card the transaction was made with.
	VirtualCardID string `json:"virtualCardId"`
	// MerchantName is the merchant as reported by the network.
	MerchantName string `json:"merchantName,omitempty"`
	// MCC is the merchant category code.
	MCC string `json:"mcc,omitempty"`
	// AuthBillingAmountCents is the authorized amount.
	AuthBillingAmountCents Cents `json:"authBillingAmountCents"`
	// ClearingBillingAmountCents is the final amount, once cleared.
	ClearingBillingAmountCents *Cents `json:"clearingBillingAmountCents,omitempty"`
	// AuthedAt is the authorization time.
	AuthedAt Time `json:"authedAt"`
	// ClearedAt is the clearing time.
	ClearedAt Time   `json:"clearedAt"`
	Notes     string `json:"notes,omitempty"`

	Supplier          *Party                      `json:"supplier,omitempty"`
	Customer          *Party                      `json:"customer,omitempty"`
	ExpenseCategories []ExpenseCategoryAssignment `json:"expenseCategories,omitempty"`
}

// Amount returns the cleared amount, or the authorized amount when the
// transaction has not cleared yet.
func (t Transaction) Amount() Cents {
	if t.ClearingBillingAmountCents != nil {
		return *t.ClearingBillingAmountCents
	}

	return t.AuthBillingAmountCents
}

// Date returns the clearing time, or the authorization time when the
// transaction has not cleared yet.
func (t Transaction) Date() time.Time {
	if !t.ClearedAt.IsZero() {
		return t.ClearedAt.Time
	}

	return t.AuthedAt.Time
}

// TransactionStatus defines the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusCleared  TransactionStatus = "CLEARED"
	TransactionStatusDeclined TransactionStatus = "DECLINED"
	TransactionStatusReversed TransactionStatus = "REVERSED"
)

// TransactionType distinguishes authorizations from clearings.
type TransactionType string

const (
	TransactionTypeAuth     TransactionType = "AUTH"
	TransactionTypeClearing TransactionType = "CLEARING"
)

// Party is a supplier or customer attached to a transaction.
type Party struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ExpenseCategoryAssignment links a transaction to an expense label.
type ExpenseCategoryAssignment struct {
	CategoryCode string `json:"categoryCode" validate:"required"`
	LabelCode    string `json:"labelCode,omitempty"`
}

// ExpenseDataUpdate holds the expense fields of a transaction.
// Fields left nil are not changed.
type ExpenseDataUpdate struct {
	Supplier          *Party                      `json:"supplier,omitempty"`
	Customer          *Party                      `json:"customer,omitempty"`
	ExpenseCategories []ExpenseCategoryAssignment `json:"expenseCategories,omitempty" validate:"dive"`
}

// ListTransactionsParams filters and pages the transaction list.
type ListTransactionsParams struct {
	PageParams
	// FromDate and ToDate bound the transaction dates, inclusive.
	FromDate      time.Time           `url:"fromDate,omitempty" layout:"2006-01-02"`
	ToDate        time.Time           `url:"toDate,omitempty" layout:"2006-01-02"`
	VirtualCardID string              `url:"virtualCardId,omitempty"`
	Statuses      []TransactionStatus `url:"statuses,omitempty,comma"`
	Search        string              `url:"search,omitempty"`
	SortField     string              `url:"sortField,omitempty"`
	SortDirection SortDirection       `url:"sortDirection,omitempty"`
}

// TransactionsList is a page of transactions.
type TransactionsList struct {
	Pagination   Pagination    `json:"pagination"`
	Transactions []Transaction `json:"transactions"`
}

type transactionEnvelope struct {
	Transaction Transaction `json:"transaction"`
}

// TransactionsService groups the transaction endpoints.
type TransactionsService struct {
	client *Client
}

// List retrieves a page of transactions.
func (s *TransactionsService) List(ctx context.Context, params ListTransactionsParams) (*TransactionsList, error) {
	if !params.FromDate.IsZero() && !params.ToDate.IsZero() &&
		dateOf(params.ToDate).Before(dateOf(params.FromDate)) {
		return nil, invalid("toDate", "must not be before fromDate")
	}

	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, "transactions", v, nil)
	if err != nil {
		return nil, err
	}

	var result TransactionsList
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListIter returns an iterator over all transactions matching params.
// Paging fields of params are ignored.
func (s *TransactionsService) ListIter(ctx context.Context, params ListTransactionsParams) iter.Seq2[Transaction, error] {
	return iterate(ctx, func(ctx context.Context, p PageParams) ([]Transaction, Pagination, error) {
		params.PageParams = p
		list, err := s.List(ctx, params)
		if err != nil {
			return nil, Pagination{}, err
		}
		return list.Transactions, list.Pagination, nil
	})
}

// Get retrieves a single transaction.
func (s *TransactionsService) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	if err := requireID("transactionId", transactionID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodGet, transactionPath(transactionID, ""), nil)
}

// UpdateExpenseData sets the supplier, customer and expense categories of a
// transaction.
func (s *TransactionsService) UpdateExpenseData(ctx context.Context, transactionID string, data ExpenseDataUpdate) (*Transaction, error) {
	if err := requireID("transactionId", transactionID); err != nil {
		return nil, err
	}
	if err := validateStruct(&data); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodPatch, transactionPath(transactionID, "expensedata"), data)
}

func (s *TransactionsService) send(ctx context.Context, method, path string, body any) (*Transaction, error) {
	req, err := s.client.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}

	var result transactionEnvelope
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}
	if result.Transaction.ID == "" {
		return nil, fmt.Errorf("%s %s: %w: no transaction in response", method, req.URL.Path, ErrDecode)
	}

	return &result.Transaction, nil
}

func transactionPath(transactionID, action string) string {
	p := fmt.Sprintf("transactions/%s", url.PathEscape(transactionID))
	if action != "" {
		p += "/" + action
	}
	return p
}
