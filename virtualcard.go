package extend

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

// VirtualCard represents a virtual card issued from a credit card.
type VirtualCard struct {
	// ID is the unique identifier of the virtual card.
	ID string `json:"id"`
	// Status is the lifecycle state of the card.
	Status VirtualCardStatus `json:"status"`
	// Recurs reports whether the card refills on a schedule.
	Recurs bool `json:"recurs"`
	// DisplayName is the name shown for the card.
	DisplayName string `json:"displayName"`
	// Expires is the card expiry as printed on the card.
	Expires string `json:"expires,omitempty"`
	// Currency is the ISO 4217 currency code.
	Currency string `json:"currency,omitempty"`
	// LimitCents is the spend limit.
	LimitCents Cents `json:"limitCents"`
	// BalanceCents is the remaining balance.
	BalanceCents Cents `json:"balanceCents"`
	// SpentCents is the amount spent so far.
	SpentCents Cents `json:"spentCents"`
	// Last4 are the last four digits of the card number.
	Last4 string `json:"last4,omitempty"`
	// ValidFrom is the start of the validity window.
	ValidFrom Time `json:"validFrom"`
	// ValidTo is the end of the validity window.
	ValidTo Time `json:"validTo"`
	// CreditCardID is the parent credit card.
	CreditCardID string `json:"creditCardId,omitempty"`
	// RecipientID identifies the user the card was sent to.
	RecipientID string `json:"recipientId,omitempty"`
	// CardholderID identifies the user allowed to spend on the card.
	CardholderID string `json:"cardholderId,omitempty"`
	// Recipient is present when the API expands the recipient.
	Recipient *User `json:"recipient,omitempty"`
	// Cardholder is present when the API expands the cardholder.
	Cardholder *User `json:"cardholder,omitempty"`
	// Notes are free form notes attached to the card.
	Notes string `json:"notes,omitempty"`
	// Recurrence is set for recurring cards.
	Recurrence *Recurrence `json:"recurrence,omitempty"`
	CreatedAt  Time        `json:"createdAt"`
	UpdatedAt  Time        `json:"updatedAt"`
}

// VirtualCardStatus defines the lifecycle state of a virtual card.
type VirtualCardStatus string

const (
	VirtualCardStatusPending   VirtualCardStatus = "PENDING"
	VirtualCardStatusActive    VirtualCardStatus = "ACTIVE"
	VirtualCardStatusCancelled VirtualCardStatus = "CANCELLED"
	VirtualCardStatusClosed    VirtualCardStatus = "CLOSED"
	VirtualCardStatusConsumed  VirtualCardStatus = "CONSUMED"
	VirtualCardStatusExpired   VirtualCardStatus = "EXPIRED"
)

// User is a recipient or cardholder.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Period is the unit a recurring card refills on.
type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
	PeriodYearly  Period = "YEARLY"
)

// Terminator defines when a recurrence ends.
type Terminator string

const (
	TerminatorNone        Terminator = "NONE"
	TerminatorCount       Terminator = "COUNT"
	TerminatorDate        Terminator = "DATE"
	TerminatorCountOrDate Terminator = "COUNT_OR_DATE"
)

// Recurrence configures how a recurring card refills.
type Recurrence struct {
	// BalanceCents is the balance restored on each refill.
	BalanceCents Cents `json:"balanceCents" validate:"gt=0"`
	// Period is the refill unit.
	Period Period `json:"period" validate:"oneof=DAILY WEEKLY MONTHLY YEARLY"`
	// Interval is the number of periods between refills.
	Interval int `json:"interval" validate:"gt=0"`
	// Terminator defines when the recurrence ends.
	Terminator Terminator `json:"terminator" validate:"oneof=NONE COUNT DATE COUNT_OR_DATE"`
	// Count is the number of refills, for COUNT and COUNT_OR_DATE.
	Count *int `json:"count,omitempty"`
	// Until is the last refill date, for DATE and COUNT_OR_DATE.
	Until time.Time `json:"until,omitzero"`
	// ByWeekDay is the weekday (0 Monday to 6 Sunday) for WEEKLY.
	ByWeekDay *int `json:"byWeekDay,omitempty"`
	// ByMonthDay is the day of month (1 to 28) for MONTHLY.
	ByMonthDay *int `json:"byMonthDay,omitempty"`
	// ByYearDay is the day of year (1 to 365) for YEARLY.
	ByYearDay *int `json:"byYearDay,omitempty"`
}

// CreateVirtualCardRequest holds the parameters of a new virtual card.
type CreateVirtualCardRequest struct {
	CreditCardID string `json:"creditCardId" validate:"required"`
	DisplayName  string `json:"displayName" validate:"required"`
	BalanceCents Cents  `json:"balanceCents" validate:"gt=0"`
	Currency     string `json:"currency,omitempty"`
	Notes        string `json:"notes,omitempty" validate:"max=500"`
	// Recipient is the email address the card is sent to.
	Recipient string `json:"recipient,omitempty" validate:"omitempty,email"`
	// Cardholder is the email address of the user allowed to spend.
	Cardholder string `json:"cardholder,omitempty" validate:"omitempty,email"`
	// ValidFrom may not lie in the past. Only the date is used.
	ValidFrom time.Time `json:"validFrom"`
	// ValidTo must fall after ValidFrom. A value without clock time is
	// extended to the end of that day. An explicit midnight is
	// indistinguishable from a date and is extended the same way; use
	// 23:59:59.999 or any other clock time to send an exact instant.
	ValidTo time.Time `json:"validTo"`
	// Recurs requires Recurrence. Setting Recurrence implies Recurs.
	Recurs     bool        `json:"recurs"`
	Recurrence *Recurrence `json:"recurrence,omitempty" validate:"required_if=Recurs true"`
}

// UpdateVirtualCardRequest holds the fields of a virtual card update.
type UpdateVirtualCardRequest struct {
	BalanceCents Cents     `json:"balanceCents" validate:"gt=0"`
	DisplayName  string    `json:"displayName,omitempty"`
	Notes        string    `json:"notes,omitempty" validate:"max=500"`
	ValidFrom    time.Time `json:"validFrom"`
	// ValidTo is extended to the end of its day when it has no clock
	// time, midnight included.
	ValidTo time.Time `json:"validTo"`
}

// virtualCardBody is the wire form of create and update requests.
type virtualCardBody struct {
	CreditCardID string          `json:"creditCardId,omitempty"`
	DisplayName  string          `json:"displayName,omitempty"`
	BalanceCents Cents           `json:"balanceCents"`
	Currency     string          `json:"currency,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Recipient    string          `json:"recipient,omitempty"`
	Cardholder   string          `json:"cardholder,omitempty"`
	ValidFrom    string          `json:"validFrom,omitempty"`
	ValidTo      string          `json:"validTo,omitempty"`
	Recurs       *bool           `json:"recurs,omitempty"`
	Recurrence   *recurrenceBody `json:"recurrence,omitempty"`
}

type recurrenceBody struct {
	BalanceCents Cents      `json:"balanceCents"`
	Period       Period     `json:"period"`
	Interval     int        `json:"interval"`
	Terminator   Terminator `json:"terminator"`
	Count        *int       `json:"count,omitempty"`
	Until        string     `json:"until,omitempty"`
	ByWeekDay    *int       `json:"byWeekDay,omitempty"`
	ByMonthDay   *int       `json:"byMonthDay,omitempty"`
	ByYearDay    *int       `json:"byYearDay,omitempty"`
}

func newRecurrenceBody(r *Recurrence) *recurrenceBody {
	b := &recurrenceBody{
		BalanceCents: r.BalanceCents,
		Period:       r.Period,
		Interval:     r.Interval,
		Terminator:   r.Terminator,
	}

	switch r.Terminator {
	case TerminatorCount, TerminatorCountOrDate:
		b.Count = r.Count
	}
	switch r.Terminator {
	case TerminatorDate, TerminatorCountOrDate:
		b.Until = endOfDay(r.Until)
	}
	switch r.Period {
	case PeriodWeekly:
		b.ByWeekDay = r.ByWeekDay
	case PeriodMonthly:
		b.ByMonthDay = r.ByMonthDay
	case PeriodYearly:
		b.ByYearDay = r.ByYearDay
	}

	return b
}

// ListVirtualCardsParams filters and pages the virtual card list.
type ListVirtualCardsParams struct {
	PageParams
	Statuses      []VirtualCardStatus `url:"statuses,omitempty,comma"`
	Recipient     string              `url:"recipient,omitempty"`
	Cardholder    string              `url:"cardholder,omitempty"`
	Search        string              `url:"search,omitempty"`
	SortField     string              `url:"sortField,omitempty"`
	SortDirection SortDirection       `url:"sortDirection,omitempty"`
}

// VirtualCardsList is a page of virtual cards.
type VirtualCardsList struct {
	Pagination   Pagination    `json:"pagination"`
	VirtualCards []VirtualCard `json:"virtualCards"`
}

type virtualCardEnvelope struct {
	VirtualCard VirtualCard `json:"virtualCard"`
}

// VirtualCardsService groups the virtual card endpoints.
type VirtualCardsService struct {
	client *Client
}

// List retrieves a page of virtual cards.
func (s *VirtualCardsService) List(ctx context.Context, params ListVirtualCardsParams) (*VirtualCardsList, error) {
	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, "virtualcards", v, nil)
	if err != nil {
		return nil, err
	}

	var result VirtualCardsList
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListIter returns an iterator over all virtual cards matching params.
// Paging fields of params are ignored.
func (s *VirtualCardsService) ListIter(ctx context.Context, params ListVirtualCardsParams) iter.Seq2[VirtualCard, error] {
	return iterate(ctx, func(ctx context.Context, p PageParams) ([]VirtualCard, Pagination, error) {
		params.PageParams = p
		list, err := s.List(ctx, params)
		if err != nil {
			return nil, Pagination{}, err
		}
		return list.VirtualCards, list.Pagination, nil
	})
}

// Get retrieves a single virtual card.
func (s *VirtualCardsService) Get(ctx context.Context, cardID string) (*VirtualCard, error) {
	if err := requireID("cardId", cardID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodGet, cardPath(cardID, ""), nil)
}

// Create issues a new virtual card.
func (s *VirtualCardsService) Create(ctx context.Context, r CreateVirtualCardRequest) (*VirtualCard, error) {
	if r.Recurrence != nil {
		r.Recurs = true
	}

	if err := validateStruct(&r); err != nil {
		return nil, err
	}
	now := s.client.now()
	if err := validateWindow(r.ValidFrom, r.ValidTo, now, true); err != nil {
		return nil, err
	}
	if r.Recurrence != nil {
		if err := validateRecurrence(r.Recurrence, now); err != nil {
			return nil, err
		}
	}

	body := virtualCardBody{
		CreditCardID: r.CreditCardID,
		DisplayName:  r.DisplayName,
		BalanceCents: r.BalanceCents,
		Currency:     r.Currency,
		Notes:        r.Notes,
		Recipient:    r.Recipient,
		Cardholder:   r.Cardholder,
		Recurs:       &r.Recurs,
	}
	if !r.ValidFrom.IsZero() {
		body.ValidFrom = startOfDay(r.ValidFrom)
	}
	if !r.ValidTo.IsZero() {
		body.ValidTo = endOfDay(r.ValidTo)
	}
	if r.Recurrence != nil {
		body.Recurrence = newRecurrenceBody(r.Recurrence)
	}

	s.client.logger.Debug("creating virtual card",
		zap.String("display_name", r.DisplayName),
		zap.Int64("balance_cents", int64(r.BalanceCents)),
		zap.Bool("recurs", r.Recurs),
	)

	return s.send(ctx, http.MethodPost, "virtualcards", body)
}

// Update changes the balance, name, notes or validity window of a card.
func (s *VirtualCardsService) Update(ctx context.Context, cardID string, r UpdateVirtualCardRequest) (*VirtualCard, error) {
	if err := requireID("cardId", cardID); err != nil {
		return nil, err
	}
	if err := validateStruct(&r); err != nil {
		return nil, err
	}
	if err := validateWindow(r.ValidFrom, r.ValidTo, s.client.now(), false); err != nil {
		return nil, err
	}

	body := virtualCardBody{
		BalanceCents: r.BalanceCents,
		DisplayName:  r.DisplayName,
		Notes:        r.Notes,
	}
	if !r.ValidFrom.IsZero() {
		body.ValidFrom = startOfDay(r.ValidFrom)
	}
	if !r.ValidTo.IsZero() {
		body.ValidTo = endOfDay(r.ValidTo)
	}

	return s.send(ctx, http.MethodPut, cardPath(cardID, ""), body)
}

// Cancel cancels a virtual card, preventing further transactions.
func (s *VirtualCardsService) Cancel(ctx context.Context, cardID string) (*VirtualCard, error) {
	if err := requireID("cardId", cardID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodPut, cardPath(cardID, "cancel"), struct{}{})
}

// Close permanently closes a virtual card. This cannot be undone.
func (s *VirtualCardsService) Close(ctx context.Context, cardID string) (*VirtualCard, error) {
	if err := requireID("cardId", cardID); err != nil {
		return nil, err
	}

	return s.send(ctx, http.MethodPut, cardPath(cardID, "close"), struct{}{})
}

// send issues a request answered with a single card envelope.
func (s *VirtualCardsService) send(ctx context.Context, method, path string, body any) (*VirtualCard, error) {
	req, err := s.client.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}

	var result virtualCardEnvelope
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}
	if result.VirtualCard.ID == "" {
		return nil, fmt.Errorf("%s %s: %w: no virtualCard in response", method, req.URL.Path, ErrDecode)
	}

	return &result.VirtualCard, nil
}

func cardPath(cardID, action string) string {
	p := fmt.Sprintf("virtualcards/%s", url.PathEscape(cardID))
	if action != "" {
		p += "/" + action
	}
	return p
}
