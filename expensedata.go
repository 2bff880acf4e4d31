package extend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"
)

// ExpenseCategory is an account level expense category.
type ExpenseCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Active   bool   `json:"active"`
	Required bool   `json:"required"`
	// FreeTextAllowed permits values outside the category's labels.
	FreeTextAllowed       bool `json:"freeTextAllowed"`
	IntegratorEnabled     bool `json:"integratorEnabled"`
	IntegratorFieldNumber *int `json:"integratorFieldNumber,omitempty"`
}

// ExpenseLabel is a selectable value of an expense category.
type ExpenseLabel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	Active bool   `json:"active"`
}

// ExpenseCategoriesParams filters the category list.
type ExpenseCategoriesParams struct {
	Active   *bool  `url:"active,omitempty"`
	Required *bool  `url:"required,omitempty"`
	Search   string `url:"search,omitempty"`
}

// ExpenseLabelsParams filters and pages the labels of a category.
type ExpenseLabelsParams struct {
	PageParams
	Active *bool  `url:"active,omitempty"`
	Search string `url:"search,omitempty"`
}

// ExpenseLabelsList is a page of expense labels.
type ExpenseLabelsList struct {
	Pagination    Pagination     `json:"pagination"`
	ExpenseLabels []ExpenseLabel `json:"expenseLabels"`
}

// CreateExpenseCategoryRequest holds the fields of a new expense category.
type CreateExpenseCategoryRequest struct {
	Name                  string `json:"name" validate:"required"`
	Code                  string `json:"code" validate:"required"`
	Required              *bool  `json:"required,omitempty"`
	Active                *bool  `json:"active,omitempty"`
	FreeTextAllowed       *bool  `json:"freeTextAllowed,omitempty"`
	IntegratorEnabled     *bool  `json:"integratorEnabled,omitempty"`
	IntegratorFieldNumber *int   `json:"integratorFieldNumber,omitempty" validate:"omitnil,gt=0"`
}

// UpdateExpenseCategoryRequest holds the fields of a category update.
// Fields left empty are not changed.
type UpdateExpenseCategoryRequest struct {
	Name                  string `json:"name,omitempty"`
	Required              *bool  `json:"required,omitempty"`
	Active                *bool  `json:"active,omitempty"`
	FreeTextAllowed       *bool  `json:"freeTextAllowed,omitempty"`
	IntegratorEnabled     *bool  `json:"integratorEnabled,omitempty"`
	IntegratorFieldNumber *int   `json:"integratorFieldNumber,omitempty" validate:"omitnil,gt=0"`
}

// CreateExpenseLabelRequest holds the fields of a new expense label.
type CreateExpenseLabelRequest struct {
	Name   string `json:"name" validate:"required"`
	Code   string `json:"code" validate:"required"`
	Active *bool  `json:"active,omitempty"`
}

// UpdateExpenseLabelRequest holds the fields of a label update.
// Fields left empty are not changed.
type UpdateExpenseLabelRequest struct {
	Name   string `json:"name,omitempty"`
	Code   string `json:"code,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

type expenseCategoriesEnvelope struct {
	ExpenseCategories []ExpenseCategory `json:"expenseCategories"`
}

// ExpenseDataService groups the expense category endpoints.
type ExpenseDataService struct {
	client *Client
}

// Categories lists the expense categories of the account.
func (s *ExpenseDataService) Categories(ctx context.Context, params ExpenseCategoriesParams) ([]ExpenseCategory, error) {
	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, "expensedata/categories", v, nil)
	if err != nil {
		return nil, err
	}

	var result expenseCategoriesEnvelope
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return result.ExpenseCategories, nil
}

// Category retrieves a single expense category.
func (s *ExpenseDataService) Category(ctx context.Context, categoryID string) (*ExpenseCategory, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, categoryPath(categoryID, ""), nil, nil)
	if err != nil {
		return nil, err
	}

	var result ExpenseCategory
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CategoryLabels retrieves a page of the labels of an expense category.
func (s *ExpenseDataService) CategoryLabels(
	ctx context.Context,
	categoryID string,
	params ExpenseLabelsParams,
) (*ExpenseLabelsList, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}

	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, categoryPath(categoryID, "labels"), v, nil)
	if err != nil {
		return nil, err
	}

	var result ExpenseLabelsList
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CreateCategory creates an expense category.
func (s *ExpenseDataService) CreateCategory(ctx context.Context, r CreateExpenseCategoryRequest) (*ExpenseCategory, error) {
	if err := validateStruct(&r); err != nil {
		return nil, err
	}

	var result ExpenseCategory
	if err := s.send(ctx, http.MethodPost, "expensedata/categories", r, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateCategory changes the name, flags or integrator settings of a category.
func (s *ExpenseDataService) UpdateCategory(
	ctx context.Context,
	categoryID string,
	r UpdateExpenseCategoryRequest,
) (*ExpenseCategory, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}
	if err := validateStruct(&r); err != nil {
		return nil, err
	}

	var result ExpenseCategory
	if err := s.send(ctx, http.MethodPatch, categoryPath(categoryID, ""), r, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// CreateCategoryLabel adds a label to an expense category.
func (s *ExpenseDataService) CreateCategoryLabel(
	ctx context.Context,
	categoryID string,
	r CreateExpenseLabelRequest,
) (*ExpenseLabel, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}
	if err := validateStruct(&r); err != nil {
		return nil, err
	}

	var result ExpenseLabel
	if err := s.send(ctx, http.MethodPost, categoryPath(categoryID, "labels"), r, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateCategoryLabel changes the name, code or state of a label.
func (s *ExpenseDataService) UpdateCategoryLabel(
	ctx context.Context,
	categoryID, labelID string,
	r UpdateExpenseLabelRequest,
) (*ExpenseLabel, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}
	if err := requireID("labelId", labelID); err != nil {
		return nil, err
	}

	var result ExpenseLabel
	path := categoryPath(categoryID, "labels/"+url.PathEscape(labelID))
	if err := s.send(ctx, http.MethodPatch, path, r, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// send issues a JSON request and decodes the bare resource into v.
func (s *ExpenseDataService) send(ctx context.Context, method, path string, body, v any) error {
	req, err := s.client.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}

	_, err = s.client.doJSON(req, v)
	return err
}

func categoryPath(categoryID, action string) string {
	p := fmt.Sprintf("expensedata/categories/%s", url.PathEscape(categoryID))
	if action != "" {
		p += "/" + action
	}
	return p
}
