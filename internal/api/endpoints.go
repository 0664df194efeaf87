package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/finai-dev/finai/internal/chat"
	"github.com/finai-dev/finai/internal/model"
)

// Summary fetches the balance, income and spending totals.
func (c *Client) Summary(ctx context.Context) (model.Summary, error) {
	return get[model.Summary](ctx, c, "/summary")
}

// Transactions lists every transaction, ordered by date on the server.
func (c *Client) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return get[[]model.Transaction](ctx, c, "/transactions")
}

// CreateTransaction submits a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, t model.Transaction) error {
	t.ID = ""
	return c.do(ctx, http.MethodPost, "/transactions", t, nil)
}

// UpdateTransaction replaces the transaction with the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, t model.Transaction) error {
	t.ID = ""
	return c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), t, nil)
}

// DeleteTransaction removes the transaction with the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil)
}

// CategorySummary fetches expense totals per category.
func (c *Client) CategorySummary(ctx context.Context) ([]model.CategoryTotal, error) {
	return get[[]model.CategoryTotal](ctx, c, "/summary/categories")
}

// Goals lists goals without spent amounts.
func (c *Client) Goals(ctx context.Context) ([]model.Goal, error) {
	return get[[]model.Goal](ctx, c, "/goals")
}

// GoalsWithProgress lists goals with server-computed spent amounts.
func (c *Client) GoalsWithProgress(ctx context.Context) ([]model.Goal, error) {
	return get[[]model.Goal](ctx, c, "/goals/with-progress")
}

// CreateGoal submits a new monthly limit.
func (c *Client) CreateGoal(ctx context.Context, g model.GoalInput) error {
	return c.do(ctx, http.MethodPost, "/goals", g.Normalize(), nil)
}

// Insights fetches the advisory summary, suggestions and alerts.
func (c *Client) Insights(ctx context.Context) (model.Insights, error) {
	return get[model.Insights](ctx, c, "/ai/insights")
}

type chatReply struct {
	Reply string `json:"reply"`
}

// Ask sends one chat request. It satisfies chat.Advisor.
func (c *Client) Ask(ctx context.Context, req chat.Request) (string, error) {
	if req.History == nil {
		req.History = []model.ChatMessage{}
	}
	var out chatReply
	if err := c.do(ctx, http.MethodPost, "/ai/chat", req, &out); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return out.Reply, nil
}

var _ chat.Advisor = (*Client)(nil)
