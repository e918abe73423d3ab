package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

type billingRow struct {
	Month       *string  `json:"month"`
	TotalAmount *float64 `json:"total_amount"`
	UserID      *string  `json:"user_id"`
}

// ListMonthly reads the user's rows through PostgREST with the caller's token,
// so row level security on the table still applies.
func (c *Client) ListMonthly(ctx context.Context, userID string) ([]billing.Record, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", "eq."+userID)
	query.Set("order", "month.asc")
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(c.table), query.Encode())

	token, _ := auth.AccessTokenFrom(ctx)
	resp, err := c.get(ctx, endpoint, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "billing query failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "billing query rejected", statusError(resp, "billing query error"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "read billing rows", err)
	}
	records, err := decodeBillingRows(body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryFailed, "billing rows did not match the expected schema", err)
	}
	return records, nil
}

func decodeBillingRows(body []byte) ([]billing.Record, error) {
	var rows []billingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode billing rows: %w", err)
	}
	records := make([]billing.Record, 0, len(rows))
	for i, row := range rows {
		if row.Month == nil || row.TotalAmount == nil {
			return nil, fmt.Errorf("decode billing rows: row %d is missing month or total_amount", i)
		}
		rec := billing.Record{Month: *row.Month, TotalAmount: *row.TotalAmount}
		if row.UserID != nil {
			rec.UserID = *row.UserID
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ billing.Repository = (*Client)(nil)
