package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dukerupert/famdesk/internal/model"
)

// ListFamily returns the signed-in user's family members in backend order.
// A response that is not a JSON array is treated as an empty list.
func (c *Client) ListFamily(ctx context.Context) ([]model.FamilyMember, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/family", nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []model.FamilyMember{}, nil
	}

	var members []model.FamilyMember
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, fmt.Errorf("decode family members: %w", err)
	}
	if members == nil {
		members = []model.FamilyMember{}
	}
	return members, nil
}

func (c *Client) CreateFamily(ctx context.Context, in model.FamilyMemberInput) error {
	return c.do(ctx, http.MethodPost, "/family", in, nil)
}

func (c *Client) UpdateFamily(ctx context.Context, id string, in model.FamilyMemberInput) error {
	return c.do(ctx, http.MethodPut, "/family/"+url.PathEscape(id), in, nil)
}

func (c *Client) DeleteFamily(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/family/"+url.PathEscape(id), nil, nil)
}
