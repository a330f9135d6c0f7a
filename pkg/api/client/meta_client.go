package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// Base is a remote database summary.
type Base struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Table is a remote table summary.
type Table struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	BaseID string `json:"base_id"`
}

// MetaClient provides read access to bases and tables.
type MetaClient struct {
	client *Client
	logger log.Logger
}

// NewMetaClient creates a new meta client.
func NewMetaClient(client *Client) *MetaClient {
	return &MetaClient{
		client: client,
		logger: client.logger.WithComponent("meta-client"),
	}
}

// ListBases lists the bases visible to the configured token.
func (m *MetaClient) ListBases(ctx context.Context) ([]Base, error) {
	m.logger.Debug("listing bases")
	body, err := m.client.do(ctx, http.MethodGet, "/api/v2/meta/bases", nil, nil)
	if err != nil {
		return nil, err
	}
	var bases []Base
	if err := decodeList(body, &bases); err != nil {
		return nil, err
	}
	return bases, nil
}

// ListTables lists the tables of a base.
func (m *MetaClient) ListTables(ctx context.Context, baseID string) ([]Table, error) {
	m.logger.Debug("listing tables", log.Str("base", baseID))
	body, err := m.client.do(ctx, http.MethodGet, fmtPath("/api/v2/meta/bases/%s/tables", baseID), nil, nil)
	if err != nil {
		return nil, err
	}
	var tables []Table
	if err := decodeList(body, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// decodeList unwraps the `list` envelope the meta endpoints use.
func decodeList(body []byte, v interface{}) error {
	raw := body
	if list := gjson.GetBytes(body, "list"); list.Exists() {
		raw = []byte(list.Raw)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return types.NewAPIError(types.CodeNetwork, 0, "malformed meta response: %v", err)
	}
	return nil
}
