package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// TableClient provides record operations on tables of the remote API. It
// satisfies the rows.TableAPI capability.
type TableClient struct {
	client *Client
	logger log.Logger
}

// NewTableClient creates a new table client.
func NewTableClient(client *Client) *TableClient {
	return &TableClient{
		client: client,
		logger: client.logger.WithComponent("table-client"),
	}
}

func recordsPath(tableID string) string {
	return fmtPath("/api/v2/tables/%s/records", tableID)
}

// ListRows fetches one page of rows from a table.
func (t *TableClient) ListRows(ctx context.Context, tableID string, q types.ListQuery) (*types.RowPage, error) {
	t.logger.Debug("listing rows", log.Str("table", tableID), log.Int("offset", q.Offset))

	query := url.Values{}
	if q.Where != "" {
		query.Set("where", q.Where)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}

	body, err := t.client.do(ctx, http.MethodGet, recordsPath(tableID), query, nil)
	if err != nil {
		return nil, err
	}

	page := &types.RowPage{
		IsLast: gjson.GetBytes(body, "pageInfo.isLastPage").Bool(),
		Total:  int(gjson.GetBytes(body, "pageInfo.totalRows").Int()),
	}
	list := gjson.GetBytes(body, "list")
	if list.Exists() {
		if err := json.Unmarshal([]byte(list.Raw), &page.Rows); err != nil {
			return nil, types.NewAPIError(types.CodeNetwork, 0, "malformed list response: %v", err)
		}
	}
	// Without pageInfo, a short page is the last one.
	if !gjson.GetBytes(body, "pageInfo").Exists() {
		page.IsLast = q.Limit <= 0 || len(page.Rows) < q.Limit
	}
	return page, nil
}

// CreateRow creates a single row and returns the created record.
func (t *TableClient) CreateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	body, err := t.client.do(ctx, http.MethodPost, recordsPath(tableID), nil, row)
	if err != nil {
		return nil, err
	}
	return decodeRow(body)
}

// CreateRows creates a batch of rows in one call and returns the created
// records.
func (t *TableClient) CreateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error) {
	t.logger.Debug("bulk creating rows", log.Str("table", tableID), log.Int("count", len(rowList)))
	body, err := t.client.do(ctx, http.MethodPost, recordsPath(tableID), nil, rowList)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// UpdateRow updates a single row (identified by its Id field) and returns
// the updated record.
func (t *TableClient) UpdateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	body, err := t.client.do(ctx, http.MethodPatch, recordsPath(tableID), nil, row)
	if err != nil {
		return nil, err
	}
	return decodeRow(body)
}

// UpdateRows updates a batch of rows in one call.
func (t *TableClient) UpdateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error) {
	t.logger.Debug("bulk updating rows", log.Str("table", tableID), log.Int("count", len(rowList)))
	body, err := t.client.do(ctx, http.MethodPatch, recordsPath(tableID), nil, rowList)
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// DeleteRow deletes a single row (identified by its Id field).
func (t *TableClient) DeleteRow(ctx context.Context, tableID string, row types.Row) error {
	_, err := t.client.do(ctx, http.MethodDelete, recordsPath(tableID), nil, deletePayload(row))
	return err
}

// DeleteRows deletes a batch of rows in one call and returns the number of
// deleted records.
func (t *TableClient) DeleteRows(ctx context.Context, tableID string, rowList []types.Row) (int, error) {
	t.logger.Debug("bulk deleting rows", log.Str("table", tableID), log.Int("count", len(rowList)))
	payload := make([]types.Row, len(rowList))
	for i, row := range rowList {
		payload[i] = deletePayload(row)
	}
	if _, err := t.client.do(ctx, http.MethodDelete, recordsPath(tableID), nil, payload); err != nil {
		return 0, err
	}
	return len(rowList), nil
}

// deletePayload narrows a row to its identifier, which is all the delete
// endpoint accepts.
func deletePayload(row types.Row) types.Row {
	if id, ok := row[types.IDField]; ok {
		return types.Row{types.IDField: id}
	}
	return row
}

func decodeRow(body []byte) (types.Row, error) {
	var row types.Row
	if len(body) == 0 {
		return types.Row{}, nil
	}
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, types.NewAPIError(types.CodeNetwork, 0, "malformed record response: %v", err)
	}
	return row, nil
}

func decodeRows(body []byte) ([]types.Row, error) {
	if len(body) == 0 {
		return nil, nil
	}
	// Some deployments answer a bulk call with a single object.
	if gjson.ParseBytes(body).IsObject() {
		row, err := decodeRow(body)
		if err != nil {
			return nil, err
		}
		return []types.Row{row}, nil
	}
	var rowList []types.Row
	if err := json.Unmarshal(body, &rowList); err != nil {
		return nil, types.NewAPIError(types.CodeNetwork, 0, "malformed record list response: %v", err)
	}
	return rowList, nil
}
