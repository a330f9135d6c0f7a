package rows

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// fakeTableAPI is an in-memory TableAPI with programmable behavior.
type fakeTableAPI struct {
	rows []types.Row

	failSingleOn map[int]error // by call sequence (0-based) within single-row ops
	failBulk     error

	singleCalls int
	bulkCalls   [][]types.Row
	listCalls   int
}

func newFakeTableAPI() *fakeTableAPI {
	return &fakeTableAPI{failSingleOn: map[int]error{}}
}

func (f *fakeTableAPI) singleErr() error {
	err := f.failSingleOn[f.singleCalls]
	f.singleCalls++
	return err
}

func (f *fakeTableAPI) ListRows(ctx context.Context, tableID string, q types.ListQuery) (*types.RowPage, error) {
	f.listCalls++
	var matched []types.Row
	for _, row := range f.rows {
		if q.Where == "" || rowMatchesWhere(row, q.Where) {
			matched = append(matched, row)
		}
	}
	start := q.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return &types.RowPage{
		Rows:   matched[start:end],
		IsLast: end == len(matched),
		Total:  len(matched),
	}, nil
}

// rowMatchesWhere understands the "(field,eq,value)" filters the engine
// builds.
func rowMatchesWhere(row types.Row, where string) bool {
	if len(where) < 2 || where[0] != '(' || where[len(where)-1] != ')' {
		return false
	}
	field, value, ok := splitWhere(where[1 : len(where)-1])
	if !ok {
		return false
	}
	return fmt.Sprintf("%v", row[field]) == value
}

func splitWhere(inner string) (field, value string, ok bool) {
	first := -1
	second := -1
	for i, r := range inner {
		if r == ',' {
			if first < 0 {
				first = i
			} else {
				second = i
				break
			}
		}
	}
	if first < 0 || second < 0 {
		return "", "", false
	}
	return inner[:first], inner[second+1:], true
}

func (f *fakeTableAPI) CreateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	if err := f.singleErr(); err != nil {
		return nil, err
	}
	created := row.Clone()
	created[types.IDField] = len(f.rows) + 1
	f.rows = append(f.rows, created)
	return created, nil
}

func (f *fakeTableAPI) CreateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error) {
	f.bulkCalls = append(f.bulkCalls, rowList)
	if f.failBulk != nil {
		return nil, f.failBulk
	}
	out := make([]types.Row, len(rowList))
	for i, row := range rowList {
		created := row.Clone()
		created[types.IDField] = len(f.rows) + 1
		f.rows = append(f.rows, created)
		out[i] = created
	}
	return out, nil
}

func (f *fakeTableAPI) UpdateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	if err := f.singleErr(); err != nil {
		return nil, err
	}
	return row.Clone(), nil
}

func (f *fakeTableAPI) UpdateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error) {
	f.bulkCalls = append(f.bulkCalls, rowList)
	if f.failBulk != nil {
		return nil, f.failBulk
	}
	return rowList, nil
}

func (f *fakeTableAPI) DeleteRow(ctx context.Context, tableID string, row types.Row) error {
	return f.singleErr()
}

func (f *fakeTableAPI) DeleteRows(ctx context.Context, tableID string, rowList []types.Row) (int, error) {
	f.bulkCalls = append(f.bulkCalls, rowList)
	if f.failBulk != nil {
		return 0, f.failBulk
	}
	return len(rowList), nil
}

func testRows(n int) []types.Row {
	out := make([]types.Row, n)
	for i := range out {
		out[i] = types.Row{"Name": fmt.Sprintf("row-%d", i)}
	}
	return out
}

func newTestService(api TableAPI) *Service {
	return NewService(api, log.NewNopLogger())
}

func TestBulkCreateContinueOnError(t *testing.T) {
	api := newFakeTableAPI()
	api.failSingleOn[1] = types.NewAPIError(types.CodeNotFound, 404, "table row not found")
	svc := newTestService(api)

	input := testRows(3)
	result, err := svc.BulkCreate(context.Background(), "t1", input, types.DefaultBulkOptions())
	require.NoError(t, err)

	require.NotNil(t, result.Created)
	assert.Equal(t, 2, *result.Created)
	require.NotNil(t, result.Failed)
	assert.Equal(t, 1, *result.Failed)
	require.Len(t, result.Errors, 1)

	e := result.Errors[0]
	assert.Equal(t, 1, e.Index)
	assert.Equal(t, input[1], e.Item)
	assert.Equal(t, types.CodeNotFound, e.Code)
	assert.Contains(t, e.Error, "not found")

	// Successful items only, in processing order.
	require.Len(t, result.Data, 2)
	assert.Equal(t, "row-0", result.Data[0]["Name"])
	assert.Equal(t, "row-2", result.Data[1]["Name"])
}

func TestBulkCreateAllSucceedOmitsFailureFields(t *testing.T) {
	api := newFakeTableAPI()
	svc := newTestService(api)

	result, err := svc.BulkCreate(context.Background(), "t1", testRows(4), types.DefaultBulkOptions())
	require.NoError(t, err)

	require.NotNil(t, result.Created)
	assert.Equal(t, 4, *result.Created)
	assert.Nil(t, result.Failed, "failed must be absent, not zero")
	assert.Nil(t, result.Errors)
	assert.Len(t, result.Data, 4)
}

func TestBulkCreateFailFastChunking(t *testing.T) {
	api := newFakeTableAPI()
	svc := newTestService(api)

	opts := types.BulkOptions{FailFast: true, BatchSize: 1000}
	result, err := svc.BulkCreate(context.Background(), "t1", testRows(2500), opts)
	require.NoError(t, err)

	require.Len(t, api.bulkCalls, 3)
	assert.Len(t, api.bulkCalls[0], 1000)
	assert.Len(t, api.bulkCalls[1], 1000)
	assert.Len(t, api.bulkCalls[2], 500)

	require.NotNil(t, result.Created)
	assert.Equal(t, 2500, *result.Created)
	assert.Nil(t, result.Failed)
	assert.Nil(t, result.Data, "fail-fast mode does not collect per-item data")
}

func TestBulkCreateFailFastAbortsOnFirstError(t *testing.T) {
	api := newFakeTableAPI()
	api.failBulk = types.NewAPIError(types.CodeValidation, 400, "bad column")
	svc := newTestService(api)

	opts := types.BulkOptions{FailFast: true, BatchSize: 10}
	result, err := svc.BulkCreate(context.Background(), "t1", testRows(25), opts)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Len(t, api.bulkCalls, 1, "remaining chunks must not be sent")
}

func TestBulkModeSelection(t *testing.T) {
	tests := []struct {
		name        string
		opts        types.BulkOptions
		wantBatched bool
	}{
		{"defaults are per-item", types.DefaultBulkOptions(), false},
		{"continue-on-error alone is per-item", types.BulkOptions{ContinueOnError: true}, false},
		{"fail-fast alone is batched", types.BulkOptions{FailFast: true}, true},
		{"fail-fast wins over continue-on-error", types.BulkOptions{FailFast: true, ContinueOnError: true}, true},
		{"no error tolerance is batched", types.BulkOptions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeTableAPI()
			svc := newTestService(api)

			_, err := svc.BulkCreate(context.Background(), "t1", testRows(3), tt.opts)
			require.NoError(t, err)
			if tt.wantBatched {
				assert.Len(t, api.bulkCalls, 1)
				assert.Zero(t, api.singleCalls)
			} else {
				assert.Empty(t, api.bulkCalls)
				assert.Equal(t, 3, api.singleCalls)
			}
		})
	}
}

func TestBulkMutateNilInputIsValidationError(t *testing.T) {
	svc := newTestService(newFakeTableAPI())

	for _, run := range []func() (*types.BulkResult, error){
		func() (*types.BulkResult, error) {
			return svc.BulkCreate(context.Background(), "t1", nil, types.DefaultBulkOptions())
		},
		func() (*types.BulkResult, error) {
			return svc.BulkUpdate(context.Background(), "t1", nil, types.DefaultBulkOptions())
		},
		func() (*types.BulkResult, error) {
			return svc.BulkDelete(context.Background(), "t1", nil, types.DefaultBulkOptions())
		},
	} {
		result, err := run()
		assert.Nil(t, result)
		assert.True(t, types.IsValidationError(err))
	}
}

func TestBulkUpdateAndDeleteCounters(t *testing.T) {
	api := newFakeTableAPI()
	api.failSingleOn[0] = types.NewAPIError(types.CodeConflict, 409, "locked")
	svc := newTestService(api)

	updated, err := svc.BulkUpdate(context.Background(), "t1", testRows(2), types.DefaultBulkOptions())
	require.NoError(t, err)
	require.NotNil(t, updated.Updated)
	assert.Equal(t, 1, *updated.Updated)
	assert.Nil(t, updated.Created)
	require.Len(t, updated.Errors, 1)
	assert.Equal(t, types.CodeConflict, updated.Errors[0].Code)

	api2 := newFakeTableAPI()
	svc2 := newTestService(api2)
	deleted, err := svc2.BulkDelete(context.Background(), "t1", testRows(3), types.DefaultBulkOptions())
	require.NoError(t, err)
	require.NotNil(t, deleted.Deleted)
	assert.Equal(t, 3, *deleted.Deleted)
	// Delete reports the input rows back as data.
	assert.Len(t, deleted.Data, 3)
}

func TestBulkErrorsPreserveOriginalIndexes(t *testing.T) {
	api := newFakeTableAPI()
	api.failSingleOn[0] = fmt.Errorf("boom 0")
	api.failSingleOn[3] = fmt.Errorf("boom 3")
	svc := newTestService(api)

	result, err := svc.BulkCreate(context.Background(), "t1", testRows(5), types.DefaultBulkOptions())
	require.NoError(t, err)

	require.NotNil(t, result.Failed)
	assert.Equal(t, 2, *result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 0, result.Errors[0].Index)
	assert.Equal(t, 3, result.Errors[1].Index)
	// Untyped errors carry no classification code.
	assert.Empty(t, result.Errors[0].Code)
	require.NotNil(t, result.Created)
	assert.Equal(t, 3, *result.Created)
}
