package rows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/nocodb-cli/pkg/types"
)

func TestUpsertCreatesWhenNoMatch(t *testing.T) {
	api := newFakeTableAPI()
	svc := newTestService(api)

	result, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test", "Name": "A"}, "Email", "a@x.test", types.UpsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertCreated, result.Action)
	assert.Equal(t, "A", result.Row["Name"])
	assert.Len(t, api.rows, 1)
}

func TestUpsertUpdatesSingleMatch(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{{types.IDField: 7, "Email": "a@x.test", "Name": "old"}}
	svc := newTestService(api)

	result, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test", "Name": "new"}, "Email", "a@x.test", types.UpsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertUpdated, result.Action)
	// The matched row's identifier is injected into the payload.
	assert.Equal(t, 7, result.Row[types.IDField])
	assert.Equal(t, "new", result.Row["Name"])
}

func TestUpsertAmbiguousMatchFails(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{
		{types.IDField: 1, "Email": "a@x.test"},
		{types.IDField: 2, "Email": "a@x.test"},
	}
	svc := newTestService(api)

	_, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test"}, "Email", "a@x.test", types.UpsertOptions{})
	assert.True(t, types.IsValidationError(err))
}

func TestUpsertUpdateOnlyWithoutMatch(t *testing.T) {
	svc := newTestService(newFakeTableAPI())

	_, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test"}, "Email", "a@x.test", types.UpsertOptions{UpdateOnly: true})
	assert.True(t, types.IsNotFoundError(err))
}

func TestUpsertCreateOnlyWithMatch(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{{types.IDField: 1, "Email": "a@x.test"}}
	svc := newTestService(api)

	_, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test"}, "Email", "a@x.test", types.UpsertOptions{CreateOnly: true})
	assert.True(t, types.IsConflictError(err))
}

func TestUpsertMutuallyExclusiveOptions(t *testing.T) {
	svc := newTestService(newFakeTableAPI())

	_, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test"}, "Email", "a@x.test",
		types.UpsertOptions{CreateOnly: true, UpdateOnly: true})
	assert.True(t, types.IsValidationError(err))
}

func TestUpsertNilPayloadIsValidationError(t *testing.T) {
	svc := newTestService(newFakeTableAPI())

	_, err := svc.Upsert(context.Background(), "t1", nil, "Email", "a@x.test", types.UpsertOptions{})
	assert.True(t, types.IsValidationError(err))
}

// conflictThenMatchAPI simulates another writer creating the matching row
// between the initial query and the create call.
type conflictThenMatchAPI struct {
	*fakeTableAPI
	raced bool
}

func (c *conflictThenMatchAPI) CreateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	if !c.raced {
		c.raced = true
		c.rows = append(c.rows, types.Row{types.IDField: 42, "Email": row["Email"], "Name": "racer"})
		return nil, types.NewAPIError(types.CodeConflict, 409, "duplicate value")
	}
	return c.fakeTableAPI.CreateRow(ctx, tableID, row)
}

func TestUpsertConflictRetryUpdatesRacedRow(t *testing.T) {
	api := &conflictThenMatchAPI{fakeTableAPI: newFakeTableAPI()}
	svc := newTestService(api)

	result, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test", "Name": "mine"}, "Email", "a@x.test", types.UpsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.UpsertUpdated, result.Action)
	assert.Equal(t, 42, result.Row[types.IDField])
	assert.Equal(t, "mine", result.Row["Name"])
}

// alwaysConflictAPI keeps failing with a conflict and never exposes a match,
// so the single retry must re-raise the original error.
type alwaysConflictAPI struct {
	*fakeTableAPI
	creates int
}

func (a *alwaysConflictAPI) CreateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error) {
	a.creates++
	return nil, types.NewAPIError(types.CodeConflict, 409, "duplicate value")
}

func TestUpsertConflictRetryHappensAtMostOnce(t *testing.T) {
	api := &alwaysConflictAPI{fakeTableAPI: newFakeTableAPI()}
	svc := newTestService(api)

	_, err := svc.Upsert(context.Background(), "t1",
		types.Row{"Email": "a@x.test"}, "Email", "a@x.test", types.UpsertOptions{})
	require.Error(t, err)
	assert.True(t, types.IsConflictClass(err))
	assert.Equal(t, 1, api.creates, "the conflicting create is not reissued")
}

func TestBulkUpsertPartitionsNewAndExisting(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{
		{types.IDField: 1, "Email": "a@x.test", "Name": "old-a"},
		{types.IDField: 2, "Email": "b@x.test", "Name": "old-b"},
	}
	svc := newTestService(api)

	input := []types.Row{
		{"Email": "a@x.test", "Name": "new-a"},
		{"Email": "c@x.test", "Name": "new-c"},
	}
	result, err := svc.BulkUpsert(context.Background(), "t1", input, "Email", types.UpsertOptions{})
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "new-c", result.Created[0]["Name"])
	require.Len(t, result.Updated, 1)
	assert.Equal(t, 1, result.Updated[0][types.IDField])
	assert.Equal(t, "new-a", result.Updated[0]["Name"])
}

func TestBulkUpsertOmitsEmptyPartitions(t *testing.T) {
	api := newFakeTableAPI()
	svc := newTestService(api)

	input := []types.Row{{"Email": "a@x.test"}}
	result, err := svc.BulkUpsert(context.Background(), "t1", input, "Email", types.UpsertOptions{})
	require.NoError(t, err)

	assert.Len(t, result.Created, 1)
	assert.Nil(t, result.Updated, "updated must be absent when no rows matched")
	assert.Len(t, api.bulkCalls, 1, "no bulk update call for an empty partition")
}

func TestBulkUpsertAmbiguousMatchFails(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{
		{types.IDField: 1, "Email": "a@x.test"},
		{types.IDField: 2, "Email": "a@x.test"},
	}
	svc := newTestService(api)

	_, err := svc.BulkUpsert(context.Background(), "t1",
		[]types.Row{{"Email": "a@x.test"}}, "Email", types.UpsertOptions{})
	assert.True(t, types.IsValidationError(err))
	assert.Empty(t, api.bulkCalls, "no bulk call may be issued on a validation failure")
}

func TestBulkUpsertUpdateOnlyMissingMatchFails(t *testing.T) {
	api := newFakeTableAPI()
	api.rows = []types.Row{{types.IDField: 1, "Email": "a@x.test"}}
	svc := newTestService(api)

	_, err := svc.BulkUpsert(context.Background(), "t1",
		[]types.Row{{"Email": "zzz@x.test"}}, "Email", types.UpsertOptions{UpdateOnly: true})
	assert.True(t, types.IsValidationError(err))
}

func TestBulkUpsertNilInputIsValidationError(t *testing.T) {
	svc := newTestService(newFakeTableAPI())

	_, err := svc.BulkUpsert(context.Background(), "t1", nil, "Email", types.UpsertOptions{})
	assert.True(t, types.IsValidationError(err))
}

func TestFindMatchesPaginates(t *testing.T) {
	api := newFakeTableAPI()
	for i := 0; i < 2300; i++ {
		api.rows = append(api.rows, types.Row{types.IDField: i, "Group": "g1"})
	}
	svc := newTestService(api)

	matches, err := svc.findMatches(context.Background(), "t1", "Group", "g1")
	require.NoError(t, err)
	assert.Len(t, matches, 2300)
	assert.GreaterOrEqual(t, api.listCalls, 3, "2300 rows at page size 1000 needs 3 pages")
}
