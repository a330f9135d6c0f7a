package types

// IDField is the record identifier field name used by the remote API.
const IDField = "Id"

// Row is a single record payload, as decoded from or destined for the
// remote API.
type Row map[string]interface{}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// BulkOperationError describes one failed item within a bulk operation.
// Index is the item's 0-based position in the original input sequence, not
// its position within a batch.
type BulkOperationError struct {
	Index int    `json:"index"`
	Item  Row    `json:"item"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// BulkResult is the aggregate outcome of a bulk operation. Exactly one of
// Created/Updated/Deleted is set, matching the operation kind. Failed and
// Errors are absent (not zero/empty) when every item succeeded.
type BulkResult struct {
	Created *int                 `json:"created,omitempty"`
	Updated *int                 `json:"updated,omitempty"`
	Deleted *int                 `json:"deleted,omitempty"`
	Failed  *int                 `json:"failed,omitempty"`
	Errors  []BulkOperationError `json:"errors,omitempty"`
	Data    []Row                `json:"data,omitempty"`
}

// Succeeded returns the operation's success count regardless of kind.
func (r *BulkResult) Succeeded() int {
	for _, n := range []*int{r.Created, r.Updated, r.Deleted} {
		if n != nil {
			return *n
		}
	}
	return 0
}

// UpsertAction identifies which branch an upsert took.
type UpsertAction string

// Upsert outcomes
const (
	UpsertCreated UpsertAction = "created"
	UpsertUpdated UpsertAction = "updated"
)

// UpsertResult is the outcome of a single-row upsert.
type UpsertResult struct {
	Action UpsertAction `json:"action"`
	Row    Row          `json:"row"`
}

// BulkUpsertResult reports a bulk upsert as a created/updated split. Either
// key is omitted entirely when its partition was empty.
type BulkUpsertResult struct {
	Created []Row `json:"created,omitempty"`
	Updated []Row `json:"updated,omitempty"`
}

// BulkOptions controls bulk operation execution. ContinueOnError selects
// per-item execution with partial-failure capture; when it is off, execution
// is batched and the first failure aborts. FailFast takes priority over
// ContinueOnError when both are set.
type BulkOptions struct {
	FailFast        bool
	ContinueOnError bool
	BatchSize       int
}

// DefaultBatchSize is the chunk size used when BulkOptions.BatchSize is not
// set.
const DefaultBatchSize = 1000

// DefaultBulkOptions returns the default execution options: continue on
// error, batches of 1000.
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{ContinueOnError: true, BatchSize: DefaultBatchSize}
}

// UpsertOptions controls upsert behavior. CreateOnly and UpdateOnly are
// mutually exclusive.
type UpsertOptions struct {
	CreateOnly bool
	UpdateOnly bool
}

// IntPtr returns a pointer to n, for optional result counters.
func IntPtr(n int) *int {
	return &n
}
