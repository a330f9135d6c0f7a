// Package rows implements the bulk row operation engine: batched
// create/update/delete with fail-fast or continue-on-error execution, and
// upsert with conflict-retry semantics.
package rows

import (
	"context"

	"github.com/google/uuid"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// TableAPI is the remote-call capability the engine needs. It is satisfied
// by client.TableClient; tests inject fakes.
type TableAPI interface {
	ListRows(ctx context.Context, tableID string, q types.ListQuery) (*types.RowPage, error)
	CreateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error)
	CreateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error)
	UpdateRow(ctx context.Context, tableID string, row types.Row) (types.Row, error)
	UpdateRows(ctx context.Context, tableID string, rowList []types.Row) ([]types.Row, error)
	DeleteRow(ctx context.Context, tableID string, row types.Row) error
	DeleteRows(ctx context.Context, tableID string, rowList []types.Row) (int, error)
}

// Service performs bulk row mutations against an injected TableAPI. Items
// are processed strictly sequentially so that error indexes and partial
// results are deterministic.
type Service struct {
	api    TableAPI
	logger log.Logger
}

// NewService creates a row service.
func NewService(api TableAPI, logger log.Logger) *Service {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Service{api: api, logger: logger.WithComponent("row-service")}
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

// BulkCreate creates rows in a table. See bulkMutate for execution modes.
func (s *Service) BulkCreate(ctx context.Context, tableID string, rowList []types.Row, opts types.BulkOptions) (*types.BulkResult, error) {
	return s.bulkMutate(ctx, tableID, rowList, opts, opCreate)
}

// BulkUpdate updates rows in a table; each row is matched by its Id field.
func (s *Service) BulkUpdate(ctx context.Context, tableID string, rowList []types.Row, opts types.BulkOptions) (*types.BulkResult, error) {
	return s.bulkMutate(ctx, tableID, rowList, opts, opUpdate)
}

// BulkDelete deletes rows from a table; each row is matched by its Id field.
func (s *Service) BulkDelete(ctx context.Context, tableID string, rowList []types.Row, opts types.BulkOptions) (*types.BulkResult, error) {
	return s.bulkMutate(ctx, tableID, rowList, opts, opDelete)
}

// bulkMutate runs one bulk mutation. FailFast mode issues one remote bulk
// call per chunk of BatchSize items and aborts on the first failure.
// Continue-on-error mode (the default) issues one remote call per item,
// captures failures with their original input position, and never aborts.
func (s *Service) bulkMutate(ctx context.Context, tableID string, rowList []types.Row, opts types.BulkOptions, kind opKind) (*types.BulkResult, error) {
	if rowList == nil {
		return nil, types.NewValidationError("bulk %s input must be a list of rows", kind)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = types.DefaultBatchSize
	}

	opLogger := s.logger.WithFields(
		log.Str("op", uuid.New().String()),
		log.Str("kind", kind.String()),
		log.Str("table", tableID),
	)
	opLogger.Debug("starting bulk operation",
		log.Int("items", len(rowList)),
		log.Bool("failFast", opts.FailFast),
		log.Bool("continueOnError", opts.ContinueOnError))

	// FailFast takes priority when both modes are requested.
	if opts.FailFast || !opts.ContinueOnError {
		return s.bulkBatched(ctx, tableID, rowList, opts.BatchSize, kind, opLogger)
	}
	return s.bulkSequential(ctx, tableID, rowList, kind, opLogger)
}

func (s *Service) bulkBatched(ctx context.Context, tableID string, rowList []types.Row, batchSize int, kind opKind, logger log.Logger) (*types.BulkResult, error) {
	for start := 0; start < len(rowList); start += batchSize {
		end := start + batchSize
		if end > len(rowList) {
			end = len(rowList)
		}
		chunk := rowList[start:end]

		var err error
		switch kind {
		case opCreate:
			_, err = s.api.CreateRows(ctx, tableID, chunk)
		case opUpdate:
			_, err = s.api.UpdateRows(ctx, tableID, chunk)
		case opDelete:
			_, err = s.api.DeleteRows(ctx, tableID, chunk)
		}
		if err != nil {
			logger.Debug("bulk chunk failed, aborting",
				log.Int("offset", start),
				log.Err(err))
			return nil, err
		}
	}
	return resultFor(kind, len(rowList)), nil
}

func (s *Service) bulkSequential(ctx context.Context, tableID string, rowList []types.Row, kind opKind, logger log.Logger) (*types.BulkResult, error) {
	succeeded := 0
	var data []types.Row
	var errs []types.BulkOperationError

	for i, row := range rowList {
		var out types.Row
		var err error
		switch kind {
		case opCreate:
			out, err = s.api.CreateRow(ctx, tableID, row)
		case opUpdate:
			out, err = s.api.UpdateRow(ctx, tableID, row)
		case opDelete:
			err = s.api.DeleteRow(ctx, tableID, row)
			out = row
		}
		if err != nil {
			code, _ := types.ErrorCode(err)
			errs = append(errs, types.BulkOperationError{
				Index: i,
				Item:  row,
				Error: err.Error(),
				Code:  code,
			})
			continue
		}
		succeeded++
		data = append(data, out)
	}

	result := resultFor(kind, succeeded)
	result.Data = data
	if len(errs) > 0 {
		result.Failed = types.IntPtr(len(errs))
		result.Errors = errs
		logger.Debug("bulk operation finished with failures",
			log.Int("succeeded", succeeded),
			log.Int("failed", len(errs)))
	}
	return result, nil
}

// resultFor builds a result with the counter matching the operation kind.
func resultFor(kind opKind, count int) *types.BulkResult {
	result := &types.BulkResult{}
	switch kind {
	case opCreate:
		result.Created = types.IntPtr(count)
	case opUpdate:
		result.Updated = types.IntPtr(count)
	case opDelete:
		result.Deleted = types.IntPtr(count)
	}
	return result
}
