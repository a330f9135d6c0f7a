package rows

import (
	"context"
	"fmt"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// matchPageSize is the page size used when querying for upsert matches.
const matchPageSize = 1000

// Upsert creates or updates a single row depending on whether a row with
// matchField == matchValue already exists.
//
// Exactly one existing match means update (the matched row's identifier is
// injected into the payload); zero matches means create. A create that fails
// with a conflict-class error is retried once by re-querying for the match
// and updating it if another writer has since created it.
func (s *Service) Upsert(ctx context.Context, tableID string, data types.Row, matchField string, matchValue interface{}, opts types.UpsertOptions) (*types.UpsertResult, error) {
	if data == nil {
		return nil, types.NewValidationError("upsert payload must be a single object")
	}
	if matchField == "" {
		return nil, types.NewValidationError("upsert match field is required")
	}
	if opts.CreateOnly && opts.UpdateOnly {
		return nil, types.NewValidationError("createOnly and updateOnly are mutually exclusive")
	}

	matches, err := s.findMatches(ctx, tableID, matchField, matchValue)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, types.NewValidationError("upsert match %s=%v is ambiguous: %d rows match", matchField, matchValue, len(matches))
	}

	if len(matches) == 0 {
		if opts.UpdateOnly {
			return nil, types.NewNotFoundError("no row matches %s=%v", matchField, matchValue)
		}
		created, err := s.api.CreateRow(ctx, tableID, data)
		if err == nil {
			return &types.UpsertResult{Action: types.UpsertCreated, Row: created}, nil
		}
		if !types.IsConflictClass(err) {
			return nil, err
		}
		// Another writer may have created a matching row between the query
		// and the create. Re-query once; if the match now exists, update it.
		s.logger.Debug("create conflict, re-querying for match",
			log.Str("table", tableID),
			log.Str("matchField", matchField))
		matches, retryErr := s.findMatches(ctx, tableID, matchField, matchValue)
		if retryErr != nil || len(matches) != 1 {
			return nil, err
		}
		return s.updateMatched(ctx, tableID, data, matches[0])
	}

	if opts.CreateOnly {
		return nil, types.NewConflictError("a row matching %s=%v already exists", matchField, matchValue)
	}
	return s.updateMatched(ctx, tableID, data, matches[0])
}

func (s *Service) updateMatched(ctx context.Context, tableID string, data types.Row, matched types.Row) (*types.UpsertResult, error) {
	payload := data.Clone()
	payload[types.IDField] = matched[types.IDField]
	updated, err := s.api.UpdateRow(ctx, tableID, payload)
	if err != nil {
		return nil, err
	}
	return &types.UpsertResult{Action: types.UpsertUpdated, Row: updated}, nil
}

// findMatches pages through rows matching matchField == matchValue until the
// listing is exhausted.
func (s *Service) findMatches(ctx context.Context, tableID string, matchField string, matchValue interface{}) ([]types.Row, error) {
	where := fmt.Sprintf("(%s,eq,%v)", matchField, matchValue)
	var matches []types.Row
	offset := 0
	for {
		page, err := s.api.ListRows(ctx, tableID, types.ListQuery{
			Where:  where,
			Limit:  matchPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		matches = append(matches, page.Rows...)
		if page.IsLast || len(page.Rows) == 0 {
			return matches, nil
		}
		offset += len(page.Rows)
	}
}

// BulkUpsert upserts many rows against a single match field. It fetches the
// whole table once, partitions the input into rows with no existing match
// and rows with exactly one, then performs one bulk create and one bulk
// update. Unlike the per-item bulk operations, it is all-or-nothing aside
// from the created/updated split.
func (s *Service) BulkUpsert(ctx context.Context, tableID string, rowList []types.Row, matchField string, opts types.UpsertOptions) (*types.BulkUpsertResult, error) {
	if rowList == nil {
		return nil, types.NewValidationError("bulk upsert input must be a list of rows")
	}
	if matchField == "" {
		return nil, types.NewValidationError("bulk upsert match field is required")
	}
	if opts.CreateOnly && opts.UpdateOnly {
		return nil, types.NewValidationError("createOnly and updateOnly are mutually exclusive")
	}

	existing, err := s.fetchAll(ctx, tableID)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string][]types.Row)
	for _, row := range existing {
		if value, ok := row[matchField]; ok {
			key := matchKey(value)
			lookup[key] = append(lookup[key], row)
		}
	}

	var toCreate, toUpdate []types.Row
	for i, row := range rowList {
		value, ok := row[matchField]
		if !ok {
			if opts.UpdateOnly {
				return nil, types.NewValidationError("row %d has no %s field to match on", i, matchField)
			}
			toCreate = append(toCreate, row)
			continue
		}
		matches := lookup[matchKey(value)]
		switch {
		case len(matches) > 1:
			return nil, types.NewValidationError("match %s=%v is ambiguous: %d rows match", matchField, value, len(matches))
		case len(matches) == 0:
			if opts.UpdateOnly {
				return nil, types.NewValidationError("no row matches %s=%v", matchField, value)
			}
			toCreate = append(toCreate, row)
		default:
			if opts.CreateOnly {
				return nil, types.NewConflictError("a row matching %s=%v already exists", matchField, value)
			}
			payload := row.Clone()
			payload[types.IDField] = matches[0][types.IDField]
			toUpdate = append(toUpdate, payload)
		}
	}

	result := &types.BulkUpsertResult{}
	if len(toCreate) > 0 {
		created, err := s.api.CreateRows(ctx, tableID, toCreate)
		if err != nil {
			return nil, err
		}
		result.Created = created
	}
	if len(toUpdate) > 0 {
		updated, err := s.api.UpdateRows(ctx, tableID, toUpdate)
		if err != nil {
			return nil, err
		}
		result.Updated = updated
	}
	return result, nil
}

// fetchAll pages through the whole table.
func (s *Service) fetchAll(ctx context.Context, tableID string) ([]types.Row, error) {
	var all []types.Row
	offset := 0
	for {
		page, err := s.api.ListRows(ctx, tableID, types.ListQuery{Limit: matchPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Rows...)
		if page.IsLast || len(page.Rows) == 0 {
			return all, nil
		}
		offset += len(page.Rows)
	}
}

// matchKey normalizes a match value for lookup. JSON decoding yields
// float64 for numbers, so values are compared by their string rendering.
func matchKey(value interface{}) string {
	return fmt.Sprintf("%v", value)
}
