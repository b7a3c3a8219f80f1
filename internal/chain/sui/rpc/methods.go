package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the fullnode does not know a digest.
var ErrNotFound = errors.New("not found")

// MaxQueryLimit is the largest page size the Sui fullnode accepts.
const MaxQueryLimit = 50

// QueryTransactionBlocks pages through transaction blocks matching query.
// cursor is the nextCursor of the previous page (nil for the first page).
func (c *Client) QueryTransactionBlocks(
	ctx context.Context,
	query TransactionBlockResponseQuery,
	cursor *string,
	limit int,
	descending bool,
) (*TransactionBlocksPage, error) {
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}

	var cursorParam interface{}
	if cursor != nil && *cursor != "" {
		cursorParam = *cursor
	}

	params := []interface{}{query, cursorParam, limit, descending}
	result, err := c.call(ctx, "suix_queryTransactionBlocks", params)
	if err != nil {
		return nil, fmt.Errorf("suix_queryTransactionBlocks: %w", err)
	}

	var page TransactionBlocksPage
	if err := json.Unmarshal(result, &page); err != nil {
		return nil, fmt.Errorf("unmarshal transaction page: %w", err)
	}
	return &page, nil
}

// GetTransactionBlock returns one transaction block by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string, opts ResponseOptions) (*TransactionBlockResponse, error) {
	result, err := c.call(ctx, "sui_getTransactionBlock", []interface{}{digest, opts})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && strings.Contains(strings.ToLower(rpcErr.Message), "could not find") {
			return nil, fmt.Errorf("sui_getTransactionBlock(%s): %w", digest, ErrNotFound)
		}
		return nil, fmt.Errorf("sui_getTransactionBlock(%s): %w", digest, err)
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, fmt.Errorf("sui_getTransactionBlock(%s): %w", digest, ErrNotFound)
	}

	var tx TransactionBlockResponse
	if err := json.Unmarshal(result, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction block: %w", err)
	}
	return &tx, nil
}

// GetLatestCheckpointSequenceNumber returns the newest executed checkpoint.
func (c *Client) GetLatestCheckpointSequenceNumber(ctx context.Context) (int64, error) {
	result, err := c.call(ctx, "sui_getLatestCheckpointSequenceNumber", []interface{}{})
	if err != nil {
		return 0, fmt.Errorf("sui_getLatestCheckpointSequenceNumber: %w", err)
	}

	var seq StringInt64
	if err := json.Unmarshal(result, &seq); err != nil {
		return 0, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return int64(seq), nil
}
