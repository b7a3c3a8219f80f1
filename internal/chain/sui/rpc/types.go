package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// JSON-RPC request/response envelopes

type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("sui rpc error %d: %s", e.Code, e.Message)
}

// TransactionFilter selects transactions in suix_queryTransactionBlocks.
// Only one field may be set.
type TransactionFilter struct {
	ToAddress   string `json:"ToAddress,omitempty"`
	FromAddress string `json:"FromAddress,omitempty"`
}

// ResponseOptions controls which parts of a transaction block are returned.
type ResponseOptions struct {
	ShowInput          bool `json:"showInput"`
	ShowEffects        bool `json:"showEffects"`
	ShowEvents         bool `json:"showEvents"`
	ShowBalanceChanges bool `json:"showBalanceChanges"`
}

// TransactionBlockResponseQuery is the first param of suix_queryTransactionBlocks.
type TransactionBlockResponseQuery struct {
	Filter  TransactionFilter `json:"filter"`
	Options ResponseOptions   `json:"options"`
}

// TransactionBlocksPage is the result of suix_queryTransactionBlocks.
type TransactionBlocksPage struct {
	Data        []TransactionBlockResponse `json:"data"`
	NextCursor  *string                    `json:"nextCursor"`
	HasNextPage bool                       `json:"hasNextPage"`
}

// TransactionBlockResponse is a transaction block as returned by the
// query and get endpoints.
type TransactionBlockResponse struct {
	Digest         string             `json:"digest"`
	Transaction    *TransactionBlock  `json:"transaction,omitempty"`
	BalanceChanges []BalanceChange    `json:"balanceChanges,omitempty"`
	TimestampMs    *StringInt64       `json:"timestampMs,omitempty"`
	Checkpoint     *StringInt64       `json:"checkpoint,omitempty"`
	Effects        *TransactionEffect `json:"effects,omitempty"`
}

type TransactionBlock struct {
	Data TransactionBlockData `json:"data"`
}

type TransactionBlockData struct {
	Sender string `json:"sender"`
}

type TransactionEffect struct {
	Status ExecutionStatus `json:"status"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BalanceChange is one coin delta reported for a transaction. Owner is kept
// raw because it is either an object ({"AddressOwner": "0x.."}) or the
// string "Immutable".
type BalanceChange struct {
	Owner    json.RawMessage `json:"owner"`
	CoinType string          `json:"coinType"`
	Amount   string          `json:"amount"`
}

// AddressOwner returns the owning address when the owner is an address.
func (b BalanceChange) AddressOwner() (string, bool) {
	var owner struct {
		AddressOwner *string `json:"AddressOwner"`
	}
	if len(b.Owner) == 0 || b.Owner[0] != '{' {
		return "", false
	}
	if err := json.Unmarshal(b.Owner, &owner); err != nil || owner.AddressOwner == nil {
		return "", false
	}
	return *owner.AddressOwner, true
}

// StringInt64 decodes the decimal strings Sui uses for u64 values.
type StringInt64 int64

func (s *StringInt64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		var n int64
		if numErr := json.Unmarshal(b, &n); numErr != nil {
			return fmt.Errorf("decode u64: %w", err)
		}
		*s = StringInt64(n)
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("decode u64 %q: %w", raw, err)
	}
	*s = StringInt64(n)
	return nil
}

func (s StringInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10))
}
