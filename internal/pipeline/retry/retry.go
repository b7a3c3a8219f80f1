package retry

import (
	"context"
	"errors"
	"net"
	"strings"

	suirpc "github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/sui/rpc"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/circuitbreaker"
	"github.com/lib/pq"
)

type Class string

const (
	ClassTerminal  Class = "terminal"
	ClassTransient Class = "transient"
)

type Decision struct {
	Class  Class
	Reason string
}

func (d Decision) IsTransient() bool {
	return d.Class == ClassTransient
}

type classifiedError struct {
	err    error
	class  Class
	reason string
}

func (e *classifiedError) Error() string {
	return e.err.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{err: err, class: ClassTransient, reason: "explicit_transient"}
}

func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{err: err, class: ClassTerminal, reason: "explicit_terminal"}
}

// Classify decides whether err is worth retrying. Unknown errors are terminal.
func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassTerminal, Reason: "nil_error"}
	}

	var marked *classifiedError
	if errors.As(err, &marked) {
		return Decision{Class: marked.class, Reason: marked.reason}
	}

	if errors.Is(err, context.Canceled) {
		return Decision{Class: ClassTerminal, Reason: "context_canceled"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Decision{Class: ClassTransient, Reason: "context_deadline_exceeded"}
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return Decision{Class: ClassTransient, Reason: "circuit_open"}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgresCode(string(pqErr.Code))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Decision{Class: ClassTransient, Reason: "net_timeout"}
	}

	var rpcErr *suirpc.RPCError
	if errors.As(err, &rpcErr) {
		return classifyJSONRPCCode(rpcErr.Code)
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, terminalMessageTokens) {
		return Decision{Class: ClassTerminal, Reason: "message_terminal"}
	}
	if containsAny(lower, transientMessageTokens) {
		return Decision{Class: ClassTransient, Reason: "message_transient"}
	}

	return Decision{Class: ClassTerminal, Reason: "unknown_terminal_default"}
}

func classifyPostgresCode(code string) Decision {
	switch code {
	case "40001":
		return Decision{Class: ClassTransient, Reason: "pg_serialization_failure"}
	case "40P01":
		return Decision{Class: ClassTransient, Reason: "pg_deadlock_detected"}
	case "57014":
		return Decision{Class: ClassTransient, Reason: "pg_statement_timeout"}
	case "53300":
		return Decision{Class: ClassTransient, Reason: "pg_too_many_connections"}
	}
	if strings.HasPrefix(code, "08") {
		return Decision{Class: ClassTransient, Reason: "pg_connection_exception"}
	}
	return Decision{Class: ClassTerminal, Reason: "pg_" + code}
}

func classifyJSONRPCCode(code int) Decision {
	if code == -32603 {
		return Decision{Class: ClassTransient, Reason: "jsonrpc_internal_error"}
	}
	if code <= -32000 && code >= -32099 {
		return Decision{Class: ClassTransient, Reason: "jsonrpc_server_range"}
	}
	return Decision{Class: ClassTerminal, Reason: "jsonrpc_terminal"}
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

var transientMessageTokens = []string{
	"timeout",
	"timed out",
	"temporar",
	"unavailable",
	"connection reset",
	"connection refused",
	"broken pipe",
	"too many requests",
	"rate limit",
	"http status 429",
	"http status 500",
	"http status 502",
	"http status 503",
	"http status 504",
	"server closed idle connection",
	"unexpected eof",
}

var terminalMessageTokens = []string{
	"invalid params",
	"method not found",
	"parse error",
	"not found",
	"could not find the referenced transaction",
	"constraint violation",
}
