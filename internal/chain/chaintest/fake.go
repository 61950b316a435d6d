// Package chaintest provides an in-memory chain.Caller for tests.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// RevertError mimics the JSON-RPC error a node returns for a reverted call.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// ErrorCode implements rpc.Error.
func (e *RevertError) ErrorCode() int { return 3 }

// Revert returns a node-side revert error.
func Revert(reason string) error {
	return &RevertError{Reason: reason}
}

// ErrTransport simulates a broken connection to the node.
var ErrTransport = errors.New("dial tcp 127.0.0.1:8545: connect: connection refused")

// Handler answers a decoded call. Returned values are packed with the
// method's output arguments.
type Handler func(args []interface{}) ([]interface{}, error)

// Call is a recorded contract call.
type Call struct {
	To     common.Address
	Method string
	Args   []interface{}
}

type route struct {
	method  abi.Method
	handler Handler
}

// Caller dispatches eth_call requests to handlers registered per contract
// address and ABI method. Unregistered calls fail with a revert.
type Caller struct {
	mu     sync.Mutex
	routes map[common.Address]map[[4]byte]route
	calls  []Call
}

// NewCaller creates an empty fake.
func NewCaller() *Caller {
	return &Caller{routes: make(map[common.Address]map[[4]byte]route)}
}

// Handle registers h for method of parsed at address.
func (c *Caller) Handle(address common.Address, parsed abi.ABI, method string, h Handler) *Caller {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: method %s not in abi", method))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.routes[address] == nil {
		c.routes[address] = make(map[[4]byte]route)
	}
	var id [4]byte
	copy(id[:], m.ID)
	c.routes[address][id] = route{method: m, handler: h}
	return c
}

// Returns registers fixed outputs for method.
func (c *Caller) Returns(address common.Address, parsed abi.ABI, method string, outputs ...interface{}) *Caller {
	return c.Handle(address, parsed, method, func([]interface{}) ([]interface{}, error) {
		return outputs, nil
	})
}

// Fails registers a fixed error for method.
func (c *Caller) Fails(address common.Address, parsed abi.ABI, method string, err error) *Caller {
	return c.Handle(address, parsed, method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}

// CallContract implements chain.Caller.
func (c *Caller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("chaintest: malformed call")
	}

	var id [4]byte
	copy(id[:], msg.Data[:4])

	c.mu.Lock()
	r, ok := c.routes[*msg.To][id]
	c.mu.Unlock()

	if !ok {
		c.record(Call{To: *msg.To, Method: fmt.Sprintf("0x%x", id)})
		return nil, Revert("")
	}

	args, err := r.method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("chaintest: unpack %s: %w", r.method.Name, err)
	}
	c.record(Call{To: *msg.To, Method: r.method.Name, Args: args})

	outputs, err := r.handler(args)
	if err != nil {
		return nil, err
	}
	return r.method.Outputs.Pack(outputs...)
}

func (c *Caller) record(call Call) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

// Calls returns every call received so far.
func (c *Caller) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns how many calls hit method (any address).
func (c *Caller) CallCount(method string) int {
	n := 0
	for _, call := range c.Calls() {
		if call.Method == method {
			n++
		}
	}
	return n
}
