package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	methodCallTool = "tools/call"

	// metaCallTicket is the _meta key orderedConn stamps on every tools/call
	// it reads. The value is "<nonce>/<ticket>"; the nonce never leaves the
	// server, so clients cannot forge a ticket.
	metaCallTicket = "trials-mcp/ticket"
)

var errConnectionClosed = errors.New("connection closed")

// callOrders issues tickets for every ordered connection of one server.
type callOrders struct {
	nonce string

	mu     sync.Mutex
	next   uint64
	owners map[uint64]*callOrder
}

func newCallOrders() *callOrders {
	return &callOrders{
		nonce:  uuid.NewString(),
		owners: make(map[uint64]*callOrder),
	}
}

func (r *callOrders) issue(o *callOrder) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.owners[r.next] = o
	return r.next
}

func (r *callOrders) owner(ticket uint64) (*callOrder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[ticket]
	return o, ok
}

func (r *callOrders) retire(ticket uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, ticket)
}

// outstanding reports how many tickets are still unanswered.
func (r *callOrders) outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

func (r *callOrders) stamp(ticket uint64) string {
	return r.nonce + "/" + strconv.FormatUint(ticket, 10)
}

// ticketOf parses a stamp written by this server.
func (r *callOrders) ticketOf(v any) (uint64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	nonce, num, ok := strings.Cut(s, "/")
	if !ok || nonce != r.nonce {
		return 0, false
	}
	ticket, err := strconv.ParseUint(num, 10, 64)
	return ticket, err == nil
}

// callOrder ranks the tool calls read from one connection. A call may run
// once every call read before it has been answered.
type callOrder struct {
	registry *callOrders

	mu      sync.Mutex
	pending map[uint64]struct{}
	byID    map[jsonrpc.ID]uint64
	changed chan struct{}
	closed  bool
}

func newCallOrder(registry *callOrders) *callOrder {
	return &callOrder{
		registry: registry,
		pending:  make(map[uint64]struct{}),
		byID:     make(map[jsonrpc.ID]uint64),
		changed:  make(chan struct{}),
	}
}

// admit records a call in read order and returns its ticket.
func (o *callOrder) admit(id jsonrpc.ID) uint64 {
	ticket := o.registry.issue(o)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[ticket] = struct{}{}
	o.byID[id] = ticket
	return ticket
}

// answer releases the call with id once its response is written.
func (o *callOrder) answer(id jsonrpc.ID) {
	o.mu.Lock()
	ticket, ok := o.byID[id]
	if ok {
		delete(o.byID, id)
		delete(o.pending, ticket)
		o.broadcast()
	}
	o.mu.Unlock()

	if ok {
		o.registry.retire(ticket)
	}
}

// close releases every waiter; their calls fail with errConnectionClosed.
func (o *callOrder) close() {
	o.mu.Lock()
	tickets := make([]uint64, 0, len(o.pending))
	for t := range o.pending {
		tickets = append(tickets, t)
	}
	o.closed = true
	o.pending = make(map[uint64]struct{})
	o.byID = make(map[jsonrpc.ID]uint64)
	o.broadcast()
	o.mu.Unlock()

	for _, t := range tickets {
		o.registry.retire(t)
	}
}

// broadcast wakes every waiter (caller must hold mu).
func (o *callOrder) broadcast() {
	close(o.changed)
	o.changed = make(chan struct{})
}

// wait blocks until every call admitted before ticket has been answered.
func (o *callOrder) wait(ctx context.Context, ticket uint64) error {
	for {
		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return errConnectionClosed
		}
		if !o.hasEarlier(ticket) {
			o.mu.Unlock()
			return nil
		}
		changed := o.changed
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (o *callOrder) hasEarlier(ticket uint64) bool {
	for t := range o.pending {
		if t < ticket {
			return true
		}
	}
	return false
}

// orderedTransport stamps tool calls with their read order.
type orderedTransport struct {
	inner  mcp.Transport
	orders *callOrders
}

func (t *orderedTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	conn, err := t.inner.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &orderedConn{Connection: conn, order: newCallOrder(t.orders)}, nil
}

// orderedConn admits each tools/call as it is read and answers it when the
// response is written. Reads happen one at a time, so ticket order is
// arrival order.
type orderedConn struct {
	mcp.Connection
	order *callOrder
}

func (c *orderedConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	msg, err := c.Connection.Read(ctx)
	if err != nil {
		return msg, err
	}
	if req, ok := msg.(*jsonrpc.Request); ok && req.Method == methodCallTool && req.IsCall() {
		ticket := c.order.admit(req.ID)
		params, err := withMeta(req.Params, metaCallTicket, c.order.registry.stamp(ticket))
		if err != nil {
			// The server rejects the params itself; its reply answers the ticket.
			return msg, nil
		}
		req.Params = params
	}
	return msg, nil
}

func (c *orderedConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	err := c.Connection.Write(ctx, msg)
	if resp, ok := msg.(*jsonrpc.Response); ok {
		c.order.answer(resp.ID)
	}
	return err
}

func (c *orderedConn) Close() error {
	c.order.close()
	return c.Connection.Close()
}

// withMeta sets _meta[key] in a JSON params object, keeping every other
// field byte for byte.
func withMeta(params json.RawMessage, key, value string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("params must be an object")
	}

	meta := map[string]json.RawMessage{}
	if raw, ok := fields["_meta"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("_meta: %w", err)
		}
		if meta == nil {
			meta = map[string]json.RawMessage{}
		}
	}

	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	meta[key] = v

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	fields["_meta"] = rawMeta
	return json.Marshal(fields)
}

// awaitTurn blocks a tool call until the calls read before it on the same
// connection have been answered. Calls without a ticket run at once.
func (s *Server) awaitTurn(ctx context.Context, req *mcp.CallToolRequest) error {
	if req == nil || req.Params == nil {
		return nil
	}
	ticket, ok := s.orders.ticketOf(req.Params.Meta[metaCallTicket])
	if !ok {
		return nil
	}
	order, ok := s.orders.owner(ticket)
	if !ok {
		return nil
	}
	return order.wait(ctx, ticket)
}
