// Package trace reads recorded basic-block execution streams.
// A trace carries one event per dynamically executed block, in execution
// order, exactly as the instrumentation that recorded it saw them.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/bbtrace/cache"
)

// Event is one dynamic execution of a basic block.
type Event struct {
	// TID is the id of the thread that executed the block.
	// Single-threaded traces leave it zero.
	TID int
	// Block is the stable identifier of the executed block,
	// its entry address in the recorded program.
	Block cache.BlockID
}

// Text format: one event per line, either "address" or "tid address",
// address in hex with optional 0x prefix. Blank lines and lines starting
// with '#' are skipped.
type Reader struct {
	scan *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scan: bufio.NewScanner(r)}
}

// Next returns the next event in execution order.
// It returns io.EOF after the last event.
func (r *Reader) Next() (Event, error) {
	for r.scan.Scan() {
		r.line++
		s := strings.TrimSpace(r.scan.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		ev, err := parseEvent(s)
		if err != nil {
			return Event{}, stackerr.Newf("trace: line %v: %v", r.line, err)
		}
		return ev, nil
	}
	if err := r.scan.Err(); err != nil {
		return Event{}, stackerr.Wrap(err)
	}
	return Event{}, io.EOF
}

func parseEvent(s string) (ev Event, err error) {
	fields := strings.Fields(s)
	addr := fields[0]
	if len(fields) > 1 {
		if len(fields) > 2 {
			return ev, fmt.Errorf("expected \"address\" or \"tid address\", got %v fields", len(fields))
		}
		ev.TID, err = strconv.Atoi(fields[0])
		if err != nil || ev.TID < 0 {
			return ev, fmt.Errorf("invalid thread id %q", fields[0])
		}
		addr = fields[1]
	}
	block, err := strconv.ParseUint(strings.TrimPrefix(addr, "0x"), 16, 64)
	if err != nil {
		return ev, fmt.Errorf("invalid block address %q", addr)
	}
	ev.Block = cache.BlockID(block)
	return ev, nil
}
