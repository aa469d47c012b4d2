// Package traffic records the calls resolved by a host. It is a debugging
// utility to understand how the calls flow between the accounts.
//
// A traffic is an observer of the host. Each resolved call is recorded as an
// edge from the caller to the receiver, and the record can be saved as a
// graphviz representation:
//
//	tr := traffic.NewTraffic(nil)
//	h.Watch(tr)
//	defer tr.Save("calls.dot")
//
// Then you can generate a PDF with `dot -Tpdf calls.dot -o calls.pdf`.
package traffic

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"

	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/host"
	"golang.org/x/xerrors"
)

var eachLine = regexp.MustCompile(`(?m)^(.+)$`)

// Traffic is a recorder of the calls resolved by a host.
//
// - implements core.Observer
type Traffic struct {
	sync.Mutex
	out     io.Writer
	items   []item
	counter int
}

// NewTraffic creates a new empty traffic recorder. If the writer is not nil,
// every call is printed when it is recorded.
func NewTraffic(out io.Writer) *Traffic {
	return &Traffic{
		out: out,
	}
}

// NotifyCallback implements core.Observer. It records the call of a host
// event and ignores anything else.
func (t *Traffic) NotifyCallback(event interface{}) {
	evt, ok := event.(host.Event)
	if !ok {
		xcall.Logger.Warn().Msgf("traffic ignores event of type '%T'", event)
		return
	}

	t.Lock()
	defer t.Unlock()

	t.counter++

	newItem := item{
		ref:     evt.Call.ID,
		from:    evt.Call.Caller.Account,
		to:      evt.Call.Receiver,
		method:  evt.Call.Method,
		channel: evt.Call.Caller.Channel,
		status:  evt.Outcome.GetStatus(),
		counter: t.counter,
	}

	if t.out != nil {
		fmt.Fprintf(t.out, "\n> %v\n", newItem.to)
		newItem.Display(t.out)
	}

	t.items = append(t.items, newItem)
}

// Len returns the number of recorded calls.
func (t *Traffic) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.items)
}

// Display prints the recorded calls to the writer.
func (t *Traffic) Display(out io.Writer) {
	t.Lock()
	defer t.Unlock()

	fmt.Fprint(out, "- traffic:\n")

	var buf bytes.Buffer
	for _, item := range t.items {
		item.Display(&buf)
	}

	fmt.Fprint(out, eachLine.ReplaceAllString(buf.String(), "-$1"))
}

// Save saves the graph of the calls to the given path.
func (t *Traffic) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("file: %v", err)
	}

	defer f.Close()

	GenerateGraphviz(f, t)

	return nil
}

// GenerateGraphviz creates a graphviz representation of the calls. A failed
// call is red, and a follow-up is dashed.
func GenerateGraphviz(out io.Writer, t *Traffic) {
	t.Lock()
	defer t.Unlock()

	fmt.Fprintf(out, "digraph calls {\n")
	fmt.Fprintf(out, "labelloc=\"t\";")
	fmt.Fprintf(out, "label = <Calls of %d accounts <font point-size='10'><br/>(generated %s)</font>>;",
		t.countAccounts(), time.Now().Format("2 Jan 06 - 15:04:05"))
	fmt.Fprintf(out, "graph [fontname = \"helvetica\"];")
	fmt.Fprintf(out, "node [fontname = \"helvetica\"];")
	fmt.Fprintf(out, "edge [fontname = \"helvetica\"];\n")

	for _, item := range t.items {
		color := "#4AB2FF"
		if item.status != promise.Successful {
			color = "#FF4A4A"
		}

		style := "solid"
		if item.channel == access.FollowUp {
			style = "dashed"
		}

		fmt.Fprintf(out, "\"%v\" -> \"%v\" "+
			"[ label = < <font color='#303030'><b>%d</b> %s</font><br/>"+
			"<font point-size='10' color='#9C9C9C'>%v</font>> color=\"%s\" style=\"%s\" ];\n",
			item.from, item.to, item.counter, item.method, item.status, color, style)
	}

	fmt.Fprintf(out, "}\n")
}

func (t *Traffic) countAccounts() int {
	accounts := make(map[access.Account]struct{})
	for _, item := range t.items {
		accounts[item.from] = struct{}{}
		accounts[item.to] = struct{}{}
	}

	return len(accounts)
}

type item struct {
	ref     promise.Ref
	from    access.Account
	to      access.Account
	method  string
	channel access.Channel
	status  promise.Status
	counter int
}

func (i item) Display(out io.Writer) {
	fmt.Fprint(out, "- item:\n")
	fmt.Fprintf(out, "-- call: %v\n", i.ref)
	fmt.Fprintf(out, "-- from: %v\n", i.from)
	fmt.Fprintf(out, "-- to: %v.%s\n", i.to, i.method)
	fmt.Fprintf(out, "-- channel: %v\n", i.channel)
	fmt.Fprintf(out, "-- status: %v\n", i.status)
}
