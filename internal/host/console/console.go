// Package console implements the gate's host collaborators for a terminal:
// alerts are printed and answered by number on stdin.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/asimihsan/manup/pkg/gate"
)

// Presenter implements gate.AlertPresenter on a reader and writer.
type Presenter struct {
	out io.Writer

	inMu sync.Mutex
	in   *bufio.Scanner

	outMu sync.Mutex
	wg    sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

var _ gate.AlertPresenter = (*Presenter)(nil)

// NewPresenter creates a Presenter reading choices from in.
func NewPresenter(in io.Reader, out io.Writer) *Presenter {
	return &Presenter{in: bufio.NewScanner(in), out: out, closed: make(chan struct{})}
}

// Create implements gate.AlertPresenter.
func (p *Presenter) Create(_ context.Context, spec gate.AlertSpec) (gate.Dialog, error) {
	return &dialog{p: p, spec: spec}, nil
}

// Wait blocks until every presented dialog with buttons has been dismissed
// or its input has ended.
func (p *Presenter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InputClosed is closed once the input has ended while a dialog was waiting
// for a choice.
func (p *Presenter) InputClosed() <-chan struct{} {
	return p.closed
}

func (p *Presenter) printf(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

type dialog struct {
	p    *Presenter
	spec gate.AlertSpec
}

// Present prints the dialog and, when it has buttons, starts reading choices.
func (d *dialog) Present(context.Context) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n== %s ==\n%s\n", d.spec.Header, d.spec.SubHeader)
	for i, btn := range d.spec.Buttons {
		fmt.Fprintf(&b, "  [%d] %s\n", i+1, btn.Text)
	}
	d.p.printf("%s", b.String())

	if len(d.spec.Buttons) == 0 {
		return nil
	}
	d.p.wg.Add(1)
	go d.prompt()
	return nil
}

func (d *dialog) prompt() {
	defer d.p.wg.Done()
	d.p.inMu.Lock()
	defer d.p.inMu.Unlock()

	buttons := d.spec.Buttons
	for d.p.in.Scan() {
		n, err := strconv.Atoi(strings.TrimSpace(d.p.in.Text()))
		if err != nil || n < 1 || n > len(buttons) {
			d.p.printf("choose 1-%d\n", len(buttons))
			continue
		}
		btn := buttons[n-1]
		if btn.Handler == nil || btn.Handler() {
			return
		}
	}
	d.p.closeOnce.Do(func() { close(d.p.closed) })
}

// Opener implements gate.LinkOpener by printing the link.
type Opener struct {
	out io.Writer
	mu  sync.Mutex
}

var _ gate.LinkOpener = (*Opener)(nil)

// NewOpener creates an Opener writing to out.
func NewOpener(out io.Writer) *Opener {
	return &Opener{out: out}
}

// Open implements gate.LinkOpener.
func (o *Opener) Open(_ context.Context, url, target string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := fmt.Fprintf(o.out, "open (%s): %s\n", target, url)
	return err
}
