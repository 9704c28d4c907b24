package bus

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/gpios/executor"
)

type failBus struct {
	err error
}

func (f *failBus) String() string                    { return "fail" }
func (f *failBus) Tx(addr uint16, w, r []byte) error { return f.err }
func (f *failBus) SetSpeed(physic.Frequency) error   { return nil }

type gatedBus struct {
	i2ctest.Record
	gate chan struct{}
}

func (g *gatedBus) Tx(addr uint16, w, r []byte) error {
	<-g.gate
	return g.Record.Tx(addr, w, r)
}

func TestBlockingWrite(t *testing.T) {
	rec := new(i2ctest.Record)
	m := NewMaster(rec)
	defer m.Close()

	b, err := Borrow(m)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	if err = b.Write(0x3c, []byte{0x00, 0xae}); err != nil {
		t.Fatal(err)
	}
	if err = b.Tx(0x3c, []byte{0x40, 0x01, 0x02}, nil); err != nil {
		t.Fatal(err)
	}

	if len(rec.Ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(rec.Ops))
	}
	for i, want := range [][]byte{{0x00, 0xae}, {0x40, 0x01, 0x02}} {
		if op := rec.Ops[i]; op.Addr != 0x3c || !bytes.Equal(op.W, want) {
			t.Errorf("op %d: expected %#x to 0x3c, got %#x to %#x", i, want, op.W, op.Addr)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"nack", ErrNack, KindNack},
		{"enxio", syscall.ENXIO, KindNack},
		{"arbitration", ErrArbitration, KindArbitration},
		{"timeout", ErrTimeout, KindTimeout},
		{"other", errors.New("bus fell off"), KindOther},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMaster(&failBus{err: test.err})
			defer m.Close()

			b, err := Borrow(m)
			if err != nil {
				t.Fatal(err)
			}
			defer b.Release()

			err = b.Write(0x3c, []byte{0x00, 0xaf})
			var be *Error
			if !errors.As(err, &be) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if be.Kind != test.kind {
				t.Errorf("expected kind %s, got %s", test.kind, be.Kind)
			}
			if be.Addr != 0x3c || be.Op != "write" {
				t.Errorf("unexpected op %q at %#x", be.Op, be.Addr)
			}
			if !errors.Is(err, test.err) {
				t.Errorf("expected %v in chain of %v", test.err, err)
			}
		})
	}
}

func TestErrorPassesThroughUnchanged(t *testing.T) {
	orig := &Error{Op: "write", Addr: 0x3c, Kind: KindTimeout, Err: errors.New("stretched")}
	m := NewMaster(&failBus{err: orig})
	defer m.Close()

	if err := executor.BlockOn(m.Write(0x3c, []byte{0})); err != orig {
		t.Fatalf("expected the engine error as is, got %v", err)
	}

	b, _ := Borrow(m)
	defer b.Release()
	if err := b.Write(0x3c, []byte{0}); err != orig {
		t.Fatalf("expected the engine error as is, got %v", err)
	}
	if !errors.Is(orig, ErrTimeout) {
		t.Error("timeout kind does not match ErrTimeout")
	}
}

func TestBorrow(t *testing.T) {
	m := NewMaster(new(i2ctest.Record))
	defer m.Close()

	b, err := Borrow(m)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Borrow(m); !errors.Is(err, ErrBorrowed) {
		t.Fatalf("expected ErrBorrowed, got %v", err)
	}

	b.Release()
	b.Release()
	if err = b.Write(0x3c, []byte{0}); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	if err = b.Tx(0x3c, []byte{0}, nil); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}

	b, err = Borrow(m)
	if err != nil {
		t.Fatalf("borrow after release: %v", err)
	}
	b.Release()
}

func TestBorrowInsideTask(t *testing.T) {
	m := NewMaster(new(i2ctest.Record))
	defer m.Close()

	res := make(chan error, 1)
	x := executor.New()
	x.Register("borrower", executor.TaskFunc(func(ctx *executor.Context) {
		b, err := Borrow(m)
		if err == nil {
			b.Release()
		}
		select {
		case res <- err:
		default:
		}
		ctx.Sleep(time.Hour)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go x.Run(ctx)

	select {
	case err := <-res:
		if !errors.Is(err, ErrInTask) {
			t.Fatalf("expected ErrInTask, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestOneTransferInFlight(t *testing.T) {
	hw := &gatedBus{gate: make(chan struct{})}
	m := NewMaster(hw)
	defer m.Close()

	var wakes atomic.Int32
	wake := func() { wakes.Add(1) }

	first := m.Write(0x3c, []byte{0x00, 0xa4})
	if done, _ := first.Poll(wake); done {
		t.Fatal("first transfer completed before the engine ran")
	}

	second := m.Write(0x3c, []byte{0x00, 0xa5})
	done, err := second.Poll(func() { t.Error("busy transfer woke") })
	if !done || !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got done=%v err=%v", done, err)
	}
	if err = m.SetSpeed(400 * physic.KiloHertz); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from SetSpeed, got %v", err)
	}

	close(hw.gate)
	deadline := time.Now().Add(2 * time.Second)
	for wakes.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := wakes.Load(); n != 1 {
		t.Fatalf("expected one wake, got %d", n)
	}
	if done, err = first.Poll(wake); !done || err != nil {
		t.Fatalf("expected completion, got done=%v err=%v", done, err)
	}
	if done, _ = first.Poll(wake); !done {
		t.Fatal("completed transfer reported pending")
	}
	if n := wakes.Load(); n != 1 {
		t.Fatalf("expected one wake after re-polling, got %d", n)
	}
	if err = m.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
}

func TestClosedMaster(t *testing.T) {
	m := NewMaster(new(i2ctest.Record))
	m.Close()
	err := executor.BlockOn(m.Write(0x3c, []byte{0}))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCloseFailsQueuedTransfer(t *testing.T) {
	// engine not started yet, so the transfer stays queued across Close
	m := &Master{
		hw:   new(i2ctest.Record),
		reqs: make(chan *Transfer, 1),
		done: make(chan struct{}),
	}
	tr := m.Write(0x3c, []byte{0x00, 0xae})
	if done, _ := tr.Poll(func() {}); done {
		t.Fatal("transfer completed without an engine")
	}
	m.Close()

	stopped := make(chan struct{})
	go func() {
		m.engine()
		close(stopped)
	}()
	res := make(chan error, 1)
	go func() { res <- executor.BlockOn(tr) }()

	select {
	case err := <-res:
		if err != nil && !errors.Is(err, ErrClosed) {
			t.Fatalf("expected nil or ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued transfer never completed")
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	if err := executor.BlockOn(m.Write(0x3c, []byte{0})); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after the engine stopped, got %v", err)
	}
}

func TestCloseRacingTransfers(t *testing.T) {
	for i := 0; i < 200; i++ {
		m := NewMaster(new(i2ctest.Record))
		res := make(chan error, 1)
		go func() { res <- executor.BlockOn(m.Write(0x3c, []byte{0x00})) }()
		m.Close()
		select {
		case err := <-res:
			if err != nil && !errors.Is(err, ErrClosed) {
				t.Fatalf("iteration %d: unexpected error %v", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: transfer hung across Close", i)
		}
	}
}

func TestBorrowBesideTask(t *testing.T) {
	m := NewMaster(new(i2ctest.Record))
	defer m.Close()

	polling := make(chan struct{})
	resume := make(chan struct{})
	first := true
	x := executor.New()
	x.Register("busy", executor.TaskFunc(func(ctx *executor.Context) {
		if first {
			first = false
			polling <- struct{}{}
			<-resume
		}
		ctx.Sleep(time.Hour)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go x.Run(ctx)

	select {
	case <-polling:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	b, err := Borrow(m)
	close(resume)
	if err != nil {
		t.Fatalf("expected borrow from another goroutine to succeed, got %v", err)
	}
	b.Release()
}
