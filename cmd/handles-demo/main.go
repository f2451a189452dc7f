// Command handles-demo walks through the ownership-handle primitives,
// printing the allocation lifecycle of each scenario, or exploring an
// Rc family interactively with -i.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/halcyonlab/handles/box"
	"github.com/halcyonlab/handles/cell"
	"github.com/halcyonlab/handles/heap"
	"github.com/halcyonlab/handles/rc"
	"github.com/halcyonlab/handles/track"
)

var scenarios = map[string]struct {
	run   func(log *zap.Logger, tracked *track.Allocator)
	about string
}{
	"box":     {runBox, "exclusive ownership: move, access, drop"},
	"rc":      {runRc, "shared ownership: clone, counts, last drop"},
	"weak":    {runWeak, "weak references: upgrade before and after death"},
	"cycle":   {runCycle, "the reference-counting cycle leak, made visible"},
	"refcell": {runRefCell, "runtime-checked interior mutability"},
}

func main() {
	var (
		scenario    = flag.String("scenario", "", "Scenario to run (box, rc, weak, cycle, refcell)")
		list        = flag.Bool("list", false, "List scenarios and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *list {
		for name, s := range scenarios {
			fmt.Printf("%-8s %s\n", name, s.about)
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	s, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: handles-demo -scenario <box|rc|weak|cycle|refcell>")
		fmt.Fprintln(os.Stderr, "       handles-demo -list")
		fmt.Fprintln(os.Stderr, "       handles-demo -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	track.SetLogger(log)
	tracked := track.New(heap.NewCounting(), track.WithLabel(*scenario))
	tracked.Subscribe(track.NewLogObserver(log))

	s.run(log, tracked)

	if leaks := tracked.Report(); len(leaks) == 0 {
		log.Info("no leaks: every allocation was freed")
	}
}

func runBox(log *zap.Logger, tracked *track.Allocator) {
	b := box.NewIn(tracked, "exclusive value", nil)
	log.Info("created box", zap.String("value", *b.Get()))

	moved := b.Move()
	log.Info("moved ownership; the source box is now a tombstone")

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Info("access through the moved-from box failed as designed",
					zap.Any("diagnostic", fmt.Sprint(r)))
			}
		}()
		b.Get()
	}()

	moved.Drop()
	log.Info("dropped the owning box")
}

func runRc(log *zap.Logger, tracked *track.Allocator) {
	a := rc.NewIn(tracked, 5, func(v *int) {
		log.Info("destructor ran", zap.Int("value", *v))
	})
	b := a.Clone()
	log.Info("cloned", zap.Uint64("strong", a.StrongCount()))

	a.Drop()
	log.Info("dropped one handle", zap.Uint64("strong", b.StrongCount()))

	b.Drop()
	log.Info("dropped the last handle; the destructor ran before this line")
}

func runWeak(log *zap.Logger, tracked *track.Allocator) {
	s := rc.NewIn(tracked, "observed", nil)
	w := s.Downgrade()

	if h, ok := w.Upgrade(); ok {
		log.Info("upgrade while alive", zap.String("value", *h.Get()))
		h.Drop()
	}

	s.Drop()
	log.Info("last strong handle dropped; value destroyed, block in zombie state",
		zap.Int("outstanding", tracked.Len()))

	if _, ok := w.Upgrade(); !ok {
		log.Info("upgrade after death reports no value, as it should")
	}

	w.Drop()
	log.Info("last weak handle dropped; block freed")
}

type cycleNode struct {
	other *rc.Rc[cycleNode]
}

func dropCycleNode(n *cycleNode) {
	if n.other != nil {
		n.other.Drop()
	}
}

func runCycle(log *zap.Logger, tracked *track.Allocator) {
	a := rc.NewIn(tracked, cycleNode{}, dropCycleNode)
	b := rc.NewIn(tracked, cycleNode{}, dropCycleNode)
	a.Get().other = b.Clone()
	b.Get().other = a.Clone()
	log.Info("built a strong cycle between two values")

	a.Drop()
	b.Drop()
	log.Info("dropped both user handles; the cycle keeps every count above zero",
		zap.Int("leaked_allocations", tracked.Len()))
	log.Info("the report below is the documented limitation, not a bug; " +
		"break cycles with a weak edge")
}

func runRefCell(log *zap.Logger, tracked *track.Allocator) {
	shared := rc.NewIn(tracked, cell.NewRefCell([]string{"a"}), nil)
	other := shared.Clone()

	m := (*shared.Get()).BorrowMut()
	*m.Value() = append(*m.Value(), "b")

	if _, err := (*other.Get()).TryBorrow(); err != nil {
		log.Info("reader blocked while the writer holds its borrow", zap.Error(err))
	}
	m.Release()

	r := (*other.Get()).Borrow()
	log.Info("borrow after release sees the write", zap.Strings("value", *r.Value()))
	r.Release()

	shared.Drop()
	other.Drop()
}
