package session

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

func TestSecondsGenerator(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 999_000_000))
	g := NewSecondsGenerator(clk)

	id := g.NextMessageID()
	if id != 1_700_000_000<<32 {
		t.Fatalf("id = %d", id)
	}
	if id&0xffffffff != 0 {
		t.Fatalf("low bits not zero")
	}
	// Same second, same id.
	if g.NextMessageID() != id {
		t.Fatalf("expected a collision within one second")
	}
}

func TestMonotonicGeneratorInitiator(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 500_000_000))
	g := NewMonotonicGenerator(clk, crypto.RoleInitiator)

	first := g.NextMessageID()
	if first>>32 != 1_700_000_000 {
		t.Fatalf("seconds not in the upper half: %d", first>>32)
	}
	if frac := first & 0xffffffff; frac < 0x7fff_fff0 || frac > 0x8000_0000 {
		t.Fatalf("fraction %#x not near one half", frac)
	}

	prev := first
	for i := 0; i < 100; i++ {
		id := g.NextMessageID()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		if id%4 != 0 {
			t.Fatalf("initiator id %d not divisible by 4", id)
		}
		prev = id
	}

	clk.Add(time.Second)
	if id := g.NextMessageID(); id>>32 != 1_700_000_001 {
		t.Fatalf("clock advance not reflected: %d", id>>32)
	}
}

func TestMonotonicGeneratorResponderParity(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	g := NewMonotonicGenerator(clk, crypto.RoleResponder)
	for i := 0; i < 10; i++ {
		if id := g.NextMessageID(); id%4 != 1 {
			t.Fatalf("responder id %d not 1 mod 4", id)
		}
	}
}

func TestMonotonicGeneratorConcurrentUnique(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	g := NewMonotonicGenerator(clk, crypto.RoleInitiator)

	const n = 1000
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.NextMessageID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate message id %d", id)
		}
		seen[id] = true
	}
}
