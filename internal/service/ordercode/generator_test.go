package ordercode_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/ordercode"
)

type fakeProbe struct {
	taken  map[string]bool
	err    error
	probes []string
}

func (p *fakeProbe) CodeExists(_ context.Context, code string) (bool, error) {
	p.probes = append(p.probes, code)
	if p.err != nil {
		return false, p.err
	}
	return p.taken[code], nil
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))
}

// sequence возвращает значения по очереди, повторяя последнее.
func sequence(values ...int) func(int) int {
	i := 0
	return func(int) int {
		v := values[min(i, len(values)-1)]
		i++
		return v
	}
}

var codePattern = regexp.MustCompile(`^ORD-\d{8}-\d{4}$`)

func TestGenerate_FormatUsesUTCDate(t *testing.T) {
	probe := &fakeProbe{}
	gen := ordercode.NewGenerator(probe, ordercode.WithClock(fixedClock), ordercode.WithRandom(sequence(234)))

	code, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if code != "ORD-20261020-1234" {
		t.Fatalf("unexpected code %s", code)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("code %s does not match pattern", code)
	}
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	probe := &fakeProbe{taken: map[string]bool{"ORD-20261020-1000": true}}
	gen := ordercode.NewGenerator(probe, ordercode.WithClock(fixedClock), ordercode.WithRandom(sequence(0, 1)))

	code, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if code != "ORD-20261020-1001" {
		t.Fatalf("unexpected code %s", code)
	}
	if len(probe.probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(probe.probes))
	}
}

func TestGenerate_ExhaustsAfterMaxAttempts(t *testing.T) {
	probe := &fakeProbe{taken: map[string]bool{"ORD-20261020-9999": true}}
	gen := ordercode.NewGenerator(probe, ordercode.WithClock(fixedClock), ordercode.WithRandom(sequence(8999)))

	_, err := gen.Generate(context.Background())
	if !errors.Is(err, domain.ErrOrderCodeExhausted) || !domain.IsCapacity(err) {
		t.Fatalf("expected ErrOrderCodeExhausted, got %v", err)
	}
	if len(probe.probes) != ordercode.MaxAttempts {
		t.Fatalf("expected %d probes, got %d", ordercode.MaxAttempts, len(probe.probes))
	}
}

func TestGenerate_ProbeErrorAbortsImmediately(t *testing.T) {
	boom := errors.New("store unavailable")
	probe := &fakeProbe{err: boom}
	gen := ordercode.NewGenerator(probe)

	_, err := gen.Generate(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected probe error, got %v", err)
	}
	if len(probe.probes) != 1 {
		t.Fatalf("expected a single probe, got %d", len(probe.probes))
	}
}

func TestGenerate_DefaultRandomStaysInRange(t *testing.T) {
	probe := &fakeProbe{taken: map[string]bool{}}
	gen := ordercode.NewGenerator(probe)

	for i := 0; i < 200; i++ {
		code, err := gen.Generate(context.Background())
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if !codePattern.MatchString(code) || code[len(code)-4] == '0' {
			t.Fatalf("code %s out of range", code)
		}
	}
}
