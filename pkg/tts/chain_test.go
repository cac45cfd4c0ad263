package tts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestChain(t *testing.T, cooldown time.Duration, members ...Member) (*Chain, *time.Time) {
	t.Helper()
	c, err := NewChain(members, WithCooldown(cooldown))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestChain_FallsBack(t *testing.T) {
	primary := Failing(errors.New("quota"))
	backup := NewMock()
	c, _ := newTestChain(t, 0, Member{"primary", primary}, Member{"backup", backup})

	if _, err := c.Synthesize(context.Background(), "hi"); err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if len(backup.Texts()) != 1 {
		t.Error("backup not called")
	}
}

func TestChain_CooldownSkipsFailedMember(t *testing.T) {
	primary := Failing(errors.New("timeout"))
	backup := NewMock()
	c, now := newTestChain(t, 30*time.Second, Member{"primary", primary}, Member{"backup", backup})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Synthesize(ctx, "line"); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(primary.Texts()); n != 1 {
		t.Errorf("primary tried %d times during cooldown, want 1", n)
	}

	*now = now.Add(31 * time.Second)
	primary.SynthesizeFunc = NewMock().SynthesizeFunc
	if _, err := c.Synthesize(ctx, "line"); err != nil {
		t.Fatal(err)
	}
	if n := len(primary.Texts()); n != 2 {
		t.Errorf("primary not retried after cooldown: %d", n)
	}
	if n := len(backup.Texts()); n != 3 {
		t.Errorf("backup answered %d lines, want 3", n)
	}
}

func TestChain_BenchedMembersStillTriedLast(t *testing.T) {
	only := Failing(errors.New("down"))
	c, _ := newTestChain(t, time.Minute, Member{"only", only})

	_, _ = c.Synthesize(context.Background(), "a")
	_, _ = c.Synthesize(context.Background(), "b")
	if n := len(only.Texts()); n != 2 {
		t.Errorf("sole member tried %d times, want 2", n)
	}
}

func TestChain_AllFail(t *testing.T) {
	quota := errors.New("quota")
	c, _ := newTestChain(t, 0, Member{"a", Failing(quota)}, Member{"b", Failing(ErrEmptyAudio)})

	_, err := c.Synthesize(context.Background(), "hi")
	var ce *ChainError
	if !errors.As(err, &ce) || len(ce.Errors) != 2 {
		t.Fatalf("expected ChainError with 2 errors, got %v", err)
	}
	if !errors.Is(err, quota) || !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("member errors not reachable: %v", err)
	}
	if want := "tts chain: all providers failed (a: quota; b: tts: provider returned no audio)"; err.Error() != want {
		t.Errorf("message = %q", err)
	}
}

func TestChain_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &Mock{SynthesizeFunc: func(context.Context, string) (*AudioResult, error) {
		cancel()
		return nil, context.Canceled
	}}
	second := NewMock()
	c, _ := newTestChain(t, time.Minute, Member{"first", first}, Member{"second", second})

	if _, err := c.Synthesize(ctx, "hi"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if len(second.Texts()) != 0 {
		t.Error("fallback ran after cancellation")
	}
	if len(c.order()) != 2 || c.order()[0].Name != "first" {
		t.Error("canceled member should not be benched")
	}
}

func TestChain_HealthAndClose(t *testing.T) {
	down := Failing(errors.New("down"))
	up := NewMock()
	c, _ := newTestChain(t, 0, Member{"down", down}, Member{"up", up})

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("expected healthy chain, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !down.Closed() || !up.Closed() {
		t.Error("members not closed")
	}

	if _, err := NewChain(nil); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("empty chain: %v", err)
	}
}
