package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestGenerateCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not 6 decimal digits", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q below 100000", code)
		}
	}
}

func TestIssueFindConsume(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	rec := Record{
		FullName:  "A Patient",
		Email:     "a@x.com",
		Code:      "123456",
		Channel:   ChannelEmail,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := store.Issue(ctx, rec, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	found, ok, err := store.Find(ctx, ChannelEmail, "a@x.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if found.Code != "123456" || found.FullName != "A Patient" {
		t.Fatalf("unexpected record %+v", found)
	}

	if err := store.Consume(ctx, ChannelEmail, "a@x.com"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, ok, _ := store.Find(ctx, ChannelEmail, "a@x.com"); ok {
		t.Fatal("expected record gone after consume")
	}
}

func TestIssueSupersedesPriorCode(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	old := Record{Phone: "+911234567890", Code: "111111", Channel: ChannelPhone, ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Issue(ctx, old, time.Minute); err != nil {
		t.Fatalf("issue old: %v", err)
	}
	fresh := old
	fresh.Code = "222222"
	if err := store.Issue(ctx, fresh, time.Minute); err != nil {
		t.Fatalf("issue fresh: %v", err)
	}

	found, ok, err := store.Find(ctx, ChannelPhone, "+911234567890")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if found.Code != "222222" {
		t.Fatalf("expected superseding code, got %s", found.Code)
	}
}

func TestTTLEvictsRecord(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	rec := Record{Email: "a@x.com", Code: "123456", Channel: ChannelEmail, ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Issue(ctx, rec, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Physically evicted after ttl + grace: indistinguishable from never issued.
	mr.FastForward(time.Minute + evictionGrace + time.Second)

	if _, ok, err := store.Find(ctx, ChannelEmail, "a@x.com"); err != nil || ok {
		t.Fatalf("expected eviction, ok=%v err=%v", ok, err)
	}
}

func TestStalePresentRecordKeepsExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	rec := Record{Email: "a@x.com", Code: "123456", Channel: ChannelEmail, ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Issue(ctx, rec, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Inside the grace window the record is still present; callers must
	// reject it via the ExpiresAt comparison.
	mr.FastForward(time.Minute + time.Second)

	found, ok, err := store.Find(ctx, ChannelEmail, "a@x.com")
	if err != nil || !ok {
		t.Fatalf("expected record within grace, ok=%v err=%v", ok, err)
	}
	if !found.ExpiresAt.Before(time.Now()) {
		t.Fatal("expected logical expiry in the past")
	}
}

func TestMemoryStoreMatchesContract(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := Record{Phone: "+911234567890", Code: "654321", Channel: ChannelPhone, ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Issue(ctx, rec, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	found, ok, err := store.Find(ctx, ChannelPhone, "+911234567890")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if found.Code != "654321" {
		t.Fatalf("unexpected code %s", found.Code)
	}

	if err := store.Consume(ctx, ChannelPhone, "+911234567890"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, ok, _ := store.Find(ctx, ChannelPhone, "+911234567890"); ok {
		t.Fatal("expected record gone after consume")
	}
}

func TestMemoryStoreLazyEviction(t *testing.T) {
	store := NewMemoryStore().(*memoryStore)
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }

	rec := Record{Email: "a@x.com", Code: "123456", Channel: ChannelEmail, ExpiresAt: base.Add(time.Minute)}
	if err := store.Issue(ctx, rec, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := store.Find(ctx, ChannelEmail, "a@x.com"); ok {
		t.Fatal("expected lazy eviction past ttl")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Fatalf("unexpected normalization %q", got)
	}
}
