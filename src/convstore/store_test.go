package convstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyofushi/feedbot/src/aisdk"
)

func newTestStore(t *testing.T, cfg Config) (*Store, *time.Time) {
	t.Helper()
	s := New(cfg)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	return s, &current
}

func userMessage(content string) aisdk.Message {
	return aisdk.Message{Role: "user", Content: content}
}

func TestStoreGetAbsent(t *testing.T) {
	s, _ := newTestStore(t, Config{})
	assert.Nil(t, s.Get("conv_missing"))
}

func TestStorePutAndGet(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	s.Put("conv_1", &Conversation{
		ID:       "conv_1",
		BabyID:   7,
		Messages: []aisdk.Message{userMessage("宝宝今天吃了什么？")},
	})

	conv := s.Get("conv_1")
	require.NotNil(t, conv)
	assert.Equal(t, "conv_1", conv.ID)
	assert.Equal(t, int64(7), conv.BabyID)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "宝宝今天吃了什么？", conv.Messages[0].Content)
}

func TestStoreGetReturnsDetachedCopy(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	s.Put("conv_1", &Conversation{ID: "conv_1", Messages: []aisdk.Message{userMessage("第一条")}})

	first := s.Get("conv_1")
	first.Messages = append(first.Messages, userMessage("只在副本里"))
	first.Messages[0].Content = "改掉了"

	second := s.Get("conv_1")
	require.Len(t, second.Messages, 1)
	assert.Equal(t, "第一条", second.Messages[0].Content)
}

func TestStoreTTLExpiry(t *testing.T) {
	s, current := newTestStore(t, Config{TTL: time.Hour})

	s.Put("conv_old", &Conversation{ID: "conv_old"})

	*current = current.Add(30 * time.Minute)
	s.Put("conv_young", &Conversation{ID: "conv_young"})

	// Push conv_old past its TTL; conv_young stays fresh.
	*current = current.Add(45 * time.Minute)

	assert.Nil(t, s.Get("conv_old"))
	assert.NotNil(t, s.Get("conv_young"))

	// The expired entry was deleted on read, not just hidden.
	assert.Equal(t, 1, s.Len())
}

func TestStoreAppendMessages(t *testing.T) {
	s, current := newTestStore(t, Config{})

	s.Put("conv_1", &Conversation{ID: "conv_1", Messages: []aisdk.Message{userMessage("你好")}})
	before := *current

	*current = current.Add(5 * time.Minute)
	s.AppendMessages("conv_1",
		aisdk.Message{Role: "assistant", Content: "你好呀"},
		userMessage("宝宝生病了"),
	)

	conv := s.Get("conv_1")
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "assistant", conv.Messages[1].Role)
	assert.True(t, conv.LastActive.After(before))
}

func TestStoreAppendMessagesAbsentKeyIsNoOp(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	s.AppendMessages("conv_ghost", userMessage("无处可去"))

	assert.Nil(t, s.Get("conv_ghost"))
	assert.Equal(t, 0, s.Len())
}

func TestStoreSweepOnInsertAtCapacity(t *testing.T) {
	s, current := newTestStore(t, Config{TTL: time.Hour, MaxEntries: 3})

	for i := 0; i < 3; i++ {
		s.Put(fmt.Sprintf("conv_%d", i), &Conversation{})
	}
	require.Equal(t, 3, s.Len())

	// All three expire; the next insert sweeps them out first.
	*current = current.Add(2 * time.Hour)
	s.Put("conv_new", &Conversation{})

	assert.Equal(t, 1, s.Len())
	assert.NotNil(t, s.Get("conv_new"))
}

func TestStoreMayExceedMaxWhenNothingExpired(t *testing.T) {
	s, _ := newTestStore(t, Config{TTL: time.Hour, MaxEntries: 2})

	s.Put("conv_0", &Conversation{})
	s.Put("conv_1", &Conversation{})
	s.Put("conv_2", &Conversation{})

	// Sweep found nothing to evict, so occupancy passes the threshold.
	assert.Equal(t, 3, s.Len())
}

func TestStorePutRefreshesLastActive(t *testing.T) {
	s, current := newTestStore(t, Config{TTL: time.Hour})

	s.Put("conv_1", &Conversation{ID: "conv_1"})

	// Updates keep arriving just inside the TTL, so the entry survives
	// far longer than a single lifetime.
	for i := 0; i < 3; i++ {
		*current = current.Add(50 * time.Minute)
		s.Put("conv_1", &Conversation{ID: "conv_1"})
	}

	assert.NotNil(t, s.Get("conv_1"))
}

func TestStoreDefaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultTTL, s.ttl)
	assert.Equal(t, DefaultMaxEntries, s.maxEntries)
}
