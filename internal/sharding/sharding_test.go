package sharding

import "testing"

func TestShardForIsStable(t *testing.T) {
	first := ShardFor("account:42", 4)
	for i := 0; i < 10; i++ {
		if got := ShardFor("account:42", 4); got != first {
			t.Fatalf("shard assignment changed: %d then %d", first, got)
		}
	}
}

func TestShardForStaysInRange(t *testing.T) {
	keys := []string{"a", "b", "account:1", "account:2", "hot_keys", ""}
	for _, key := range keys {
		if shard := ShardFor(key, 4); shard < 0 || shard > 3 {
			t.Fatalf("shard %d out of range for key %q", shard, key)
		}
	}
}

func TestSingleShardAlwaysZero(t *testing.T) {
	if shard := ShardFor("anything", 1); shard != 0 {
		t.Fatalf("expected shard 0, got %d", shard)
	}
	if shard := ShardFor("anything", 0); shard != 0 {
		t.Fatalf("expected shard 0 for zero count, got %d", shard)
	}
}
