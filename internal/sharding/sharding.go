// Package sharding routes keys to logical shards. The hash is the first four
// bytes of the md5 digest taken as a big-endian integer, modulo the shard
// count, so shard assignment stays stable across processes and restarts.
package sharding

import (
	"crypto/md5"
	"encoding/binary"
)

func ShardFor(key string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	sum := md5.Sum([]byte(key))
	num := binary.BigEndian.Uint32(sum[:4])
	return int(num % uint32(shardCount))
}
