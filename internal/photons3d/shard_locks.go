package photons3d

import "sync"

// shardLocks spreads channel appends over NumShards mutexes.
type shardLocks struct{ mu [NumShards]sync.Mutex }

func shardOf(channel int) int { return int(uint(channel) & (NumShards - 1)) }

func (sl *shardLocks) lock(channel int)   { sl.mu[shardOf(channel)].Lock() }
func (sl *shardLocks) unlock(channel int) { sl.mu[shardOf(channel)].Unlock() }
