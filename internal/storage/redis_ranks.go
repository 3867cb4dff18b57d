package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rankSnapshotKey = "leaderboard:ranks"

// RankSnapshot retains the previous leaderboard positions so the next read
// can report real up/down movement instead of a placeholder.
type RankSnapshot struct {
	client *redis.Client
}

// NewRankSnapshot connects to Redis and verifies the connection.
func NewRankSnapshot(addr, password string) (*RankSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RankSnapshot{client: client}, nil
}

// NewRankSnapshotWithClient wraps an existing client. Used by tests.
func NewRankSnapshotWithClient(client *redis.Client) *RankSnapshot {
	return &RankSnapshot{client: client}
}

func (r *RankSnapshot) Close() error {
	return r.client.Close()
}

// Previous returns the last stored user id -> rank mapping.
func (r *RankSnapshot) Previous(ctx context.Context) (map[string]int, error) {
	fields, err := r.client.HGetAll(ctx, rankSnapshotKey).Result()
	if err != nil {
		return nil, err
	}

	ranks := make(map[string]int, len(fields))
	for id, v := range fields {
		rank, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		ranks[id] = rank
	}
	return ranks, nil
}

// Store replaces the snapshot with the given mapping.
func (r *RankSnapshot) Store(ctx context.Context, ranks map[string]int) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, rankSnapshotKey)
	if len(ranks) > 0 {
		fields := make(map[string]interface{}, len(ranks))
		for id, rank := range ranks {
			fields[id] = rank
		}
		pipe.HSet(ctx, rankSnapshotKey, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}
