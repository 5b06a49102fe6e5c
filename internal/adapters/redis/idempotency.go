package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

type IdempResponse struct {
	Status int
	Result []byte
}

// Keys are scoped per user so one caller's Idempotency-Key can never
// replay another caller's response.
func idempKey(userID int64, key string) string {
	return "idemp:" + strconv.FormatInt(userID, 10) + ":" + key
}

func (i *Idempotency) Get(ctx context.Context, userID int64, key string) (*IdempResponse, error) {
	val, err := i.client.Get(ctx, idempKey(userID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp IdempResponse
	err = json.Unmarshal(val, &resp)
	return &resp, err
}

func (i *Idempotency) Set(ctx context.Context, userID int64, key string, resp IdempResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, idempKey(userID, key), data, ttl).Err()
}
