// Package persist writes the whole sheet collection as one JSON array under
// a single namespaced key. The schema stays forward-compatible by adding
// optional fields only.
package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"compliancehub/training/internal/store"
)

type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, key: fmt.Sprintf("%s:sheets", namespace)}
}

func (r *Redis) Save(ctx context.Context, st store.State) error {
	data, err := json.Marshal(st.Entries)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *Redis) Load(ctx context.Context) (store.State, bool, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return store.State{}, false, nil
	}
	if err != nil {
		return store.State{}, false, err
	}
	var entries []store.Entry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return store.State{}, false, err
	}
	return store.State{Entries: entries}, true, nil
}
