package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ingresso-go/internal/domain"
)

// ChangeFeed broadcasts row-level changes over a redis pub/sub channel.
// Consumers reconcile each record into their local state; records are
// shaped so replaying one twice is harmless.
type ChangeFeed struct {
	rdb     *redis.Client
	channel string
}

func NewChangeFeed(rdb *redis.Client) *ChangeFeed {
	return &ChangeFeed{
		rdb:     rdb,
		channel: ChannelChanges(),
	}
}

func (f *ChangeFeed) Publish(ctx context.Context, ch domain.Change) error {
	if ch.TsUnix == 0 {
		ch.TsUnix = time.Now().Unix()
	}

	b, err := json.Marshal(ch)
	if err != nil {
		return err
	}

	return f.rdb.Publish(ctx, f.channel, b).Err()
}

// PublishInserted emits one INSERT record carrying the new row.
func (f *ChangeFeed) PublishInserted(ctx context.Context, table string, row any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return f.Publish(ctx, domain.Change{Action: domain.ChangeInsert, Table: table, New: b})
}

// PublishUpdated emits one UPDATE record carrying the post-image.
func (f *ChangeFeed) PublishUpdated(ctx context.Context, table string, row any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return f.Publish(ctx, domain.Change{Action: domain.ChangeUpdate, Table: table, New: b})
}

// PublishDeleted emits one DELETE record carrying the pre-image.
func (f *ChangeFeed) PublishDeleted(ctx context.Context, table string, row any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return f.Publish(ctx, domain.Change{Action: domain.ChangeDelete, Table: table, Old: b})
}

// Subscribe delivers feed records to handler until ctx is cancelled. The
// subscription is closed on return, so cancelling the context is the
// deterministic teardown.
func (f *ChangeFeed) Subscribe(ctx context.Context, handler func(ctx context.Context, ch domain.Change)) error {
	sub := f.rdb.Subscribe(ctx, f.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var rec domain.Change
			if err := json.Unmarshal([]byte(m.Payload), &rec); err == nil &&
				rec.Table != "" {
				handler(ctx, rec)
			}
		}
	}
}
