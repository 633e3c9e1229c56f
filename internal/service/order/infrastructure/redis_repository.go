// internal/service/order/infrastructure/redis_repository.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"orderflow/internal/service/order/domain"
)

const orderKeyPrefix = "order:"

// RedisRepository 是 OrderRepository 的 Redis 实现，
// 订单以 JSON 存在 order:{id} 键下。多个投影实例共享状态时使用。
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository 连接 Redis 并做一次连通性探测。
func NewRedisRepository(addr string) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisRepository{client: client}, nil
}

func (r *RedisRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	data, err := r.client.Get(ctx, orderKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, errors.Wrap(err, "unmarshal order")
	}
	return &order, nil
}

func (r *RedisRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, orderKeyPrefix+id).Result()
	if err != nil {
		return false, errors.Wrap(err, "check order existence")
	}
	return n > 0, nil
}

func (r *RedisRepository) Save(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal order")
	}
	return errors.Wrap(r.client.Set(ctx, orderKeyPrefix+order.ID, data, 0).Err(), "set order")
}

func (r *RedisRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var all []*domain.Order
	iter := r.client.Scan(ctx, 0, orderKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // 扫描后刚好被删，跳过
			}
			return nil, errors.Wrap(err, "get order during scan")
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, errors.Wrap(err, "unmarshal order")
		}
		all = append(all, &order)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	return all, nil
}

// Close 关闭 Redis 连接。
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
