package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golxlybridge/config"
	"golxlybridge/types"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
)

// RedisStore keeps bridge transaction records in Redis, one JSON blob per
// (source tx hash, user address) pair plus status-indexed sets for stats.
type RedisStore struct {
	pool *redis.Pool
}

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func NewRedisStore() *RedisStore {
	redisAddr := fmt.Sprintf("%s:%d", config.Config.Server.RedisHost, config.Config.Server.RedisPort)
	return &RedisStore{
		pool: &redis.Pool{
			MaxIdle: 5,
			Dial:    func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
		},
	}
}

func recordKey(txHash, address string) string {
	return fmt.Sprintf("bridgetx:rec:%s_%s", strings.ToLower(txHash), strings.ToLower(address))
}

func userSetKey(address string) string {
	return fmt.Sprintf("bridgetx:user:%s", strings.ToLower(address))
}

// Upsert stores a new snapshot, superseding any previous one for the same
// key. Records are never deleted, only moved between status sets.
func (s *RedisStore) Upsert(rec *types.BridgeTransactionRecord) error {
	conn := s.pool.Get()
	defer conn.Close()

	if rec == nil {
		return errors.New("null object to store")
	}
	if rec.State == "" {
		return errors.New("bridge record cannot have empty state")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	key := recordKey(rec.SourceTxHash, rec.UserAddress)

	// move between status sets when the state changed
	prev, err := s.Get(rec.SourceTxHash, rec.UserAddress)
	if err != nil {
		return err
	}
	if prev != nil && prev.State != rec.State {
		if _, err := conn.Do("SREM", config.RedisStatusSets[string(prev.State)], key); err != nil {
			log.Printf("error Redis SREM: %s", err.Error())
			return err
		}
	}

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cannot marshal bridge record to JSON: %s", err.Error())
	}

	if _, err := conn.Do("SET", key, recJSON); err != nil {
		log.Printf("error Redis SET: %s", err.Error())
		return err
	}
	if _, err := conn.Do("SADD", config.RedisStatusSets[string(rec.State)], key); err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}
	if _, err := conn.Do("SADD", userSetKey(rec.UserAddress), key); err != nil {
		log.Printf("error Redis SADD: %s", err.Error())
		return err
	}
	return nil
}

func (s *RedisStore) Get(txHash, address string) (*types.BridgeTransactionRecord, error) {
	conn := s.pool.Get()
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", recordKey(txHash, address)))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		log.Printf("error Redis GET: %s", err.Error())
		return nil, err
	}

	var rec types.BridgeTransactionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByAddress scans every record the user has ever bridged.
func (s *RedisStore) FindByAddress(address string) ([]*types.BridgeTransactionRecord, error) {
	conn := s.pool.Get()
	defer conn.Close()

	recs := make([]*types.BridgeTransactionRecord, 0)

	var cursor int64
	for {
		values, err := redis.Values(conn.Do("SSCAN", userSetKey(address), cursor))
		if err != nil {
			return nil, err
		}

		var keys []string
		_, err = redis.Scan(values, &cursor, &keys)
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			raw, err := redis.Bytes(conn.Do("GET", key))
			if errors.Is(err, redis.ErrNil) {
				// a record can be missing, don't crash
				continue
			}
			if err != nil {
				log.Printf("error Redis GET: %s", err.Error())
				return nil, err
			}

			var rec types.BridgeTransactionRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, err
			}
			recs = append(recs, &rec)
		}

		if cursor == 0 {
			break
		}
	}

	return recs, nil
}

// FindAllByState scans a status set, for the stats endpoints.
func (s *RedisStore) FindAllByState(state types.TransactionState) ([]*types.BridgeTransactionRecord, error) {
	if _, ok := config.RedisStatusSets[string(state)]; !ok {
		return nil, errors.New("redis key not found for state")
	}

	conn := s.pool.Get()
	defer conn.Close()

	recs := make([]*types.BridgeTransactionRecord, 0)

	var cursor int64
	for {
		values, err := redis.Values(conn.Do("SSCAN", config.RedisStatusSets[string(state)], cursor))
		if err != nil {
			return nil, err
		}

		var keys []string
		_, err = redis.Scan(values, &cursor, &keys)
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			raw, err := redis.Bytes(conn.Do("GET", key))
			if errors.Is(err, redis.ErrNil) {
				continue
			}
			if err != nil {
				log.Printf("error Redis GET: %s", err.Error())
				return nil, err
			}

			var rec types.BridgeTransactionRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, err
			}
			if rec.State == state {
				recs = append(recs, &rec)
			}
		}

		if cursor == 0 {
			break
		}
	}

	return recs, nil
}
