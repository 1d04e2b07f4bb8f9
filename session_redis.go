package docqa

import (
    "context"
    "encoding/json"
    "time"

    "github.com/redis/go-redis/v9"

    "docqa/common/logger"
    "docqa/config"
)

// RedisSessionStore persists sessions in Redis.
// Data model:
//  - key prefix+"session:"+id => JSON(Session) with TTL
//  - key prefix+"idx" => sorted set of IDs scored by last activity
type RedisSessionStore struct {
    cli    *redis.Client
    prefix string
    ttl    time.Duration
}

func NewRedisSessionStore(cfg *config.SessionConfig) (*RedisSessionStore, error) {
    ttl := time.Duration(cfg.TTLSeconds) * time.Second
    if ttl <= 0 { ttl = 24 * time.Hour }
    cli := redis.NewClient(&redis.Options{
        Addr:     cfg.RedisAddr,
        Password: cfg.RedisPass,
        DB:       cfg.RedisDB,
    })
    if err := cli.Ping(context.Background()).Err(); err != nil {
        return nil, err
    }
    return &RedisSessionStore{cli: cli, prefix: "docqa:sess:", ttl: ttl}, nil
}

func (s *RedisSessionStore) idxKey() string { return s.prefix + "idx" }
func (s *RedisSessionStore) sessKey(id string) string { return s.prefix + "session:" + id }

func (s *RedisSessionStore) save(ctx context.Context, sess *Session) error {
    b, err := json.Marshal(sess)
    if err != nil { return err }
    pipe := s.cli.TxPipeline()
    pipe.Set(ctx, s.sessKey(sess.ID), b, s.ttl)
    pipe.ZAdd(ctx, s.idxKey(), redis.Z{Score: float64(time.Now().Unix()), Member: sess.ID})
    _, err = pipe.Exec(ctx)
    return err
}

func (s *RedisSessionStore) Create() *Session {
    sess := &Session{ID: newSessionID(), CreatedAt: time.Now(), Messages: []ChatMessage{}}
    if err := s.save(context.Background(), sess); err != nil {
        logger.Warnf("session create failed: %v", err)
    }
    return sess
}

func (s *RedisSessionStore) Get(id string) (*Session, bool) {
    raw, err := s.cli.Get(context.Background(), s.sessKey(id)).Bytes()
    if err != nil { return nil, false }
    sess := &Session{}
    if err := json.Unmarshal(raw, sess); err != nil {
        logger.Warnf("session %s is corrupt: %v", id, err)
        return nil, false
    }
    return sess, true
}

func (s *RedisSessionStore) Delete(id string) bool {
    ctx := context.Background()
    pipe := s.cli.TxPipeline()
    del := pipe.Del(ctx, s.sessKey(id))
    pipe.ZRem(ctx, s.idxKey(), id)
    if _, err := pipe.Exec(ctx); err != nil { return false }
    return del.Val() > 0
}

func (s *RedisSessionStore) List() []*Session {
    return s.ListRange(0, 100)
}

func (s *RedisSessionStore) AddMessage(id string, msg ChatMessage) bool {
    sess, ok := s.Get(id)
    if !ok { return false }
    sess.Messages = append(sess.Messages, msg)
    if err := s.save(context.Background(), sess); err != nil {
        logger.Warnf("session %s update failed: %v", id, err)
        return false
    }
    return true
}

// ListRange returns sessions from offset with limit (by recency desc)
func (s *RedisSessionStore) ListRange(offset, limit int) []*Session {
    if offset < 0 { offset = 0 }
    if limit <= 0 { return []*Session{} }
    ctx := context.Background()
    ids, err := s.cli.ZRevRange(ctx, s.idxKey(), int64(offset), int64(offset+limit-1)).Result()
    if err != nil || len(ids) == 0 { return []*Session{} }
    res := make([]*Session, 0, len(ids))
    for _, id := range ids {
        if sess, ok := s.Get(id); ok {
            res = append(res, sess)
        } else {
            // expired session body; drop the stale index entry
            s.cli.ZRem(ctx, s.idxKey(), id)
        }
    }
    return res
}

// Clean keeps only the newest max sessions.
func (s *RedisSessionStore) Clean(max int) error {
    if max <= 0 { return nil }
    ctx := context.Background()
    total, err := s.cli.ZCard(ctx, s.idxKey()).Result()
    if err != nil { return err }
    if total <= int64(max) { return nil }
    stale, err := s.cli.ZRange(ctx, s.idxKey(), 0, total-int64(max)-1).Result()
    if err != nil { return err }
    pipe := s.cli.TxPipeline()
    for _, id := range stale {
        pipe.Del(ctx, s.sessKey(id))
        pipe.ZRem(ctx, s.idxKey(), id)
    }
    _, err = pipe.Exec(ctx)
    return err
}
