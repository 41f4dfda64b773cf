// Package store keeps task boards in Redis: it seeds new board rooms and
// records every reconciled move.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/relay/internal/domain"
)

// BoardStore implements core.BoardLoader on top of Redis.
//
// Layout per room, under prefix:
//
//	board:<room>:columns      list of column names
//	board:<room>:col:<name>   list of task ids in order
//	board:<room>:rev          hash task id -> revision
type BoardStore struct {
	redis    *redis.Client
	prefix   string
	defaults []string
}

func NewBoardStore(client *redis.Client, prefix string, defaultColumns []string) *BoardStore {
	if client == nil {
		panic("store.NewBoardStore: redis client is nil")
	}
	return &BoardStore{redis: client, prefix: prefix, defaults: defaultColumns}
}

func (s *BoardStore) roomKey(room domain.RoomID) string {
	if s.prefix == "" {
		return "board:" + string(room)
	}
	return s.prefix + ":board:" + string(room)
}

func (s *BoardStore) columnsKey(room domain.RoomID) string   { return s.roomKey(room) + ":columns" }
func (s *BoardStore) columnPrefix(room domain.RoomID) string { return s.roomKey(room) + ":col:" }
func (s *BoardStore) revKey(room domain.RoomID) string       { return s.roomKey(room) + ":rev" }

// LoadBoard reads the stored board for room. A room with nothing stored
// yields an empty board with no columns.
func (s *BoardStore) LoadBoard(ctx context.Context, room domain.RoomID) (*domain.Board, error) {
	columns, err := s.redis.LRange(ctx, s.columnsKey(room), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load columns of %s: %w", room, err)
	}
	board := domain.NewBoard(columns...)
	if len(columns) == 0 {
		return board, nil
	}

	pipe := s.redis.Pipeline()
	orders := make([]*redis.StringSliceCmd, len(columns))
	for i, c := range columns {
		orders[i] = pipe.LRange(ctx, s.columnPrefix(room)+c, 0, -1)
	}
	revs := pipe.HGetAll(ctx, s.revKey(room))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load board %s: %w", room, err)
	}

	revisions := revs.Val()
	for i, c := range columns {
		for _, id := range orders[i].Val() {
			var rev uint64
			if raw, ok := revisions[id]; ok {
				if rev, err = strconv.ParseUint(raw, 10, 64); err != nil {
					log.Warn().Str("module", "store").Str("room", string(room)).Str("task", id).Msg("bad revision, using 0")
				}
			}
			if err := board.Place(c, domain.TaskID(id), rev); err != nil {
				log.Warn().Err(err).Str("module", "store").Str("room", string(room)).Str("task", id).Msg("skipping task")
			}
		}
	}
	return board, nil
}

// saveScript moves a task and records its revision unless a newer revision
// is already stored. Column keys are derived inside the script, so this
// assumes a single Redis node.
var saveScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[2], ARGV[2]) or '0')
local rev = tonumber(ARGV[5])
if current >= rev then
  return 0
end
if redis.call('EXISTS', KEYS[1]) == 0 then
  for i = 6, #ARGV do
    redis.call('RPUSH', KEYS[1], ARGV[i])
  end
end
local found = false
for _, c in ipairs(redis.call('LRANGE', KEYS[1], 0, -1)) do
  redis.call('LREM', ARGV[1] .. c, 0, ARGV[2])
  if c == ARGV[3] then
    found = true
  end
end
if not found then
  redis.call('RPUSH', KEYS[1], ARGV[3])
end
local key = ARGV[1] .. ARGV[3]
local pivot = redis.call('LINDEX', key, ARGV[4])
if pivot then
  redis.call('LINSERT', key, 'BEFORE', pivot, ARGV[2])
else
  redis.call('RPUSH', key, ARGV[2])
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[5])
return 1
`)

// Save applies update to the stored board. It reports false when the store
// already holds the same or a newer revision of the task.
func (s *BoardStore) Save(ctx context.Context, room domain.RoomID, u domain.TaskUpdate) (bool, error) {
	args := []any{s.columnPrefix(room), string(u.TaskID), u.NewColumn, u.Index, u.Revision}
	for _, c := range s.defaults {
		args = append(args, c)
	}
	n, err := saveScript.Run(ctx, s.redis, []string{s.columnsKey(room), s.revKey(room)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("save %s/%s: %w", room, u.TaskID, err)
	}
	return n == 1, nil
}
