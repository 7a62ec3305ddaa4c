package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dokseo/dokseo/internal/pkg/cache"
	"github.com/dokseo/dokseo/internal/pkg/clock"
	"github.com/dokseo/dokseo/internal/pkg/database"
)

// Quiz points are buffered in Redis hashes, one hash per challenge period
// and level type, and drained into challenge_scores in batches. The hash
// field is the user ID, the value the pending point delta.

func pointsKey(levelType string, p clock.Period) string {
	return fmt.Sprintf("challenge:points:%s:%04d:%02d", levelType, p.Year, p.Month)
}

// AddPoints buffers quiz points for a user in the current challenge period.
func AddPoints(userID uint, levelType string, period clock.Period, points int) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(userID), 10)
	return cache.GetClient().HIncrBy(ctx, pointsKey(levelType, period), field, int64(points)).Err()
}

// FlushPeriod drains the buffered points for one period and level type into
// the challenge_scores table.
func FlushPeriod(levelType string, period clock.Period) error {
	return flushHashToScores(pointsKey(levelType, period), levelType, period)
}

// flushHashToScores drains a Redis hash atomically and applies batched
// increments to challenge_scores. Uses RENAME to a temporary key so
// in-flight increments land in a fresh hash instead of being lost.
func flushHashToScores(redisKey, levelType string, period clock.Period) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		userID uint64
		inc    int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{userID: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].userID < pairs[j].userID })

	// One upsert per flush: insert missing period rows, add the delta to
	// existing ones. The unique index on (user_id, level_type, year, month)
	// makes the ON DUPLICATE branch hit the right row.
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*5)
	builder.WriteString("INSERT INTO challenge_scores (user_id, level_type, year, month, points) VALUES ")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("(?,?,?,?,?)")
		args = append(args, p.userID, levelType, period.Year, period.Month, p.inc)
	}
	builder.WriteString(" ON DUPLICATE KEY UPDATE points = points + VALUES(points)")

	db := database.GetDB()
	if err := db.Exec(builder.String(), args...).Error; err != nil {
		return err
	}
	return nil
}
