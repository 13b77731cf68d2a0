package cache

import (
	"time"
)

// TimeUntilNextRefresh は loc における次の hour 時ちょうどまでの期間を返します。
// 保有銘柄は1日1回取り込まれるため、キャッシュは次回取り込みの時刻で失効させます。
func TimeUntilNextRefresh(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	// 今日の更新時刻を過ぎている場合は翌日の同時刻を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RefreshTTL は呼び出し時点から次の更新時刻までの期間を返す関数を作成します。
// タイムゾーンが読み込めない場合は UTC を使用します。
func RefreshTTL(hour int, tz string) func() time.Duration {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return func() time.Duration {
		return TimeUntilNextRefresh(time.Now(), hour, loc)
	}
}
