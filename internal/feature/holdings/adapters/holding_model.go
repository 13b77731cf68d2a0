package adapters

import (
	"strings"
	"time"

	"holdings_backend/internal/feature/holdings/domain/entity"
)

// HoldingModel は holdings テーブルの1行です。
// date は "YYYY-MM-DD" 文字列で保持し、ドライバ間の日付型の差異を避けます。
type HoldingModel struct {
	Date        string  `gorm:"column:date;type:varchar(10);not null;index:idx_holdings_date_fund,priority:1"`
	Fund        string  `gorm:"column:fund;size:32;index:idx_holdings_date_fund,priority:2"`
	Ticker      string  `gorm:"column:ticker;size:64;not null"`
	Name        string  `gorm:"column:name;not null"`
	Shares      float64 `gorm:"column:shares"`
	MarketValue float64 `gorm:"column:market_value"`
	Weight      float64 `gorm:"column:weight"`
}

func (HoldingModel) TableName() string {
	return "holdings"
}

func toModel(e entity.Holding) HoldingModel {
	return HoldingModel{
		Date:        formatDay(e.Date),
		Fund:        strings.ToUpper(strings.TrimSpace(e.Fund)),
		Ticker:      e.Ticker,
		Name:        e.Name,
		Shares:      e.Shares,
		MarketValue: e.MarketValue,
		Weight:      e.Weight,
	}
}

func toEntity(m HoldingModel) entity.Holding {
	d, _ := parseDay(m.Date)
	return entity.Holding{
		Date:        d,
		Fund:        m.Fund,
		Ticker:      m.Ticker,
		Name:        m.Name,
		Shares:      m.Shares,
		MarketValue: m.MarketValue,
		Weight:      m.Weight,
	}
}

func formatDay(t time.Time) string {
	return entity.Day(t).Format(entity.DateLayout)
}

// parseDay は保存済みの日付を読み取ります。DATE型の旧テーブルでは
// ドライバがRFC3339形式の文字列を返すため先頭10文字のみを使用します。
func parseDay(s string) (time.Time, error) {
	if len(s) > len(entity.DateLayout) {
		s = s[:len(entity.DateLayout)]
	}
	return entity.ParseDay(s)
}
