package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/usecase"
)

const (
	fundColumn   = "fund"
	dateFundIdx  = "idx_holdings_date_fund"
	insertBatch  = 500
	selectTotals = "COALESCE(SUM(market_value), 0) AS total_aum, COUNT(*) AS holdings_count"
)

// StoreConfig は Snapshot Store の動作設定です。
type StoreConfig struct {
	// DefaultFund は fund 列を持たない旧スキーマの行が属するファンドです。
	DefaultFund string
	// SourceLimited は "OTHER" 合成行を含む部分スナップショットを生成しうるファンドです。
	SourceLimited []string
}

type holdingGorm struct {
	db            *gorm.DB
	defaultFund   string
	sourceLimited map[string]bool
}

var _ usecase.SnapshotRepository = (*holdingGorm)(nil)

// NewHoldingRepository は gorm をバックエンドとする Snapshot Store を生成します。
func NewHoldingRepository(db *gorm.DB, cfg StoreConfig) *holdingGorm {
	limited := make(map[string]bool, len(cfg.SourceLimited))
	for _, f := range cfg.SourceLimited {
		limited[strings.ToUpper(f)] = true
	}
	return &holdingGorm{
		db:            db,
		defaultFund:   strings.ToUpper(cfg.DefaultFund),
		sourceLimited: limited,
	}
}

// snapshotKey は1スナップショットを識別します。
type snapshotKey struct {
	date string
	fund string
}

// Upsert は holdings に含まれる (date, fund) ごとに既存行を削除してから挿入します。
// 削除と挿入は1トランザクションで実行され、読み手が書き込み途中の状態を見ることはありません。
//
// 部分スナップショットを生成しうるファンドで新しいスナップショットに "OTHER" 行が
// 含まれない場合、"OTHER" 行を持つ過去の日付をすべて削除します。
func (r *holdingGorm) Upsert(ctx context.Context, holdings []entity.Holding) error {
	if len(holdings) == 0 {
		return domain.ErrNoRows
	}

	models := make([]HoldingModel, 0, len(holdings))
	var keys []snapshotKey
	seen := make(map[snapshotKey]bool)
	hasOther := make(map[string]bool)
	for _, h := range holdings {
		m := toModel(h)
		if m.Fund == "" {
			return domain.ErrMissingFund
		}
		k := snapshotKey{date: m.Date, fund: m.Fund}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
		if strings.EqualFold(m.Ticker, entity.TickerOther) {
			hasOther[m.Fund] = true
		}
		models = append(models, m)
	}

	db := r.db.WithContext(ctx)
	if err := r.ensureSchema(db); err != nil {
		return fmt.Errorf("ensure holdings schema: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		cleaned := make(map[string]bool)
		for _, k := range keys {
			if !r.sourceLimited[k.fund] || hasOther[k.fund] || cleaned[k.fund] {
				continue
			}
			cleaned[k.fund] = true
			partial := tx.Model(&HoldingModel{}).
				Distinct("date").
				Where("UPPER(fund) = ? AND UPPER(ticker) = ?", k.fund, entity.TickerOther)
			if err := tx.Where("UPPER(fund) = ? AND date IN (?)", k.fund, partial).
				Delete(&HoldingModel{}).Error; err != nil {
				return fmt.Errorf("delete partial snapshots of %s: %w", k.fund, err)
			}
		}

		for _, k := range keys {
			if err := tx.Where("date = ? AND UPPER(fund) = ?", k.date, k.fund).
				Delete(&HoldingModel{}).Error; err != nil {
				return fmt.Errorf("delete snapshot %s %s: %w", k.fund, k.date, err)
			}
		}

		return tx.CreateInBatches(&models, insertBatch).Error
	})
}

// ensureSchema は holdings テーブルを作成し、fund 列のない旧スキーマには
// 列を追加して既定ファンドで埋めます。
func (r *holdingGorm) ensureSchema(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&HoldingModel{}) {
		return m.CreateTable(&HoldingModel{})
	}
	if !m.HasColumn(&HoldingModel{}, fundColumn) {
		if err := m.AddColumn(&HoldingModel{}, "Fund"); err != nil {
			return err
		}
		if err := db.Model(&HoldingModel{}).
			Where("fund IS NULL OR fund = ''").
			Update(fundColumn, r.defaultFund).Error; err != nil {
			return err
		}
	}
	if !m.HasIndex(&HoldingModel{}, dateFundIdx) {
		return m.CreateIndex(&HoldingModel{}, dateFundIdx)
	}
	return nil
}

// schema は読み取り時のテーブル状態を返します。
func (r *holdingGorm) schema(db *gorm.DB) (exists, hasFund bool) {
	m := db.Migrator()
	if !m.HasTable(&HoldingModel{}) {
		return false, false
	}
	return true, m.HasColumn(&HoldingModel{}, fundColumn)
}

// scope は fund で絞り込むクエリを返します。旧スキーマで既定ファンド以外が
// 指定された場合は ok=false です。
func (r *holdingGorm) scope(db *gorm.DB, fund string) (q *gorm.DB, ok bool) {
	exists, hasFund := r.schema(db)
	if !exists {
		return nil, false
	}
	fund = strings.ToUpper(strings.TrimSpace(fund))
	q = db.Model(&HoldingModel{})
	if hasFund {
		return q.Where("UPPER(fund) = ?", fund), true
	}
	if fund != r.defaultFund {
		return nil, false
	}
	return q, true
}

// ListFunds はデータが存在するファンドを昇順で返します。
func (r *holdingGorm) ListFunds(ctx context.Context) ([]string, error) {
	db := r.db.WithContext(ctx)
	exists, hasFund := r.schema(db)
	if !exists {
		return []string{}, nil
	}
	if !hasFund {
		var n int64
		if err := db.Model(&HoldingModel{}).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return []string{}, nil
		}
		return []string{r.defaultFund}, nil
	}

	var funds []string
	if err := db.Model(&HoldingModel{}).
		Where("fund IS NOT NULL AND fund <> ''").
		Distinct().
		Pluck("UPPER(fund)", &funds).Error; err != nil {
		return nil, err
	}
	sort.Strings(funds)
	return funds, nil
}

// ListDates は fund のスナップショット日付を昇順で返します。
func (r *holdingGorm) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	q, ok := r.scope(r.db.WithContext(ctx), fund)
	if !ok {
		return []time.Time{}, nil
	}

	var raw []string
	if err := q.Distinct().Order("date").Pluck("date", &raw).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := parseDay(s)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Totals は1スナップショットの評価額合計と行数を返します。データがなければゼロ値です。
func (r *holdingGorm) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	q, ok := r.scope(r.db.WithContext(ctx), fund)
	if !ok {
		return entity.Totals{}, nil
	}

	var row struct {
		TotalAUM      float64
		HoldingsCount int64
	}
	if err := q.Select(selectTotals).Where("date = ?", formatDay(date)).Scan(&row).Error; err != nil {
		return entity.Totals{}, err
	}
	return entity.Totals{TotalAUM: row.TotalAUM, HoldingsCount: int(row.HoldingsCount)}, nil
}

// FindSnapshot は1スナップショットの行をティッカー順で返します。
func (r *holdingGorm) FindSnapshot(ctx context.Context, date time.Time, fund string) ([]entity.Holding, error) {
	q, ok := r.scope(r.db.WithContext(ctx), fund)
	if !ok {
		return []entity.Holding{}, nil
	}

	var rows []HoldingModel
	if err := q.Where("date = ?", formatDay(date)).Order("ticker").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Holding, 0, len(rows))
	for _, m := range rows {
		h := toEntity(m)
		if h.Fund == "" {
			h.Fund = r.defaultFund
		}
		h.Fund = strings.ToUpper(h.Fund)
		out = append(out, h)
	}
	return out, nil
}
