package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRecord tokens 表，按 address 唯一
type TokenRecord struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement:true"`
	ChainID      string           `gorm:"column:chain_id;not null"`
	Address      string           `gorm:"column:address;not null;uniqueIndex"`
	Symbol       string           `gorm:"column:symbol;not null"`
	Name         *string          `gorm:"column:name"`
	Decimals     *int32           `gorm:"column:decimals"`
	Logo         *string          `gorm:"column:logo"`
	Tags         pq.StringArray   `gorm:"column:tags;type:text[]"`
	ListingTime  *int64           `gorm:"column:listing_time"`
	PriceUsd     *decimal.Decimal `gorm:"column:price_usd"`
	VolumeUsdH24 *decimal.Decimal `gorm:"column:volume_usd_h24"`
	Liquidity    *decimal.Decimal `gorm:"column:liquidity"`
	MarketCapUsd *decimal.Decimal `gorm:"column:market_cap_usd"`
	MarketInfo   *datatypes.JSON  `gorm:"column:market_info"`
	CreatedAt    int64            `gorm:"column:created_at"`
	UpdatedAt    int64            `gorm:"column:updated_at"`
}

func (*TokenRecord) TableName() string {
	return "tokens"
}

// TokenDAO 新 token 镜像与行情快照
type TokenDAO interface {
	// Upsert 按地址插入，已存在的忽略
	Upsert(ctx context.Context, tokens []model.Token) error

	// UpdateMarket 用对比结果刷新行情字段
	UpdateMarket(ctx context.Context, rows []model.ComparisonRow) error

	// GetByAddress 不存在返回 nil, nil
	GetByAddress(ctx context.Context, address string) (*TokenRecord, error)

	// Recent 按上线时间倒序
	Recent(ctx context.Context, limit int) ([]*TokenRecord, error)
}

type tokenDAO struct {
	db       *gorm.DB
	keywords []string
	now      func() time.Time
}

// NewTokenDAO keywords 命中 symbol/name 的 token 打上 meme 标签
func NewTokenDAO(db *gorm.DB, keywords []string) TokenDAO {
	return &tokenDAO{db: db, keywords: keywords, now: time.Now}
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&TokenRecord{})
}

func (t *tokenDAO) Upsert(ctx context.Context, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	now := t.now().UnixMilli()
	records := make([]*TokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		records = append(records, NewTokenRecord(tok, t.keywords, now))
	}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "address"}}, DoNothing: true}).
		CreateInBatches(records, 500).Error
	if err != nil {
		return fmt.Errorf("upsert tokens: %w", err)
	}
	return nil
}

func (t *tokenDAO) UpdateMarket(ctx context.Context, rows []model.ComparisonRow) error {
	now := t.now().UnixMilli()
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			info, err := marketInfo(row)
			if err != nil {
				return err
			}
			err = tx.Model(&TokenRecord{}).
				Where("address = ?", utils.NormalizeAddress(row.Address)).
				Updates(map[string]any{
					"price_usd":      decimal.NewFromFloat(row.PriceUSD),
					"volume_usd_h24": decimal.NewFromFloat(row.Volume24h),
					"liquidity":      decimal.NewFromFloat(row.Liquidity),
					"market_cap_usd": decimal.NewFromFloat(row.MarketCap),
					"market_info":    info,
					"updated_at":     now,
				}).Error
			if err != nil {
				return fmt.Errorf("update market %s: %w", row.Address, err)
			}
		}
		return nil
	})
}

func (t *tokenDAO) GetByAddress(ctx context.Context, address string) (*TokenRecord, error) {
	var records []*TokenRecord
	err := t.db.WithContext(ctx).
		Where("address = ?", utils.NormalizeAddress(address)).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (t *tokenDAO) Recent(ctx context.Context, limit int) ([]*TokenRecord, error) {
	var records []*TokenRecord
	err := t.db.WithContext(ctx).
		Order("listing_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// NewTokenRecord 地址统一小写存储
func NewTokenRecord(tok model.Token, keywords []string, now int64) *TokenRecord {
	r := &TokenRecord{
		ChainID:   tok.ChainID,
		Address:   utils.NormalizeAddress(tok.Address),
		Symbol:    tok.Symbol,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tok.Name != "" {
		r.Name = &tok.Name
	}
	if tok.Decimals > 0 {
		d := int32(tok.Decimals)
		r.Decimals = &d
	}
	if tok.LogoURL != "" {
		r.Logo = &tok.LogoURL
	}
	if tok.ListingTime > 0 {
		lt := tok.ListingTime
		r.ListingTime = &lt
	}
	if isMeme(tok, keywords) {
		r.Tags = pq.StringArray{"meme"}
	}
	return r
}

func isMeme(tok model.Token, keywords []string) bool {
	s := strings.ToLower(tok.Symbol + " " + tok.Name)
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func marketInfo(row model.ComparisonRow) (datatypes.JSON, error) {
	b, err := sonic.Marshal(map[string]any{
		"holders":              row.Holders,
		"priceChange24h":       row.PriceChange24h,
		"volatility":           row.Volatility,
		"holderGrowthRate":     row.HolderGrowthRate,
		"volumeLiquidityRatio": row.VolumeLiquidityRatio,
		"score":                row.Score,
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
