package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// UpsertPosition writes the current position for a pair.
func (p *PostgresClient) UpsertPosition(ctx context.Context, rec PortfolioRecord) error {
	if !p.connected() {
		return ErrUnavailable
	}
	err := p.DB.WithContext(ctx).Table(p.tables.Portfolio).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "base_asset"}, {Name: "quote_asset"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "avg_price", "updated_timestamp"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert position %s%s: %w", rec.BaseAsset, rec.QuoteAsset, err)
	}
	return nil
}

// QueryPortfolio returns held positions, optionally narrowed to one pair.
func (p *PostgresClient) QueryPortfolio(ctx context.Context, filter PairFilter) ([]PortfolioRecord, error) {
	cond, err := filter.conditions()
	if err != nil {
		return nil, err
	}
	if !p.connected() {
		return nil, ErrNoResult
	}

	q := p.DB.WithContext(ctx).Table(p.tables.Portfolio)
	if cond != nil {
		q = q.Where(cond)
	}
	positions := []PortfolioRecord{}
	if err := q.Order("base_asset").Order("quote_asset").Find(&positions).Error; err != nil {
		return nil, readFailed("query portfolio", err)
	}
	if positions == nil {
		positions = []PortfolioRecord{}
	}
	return positions, nil
}
