package postgres

import (
	"context"
	"fmt"

	"binancecollector/pkg/binance"

	"gorm.io/gorm/clause"
)

// ToOrderRecord maps an exchange order response for base/quote to its row.
func ToOrderRecord(base, quote string, resp binance.OrderResponse) OrderRecord {
	clientID := resp.ClientOrderID
	if resp.OrigClientOrderID != "" {
		clientID = resp.OrigClientOrderID
	}
	return OrderRecord{
		ClientOrderID:     clientID,
		OrderID:           resp.OrderID,
		BaseAsset:         base,
		QuoteAsset:        quote,
		Side:              resp.Side,
		OrderType:         resp.Type,
		TimeInForce:       resp.TimeInForce,
		Price:             resp.Price,
		Quantity:          resp.OrigQty,
		ExecutedQty:       resp.ExecutedQty,
		Status:            resp.Status,
		TransactTimestamp: resp.TransactTime,
	}
}

// RecordOrder inserts an order, or refreshes its status and fill when the
// client order id is already known.
func (p *PostgresClient) RecordOrder(ctx context.Context, rec OrderRecord) error {
	if !p.connected() {
		return ErrUnavailable
	}
	err := p.DB.WithContext(ctx).Table(p.tables.Orders).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "executed_qty"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("record order %s: %w", rec.ClientOrderID, err)
	}
	return nil
}

// QueryOrders returns stored orders, optionally narrowed to one pair.
func (p *PostgresClient) QueryOrders(ctx context.Context, filter PairFilter) ([]OrderRecord, error) {
	cond, err := filter.conditions()
	if err != nil {
		return nil, err
	}
	if !p.connected() {
		return nil, ErrNoResult
	}

	q := p.DB.WithContext(ctx).Table(p.tables.Orders)
	if cond != nil {
		q = q.Where(cond)
	}
	orders := []OrderRecord{}
	if err := q.Order("transact_timestamp DESC").Find(&orders).Error; err != nil {
		return nil, readFailed("query orders", err)
	}
	if orders == nil {
		orders = []OrderRecord{}
	}
	return orders, nil
}
