// Where: internal/actions/positions.go
// What: Position summary action built from journaled orders.
// Why: A quick net-position readout without logging into the broker.
package actions

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
)

func init() {
	Register("positions-report", func(env Env) engine.Action {
		return &PositionsReport{env: env, lookback: 200}
	})
}

// Position is the net exposure in one ticker according to the journal.
type Position struct {
	Ticker    string
	Net       int
	LastPrice decimal.Decimal
	Orders    int
}

// BuildPositions folds journaled orders into net positions per ticker.
// Buys count positive, sells negative, so a flat book nets to zero.
func BuildPositions(entries []journal.Entry) []Position {
	byTicker := map[string]*Position{}
	// Entries arrive newest first. Walk backwards so LastPrice lands on
	// the most recent order.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Kind != journal.KindOrder || len(e.Payload) == 0 {
			continue
		}
		order, err := ParseOrder(e.Payload)
		if err != nil {
			continue
		}
		pos, ok := byTicker[order.Ticker]
		if !ok {
			pos = &Position{Ticker: order.Ticker}
			byTicker[order.Ticker] = pos
		}
		switch order.Direction {
		case DirBTO, DirBTC, DirBuy:
			pos.Net += order.Quantity
		case DirSTO, DirSTC, DirSell:
			pos.Net -= order.Quantity
		}
		pos.LastPrice = order.Price
		pos.Orders++
	}

	out := make([]Position, 0, len(byTicker))
	for _, pos := range byTicker {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// PositionsReport logs the net position per ticker whenever it fires.
type PositionsReport struct {
	env      Env
	lookback int
}

func (a *PositionsReport) Name() string { return "positions-report" }

func (a *PositionsReport) Run(ctx context.Context, _ *engine.Delivery) error {
	log := a.env.Log.WithField("action", a.Name())
	if a.env.Journal == nil {
		log.Warn("no journal configured, nothing to report")
		return nil
	}
	entries, err := a.env.Journal.Recent(ctx, a.lookback)
	if err != nil {
		log.Errorf("journal read failed: %v", err)
		return err
	}
	positions := BuildPositions(entries)
	log.Info("POSITIONS")
	if len(positions) == 0 {
		log.Info("(no journaled orders)")
		return nil
	}
	for _, pos := range positions {
		log.Info("===================================")
		log.Infof("Symbol:     %s", pos.Ticker)
		log.Infof("Net qty:    %d", pos.Net)
		log.Infof("Last price: %s", pos.LastPrice.String())
		log.Infof("Orders:     %d", pos.Orders)
	}
	log.Info("===================================")
	return nil
}
