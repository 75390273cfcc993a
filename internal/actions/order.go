// Where: internal/actions/order.go
// What: Order validation and journaling action.
// Why: Broker alerts must be checked field by field before anything acts on them.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tvwb/tradingview-webhooks-bot/internal/engine"
	"github.com/tvwb/tradingview-webhooks-bot/internal/journal"
	"github.com/tvwb/tradingview-webhooks-bot/internal/notify"
	"github.com/tvwb/tradingview-webhooks-bot/internal/schema"
)

func init() {
	Register("order-journal", func(env Env) engine.Action {
		return &OrderJournal{env: env}
	})
}

// Trade directions accepted in the "action" field.
const (
	DirBTO  = "BTO"
	DirSTO  = "STO"
	DirBTC  = "BTC"
	DirSTC  = "STC"
	DirBuy  = "BUY"
	DirSell = "SELL"
)

// Order is a validated trade instruction parsed from a webhook payload.
type Order struct {
	Ticker     string
	Price      decimal.Decimal
	Timestamp  time.Time
	OptionType string // "C" or "P"
	Direction  string
	Quantity   int

	Expiration    string // ISO date, optional
	HasExpiration bool
	DTE           int
	HasDTE        bool
	Strike        decimal.Decimal
	HasStrike     bool
	Delta         int
	HasDelta      bool
}

// ValidationError collects every problem found in a payload so the
// alert author can fix them all in one pass.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOrder validates a webhook payload and returns the order it
// describes. All field problems are gathered into one ValidationError.
func ParseOrder(payload []byte) (Order, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return Order{}, &ValidationError{Messages: []string{"Payload is not a JSON object."}}
	}
	delete(data, "key")

	var o Order
	var msgs []string
	fail := func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	if raw, ok := data["ticker"]; ok {
		o.Ticker = scalarString(raw)
	} else {
		fail("Ticker not found in data.")
	}

	if raw, ok := data["price"]; ok {
		price, err := decimal.NewFromString(scalarString(raw))
		if err != nil {
			fail("Price is not a number: %v.", raw)
		} else {
			o.Price = price
		}
	} else {
		fail("Price not found in data.")
	}

	if raw, ok := data["timestamp"]; ok {
		ts, err := parseTimestamp(scalarString(raw))
		if err != nil {
			fail("Invalid timestamp format: %v.", raw)
		} else {
			o.Timestamp = ts
		}
	} else {
		fail("Timestamp not found in data.")
	}

	if raw, ok := data["option_type"]; ok {
		s := strings.ToUpper(scalarString(raw))
		switch {
		case strings.HasPrefix(s, "C"):
			o.OptionType = "C"
		case strings.HasPrefix(s, "P"):
			o.OptionType = "P"
		default:
			fail("Invalid option type: %v.", raw)
		}
	} else {
		fail("Option type not found in data. Expected: CALL | PUT")
	}

	if raw, ok := data["action"]; ok {
		dir := scalarString(raw)
		switch dir {
		case DirBTO, DirSTO, DirBTC, DirSTC, DirBuy, DirSell:
			o.Direction = dir
		default:
			fail("Invalid trade action: %v. Expected: BTO | STO | BTC | STC | BUY | SELL", raw)
		}
	} else {
		fail("Trade action not found in data.")
	}

	if raw, ok := data["quantity"]; ok {
		qty, err := scalarInt(raw)
		switch {
		case err != nil:
			fail("Quantity is not an integer: %v.", raw)
		case qty <= 0:
			fail("Quantity must be a positive integer: %v.", raw)
		default:
			o.Quantity = qty
		}
	} else {
		fail("Quantity not found in data.")
	}

	if raw, ok := data["expiration"]; ok {
		s := scalarString(raw)
		if _, err := time.Parse("2006-01-02", s); err != nil {
			fail("Invalid expiration format: %v.", raw)
		} else {
			o.Expiration = s
			o.HasExpiration = true
		}
	}

	if raw, ok := data["dte"]; ok {
		dte, err := scalarInt(raw)
		if err != nil {
			fail("dte is not an integer: %v.", raw)
		} else {
			o.DTE = dte
			o.HasDTE = true
		}
	}

	if !o.HasExpiration && !o.HasDTE {
		fail("Either expiration or dte must be provided.")
	}

	if raw, ok := data["strike"]; ok {
		strike, err := decimal.NewFromString(scalarString(raw))
		if err != nil {
			fail("Strike is not a number: %v.", raw)
		} else {
			o.Strike = strike
			o.HasStrike = true
		}
	}

	if raw, ok := data["delta"]; ok {
		delta, err := scalarInt(raw)
		if err != nil {
			fail("Delta is not an integer: %v. Expected: 5-95", raw)
		} else {
			o.Delta = delta
			o.HasDelta = true
		}
	}

	switch o.Direction {
	case DirBTO, DirSTO:
		if !o.HasStrike && !o.HasDelta {
			fail("Either strike or delta must be provided for opening positions.")
		}
		if !o.HasExpiration && !o.HasDTE {
			fail("Either expiration or dte must be provided for opening positions.")
		}
	case DirBTC, DirSTC:
		if !o.HasStrike {
			fail("Strike must be provided for closing positions.")
		}
		if !o.HasExpiration {
			fail("Expiration must be provided for closing positions.")
		}
	}

	if len(msgs) > 0 {
		return Order{}, &ValidationError{Messages: msgs}
	}
	return o, nil
}

// Summary renders the order as a one-line audit string.
func (o Order) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s @ %s", o.Direction, o.Quantity, o.Ticker, o.Price.String())
	if o.OptionType != "" {
		fmt.Fprintf(&b, " %s", o.OptionType)
	}
	if o.HasStrike {
		fmt.Fprintf(&b, " strike=%s", o.Strike.String())
	}
	if o.HasDelta {
		fmt.Fprintf(&b, " delta=%d", o.Delta)
	}
	if o.HasExpiration {
		fmt.Fprintf(&b, " exp=%s", o.Expiration)
	} else if o.HasDTE {
		fmt.Fprintf(&b, " dte=%d", o.DTE)
	}
	return b.String()
}

// OrderJournal validates incoming orders and writes them to the journal.
// Invalid payloads are rejected with every problem listed.
type OrderJournal struct {
	env Env
}

func (a *OrderJournal) Name() string { return "order-journal" }

func (a *OrderJournal) Run(ctx context.Context, d *engine.Delivery) error {
	log := a.env.Log.WithField("action", a.Name())

	order, err := ParseOrder(d.Payload)
	if err != nil {
		log.WithField("payload", string(d.Payload)).Errorf("order rejected: %v", err)
		return err
	}
	if err := schema.Validate(schema.Order, d.Payload); err != nil {
		log.Errorf("order payload failed schema check: %v", err)
		return err
	}

	if a.env.Journal != nil {
		entry := journal.Entry{
			ID:      d.ID,
			Kind:    journal.KindOrder,
			Time:    d.ReceivedAt,
			Action:  a.Name(),
			Payload: d.Payload,
			Outcome: order.Summary(),
		}
		if err := a.env.Journal.Record(ctx, entry); err != nil {
			log.Errorf("journal write failed: %v", err)
			return err
		}
	}
	if a.env.Notifier != nil {
		// Best effort; the order is already journaled.
		_ = a.env.Notifier.Push(ctx, notify.Notification{
			Title:   "tvwb order",
			Message: order.Summary(),
			Tags:    []string{"chart_with_upwards_trend"},
		})
	}
	log.Infof("order journaled: %s", order.Summary())
	return nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func scalarInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		i := int(n)
		if float64(i) != n {
			return 0, fmt.Errorf("not an integer")
		}
		return i, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("not an integer")
	}
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
