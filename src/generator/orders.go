package generator

import (
	"fmt"
	"strings"
	"time"

	"dataSynth/src/metadata"
	"dataSynth/src/table"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/shopspring/decimal"
)

const orderTaxRate = 0.08

type orderGenerator struct {
	base
}

func newOrderGenerator(alloc *metadata.Allocator) *orderGenerator {
	return &orderGenerator{base: newBase(alloc)}
}

func (g *orderGenerator) Table() string {
	return "orders"
}

// Generate produces order rows referencing previously committed users and
// products. Both referenced tables must have been generated in this or an
// earlier run; otherwise generation fails with ErrNoExistingIDs and the
// caller is expected to generate the dependencies first.
func (g *orderGenerator) Generate(rows int) (*table.Table, error) {
	if _, err := g.alloc.SampleExisting("users"); err != nil {
		return nil, errors.Trace(err)
	}

	productCount, err := g.alloc.ExistingCount("products")
	if err != nil {
		return nil, errors.Trace(err)
	}
	if productCount == 0 {
		return nil, errors.Annotatef(metadata.ErrNoExistingIDs, "table %q", "products")
	}

	idRange, err := g.alloc.AllocateRange(g.Table(), rows)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids := idRange.IDs()

	now := time.Now().UTC()

	var (
		userIDs         = make([]int64, rows)
		orderNumbers    = make([]string, rows)
		orderDates      = make([]time.Time, rows)
		orderStatuses   = make([]string, rows)
		paymentStatuses = make([]string, rows)
		paymentMethods  = make([]string, rows)
		shippingMethods = make([]string, rows)
		billing         = make([]string, rows)
		shipping        = make([]string, rows)
		subtotals       = make([]float64, rows)
		taxes           = make([]float64, rows)
		shippingCosts   = make([]float64, rows)
		discounts       = make([]float64, rows)
		totals          = make([]float64, rows)
		currencies      = make([]string, rows)
		itemCounts      = make([]int32, rows)
		quantities      = make([]int32, rows)
		coupons         = make([]string, rows)
		couponNull      = make([]bool, rows)
		salesChannels   = make([]string, rows)
		customerTypes   = make([]string, rows)
		orderSources    = make([]string, rows)
		estDelivery     = make([]time.Time, rows)
		actDelivery     = make([]time.Time, rows)
		actDeliveryNull = make([]bool, rows)
		trackingNumbers = make([]string, rows)
		trackingNull    = make([]bool, rows)
		notes           = make([]string, rows)
		notesNull       = make([]bool, rows)
		gifts           = make([]string, rows)
		giftsNull       = make([]bool, rows)
		priorities      = make([]string, rows)
	)

	for i := range rows {
		f := g.faker
		orderID := ids[i]

		userIDs[i], err = g.alloc.SampleExisting("users")
		if err != nil {
			return nil, errors.Trace(err)
		}

		orderDates[i] = g.timeBetween(now.AddDate(-2, 0, 0), now)
		orderNumbers[i] = fmt.Sprintf("ORD-%s-%06d",
			orderDates[i].Format("20060102"), orderID)

		items := g.orderItems(productCount)
		subtotal := decimal.Zero
		quantity := 0
		for range items {
			price := decimal.NewFromFloat(g.price(10, 500))
			qty := g.rng.Intn(5) + 1
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
			quantity += qty
		}
		subtotal = subtotal.Round(2)

		tax := subtotal.Mul(decimal.NewFromFloat(orderTaxRate)).Round(2)
		ship := decimal.Zero
		if subtotal.LessThan(decimal.NewFromInt(100)) {
			ship = decimal.NewFromFloat(g.price(0, 25))
		}
		disc := decimal.Zero
		if g.chance(0.3) {
			disc = subtotal.Mul(decimal.NewFromFloat(g.rng.Float64() * 0.2)).Round(2)
		}
		total := subtotal.Add(tax).Add(ship).Sub(disc)

		subtotals[i], _ = subtotal.Float64()
		taxes[i], _ = tax.Float64()
		shippingCosts[i], _ = ship.Float64()
		discounts[i], _ = disc.Float64()
		totals[i], _ = total.Round(2).Float64()

		currencies[i] = "USD"
		itemCounts[i] = int32(items)
		quantities[i] = int32(quantity)

		if disc.IsPositive() {
			coupons[i] = strings.ToUpper(f.LetterN(4)) + f.DigitN(3)
		} else {
			couponNull[i] = true
		}

		orderStatuses[i] = g.choose(
			[]string{"pending", "confirmed", "shipped", "delivered", "cancelled", "returned"},
			[]float32{5, 10, 20, 55, 7, 3})
		paymentStatuses[i] = g.choose(
			[]string{"pending", "paid", "failed", "refunded"},
			[]float32{5, 85, 5, 5})
		paymentMethods[i] = g.choose(
			[]string{"credit_card", "debit_card", "paypal", "bank_transfer", "cash"},
			[]float32{45, 25, 20, 8, 2})
		shippingMethods[i] = g.choose(
			[]string{"standard", "express", "overnight", "pickup"},
			[]float32{60, 25, 10, 5})

		billing[i] = fmt.Sprintf("%s, %s, %s %s",
			f.Street(), f.City(), f.State(), f.Zip())
		shipping[i] = fmt.Sprintf("%s, %s, %s %s",
			f.Street(), f.City(), f.State(), f.Zip())

		salesChannels[i] = g.choose(
			[]string{"website", "mobile_app", "phone", "store"},
			[]float32{50, 35, 10, 5})
		customerTypes[i] = g.choose(
			[]string{"new", "returning"},
			[]float32{25, 75})
		orderSources[i] = g.choose(
			[]string{"organic", "marketing_campaign", "referral"},
			[]float32{70, 25, 5})

		estDelivery[i] = orderDates[i].AddDate(0, 0, g.rng.Intn(14)+1)
		if g.chance(0.7) {
			actDelivery[i] = orderDates[i].AddDate(0, 0, g.rng.Intn(14)+1)
		} else {
			actDeliveryNull[i] = true
		}
		if g.chance(0.8) {
			trackingNumbers[i] = strings.ToUpper(uuid.NewString()[:13])
		} else {
			trackingNull[i] = true
		}
		if g.chance(0.2) {
			notes[i] = f.Sentence(8)
		} else {
			notesNull[i] = true
		}
		if g.chance(0.1) {
			gifts[i] = f.Sentence(6)
		} else {
			giftsNull[i] = true
		}
		priorities[i] = g.choose(
			[]string{"low", "normal", "high", "urgent"},
			[]float32{20, 65, 12, 3})
	}

	tbl, err := table.New(g.Table(), []*table.Column{
		table.Int64Column("order_id", ids, nil),
		table.Int64Column("user_id", userIDs, nil),
		table.StringColumn("order_number", orderNumbers, nil),
		table.TimestampColumn("order_date", orderDates, nil),
		table.StringColumn("order_status", orderStatuses, nil),
		table.StringColumn("payment_status", paymentStatuses, nil),
		table.StringColumn("payment_method", paymentMethods, nil),
		table.StringColumn("shipping_method", shippingMethods, nil),
		table.StringColumn("billing_address", billing, nil),
		table.StringColumn("shipping_address", shipping, nil),
		table.Float64Column("subtotal_amount", subtotals, nil),
		table.Float64Column("tax_amount", taxes, nil),
		table.Float64Column("shipping_cost", shippingCosts, nil),
		table.Float64Column("discount_amount", discounts, nil),
		table.Float64Column("total_amount", totals, nil),
		table.StringColumn("currency", currencies, nil),
		table.Int32Column("total_items", itemCounts, nil),
		table.Int32Column("total_quantity", quantities, nil),
		table.StringColumn("coupon_code", coupons, couponNull),
		table.StringColumn("sales_channel", salesChannels, nil),
		table.StringColumn("customer_type", customerTypes, nil),
		table.StringColumn("order_source", orderSources, nil),
		table.TimestampColumn("estimated_delivery_date", estDelivery, nil),
		table.TimestampColumn("actual_delivery_date", actDelivery, actDeliveryNull),
		table.StringColumn("tracking_number", trackingNumbers, trackingNull),
		table.StringColumn("notes", notes, notesNull),
		table.StringColumn("gift_message", gifts, giftsNull),
		table.StringColumn("priority_level", priorities, nil),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err := g.alloc.Commit(g.Table(), ids); err != nil {
		return nil, errors.Trace(err)
	}
	return tbl, nil
}

// orderItems returns how many distinct products an order references,
// capped by catalog size.
func (g *orderGenerator) orderItems(productCount int64) int {
	n := g.faker.Number(1, 5)
	if g.chance(0.6) {
		n = min(n, 2)
	}
	if int64(n) > productCount {
		n = int(productCount)
	}
	return n
}
