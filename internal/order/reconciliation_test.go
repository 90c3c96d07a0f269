package order_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cucumber/godog"
	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/memstore"
	"github.com/mahdiimanzadeh/storetrack/internal/order"
	"github.com/mahdiimanzadeh/storetrack/internal/product"
	"github.com/mahdiimanzadeh/storetrack/internal/transaction"
)

type reconciliationContext struct {
	ctx      context.Context
	owner    uuid.UUID
	products product.Service
	ledger   transaction.Service
	orders   order.Service

	byName  map[string]uuid.UUID
	order   *order.Order
	lastErr error
}

func (c *reconciliationContext) reset() {
	s := memstore.New()
	c.ctx = context.Background()
	c.owner = uuid.Must(uuid.NewV4())
	c.ledger = transaction.NewService(s.Transactions())
	c.products = product.NewService(s.Products(), c.ledger, s)
	c.orders = order.NewService(s.Orders(), c.products, c.ledger, s)
	c.byName = make(map[string]uuid.UUID)
	c.order = nil
	c.lastErr = nil
}

func (c *reconciliationContext) productID(name string) (uuid.UUID, error) {
	id, ok := c.byName[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown product %q", name)
	}
	return id, nil
}

func (c *reconciliationContext) aNewProductPriced(name string, price float64) error {
	p, err := c.products.Create(c.ctx, c.owner, product.Attributes{
		Name:         name,
		Manufacturer: "Acme",
		Price:        price,
		Category:     "Hardware",
	})
	if err != nil {
		return err
	}
	c.byName[name] = p.ID
	return nil
}

func (c *reconciliationContext) aProductPricedWithStock(name string, price float64, stock int) error {
	if err := c.aNewProductPriced(name, price); err != nil {
		return err
	}
	if stock == 0 {
		return nil
	}
	return c.iAdjustTheStockBy(name, stock, "restock")
}

func (c *reconciliationContext) iAdjustTheStockBy(name string, delta int, reason string) error {
	id, err := c.productID(name)
	if err != nil {
		return err
	}
	_, err = c.products.AdjustStock(c.ctx, c.owner, id, delta, reason, nil)
	return err
}

func (c *reconciliationContext) iPlaceAnOrderFor(qty int, name string) error {
	id, err := c.productID(name)
	if err != nil {
		return err
	}
	c.order, c.lastErr = c.orders.PlaceOrder(c.ctx, order.PlaceOrderInput{
		UserID:          c.owner,
		Items:           []order.ItemRequest{{ProductID: id, Quantity: qty}},
		ShippingAddress: "1 Main St",
	})
	return nil
}

func (c *reconciliationContext) iSetTheOrderStatusTo(status string) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	updated, err := c.orders.SetStatus(c.ctx, c.owner, c.order.ID, order.Status(status))
	if err != nil {
		return err
	}
	c.order = updated
	return nil
}

func (c *reconciliationContext) iDeleteTheOrder() error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	return c.orders.DeleteOrder(c.ctx, c.owner, c.order.ID)
}

func (c *reconciliationContext) theStockOfIs(name string, want int) error {
	id, err := c.productID(name)
	if err != nil {
		return err
	}
	p, err := c.products.Get(c.ctx, c.owner, id)
	if err != nil {
		return err
	}
	if p.Stock != want {
		return fmt.Errorf("stock of %s: want %d, got %d", name, want, p.Stock)
	}
	return nil
}

func (c *reconciliationContext) entries(name string) ([]transaction.Transaction, error) {
	id, err := c.productID(name)
	if err != nil {
		return nil, err
	}
	return c.ledger.ListByProduct(c.ctx, c.owner, id)
}

func (c *reconciliationContext) hasTransactionsOfQuantity(name string, count int, direction string, qty int) error {
	entries, err := c.entries(name)
	if err != nil {
		return err
	}
	got := 0
	for _, e := range entries {
		if string(e.Direction) == direction && e.Quantity == qty {
			got++
		}
	}
	if got != count {
		return fmt.Errorf("%s: want %d %q entries of quantity %d, got %d", name, count, direction, qty, got)
	}
	return nil
}

func (c *reconciliationContext) hasTransactionsInTotal(name string, count int) error {
	entries, err := c.entries(name)
	if err != nil {
		return err
	}
	if len(entries) != count {
		return fmt.Errorf("%s: want %d entries, got %d", name, count, len(entries))
	}
	return nil
}

func (c *reconciliationContext) hasTransactionsLinkedToTheOrder(name string, count int) error {
	if c.order == nil {
		return errors.New("no order placed")
	}
	entries, err := c.entries(name)
	if err != nil {
		return err
	}
	got := 0
	for _, e := range entries {
		if e.OrderID != nil && *e.OrderID == c.order.ID {
			got++
		}
	}
	if got != count {
		return fmt.Errorf("%s: want %d entries linked to order, got %d", name, count, got)
	}
	return nil
}

func (c *reconciliationContext) theLedgerReconciles(name string) error {
	entries, err := c.entries(name)
	if err != nil {
		return err
	}
	sum := 0
	for _, e := range entries {
		sum += e.SignedQuantity()
	}
	return c.theStockOfIs(name, sum)
}

func (c *reconciliationContext) theOrderTotalIs(want float64) error {
	if c.order == nil {
		return fmt.Errorf("no order placed: %v", c.lastErr)
	}
	if math.Abs(c.order.TotalAmount-want) > 1e-9 {
		return fmt.Errorf("order total: want %v, got %v", want, c.order.TotalAmount)
	}
	return nil
}

func (c *reconciliationContext) theOrderStatusIs(want string) error {
	if c.order == nil {
		return fmt.Errorf("no order placed: %v", c.lastErr)
	}
	if string(c.order.Status) != want {
		return fmt.Errorf("order status: want %s, got %s", want, c.order.Status)
	}
	return nil
}

func (c *reconciliationContext) theOrderIsRejectedForInsufficientStock() error {
	if !errors.Is(c.lastErr, product.ErrInsufficientStock) {
		return fmt.Errorf("want insufficient stock, got %v", c.lastErr)
	}
	return nil
}

func (c *reconciliationContext) noOrderExists() error {
	orders, err := c.orders.ListByUser(c.ctx, c.owner)
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("want no orders, got %d", len(orders))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &reconciliationContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a new product "([^"]*)" priced (\d+(?:\.\d+)?)$`, tc.aNewProductPriced)
	ctx.Step(`^a product "([^"]*)" priced (\d+(?:\.\d+)?) with stock (\d+)$`, tc.aProductPricedWithStock)

	ctx.Step(`^I adjust the stock of "([^"]*)" by (-?\d+) with reason "([^"]*)"$`, tc.iAdjustTheStockBy)
	ctx.Step(`^I place an order for (\d+) of "([^"]*)"$`, tc.iPlaceAnOrderFor)
	ctx.Step(`^I set the order status to "([^"]*)"$`, tc.iSetTheOrderStatusTo)
	ctx.Step(`^I delete the order$`, tc.iDeleteTheOrder)

	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^"([^"]*)" has (\d+) "(in|out)" transactions? of quantity (\d+)$`, tc.hasTransactionsOfQuantity)
	ctx.Step(`^"([^"]*)" has (\d+) transactions? in total$`, tc.hasTransactionsInTotal)
	ctx.Step(`^"([^"]*)" has (\d+) transactions? linked to the order$`, tc.hasTransactionsLinkedToTheOrder)
	ctx.Step(`^the ledger of "([^"]*)" reconciles with its stock$`, tc.theLedgerReconciles)
	ctx.Step(`^the order total is (\d+(?:\.\d+)?)$`, tc.theOrderTotalIs)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the order is rejected for insufficient stock$`, tc.theOrderIsRejectedForInsufficientStock)
	ctx.Step(`^no order exists$`, tc.noOrderExists)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/stock_reconciliation.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
