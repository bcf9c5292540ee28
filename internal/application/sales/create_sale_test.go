package sales

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/numbering"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ── fakes en memoria con semántica transaccional ─────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) ReserveStock(id string, qty decimal.Decimal) (bool, error) {
	p, ok := f.products[id]
	if !ok || !p.Active || p.Stock.LessThan(qty) {
		return false, nil
	}
	p.Stock = p.Stock.Sub(qty)
	return true, nil
}

func (f *fakeProductRepo) ReleaseStock(id string, qty decimal.Decimal) error {
	p, ok := f.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = p.Stock.Add(qty)
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func (f *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeCustomerRepo) ApplySale(id string, total decimal.Decimal, at time.Time) error {
	c, ok := f.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.OrderCount++
	c.LifetimeSpend = c.LifetimeSpend.Add(total)
	c.LastPurchaseAt = &at
	return nil
}

type fakeSaleRepo struct {
	sales map[string]*entity.Sale
	lines map[string]*entity.SaleLine
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: map[string]*entity.Sale{},
		lines: map[string]*entity.SaleLine{},
	}
}

func (f *fakeSaleRepo) Create(sale *entity.Sale) error {
	for _, s := range f.sales {
		if s.Number == sale.Number {
			return domain.ErrConflict
		}
	}
	cp := *sale
	f.sales[sale.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) CreateLine(line *entity.SaleLine) error {
	cp := *line
	f.lines[line.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	var out []*entity.SaleLine
	for _, l := range f.lines {
		if l.SaleID == saleID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeSaleRepo) UpdatePayment(sale *entity.Sale) error {
	if _, ok := f.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sale
	f.sales[sale.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) IncrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error) {
	l, ok := f.lines[lineID]
	if !ok || l.ReturnedQuantity.Add(qty).GreaterThan(l.Quantity) {
		return false, nil
	}
	l.ReturnedQuantity = l.ReturnedQuantity.Add(qty)
	return true, nil
}

func (f *fakeSaleRepo) DecrementReturnedQuantity(lineID string, qty decimal.Decimal) (bool, error) {
	l, ok := f.lines[lineID]
	if !ok || l.ReturnedQuantity.Sub(qty).IsNegative() {
		return false, nil
	}
	l.ReturnedQuantity = l.ReturnedQuantity.Sub(qty)
	return true, nil
}

func (f *fakeSaleRepo) LastNumber(prefix string) (string, error) {
	last := ""
	for _, s := range f.sales {
		if strings.HasPrefix(s.Number, prefix) && s.Number > last {
			last = s.Number
		}
	}
	return last, nil
}

func (f *fakeSaleRepo) NumberExists(number string) (bool, error) {
	for _, s := range f.sales {
		if s.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// fakeTxRunner imita el todo-o-nada de la transacción real: toma un snapshot
// del estado y lo restaura si el callback falla.
type fakeTxRunner struct {
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
}

func (r *fakeTxRunner) snapshot() (map[string]entity.Product, map[string]entity.Customer, map[string]entity.Sale, map[string]entity.SaleLine) {
	ps := make(map[string]entity.Product, len(r.products.products))
	for k, v := range r.products.products {
		ps[k] = *v
	}
	cs := make(map[string]entity.Customer, len(r.customers.customers))
	for k, v := range r.customers.customers {
		cs[k] = *v
	}
	ss := make(map[string]entity.Sale, len(r.sales.sales))
	for k, v := range r.sales.sales {
		ss[k] = *v
	}
	ls := make(map[string]entity.SaleLine, len(r.sales.lines))
	for k, v := range r.sales.lines {
		ls[k] = *v
	}
	return ps, cs, ss, ls
}

func (r *fakeTxRunner) restore(ps map[string]entity.Product, cs map[string]entity.Customer, ss map[string]entity.Sale, ls map[string]entity.SaleLine) {
	r.products.products = map[string]*entity.Product{}
	for k := range ps {
		v := ps[k]
		r.products.products[k] = &v
	}
	r.customers.customers = map[string]*entity.Customer{}
	for k := range cs {
		v := cs[k]
		r.customers.customers[k] = &v
	}
	r.sales.sales = map[string]*entity.Sale{}
	for k := range ss {
		v := ss[k]
		r.sales.sales[k] = &v
	}
	r.sales.lines = map[string]*entity.SaleLine{}
	for k := range ls {
		v := ls[k]
		r.sales.lines[k] = &v
	}
}

func (r *fakeTxRunner) RunSale(ctx context.Context, fn func(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
) error) error {
	ps, cs, ss, ls := r.snapshot()
	if err := fn(r.products, r.customers, r.sales); err != nil {
		r.restore(ps, cs, ss, ls)
		return err
	}
	return nil
}

// ── fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	runner    *fakeTxRunner
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
	uc        *Coordinator
}

func newFixture() *fixture {
	products := &fakeProductRepo{products: map[string]*entity.Product{
		"p1": {ID: "p1", SKU: "TELA-01", Name: "Tela lino", Stock: d("10"), Price: d("100"), TaxRate: d("5"), Active: true},
		"p2": {ID: "p2", SKU: "BOTON-01", Name: "Botones", Stock: d("5"), Price: d("2.50"), TaxRate: d("19"), Active: true},
	}}
	customers := &fakeCustomerRepo{customers: map[string]*entity.Customer{
		"c1": {ID: "c1", Name: "María", LifetimeSpend: decimal.Zero},
	}}
	sales := newFakeSaleRepo()
	runner := &fakeTxRunner{products: products, customers: customers, sales: sales}
	uc := NewCoordinator(runner, inventory.NewLedger(), numbering.NewAllocator(), sales, Config{
		DefaultPaymentMethod: "CASH",
		InvoicePrefix:        "INV",
	})
	return &fixture{runner: runner, products: products, customers: customers, sales: sales, uc: uc}
}

// ── tests ────────────────────────────────────────────────────────────────────

// Venta simple: stock 10, se venden 3 ⇒ quedan 7, y los montos de la línea
// siguen subtotal - descuento + impuesto.
func TestCreateSale_DescuentaStockYCalculaTotales(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{
			{ProductID: "p1", Quantity: d("3"), DiscountPercent: d("10")},
		},
	})
	require.NoError(t, err)

	assert.True(t, f.products.products["p1"].Stock.Equal(d("7")), "stock debe quedar en 7")
	// subtotal 300, descuento 30, base 270, impuesto 13.50, total 283.50
	assert.True(t, resp.Subtotal.Equal(d("300")))
	assert.True(t, resp.DiscountTotal.Equal(d("30")))
	assert.True(t, resp.TaxTotal.Equal(d("13.5")), "impuesto fue %s", resp.TaxTotal)
	assert.True(t, resp.Total.Equal(d("283.5")))
	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.Contains(t, resp.Number, "INV-", "debe llevar número de documento asignado")
	_, perr := time.Parse(time.RFC3339, resp.Date)
	assert.NoError(t, perr, "la fecha debe ir en RFC 3339 con hora, fue %s", resp.Date)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].DiscountPercent.Equal(d("10")), "el porcentaje se deriva del monto guardado")
}

// Stock 5, se piden 10: falla con contexto y el stock no cambia.
func TestCreateSale_StockInsuficienteNoPersisteNada(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{
			{ProductID: "p2", Quantity: d("10")},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Botones", stockErr.ProductName)
	assert.True(t, stockErr.Available.Equal(d("5")))

	assert.True(t, f.products.products["p2"].Stock.Equal(d("5")), "el stock debe permanecer en 5")
	assert.Empty(t, f.sales.sales, "no debe persistirse ninguna venta")
}

// La falla en la segunda línea revierte la reserva ya hecha para la primera.
func TestCreateSale_RollbackDeLineasAnteriores(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{
			{ProductID: "p1", Quantity: d("2")},
			{ProductID: "p2", Quantity: d("99")}, // insuficiente
		},
	})
	require.Error(t, err)

	assert.True(t, f.products.products["p1"].Stock.Equal(d("10")),
		"la reserva de la primera línea debe revertirse con la transacción")
	assert.Empty(t, f.sales.sales)
}

func TestCreateSale_SinLineas(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Método de pago ausente no falla: cae al configurado por defecto.
func TestCreateSale_MetodoDePagoPorDefecto(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CASH", resp.PaymentMethod)
}

// Precio unitario en cero toma el precio de catálogo.
func TestCreateSale_PrecioDeCatalogoPorDefecto(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{{ProductID: "p2", Quantity: d("4")}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(d("2.50")), "debe usar el precio de catálogo")
	assert.True(t, resp.Subtotal.Equal(d("10")))
}

// Cantidad fraccionaria: se normaliza a 3 decimales antes de reservar, así el
// descuento de stock y la cantidad persistida en la línea son la misma cifra.
func TestCreateSale_CantidadFraccionariaReservaLoMismo(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("1.2345")}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].Quantity.Equal(d("1.235")), "cantidad de la línea fue %s", resp.Lines[0].Quantity)
	reserved := d("10").Sub(f.products.products["p1"].Stock)
	assert.True(t, reserved.Equal(resp.Lines[0].Quantity),
		"lo reservado (%s) debe coincidir con la cantidad de la línea (%s)", reserved, resp.Lines[0].Quantity)
}

// La venta con cliente actualiza los agregados denormalizados en la misma tx.
func TestCreateSale_ActualizaAgregadosDelCliente(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID: "c1",
		Lines:      []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("2")}},
	})
	require.NoError(t, err)

	c := f.customers.customers["c1"]
	assert.Equal(t, 1, c.OrderCount)
	assert.True(t, c.LifetimeSpend.Equal(resp.Total), "lifetime spend debe sumar el total de la venta")
	require.NotNil(t, c.LastPurchaseAt)
}

func TestCreateSale_ClienteInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID: "fantasma",
		Lines:      []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.products.products["p1"].Stock.Equal(d("10")), "no debe reservarse stock")
}

// Dos ventas seguidas del mismo día toman consecutivos distintos.
func TestCreateSale_NumeracionConsecutiva(t *testing.T) {
	f := newFixture()

	first, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	second, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.CreateSaleLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Number, second.Number)
	assert.True(t, strings.HasSuffix(first.Number, "-0001"), "primera venta del día: %s", first.Number)
	assert.True(t, strings.HasSuffix(second.Number, "-0002"), "segunda venta del día: %s", second.Number)
}
