package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts business events. A nil *DomainMetrics records nothing.
type DomainMetrics struct {
	OrdersTotal          *prometheus.CounterVec
	OrderTransitions     *prometheus.CounterVec
	InvoicesTotal        *prometheus.CounterVec
	InventoryAdjustments *prometheus.CounterVec
	LowStockItems        prometheus.Gauge
	PriceTableLoads      *prometheus.CounterVec
	QuotesTotal          *prometheus.CounterVec
}

// NewDomainMetrics registers the business collectors on reg (default registerer when nil).
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DomainMetrics{
		OrdersTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Order writes by operation.",
		}, []string{"op"})),
		OrderTransitions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status changes by source and target status.",
		}, []string{"from", "to"})),
		InvoicesTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_total",
			Help:      "Invoice writes by operation.",
		}, []string{"op"})),
		InventoryAdjustments: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_adjustments_total",
			Help:      "Stock adjustments by type and reason.",
		}, []string{"type", "reason"})),
		LowStockItems: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_low_stock_items",
			Help:      "Inventory items at or below their reorder threshold after the last write.",
		})),
		PriceTableLoads: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_table_loads_total",
			Help:      "Price table load attempts by source and result.",
		}, []string{"source", "result"})),
		QuotesTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Quote computations by kind and result.",
		}, []string{"kind", "result"})),
	}
}

func (m *DomainMetrics) Order(op string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(op).Inc()
}

func (m *DomainMetrics) OrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

func (m *DomainMetrics) Invoice(op string) {
	if m == nil {
		return
	}
	m.InvoicesTotal.WithLabelValues(op).Inc()
}

func (m *DomainMetrics) InventoryAdjusted(kind, reason string) {
	if m == nil {
		return
	}
	m.InventoryAdjustments.WithLabelValues(kind, reason).Inc()
}

func (m *DomainMetrics) SetLowStock(n int) {
	if m == nil {
		return
	}
	m.LowStockItems.Set(float64(n))
}

func (m *DomainMetrics) PriceTableLoad(source string, err error) {
	if m == nil {
		return
	}
	m.PriceTableLoads.WithLabelValues(source, result(err)).Inc()
}

func (m *DomainMetrics) Quote(kind string, err error) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
