package service

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully placed",
	})
	orderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status changes by target status",
	}, []string{"to"})
	productCacheInvalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_invalidations_total",
		Help: "Product cache deletes after admin writes",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(ordersCreated, orderTransitions, productCacheInvalidations)
}
