package saccount

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	authorizationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scw",
		Subsystem: "account",
		Name:      "authorization_total",
		Help:      "The total number of signature authorizations by signature kind and result",
	}, []string{"kind", "result"})

	executionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scw",
		Subsystem: "account",
		Name:      "execution_total",
		Help:      "The total number of executions by flow and result",
	}, []string{"flow", "result"})

	refundGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scw",
		Subsystem: "account",
		Name:      "last_refund_payment",
		Help:      "The payment of the last refunded transaction",
	})

	userOpCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scw",
		Subsystem: "entry_point",
		Name:      "user_operation_total",
		Help:      "The total number of handled user operations by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(authorizationCounter)
	prometheus.MustRegister(executionCounter)
	prometheus.MustRegister(refundGauge)
	prometheus.MustRegister(userOpCounter)
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// bigToFloat keeps payments above 2^64 from wrapping
func bigToFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
