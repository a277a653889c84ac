package metrics

import "time"

// RecordVerification records one verification attempt and its latency.
func RecordVerification(outcome string, duration time.Duration) {
	if !enabled {
		return
	}
	verificationTotal.WithLabelValues(outcome).Inc()
	verificationDuration.Observe(duration.Seconds())
}

// RecordRPCRequest records one chain JSON-RPC round trip.
func RecordRPCRequest(method, status string) {
	if !enabled {
		return
	}
	rpcRequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordResourceCache records a resource metadata cache lookup ("hit" or "miss").
func RecordResourceCache(result string) {
	if !enabled {
		return
	}
	resourceCacheTotal.WithLabelValues(result).Inc()
}

// RecordStoreOp records one verification record store operation.
func RecordStoreOp(backend, op, status string) {
	if !enabled {
		return
	}
	recordOpsTotal.WithLabelValues(backend, op, status).Inc()
}
