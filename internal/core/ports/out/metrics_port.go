package out

type MetricsPort interface {
	ObserveBooking(outcome string)
	ObserveRejection(operation string, reason string)
	ObserveSlotsGenerated(count int)
	ObserveStoreRetry(operation string)
}
