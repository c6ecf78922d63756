package service

// NextPosition returns the position a new ticket takes in a queue whose
// active tickets are densely numbered 1..activeCount. Joining is append-only
// and never requires renumbering.
func NextPosition(activeCount int) int {
	return activeCount + 1
}

// ComputeETA estimates the wait in minutes for a ticket at the given
// position. The customer at the front is served immediately.
func ComputeETA(position, avgServiceTime int) int {
	eta := (position - 1) * avgServiceTime
	if eta < 0 {
		return 0
	}
	return eta
}
