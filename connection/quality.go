package connection

// Quality maps a raw signal strength in dBm to a score between 0 and 100,
// linear between -100 dBm and -50 dBm.
func Quality(rssi int) int {
	switch {
	case rssi <= -100:
		return 0
	case rssi >= -50:
		return 100
	default:
		return 2 * (rssi + 100)
	}
}
