package pairing

type Config struct {
	Logger    Logger
	AdapterId string
	// LocalName is advertised and exposed as the device name.
	LocalName string
	Manager   Manager
}
