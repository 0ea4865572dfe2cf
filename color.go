package objstream

// Color is an RGB value with 16 bits per channel. There is no alpha channel.
type Color struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

// ColorSize is the encoded size of a Color.
const ColorSize = 6
