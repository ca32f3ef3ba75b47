// ABOUTME: Version and product identification constants
// ABOUTME: Reported in handshakes and the daemon banner
package version

const (
	// Version is the soundstage release
	Version = "0.3.0"

	// Product is reported as the device product name
	Product = "Soundstage"

	// Manufacturer is reported as the device manufacturer
	Manufacturer = "Sendspin"
)
