// ABOUTME: mDNS service discovery package
// ABOUTME: Discover and advertise soundstage control servers on the local network
// Package discovery provides mDNS service discovery for soundstage servers.
//
// Servers advertise _soundstage._tcp with a path TXT record pointing at
// their WebSocket endpoint. Clients browse continuously with a Manager or
// take a one-shot snapshot with Discover.
//
// Example:
//
//	servers, err := discovery.Discover(3 * time.Second)
//	for _, s := range servers {
//	    fmt.Printf("Found: %s at %s:%d\n", s.Name, s.Host, s.Port)
//	}
package discovery
