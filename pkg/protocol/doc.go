// ABOUTME: Soundstage control protocol package
// ABOUTME: Defines protocol messages and WebSocket client
// Package protocol implements the soundstage control protocol.
//
// Messages are JSON objects {"type": ..., "payload": ...} exchanged over a
// WebSocket at /soundstage. After the client/hello and server/hello
// handshake, clients send player/command requests and receive a
// player/result for each, correlated by request_id. The server pushes
// player/event messages for load progress and ended playback.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8928", Name: "scene"})
//	if err := client.Connect(); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Do(ctx, protocol.PlayerCommand{Op: protocol.OpLoad, Path: "door.mp3"})
package protocol
