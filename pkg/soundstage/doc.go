// ABOUTME: Spatial audio playback and sound lifecycle management
// ABOUTME: Loads assets in order, tracks sound instances and drives a 3D audio graph
// Package soundstage manages spatialized sound playback.
//
// A Player owns everything: a sequential load queue that fetches and decodes
// assets into a buffer cache, a registry of sound instances bound to those
// buffers, the listener, and a master gain with ramped volume changes.
// Sounds are addressed by opaque SoundID handles.
//
// Example:
//
//	p, err := soundstage.NewPlayer(soundstage.Config{
//		AssetRoot: "https://example.com/sfx/",
//		Output:    output.NewOto(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	if err := p.LoadAll(ctx, "door.mp3"); err != nil {
//		log.Fatal(err)
//	}
//	id, _ := p.Create("door.mp3")
//	p.SetPosition(id, 2, 0, -1)
//	p.Play(id, false, func() { log.Printf("door closed") })
//
// Loads run one at a time on a background goroutine. Every other operation
// takes effect before it returns. Callbacks run on the loader or audio
// rendering goroutine and must not assume they are on the caller's goroutine.
package soundstage
