package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/clipmill/clipmill/internal/audio"
	"github.com/clipmill/clipmill/internal/composition"
	"github.com/clipmill/clipmill/internal/config"
	"github.com/clipmill/clipmill/internal/layout"
	"github.com/clipmill/clipmill/internal/media"
	"github.com/clipmill/clipmill/internal/player"
	"github.com/clipmill/clipmill/internal/stream"
)

func main() {
	cfg := config.Load()

	projectPath := flag.String("project", cfg.ProjectPath, "composition snapshot file (JSON or YAML)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("clipmill starting up...")

	comp, err := composition.ReadFile(*projectPath)
	if err != nil {
		log.Fatalf("load composition: %v", err)
	}
	if n := composition.EnsureElementIDs(comp); n > 0 {
		log.Printf("synthesized %d element ids", n)
	}
	log.Printf("composition: %d pages, %d audio tracks, %.0fx%.0f @ %d fps",
		len(comp.Pages), len(comp.AudioTracks), comp.Width, comp.Height, comp.FPS)

	// Symbolic asset names resolve against the media directory.
	resolver := media.NewResolver(scanMediaDir(cfg.MediaDir))
	fetcher := media.NewFetcher(cfg.MediaDir)

	// Mix engine + scheduler
	engine := audio.NewMixEngine(cfg.MasterVolume)
	go engine.Run(ctx)

	sched := audio.NewScheduler(engine)
	loadTracks(ctx, sched, resolver, fetcher, comp.AudioTracks)

	// Broadcaster: fan out mixed PCM frames to preview listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, engine.Frames())
	webrtcHandler := stream.NewWebRTCHandler(broadcaster)

	// Transport: the single owner of play/pause/seek/sync
	transport := player.NewTransport(sched, comp, cfg.SyncInterval)
	go transport.Run(ctx)

	// HTTP routes
	mux := http.NewServeMux()

	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster))
	mux.Handle("/offer", webrtcHandler)

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		st := transport.Status()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(map[string]any{
			"playing":          st.Playing,
			"frame":            st.Frame,
			"seconds":          st.Seconds,
			"total_frames":     st.TotalFrames,
			"page_index":       st.PageIndex,
			"local_frame":      st.LocalFrame,
			"audio_state":      sched.State().String(),
			"active_tracks":    sched.ActiveTracks(),
			"http_listeners":   broadcaster.ListenerCount(),
			"webrtc_listeners": webrtcHandler.PeerCount(),
		})
	})

	mux.HandleFunc("/api/frame", func(w http.ResponseWriter, r *http.Request) {
		frame := transport.CurrentFrame()
		if q := r.URL.Query().Get("n"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				http.Error(w, "invalid frame", http.StatusBadRequest)
				return
			}
			frame = n
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(layout.ResolveFrame(comp, frame))
	})

	mux.HandleFunc("/api/play", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		transport.Play()
		writeOK(w)
	})

	mux.HandleFunc("/api/pause", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		transport.Pause()
		writeOK(w)
	})

	mux.HandleFunc("/api/seek", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Frame int `json:"frame"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Frame < 0 {
			http.Error(w, "invalid frame", http.StatusBadRequest)
			return
		}
		transport.Seek(req.Frame)
		writeOK(w)
	})

	mux.HandleFunc("/api/track/volume", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			ID     string  `json:"id"`
			Volume float64 `json:"volume"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Volume < 0 || req.Volume > 1 {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		sched.SetTrackVolume(req.ID, req.Volume)
		writeOK(w)
	})

	mux.HandleFunc("/api/track/mute", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			ID    string `json:"id"`
			Muted bool   `json:"muted"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		sched.SetTrackMuted(req.ID, req.Muted)
		writeOK(w)
	})

	mux.HandleFunc("/api/volume", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Volume float64 `json:"volume"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Volume < 0 || req.Volume > 1 {
			http.Error(w, "invalid volume", http.StatusBadRequest)
			return
		}
		sched.SetMasterVolume(req.Volume)
		writeOK(w)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
		sched.Cleanup()
	}()

	log.Printf("clipmill preview on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// loadTracks decodes all audio tracks with bounded concurrency. One track's
// failure is logged and never blocks or cancels its siblings.
func loadTracks(ctx context.Context, sched *audio.Scheduler, resolver *media.Resolver, fetcher *media.Fetcher, tracks []composition.AudioTrack) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, track := range tracks {
		g.Go(func() error {
			loc := resolver.Resolve(track.Src)
			data, err := fetcher.Fetch(gctx, loc)
			if err != nil {
				log.Printf("fetch failed for track %s (%s): %v", track.ID, loc, err)
				return nil
			}
			// Load logs its own decode failures; playback proceeds without
			// the track either way.
			sched.Load(gctx, track, data)
			return nil
		})
	}
	g.Wait()
}

// scanMediaDir maps asset basenames to their paths for symbolic lookup.
func scanMediaDir(dir string) map[string]string {
	assets := make(map[string]string)
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		assets[d.Name()] = path
		return nil
	})
	return assets
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
