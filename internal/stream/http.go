package stream

import (
	"context"
	"io"
	"log"
	"net/http"
	"os/exec"

	"github.com/clipmill/clipmill/internal/audio"
)

// HTTPHandler serves the preview mix as a chunked MP3 stream for clients
// without WebRTC. Each connection runs its own FFmpeg encoder so listeners
// never share encoder state.
type HTTPHandler struct {
	broadcaster *Broadcaster
}

// NewHTTPHandler creates an MP3 preview handler over the broadcaster.
func NewHTTPHandler(b *Broadcaster) *HTTPHandler {
	return &HTTPHandler{broadcaster: b}
}

// mp3Encoder builds the per-connection FFmpeg process: raw PCM on stdin,
// low-latency MP3 on stdout.
func mp3Encoder(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, "ffmpeg",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", "192k",
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	)
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", "clipmill preview")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd := mp3Encoder(ctx)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Printf("preview mp3: stdin pipe: %v", err)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Printf("preview mp3: stdout pipe: %v", err)
		return
	}
	if err := cmd.Start(); err != nil {
		log.Printf("preview mp3: ffmpeg start: %v", err)
		return
	}

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)
	log.Printf("preview listener connected (total: %d)", h.broadcaster.ListenerCount())
	defer log.Printf("preview listener disconnected")

	go feedEncoder(ctx, listener, stdin)

	// Relay encoded MP3 to the response as it arrives.
	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("preview mp3: encoder read: %v", err)
			}
			break
		}
	}
	cmd.Wait()
}

// feedEncoder writes broadcast PCM frames into the encoder until the
// listener or the connection goes away.
func feedEncoder(ctx context.Context, listener *Listener, stdin io.WriteCloser) {
	defer stdin.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			if _, err := stdin.Write(audio.SamplesToBytes(frame)); err != nil {
				return
			}
		}
	}
}
