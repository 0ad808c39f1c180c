package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"

	"github.com/clipmill/clipmill/internal/audio"
)

const opusBitrate = 128000

// WebRTCHandler negotiates WebRTC peers that monitor the composition
// preview as an Opus track. One POST with an SDP offer yields an answer;
// the peer then receives the live mix until it disconnects.
type WebRTCHandler struct {
	broadcaster *Broadcaster

	mu    sync.Mutex
	peers map[*webrtc.PeerConnection]struct{}
}

// NewWebRTCHandler creates a WebRTC preview handler over the broadcaster.
func NewWebRTCHandler(b *Broadcaster) *WebRTCHandler {
	return &WebRTCHandler{
		broadcaster: b,
		peers:       make(map[*webrtc.PeerConnection]struct{}),
	}
}

// PeerCount returns the number of connected WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	answer, err := h.connectPeer(offer)
	if err != nil {
		log.Printf("webrtc: negotiation failed: %v", err)
		http.Error(w, "negotiation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(answer)
}

// connectPeer runs the offer/answer exchange, registers the peer, and
// starts pushing the preview mix at it.
func (h *WebRTCHandler) connectPeer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, err
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"clipmill-preview",
	)
	if err != nil {
		pc.Close()
		return nil, err
	}
	if _, err := pc.AddTrack(track); err != nil {
		pc.Close()
		return nil, err
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return nil, err
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return nil, err
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return nil, err
	}
	<-webrtc.GatheringCompletePromise(pc)

	h.mu.Lock()
	h.peers[pc] = struct{}{}
	h.mu.Unlock()
	log.Printf("webrtc: peer connected (total: %d)", h.PeerCount())

	go h.pushMix(track)

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		switch s {
		case webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed,
			webrtc.PeerConnectionStateDisconnected:
			h.mu.Lock()
			delete(h.peers, pc)
			h.mu.Unlock()
			pc.Close()
			log.Printf("webrtc: peer disconnected (remaining: %d)", h.PeerCount())
		}
	})

	return pc.LocalDescription(), nil
}

// pushMix encodes broadcast PCM frames to Opus and writes them to the
// peer's track until the track or the listener goes away.
func (h *WebRTCHandler) pushMix(track *webrtc.TrackLocalStaticSample) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	enc, err := opus.NewEncoder(audio.SampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		log.Printf("webrtc: opus encoder: %v", err)
		return
	}
	enc.SetBitrate(opusBitrate)

	packet := make([]byte, 4000)
	for {
		select {
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			n, err := enc.Encode(frame, packet)
			if err != nil {
				log.Printf("webrtc: opus encode: %v", err)
				continue
			}
			sample := media.Sample{Data: packet[:n], Duration: audio.FrameDuration}
			if err := track.WriteSample(sample); err != nil {
				return
			}
		}
	}
}
