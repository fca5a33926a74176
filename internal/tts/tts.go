// Package tts renders text to speech. The backend is treated as a black box
// behind the Renderer interface; the bundled implementation talks to a
// Google Translate-style TTS endpoint and always degrades to a fixed
// fallback utterance rather than surfacing rendering errors.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/newsvani/newsvani/internal/infra"
	"github.com/newsvani/newsvani/internal/textutil"
)

// DefaultLanguage is the digest language (Hindi, as the product ships it).
const DefaultLanguage = "hi"

// maxChunkChars is the per-request text limit of the TTS endpoint.
const maxChunkChars = 200

// fallbackUtterance is rendered when the requested text fails.
// "Sorry, there was a problem with text to speech."
const fallbackUtterance = "माफ़ करें, टेक्स्ट टू स्पीच में समस्या हुई है।"

// silentMP3 is a minimal valid MPEG frame returned when even the fallback
// utterance cannot be rendered, so callers always receive playable bytes.
var silentMP3 = []byte{
	0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// Renderer converts text to spoken audio bytes (MP3).
type Renderer interface {
	// Render returns audio for the text in the given language. It never
	// returns an error for rendering failures — implementations degrade to
	// a fallback payload instead. The error return exists only for
	// programming defects (nil context, etc.) and context cancellation.
	Render(ctx context.Context, text, language string) ([]byte, error)
}

// HTTPRenderer renders speech via an HTTP TTS endpoint, chunking long text
// and concatenating the MP3 segments.
type HTTPRenderer struct {
	endpoint string
	doGet    func(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error)
}

// NewHTTPRenderer creates a renderer. endpoint defaults to the public
// translate TTS endpoint when empty.
func NewHTTPRenderer(endpoint string) *HTTPRenderer {
	if endpoint == "" {
		endpoint = "https://translate.google.com/translate_tts"
	}
	return &HTTPRenderer{
		endpoint: endpoint,
		doGet:    infra.Get,
	}
}

// Render converts text to speech. On failure it renders the fixed fallback
// utterance; if even that fails it returns a fixed silent payload. The only
// errors surfaced are context cancellations.
func (r *HTTPRenderer) Render(ctx context.Context, text, language string) ([]byte, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if text == "" {
		text = fallbackUtterance
	}

	audio, err := r.render(ctx, text, language)
	if err == nil {
		return audio, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Printf("tts: render failed, using fallback utterance: %v", err)

	audio, err = r.render(ctx, fallbackUtterance, language)
	if err == nil {
		return audio, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Printf("tts: fallback utterance failed, returning silent payload: %v", err)

	return silentMP3, nil
}

// render performs the chunked endpoint calls and concatenates the audio.
func (r *HTTPRenderer) render(ctx context.Context, text, language string) ([]byte, error) {
	chunks := textutil.Chunk(text, maxChunkChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("tts: empty text")
	}

	var buf bytes.Buffer
	for _, chunk := range chunks {
		params := url.Values{}
		params.Set("ie", "UTF-8")
		params.Set("client", "tw-ob")
		params.Set("tl", language)
		params.Set("q", chunk)

		body, err := r.doGet(ctx, r.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("tts request: %w", err)
		}
		if _, err := buf.ReadFrom(body); err != nil {
			body.Close()
			return nil, fmt.Errorf("tts read: %w", err)
		}
		body.Close()
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("tts: empty audio response")
	}
	return buf.Bytes(), nil
}
