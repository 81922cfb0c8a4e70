package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"smartspeak/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Synthesizer turns text into an audio file and returns a URL path to it
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, slow bool) (string, error)
}

// Clip is one piece of text to synthesize
type Clip struct {
	Text string
	Slow bool
}

const (
	ttsRequestTimeout = 10 * time.Second
	googleTTSEndpoint = "https://translate.google.com/translate_tts"
	slowSpeed         = "0.24"
)

// TTSService provides text-to-speech functionality
type TTSService struct {
	audioDir  string
	urlPrefix string
	endpoint  string
	client    *http.Client
	log       *logger.Logger
	now       func() time.Time
}

// NewTTSService creates a new TTS service that writes into audioDir and
// serves files under urlPrefix (for example "/static/audio").
func NewTTSService(audioDir, urlPrefix string, log *logger.Logger) *TTSService {
	return &TTSService{
		audioDir:  audioDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		endpoint:  googleTTSEndpoint,
		client:    &http.Client{Timeout: ttsRequestTimeout},
		log:       log,
		now:       time.Now,
	}
}

// Synthesize converts text to speech and saves it as a uniquely named MP3.
// Returns the URL path of the file.
func (s *TTSService) Synthesize(ctx context.Context, text string, slow bool) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text to synthesize")
	}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	filename := uuid.NewString() + ".mp3"
	if err := s.generateUsingGoogleTTS(ctx, text, slow, filepath.Join(s.audioDir, filename)); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return path.Join(s.urlPrefix, filename), nil
}

// SynthesizeAll generates the clips concurrently. A clip that fails is logged
// and left nil so the caller can answer without audio.
func SynthesizeAll(ctx context.Context, synth Synthesizer, log *logger.Logger, clips ...Clip) []*string {
	results := make([]*string, len(clips))
	var g errgroup.Group
	for i, clip := range clips {
		g.Go(func() error {
			ref, err := synth.Synthesize(ctx, clip.Text, clip.Slow)
			if err != nil {
				log.Warn("Speech synthesis failed", "error", err, "slow", clip.Slow)
				return nil
			}
			results[i] = &ref
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// generateUsingGoogleTTS uses Google Translate's text-to-speech API
func (s *TTSService) generateUsingGoogleTTS(ctx context.Context, text string, slow bool, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))
	if slow {
		params.Set("ttsspeed", slowSpeed)
	}

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(outputPath)
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return outFile.Close()
}

// ListAudioFiles returns the MP3 files in the audio directory
func (s *TTSService) ListAudioFiles() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []os.DirEntry
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".mp3" {
			audioFiles = append(audioFiles, entry)
		}
	}
	return audioFiles, nil
}

// PruneOlderThan removes generated files whose modification time is older than maxAge
func (s *TTSService) PruneOlderThan(maxAge time.Duration) (int, error) {
	files, err := s.ListAudioFiles()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, file := range files {
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.audioDir, file.Name())); err != nil && !os.IsNotExist(err) {
			s.log.Warn("Failed to remove audio file", "file", file.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// RunPruner prunes on every tick until ctx is cancelled
func (s *TTSService) RunPruner(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.PruneOlderThan(maxAge)
			if err != nil {
				s.log.Warn("Audio prune failed", "error", err)
				continue
			}
			if removed > 0 {
				s.log.Info("Pruned audio files", "removed", removed)
			}
		}
	}
}
