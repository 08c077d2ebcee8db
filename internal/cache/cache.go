package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// OutputCache archives generated orchestra/score pairs, one directory per
// generation key with a numbered version per save.
type OutputCache struct {
	dir string
}

// CachedOutput represents one archived generation
type CachedOutput struct {
	Orchestra string            `json:"orchestra"`
	Score     string            `json:"score"`
	Preset    string            `json:"preset"`
	Seed      int64             `json:"seed"`
	Duration  float64           `json:"duration"`
	Events    int               `json:"events"`
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Params identify a generation run; equal params with the same seed produce
// the same documents.
type Params struct {
	Preset         string
	Seed           int64
	Duration       float64
	Reverb         bool
	ChordStagger   float64
	PitchTable     string
	FrequencyTable string
}

// New creates an output cache rooted at dir
func New(dir string) (*OutputCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &OutputCache{dir: dir}, nil
}

// KeyFor generates a readable cache key for a generation run
func KeyFor(p Params) string {
	raw := fmt.Sprintf("%s|%d|%g|%t|%g|%s|%s",
		p.Preset, p.Seed, p.Duration, p.Reverb, p.ChordStagger, p.PitchTable, p.FrequencyTable)
	return fmt.Sprintf("%s_s%d_%s", sanitize(p.Preset), p.Seed, hashString(raw)[:8])
}

// SaveOutput stores a new version of the output under key
func (c *OutputCache) SaveOutput(key string, output *CachedOutput) error {
	cacheSubdir := filepath.Join(c.dir, key)

	if err := os.MkdirAll(cacheSubdir, 0755); err != nil {
		return fmt.Errorf("create cache subdir: %w", err)
	}

	// Determine next version number
	outputs, _ := c.GetOutputHistory(key)
	output.Version = len(outputs) + 1
	output.CreatedAt = time.Now()

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	base := fmt.Sprintf("output_v%03d", output.Version)
	if err := os.WriteFile(filepath.Join(cacheSubdir, base+".json"), data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	// Standalone documents for feeding csound directly
	files := map[string]string{
		base + ".orc": output.Orchestra,
		base + ".sco": output.Score,
		"latest.orc":  output.Orchestra,
		"latest.sco":  output.Score,
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(cacheSubdir, name), []byte(text), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}

// SaveRender copies a rendered WAV file into the key's directory as
// render.wav, replacing any earlier render.
func (c *OutputCache) SaveRender(key, wavPath string) error {
	src, err := os.Open(wavPath)
	if err != nil {
		return fmt.Errorf("open render: %w", err)
	}
	defer src.Close()

	cacheSubdir := filepath.Join(c.dir, key)
	if err := os.MkdirAll(cacheSubdir, 0755); err != nil {
		return fmt.Errorf("create cache subdir: %w", err)
	}
	dst, err := os.Create(filepath.Join(cacheSubdir, "render.wav"))
	if err != nil {
		return fmt.Errorf("create render copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy render: %w", err)
	}
	return dst.Close()
}

// GetLatestOutput retrieves the most recent output for a key
func (c *OutputCache) GetLatestOutput(key string) (*CachedOutput, error) {
	outputs, err := c.GetOutputHistory(key)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, nil
	}
	return outputs[len(outputs)-1], nil
}

// GetOutputHistory retrieves all outputs for a key, sorted by version
func (c *OutputCache) GetOutputHistory(key string) ([]*CachedOutput, error) {
	cacheSubdir := filepath.Join(c.dir, key)

	entries, err := os.ReadDir(cacheSubdir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	var outputs []*CachedOutput
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "output_v") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(cacheSubdir, name))
		if err != nil {
			continue
		}
		var output CachedOutput
		if err := json.Unmarshal(data, &output); err != nil {
			continue
		}
		outputs = append(outputs, &output)
	}

	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].Version < outputs[j].Version
	})
	return outputs, nil
}

// Keys lists the generation keys present in the cache
func (c *OutputCache) Keys() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			keys = append(keys, entry.Name())
		}
	}
	return keys, nil
}

// Size returns the total size of archived files in bytes and the number of keys
func (c *OutputCache) Size() (int64, int, error) {
	var totalSize int64
	var count int

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		count++

		files, _ := os.ReadDir(filepath.Join(c.dir, entry.Name()))
		for _, f := range files {
			if info, err := f.Info(); err == nil {
				totalSize += info.Size()
			}
		}
	}

	return totalSize, count, nil
}

// Clear removes every archived output
func (c *OutputCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Dir returns the directory for a key
func (c *OutputCache) Dir(key string) string {
	return filepath.Join(c.dir, key)
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "custom"
	}
	return sb.String()
}

func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
