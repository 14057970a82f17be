package colors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Google Calendar event color ids 1..11 and their hex values. The same slot
// themes a category in the terminal views and on the mirrored calendar.
var slotHex = map[string]string{
	"1":  "#7986cb", // lavender
	"2":  "#33b679", // sage
	"3":  "#8e24aa", // grape
	"4":  "#e67c73", // flamingo
	"5":  "#f6bf26", // banana
	"6":  "#f4511e", // tangerine
	"7":  "#039be5", // peacock
	"8":  "#616161", // graphite
	"9":  "#3f51b5", // blueberry
	"10": "#0b8043", // basil
	"11": "#d50000", // tomato
}

const (
	// UncategorizedSlot is used for tasks without a category.
	UncategorizedSlot = "8"
	firstSlot         = 1
	lastSlot          = 11
)

type CategoryState struct {
	ColorID  string    `json:"color_id"`
	LastUsed time.Time `json:"last_used"`
}

// Palette assigns each category a color slot, recycling the least recently
// used slot once all are taken. Assignments persist across runs.
type Palette struct {
	Path       string
	Categories map[string]*CategoryState `json:"categories"`

	mu    sync.Mutex
	dirty bool
	now   func() time.Time
}

// NewPalette loads the palette stored at path, if any.
func NewPalette(path string) (*Palette, error) {
	p := &Palette{
		Path:       path,
		Categories: make(map[string]*CategoryState),
		now:        time.Now,
	}
	if _, err := os.Stat(path); err == nil {
		if err := p.Load(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Palette) Load() error {
	f, err := os.Open(p.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&p.Categories); err != nil {
		return fmt.Errorf("failed to decode palette %s: %w", p.Path, err)
	}
	if p.Categories == nil {
		p.Categories = make(map[string]*CategoryState)
	}
	return nil
}

func (p *Palette) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0700); err != nil {
		return fmt.Errorf("failed to create palette directory: %w", err)
	}

	f, err := os.Create(p.Path)
	if err != nil {
		return fmt.Errorf("failed to create palette file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(p.Categories); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

func (p *Palette) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// ColorID returns the slot for a category, assigning one if needed.
func (p *Palette) ColorID(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return UncategorizedSlot
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.Categories[key]; ok {
		state.LastUsed = p.clock()
		p.dirty = true
		return state.ColorID
	}
	return p.assign(key)
}

// Hex returns the display color of a category.
func (p *Palette) Hex(category string) string {
	return slotHex[p.ColorID(category)]
}

func (p *Palette) assign(category string) string {
	used := make(map[string]bool)
	for _, s := range p.Categories {
		used[s.ColorID] = true
	}

	for i := firstSlot; i <= lastSlot; i++ {
		id := strconv.Itoa(i)
		if id == UncategorizedSlot || used[id] {
			continue
		}
		p.Categories[category] = &CategoryState{ColorID: id, LastUsed: p.clock()}
		p.dirty = true
		return id
	}

	// Every slot is taken: recycle the least recently used one.
	var oldest string
	var oldestTime time.Time
	for c, s := range p.Categories {
		if oldest == "" || s.LastUsed.Before(oldestTime) {
			oldest, oldestTime = c, s.LastUsed
		}
	}
	if oldest == "" {
		return UncategorizedSlot
	}
	recycled := p.Categories[oldest].ColorID
	delete(p.Categories, oldest)
	p.Categories[category] = &CategoryState{ColorID: recycled, LastUsed: p.clock()}
	p.dirty = true
	return recycled
}
