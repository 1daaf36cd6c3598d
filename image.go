package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"qiv/internal/decode"
	"qiv/internal/filelist"
)

// NavigationDirection represents the direction of navigation
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// EntryLoader reads and decodes list entries. It is safe for concurrent use.
type EntryLoader struct {
	fs      afero.Fs
	decoder *decode.Decoder
}

// NewEntryLoader returns a loader reading from fs.
func NewEntryLoader(fs afero.Fs, decoder *decode.Decoder) *EntryLoader {
	return &EntryLoader{fs: fs, decoder: decoder}
}

// Load decodes one entry.
func (l *EntryLoader) Load(e filelist.Entry) (*decode.Image, error) {
	data, err := readEntry(l.fs, e)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", decode.ErrNoImage, err)
	}
	return l.decoder.Decode(data, e.String())
}

// PreloadRequest represents a request to preload an image
type PreloadRequest struct {
	Index     int
	Direction NavigationDirection
}

// PreloadStats provides statistics about preloading
type PreloadStats struct {
	LoadedCount   int
	FailedCount   int
	LastDirection NavigationDirection
}

// PreloadManager decodes neighbouring entries in the background.
type PreloadManager struct {
	requestChan  chan PreloadRequest
	ctx          context.Context
	cancel       context.CancelFunc
	imageManager *DefaultImageManager
	mu           sync.RWMutex
	stats        PreloadStats
	maxPreload   int
	enabled      bool
}

// NewPreloadManager creates a PreloadManager and starts its worker.
func NewPreloadManager(imageManager *DefaultImageManager, maxPreload int) *PreloadManager {
	ctx, cancel := context.WithCancel(context.Background())
	pm := &PreloadManager{
		requestChan:  make(chan PreloadRequest, 16),
		ctx:          ctx,
		cancel:       cancel,
		imageManager: imageManager,
		maxPreload:   maxPreload,
		enabled:      true,
	}
	go pm.worker()
	return pm
}

// SetEnabled enables or disables preloading
func (pm *PreloadManager) SetEnabled(enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = enabled
}

// IsEnabled returns whether preloading is enabled
func (pm *PreloadManager) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// GetStats returns current preload statistics
func (pm *PreloadManager) GetStats() PreloadStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.stats
}

// Stop stops the worker.
func (pm *PreloadManager) Stop() {
	pm.cancel()
}

// StartPreload replaces any pending request with one around currentIdx.
func (pm *PreloadManager) StartPreload(currentIdx int, direction NavigationDirection) {
	if !pm.IsEnabled() {
		return
	}

drain:
	for {
		select {
		case <-pm.requestChan:
		default:
			break drain
		}
	}

	select {
	case pm.requestChan <- PreloadRequest{Index: currentIdx, Direction: direction}:
	default:
		debugLog("Preload request channel full, skipping preload request")
	}
}

func (pm *PreloadManager) worker() {
	for {
		select {
		case <-pm.ctx.Done():
			return
		case req := <-pm.requestChan:
			if pm.IsEnabled() {
				pm.processPreloadRequest(req)
			}
		}
	}
}

func (pm *PreloadManager) processPreloadRequest(req PreloadRequest) {
	pm.mu.Lock()
	pm.stats.LastDirection = req.Direction
	pm.mu.Unlock()

	count := pm.imageManager.GetEntriesCount()
	if count == 0 {
		return
	}

	for _, idx := range calculatePreloadIndices(req.Index, req.Direction, count, pm.maxPreload) {
		select {
		case <-pm.ctx.Done():
			return
		default:
			pm.preloadImage(idx)
		}
	}
}

// calculatePreloadIndices lists the entries worth decoding ahead of time.
// The list wraps, so indices are taken modulo count and never include
// currentIdx itself.
func calculatePreloadIndices(currentIdx int, direction NavigationDirection, count, maxPreload int) []int {
	var indices []int
	seen := map[int]bool{currentIdx: true}
	add := func(offset int) {
		idx := ((currentIdx+offset)%count + count) % count
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}

	switch direction {
	case NavigationForward:
		for i := 1; i <= maxPreload; i++ {
			add(i)
		}
	case NavigationBackward:
		for i := 1; i <= maxPreload; i++ {
			add(-i)
		}
	case NavigationJump:
		for i := 1; i <= maxPreload/2; i++ {
			add(i)
			add(-i)
		}
	}
	return indices
}

func (pm *PreloadManager) preloadImage(idx int) {
	entry, ok := pm.imageManager.entryAt(idx)
	if !ok {
		return
	}
	key := entry.Key()
	if pm.imageManager.cache.Contains(key) {
		return
	}

	img, err := pm.imageManager.loader.Load(entry)
	if err != nil {
		// failures are reported when the image is shown
		pm.mu.Lock()
		pm.stats.FailedCount++
		pm.mu.Unlock()
		debugLog("Preload failed for [%d] %s: %v", idx+1, entry, err)
		return
	}
	pm.imageManager.cache.Add(key, img)

	pm.mu.Lock()
	pm.stats.LoadedCount++
	pm.mu.Unlock()

	debugLog("Preloaded [%d] %s (cache: %d items)", idx+1, entry, pm.imageManager.cache.Len())
}

// ImageManager serves decoded images for list positions.
type ImageManager interface {
	GetImage(idx int) (*decode.Image, error)
	SetEntries(entries []filelist.Entry)
	GetEntriesCount() int
	Invalidate(e filelist.Entry)
	StartPreload(currentIdx int, direction NavigationDirection)
	StopPreload()
	SetPreloadEnabled(enabled bool)
	GetPreloadStats() PreloadStats
}

// DefaultImageManager implements ImageManager with an LRU cache keyed by
// entry.
type DefaultImageManager struct {
	entries        []filelist.Entry
	cache          *lru.Cache[string, *decode.Image]
	mu             sync.RWMutex
	loader         *EntryLoader
	preloadManager *PreloadManager
}

// NewImageManager creates an image manager; preloadCount 0 disables the
// background worker.
func NewImageManager(loader *EntryLoader, cacheSize, preloadCount int) *DefaultImageManager {
	onEvict := func(key string, _ *decode.Image) {
		debugLog("Cache evict: %q", key)
	}
	cache, err := lru.NewWithEvict[string, *decode.Image](cacheSize, onEvict)
	if err != nil {
		log.Printf("Error: Failed to create LRU cache: %v", err)
		cache, _ = lru.NewWithEvict[string, *decode.Image](16, onEvict)
	}

	m := &DefaultImageManager{
		cache:  cache,
		loader: loader,
	}
	if preloadCount > 0 {
		m.preloadManager = NewPreloadManager(m, preloadCount)
	}
	return m
}

func (m *DefaultImageManager) SetEntries(entries []filelist.Entry) {
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	// keys are entry keys, so the cache survives reordering
	debugLog("SetEntries: %d entries, cache preserved (%d items)", len(entries), m.cache.Len())
}

func (m *DefaultImageManager) GetEntriesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Invalidate drops a cached decode so the next GetImage reads the file again.
func (m *DefaultImageManager) Invalidate(e filelist.Entry) {
	m.cache.Remove(e.Key())
}

func (m *DefaultImageManager) StartPreload(currentIdx int, direction NavigationDirection) {
	if m.preloadManager != nil {
		m.preloadManager.StartPreload(currentIdx, direction)
	}
}

func (m *DefaultImageManager) StopPreload() {
	if m.preloadManager != nil {
		m.preloadManager.Stop()
	}
}

func (m *DefaultImageManager) SetPreloadEnabled(enabled bool) {
	if m.preloadManager != nil {
		m.preloadManager.SetEnabled(enabled)
	}
}

func (m *DefaultImageManager) GetPreloadStats() PreloadStats {
	if m.preloadManager != nil {
		return m.preloadManager.GetStats()
	}
	return PreloadStats{}
}

// GetImage returns the decoded image at idx, loading it on a cache miss.
// Failed decodes are not cached.
func (m *DefaultImageManager) GetImage(idx int) (*decode.Image, error) {
	entry, ok := m.entryAt(idx)
	if !ok {
		return nil, fmt.Errorf("index %d out of range", idx)
	}
	key := entry.Key()

	if img, ok := m.cache.Get(key); ok {
		debugLog("Cache HIT: %s (cache: %d items)", entry, m.cache.Len())
		return img, nil
	}

	img, err := m.loader.Load(entry)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, img)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	debugLog("Cache MISS: %s, loaded and cached (cache: %d items, memory: %dMB)",
		entry, m.cache.Len(), mem.Alloc/1024/1024)

	return img, nil
}

func (m *DefaultImageManager) entryAt(idx int) (filelist.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx < 0 || idx >= len(m.entries) {
		return filelist.Entry{}, false
	}
	return m.entries[idx], true
}
