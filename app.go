package main

import (
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"qiv/internal/colormod"
	"qiv/internal/filelist"
	"qiv/internal/geometry"
	"qiv/internal/hook"
	"qiv/internal/pixfmt"
)

// windowState is what was last pushed to the ebiten window.
type windowState struct {
	X, Y, W, H int
	Fullscreen bool
}

// App owns the viewer state. All methods run on ebiten's update goroutine.
type App struct {
	config       Config
	configStatus ConfigLoadResult

	list         *filelist.List
	imageManager ImageManager
	geom         *geometry.Engine
	mod          colormod.Modifier
	runner       *hook.Runner

	sortMethod int
	entryRank  map[string]int

	// current image
	native      *pixfmt.Native
	loadErr     error
	dropKey     string
	loadSeconds float64

	// texture is the single GPU copy of native; retired is released at the
	// start of the next update, once no draw can still reference it.
	texture      *ebiten.Image
	retired      *ebiten.Image
	textureDirty bool

	infoText   string
	statusText string

	showHelp           bool
	showStatus         bool
	transparency       bool
	jumpMode           bool
	jumpBuffer         string
	overlayMessage     string
	overlayMessageTime time.Time

	slideshow bool
	lastSlide time.Time
	quit      bool

	window       windowState
	renderer     *Renderer
	inputHandler *InputHandler
	lastSnapshot *RenderStateSnapshot
	dirty        bool
}

// NewApp wires the viewer together. The list must not be empty.
func NewApp(result ConfigLoadResult, list *filelist.List, imageManager ImageManager, monitor geometry.Rect) *App {
	config := result.Config

	geom := geometry.NewEngine(monitor)
	geom.Fullscreen = config.Fullscreen
	geom.Center = config.Center
	geom.Maxpect = config.Maxpect
	geom.ScaleDown = config.ScaleDown
	geom.FixedWidth = config.FixedWidth
	geom.FixedZoom = config.FixedZoom

	a := &App{
		config:       config,
		configStatus: result,
		list:         list,
		imageManager: imageManager,
		geom:         geom,
		mod:          colormod.FromOffsets(config.Brightness, config.Contrast, config.Gamma),
		runner:       hook.NewRunner(config.Command),
		sortMethod:   config.SortMethod,
		entryRank:    entryRanks(list.Entries()),
		showStatus:   config.Statusbar,
		transparency: config.Transparency,
		slideshow:    config.Slideshow,
		lastSlide:    time.Now(),
		dirty:        true,
		// force the first applyWindow
		window: windowState{W: -1},
	}

	km := NewKeybindingManager(config.Keybindings)
	mm := NewMousebindingManager(config.Mousebindings, config.MouseSettings)
	a.inputHandler = NewInputHandler(a, a, km, mm)
	a.renderer = NewRenderer(a)

	imageManager.SetEntries(list.Entries())
	// random jumps make neighbours useless
	imageManager.SetPreloadEnabled(!list.Random)
	return a
}

// Start loads the first image and sizes the window for it.
func (a *App) Start() {
	a.loadCurrent(NavigationForward)
	a.applyWindow()
}

// loadCurrent decodes the current entry and fits the geometry to it. A
// failed decode leaves the error placeholder up for one frame; the entry is
// dropped on the next update.
func (a *App) loadCurrent(direction NavigationDirection) {
	idx := a.list.Index()
	entry := a.list.Current()

	start := time.Now()
	img, err := a.imageManager.GetImage(idx)
	a.loadSeconds = time.Since(start).Seconds()
	a.textureDirty = true
	a.dirty = true

	if err != nil {
		log.Printf("Error: Failed to load %s: %v", entry, err)
		a.native = nil
		a.loadErr = err
		a.dropKey = entry.Key()
		a.geom.SetError()
		a.geom.CheckSize(true)
		a.updateStatus()
		return
	}

	a.loadErr = nil
	a.dropKey = ""
	if img.ProfileWarning != nil {
		log.Printf("Warning: %s: colour profile ignored: %v", entry, img.ProfileWarning)
		a.ShowOverlayMessage("Colour profile ignored")
	}

	a.native = img.Pixels
	a.geom.SetImage(img.Width(), img.Height())
	if turns := a.geom.ResolveRotation(a.config.Rotation); turns != 0 {
		a.native = a.native.Rotate(turns)
		a.geom.Rotate(turns)
	}
	a.geom.CheckSize(true)

	a.imageManager.StartPreload(idx, direction)
	a.updateStatus()
	debugLog("Loaded [%d/%d] %s in %.3fs", idx+1, a.list.Len(), entry, a.loadSeconds)
}

// updateStatus rebuilds the status line and window title. Command output
// is shown once.
func (a *App) updateStatus() {
	a.statusText = buildStatusText(StatusInfo{
		Name:        a.list.Current().String(),
		Width:       a.geom.OrigW,
		Height:      a.geom.OrigH,
		LoadSeconds: a.loadSeconds,
		ZoomPercent: a.geom.ZoomPercent(),
		Index:       a.list.Index(),
		Total:       a.list.Len(),
		Modifier:    a.mod,
		Info:        a.infoText,
		Failed:      a.loadErr != nil,
	})
	a.infoText = ""
	ebiten.SetWindowTitle(a.statusText)
	a.dirty = true
}

// dropFailed removes the entry that failed to decode.
func (a *App) dropFailed() error {
	key := a.dropKey
	a.dropKey = ""
	if a.list.Current().Key() != key {
		return nil
	}
	if err := a.list.Drop(a.list.Index()); err != nil {
		return err
	}
	a.imageManager.SetEntries(a.list.Entries())
	a.loadCurrent(NavigationForward)
	return nil
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	if a.retired != nil {
		a.retired.Deallocate()
		a.retired = nil
	}
	if a.quit {
		return ebiten.Termination
	}

	if a.dropKey != "" {
		if err := a.dropFailed(); err != nil {
			if errors.Is(err, filelist.ErrEmpty) {
				log.Printf("Error: No images left to show")
				return ebiten.Termination
			}
			log.Printf("Error: %v", err)
		}
	}

	if a.inputHandler.HandleInput() {
		a.dirty = true
	}
	if a.quit {
		return ebiten.Termination
	}

	if a.slideshow && !a.jumpMode && a.dropKey == "" {
		delay := time.Duration(a.config.SlideDelay) * time.Millisecond
		if time.Since(a.lastSlide) >= delay {
			a.lastSlide = time.Now()
			a.list.Next(0)
			a.loadCurrent(NavigationForward)
		}
	}

	a.applyWindow()
	a.ensureTexture()
	return nil
}

// applyWindow pushes geometry changes to the window.
func (a *App) applyWindow() {
	want := windowState{
		X:          a.geom.WinX,
		Y:          a.geom.WinY,
		W:          max(a.geom.WinW, 1),
		H:          max(a.geom.WinH, 1),
		Fullscreen: a.geom.Fullscreen,
	}
	if want == a.window {
		return
	}
	if want.Fullscreen != a.window.Fullscreen || a.window.W < 0 {
		ebiten.SetFullscreen(want.Fullscreen)
	}
	if !want.Fullscreen {
		ebiten.SetWindowSize(want.W, want.H)
		ebiten.SetWindowPosition(want.X, want.Y)
	}
	a.window = want
	a.dirty = true
}

// ensureTexture uploads the current image with the colour modifier applied.
func (a *App) ensureTexture() {
	if !a.textureDirty {
		return
	}
	a.textureDirty = false
	if a.texture != nil {
		a.retired = a.texture
		a.texture = nil
	}

	switch {
	case a.loadErr != nil:
		a.texture = CreateErrorImage(geometry.ErrorWidth, geometry.ErrorHeight,
			a.list.Current().String(), a.loadErr.Error())
	case a.native != nil:
		var img image.Image = a.native.ToNRGBA(a.transparency)
		img = a.mod.Apply(img)
		a.texture = ebiten.NewImageFromImage(img)
	}
	a.dirty = true
}

// Draw implements ebiten.Game. Frames are only redrawn when something
// changed.
func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	snapshot := NewRenderStateSnapshot(a, w, h)
	if !a.dirty && snapshot.Equals(a.lastSnapshot) {
		return
	}
	a.renderer.Draw(screen)
	a.lastSnapshot = snapshot
	a.dirty = false
}

// Layout implements ebiten.Game.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close stops background work.
func (a *App) Close() {
	a.imageManager.StopPreload()
	stats := a.imageManager.GetPreloadStats()
	debugLog("Preloaded %d images, %d failed", stats.LoadedCount, stats.FailedCount)
	if a.texture != nil {
		a.texture.Deallocate()
		a.texture = nil
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// RenderState

func (a *App) IsFullscreen() bool               { return a.geom.Fullscreen }
func (a *App) IsTransparent() bool              { return a.transparency }
func (a *App) GetTexture() *ebiten.Image        { return a.texture }
func (a *App) GetGeometry() geometry.State      { return a.geom.State }
func (a *App) HasLoadError() bool               { return a.loadErr != nil }
func (a *App) IsShowingHelp() bool              { return a.showHelp }
func (a *App) IsShowingStatus() bool            { return a.showStatus }
func (a *App) GetStatusText() string            { return a.statusText }
func (a *App) IsInJumpMode() bool               { return a.jumpMode }
func (a *App) GetJumpBuffer() string            { return a.jumpBuffer }
func (a *App) GetOverlayMessage() string        { return a.overlayMessage }
func (a *App) GetOverlayMessageTime() time.Time { return a.overlayMessageTime }
func (a *App) GetTotalCount() int               { return a.list.Len() }
func (a *App) GetCurrentIndex() int             { return a.list.Index() }
func (a *App) GetFontSize() float64             { return a.config.HelpFontSize }
func (a *App) GetConfigStatus() ConfigLoadResult {
	return a.configStatus
}
func (a *App) GetKeybindings() map[string][]string   { return a.config.Keybindings }
func (a *App) GetMousebindings() map[string][]string { return a.config.Mousebindings }

// InputActions

func (a *App) Exit() {
	a.quit = true
}

func (a *App) ShowOverlayMessage(message string) {
	a.overlayMessage = message
	a.overlayMessageTime = time.Now()
	a.dirty = true
}

func (a *App) ToggleHelp() {
	a.showHelp = !a.showHelp
}

func (a *App) ToggleStatusbar() {
	a.showStatus = !a.showStatus
}

func (a *App) ToggleFullscreen() {
	a.geom.Fullscreen = !a.geom.Fullscreen
	a.geom.CheckSize(false)
	a.updateStatus()
}

func (a *App) ToggleCenter() {
	a.geom.Center = !a.geom.Center
	if a.geom.Center {
		a.geom.CenterImage()
	}
	a.ShowOverlayMessage("Center: " + onOff(a.geom.Center))
}

func (a *App) ToggleTransparency() {
	a.transparency = !a.transparency
	a.textureDirty = true
	a.ShowOverlayMessage("Transparency: " + onOff(a.transparency))
}

func (a *App) NavigateNext() {
	a.list.Next(1)
	a.loadCurrent(NavigationForward)
}

func (a *App) NavigatePrevious() {
	a.list.Next(-1)
	a.loadCurrent(NavigationBackward)
}

func (a *App) JumpFirst() {
	a.list.First()
	a.loadCurrent(NavigationJump)
}

func (a *App) JumpLast() {
	a.list.Last()
	a.loadCurrent(NavigationJump)
}

func (a *App) ToggleRandom() {
	a.list.Random = !a.list.Random
	a.imageManager.SetPreloadEnabled(!a.list.Random)
	a.ShowOverlayMessage("Random order: " + onOff(a.list.Random))
}

func (a *App) ToggleSlideshow() {
	a.slideshow = !a.slideshow
	a.lastSlide = time.Now()
	a.ShowOverlayMessage("Slideshow: " + onOff(a.slideshow))
}

func (a *App) sortStrategy() SortStrategy {
	if a.sortMethod == SortEntryOrder {
		return &EntryOrderSortStrategy{Rank: a.entryRank}
	}
	return GetSortStrategy(a.sortMethod)
}

// CycleSortMethod re-sorts the list with the next strategy and stays on
// the current entry.
func (a *App) CycleSortMethod() {
	a.sortMethod = (a.sortMethod + 1) % len(GetAllSortStrategies())
	strategy := a.sortStrategy()
	current := a.list.Current().Key()

	a.list.Sort(func(entries []filelist.Entry) {
		copy(entries, strategy.Sort(entries))
	})
	for i, e := range a.list.Entries() {
		if e.Key() == current {
			a.list.SetIndex(i)
			break
		}
	}
	a.imageManager.SetEntries(a.list.Entries())
	a.updateStatus()
	a.ShowOverlayMessage("Sort: " + strategy.Name())
}

func (a *App) EnterJumpMode() {
	a.jumpMode = true
	a.jumpBuffer = ""
}

func (a *App) ExitJumpMode() {
	a.jumpMode = false
	a.jumpBuffer = ""
}

func (a *App) UpdateJumpBuffer(buffer string) {
	a.jumpBuffer = buffer
}

func (a *App) ProcessJump() {
	if err := a.list.Jump(a.jumpBuffer); err != nil {
		log.Printf("Warning: %v", err)
		a.ShowOverlayMessage(err.Error())
		return
	}
	a.loadCurrent(NavigationJump)
}

func (a *App) ZoomIn() {
	a.geom.ZoomIn()
	a.updateStatus()
}

func (a *App) ZoomOut() {
	if err := a.geom.ZoomOut(); err != nil {
		a.ShowOverlayMessage("(Cannot zoom out anymore)")
		return
	}
	a.updateStatus()
}

func (a *App) ZoomReset() {
	a.geom.Maxpect = false
	a.geom.ResetZoom()
	a.updateStatus()
}

func (a *App) ToggleMaxpect() {
	a.geom.Maxpect = !a.geom.Maxpect
	a.geom.ZoomStep = a.geom.FixedZoom
	a.geom.CheckSize(true)
	a.updateStatus()
	a.ShowOverlayMessage("Maxpect: " + onOff(a.geom.Maxpect))
}

func (a *App) ToggleScaleDown() {
	a.geom.ScaleDown = !a.geom.ScaleDown
	a.geom.Maxpect = false
	a.geom.ZoomStep = a.geom.FixedZoom
	a.geom.CheckSize(true)
	a.updateStatus()
	a.ShowOverlayMessage("Scale down: " + onOff(a.geom.ScaleDown))
}

func (a *App) Rotate(turns int) {
	if a.native == nil {
		return
	}
	a.native = a.native.Rotate(turns)
	a.geom.Rotate(turns)
	a.geom.CheckSize(false)
	a.textureDirty = true
	a.updateStatus()
}

func (a *App) Flip(horizontal bool) {
	if a.native == nil {
		return
	}
	a.native = a.native.Flip(horizontal)
	a.textureDirty = true
}

// MoveStep pans by a tenth of the monitor per unit.
func (a *App) MoveStep(dx, dy int) {
	a.geom.Move(dx*a.geom.Monitor.W/10, dy*a.geom.Monitor.H/10)
}

func (a *App) PanByDelta(dx, dy int) {
	a.geom.Move(dx, dy)
}

func (a *App) AdjustModifier(ch colormod.Channel, steps int) {
	a.mod.Adjust(ch, steps)
	a.textureDirty = true
	a.updateStatus()
}

func (a *App) ResetModifiers() {
	a.mod = colormod.Default()
	a.textureDirty = true
	a.updateStatus()
}

func (a *App) DeleteCurrent() {
	entry, err := a.list.DeleteCurrent()
	switch {
	case errors.Is(err, filelist.ErrEmpty):
		log.Printf("Deleted %s, no images left", entry)
		a.quit = true
		return
	case err != nil:
		log.Printf("Error: Failed to delete %s: %v", entry, err)
		a.ShowOverlayMessage(fmt.Sprintf("Delete failed: %v", err))
		return
	}

	a.imageManager.Invalidate(entry)
	a.imageManager.SetEntries(a.list.Entries())
	a.loadCurrent(NavigationForward)
	a.ShowOverlayMessage("Deleted " + filepath.Base(entry.Path))
}

func (a *App) Undelete() {
	entry, err := a.list.Undelete()
	if err != nil {
		log.Printf("Error: Failed to undelete: %v", err)
		a.ShowOverlayMessage(fmt.Sprintf("Undelete failed: %v", err))
		return
	}
	a.imageManager.SetEntries(a.list.Entries())
	a.loadCurrent(NavigationJump)
	a.ShowOverlayMessage("Restored " + filepath.Base(entry.Path))
}

func (a *App) Reload() {
	a.imageManager.Invalidate(a.list.Current())
	a.loadCurrent(NavigationJump)
}

// RunCommand hands the current file to the command hook, then reloads it
// since the helper may have changed it.
func (a *App) RunCommand(n int) {
	entry := a.list.Current()
	out, err := a.runner.Run(n, entry.String())
	if err != nil {
		log.Printf("Error: %v", err)
		a.ShowOverlayMessage(fmt.Sprintf("Command %d failed", n))
		return
	}
	a.infoText = out
	a.imageManager.Invalidate(entry)
	a.loadCurrent(NavigationJump)
}
