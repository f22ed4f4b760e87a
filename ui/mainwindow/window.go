// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"photomark/internal/asset"
	"photomark/internal/editor"
	"photomark/internal/export"
	"photomark/internal/project"
	"photomark/internal/template"
	"photomark/internal/version"
	"photomark/ui/canvas"
	"photomark/ui/panels"
	"photomark/ui/prefs"
)

const prefKeyLastDir = "lastDirectory"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	engine *editor.Engine
	prefs  *prefs.Prefs
	loader *asset.Loader

	canvas     *canvas.EditCanvas
	layers     *panels.LayersPanel
	properties *panels.PropertySheet
	statusBar  *widget.Label

	// Menu items that track engine state
	undoItem *fyne.MenuItem
	redoItem *fyne.MenuItem
	mainMenu *fyne.MainMenu
}

// New creates a new main window.
func New(fyneApp fyne.App, engine *editor.Engine, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Photomark")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		engine: engine,
		prefs:  appPrefs,
		loader: &asset.Loader{},
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreWindowSize()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewEditCanvas(mw.engine)
	mw.layers = panels.NewLayersPanel(mw.engine)
	mw.properties = panels.NewPropertySheet(mw.engine)
	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil, nil, nil,
		mw.canvas.Container(),
	)

	sidePanel := container.NewVSplit(
		mw.layers.Container(),
		mw.properties.Container(),
	)
	sidePanel.SetOffset(0.5)

	split := container.NewHSplit(sidePanel, canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom and history controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitToWindow)
	actualBtn := widget.NewButton("1:1", func() { mw.engine.SetZoom(1.0) })
	undoBtn := widget.NewButton("Undo", mw.engine.Undo)
	redoBtn := widget.NewButton("Redo", mw.engine.Redo)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
		widget.NewSeparator(),
		undoBtn,
		redoBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Load Template...", mw.onLoadTemplate),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export...", mw.onExport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.undoItem = fyne.NewMenuItem("Undo", mw.engine.Undo)
	mw.redoItem = fyne.NewMenuItem("Redo", mw.engine.Redo)
	editMenu := fyne.NewMenu("Edit",
		mw.undoItem,
		mw.redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Layer", mw.onDeleteLayer),
		fyne.NewMenuItem("Clear All", mw.onClear),
	)

	layerMenu := fyne.NewMenu("Layer",
		fyne.NewMenuItem("Add Text Watermark", mw.onAddText),
		fyne.NewMenuItem("Add Image Watermark...", mw.onAddImageWatermark),
		fyne.NewMenuItem("Add Frame", mw.onAddFrame),
		fyne.NewMenuItem("Add Collage", mw.onAddCollage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Visibility", mw.onToggleVisibility),
	)

	templateItems := make([]*fyne.MenuItem, 0)
	for _, tpl := range template.Builtins() {
		t := tpl
		templateItems = append(templateItems, fyne.NewMenuItem(t.NameEn, func() {
			t.Apply(mw.engine)
			mw.updateStatus("Template applied: " + t.NameEn)
		}))
	}
	templateMenu := fyne.NewMenu("Templates", templateItems...)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitToWindow),
		fyne.NewMenuItem("Actual Size", func() { mw.engine.SetZoom(1.0) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, layerMenu, templateMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
	mw.refreshHistoryItems()
}

// setupEventHandlers registers for engine events.
func (mw *MainWindow) setupEventHandlers() {
	mw.engine.On(editor.EventImageChanged, func(data interface{}) {
		if src, ok := data.(string); ok && src != "" {
			mw.SetTitle("Photomark - " + filepath.Base(src))
			mw.updateStatus("Image loaded: " + src)
		} else {
			mw.SetTitle("Photomark")
		}
	})

	mw.engine.On(editor.EventZoomChanged, func(data interface{}) {
		if zoom, ok := data.(float64); ok {
			mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
		}
	})

	mw.engine.On(editor.EventHistoryChanged, func(interface{}) {
		mw.refreshHistoryItems()
	})
}

// refreshHistoryItems enables or disables undo/redo to match the history.
func (mw *MainWindow) refreshHistoryItems() {
	mw.undoItem.Disabled = !mw.engine.CanUndo()
	mw.redoItem.Disabled = !mw.engine.CanRedo()
	if mw.mainMenu != nil {
		mw.mainMenu.Refresh()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// SavePreferences persists window size and preferences to disk.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) restoreWindowSize() {
	w := mw.prefs.Float(prefs.KeyWindowWidth, 1200)
	h := mw.prefs.Float(prefs.KeyWindowHeight, 800)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefKeyLastDir, "")
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

// onOpenImage decodes the chosen file off the UI thread; the loader drops
// the completion if another open supersedes it first.
func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.updateStatus("Loading " + filepath.Base(path) + "...")

		// The completion arrives on the decode goroutine; hop back to the
		// event loop before touching the engine or any widget.
		mw.loader.Load(path, func(a *asset.Asset, err error) {
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, mw.Window)
					return
				}
				mw.engine.SetImage(editor.BaseImage{Src: a.Path, Data: a.Image},
					float64(a.Width), float64(a.Height))
			})
		})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(asset.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onLoadTemplate() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		tpl, err := template.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		tpl.Apply(mw.engine)
		mw.updateStatus("Template applied: " + tpl.Name)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		proj, err := project.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}

		if imgPath := proj.AbsImagePath(path); imgPath != "" {
			a, err := asset.Load(imgPath)
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.engine.SetImage(editor.BaseImage{Src: a.Path, Data: a.Image},
				float64(a.Width), float64(a.Height))
		}
		proj.Restore(mw.engine)
		mw.SetTitle("Photomark - " + filepath.Base(path))
		mw.updateStatus("Project loaded: " + path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pmproj"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".pmproj" {
			path += ".pmproj"
		}
		mw.saveLastDir(path)

		name := filepath.Base(path)
		proj := project.New(name[:len(name)-len(filepath.Ext(name))])
		proj.Snapshot(path, mw.engine)
		if err := proj.Save(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Project saved: " + path)
	}, mw.Window)
	fd.SetFileName("session.pmproj")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExport() {
	formatName := mw.prefs.String(prefs.KeyExportFormat, "png")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		format = export.FormatPNG
	}
	req := export.Request{
		Format:  format,
		Quality: mw.prefs.Float(prefs.KeyExportQuality, 0.9),
		Scale:   mw.prefs.Float(prefs.KeyExportScale, 1.0),
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)

		if f, err := export.ParseFormat(trimDot(filepath.Ext(path))); err == nil {
			req.Format = f
		}

		img, err := export.Render(mw.engine, req)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if err := export.Encode(writer, img, req); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyExportFormat, string(req.Format))
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fd.SetFileName("photomark." + string(format))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAddText() {
	mw.engine.AddTextWatermark("Watermark", editor.AnchorBottomRight, editor.Patch{})
}

func (mw *MainWindow) onAddImageWatermark() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.engine.AddImageWatermark(path, editor.AnchorBottomRight, editor.Patch{})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(asset.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAddFrame() {
	mw.engine.AddFrame(editor.Patch{})
}

func (mw *MainWindow) onAddCollage() {
	mw.engine.AddCollage(editor.Patch{})
}

func (mw *MainWindow) onToggleVisibility() {
	if id := mw.engine.ActiveLayerID(); id != "" {
		mw.engine.ToggleLayerVisibility(id)
	}
}

func (mw *MainWindow) onDeleteLayer() {
	if id := mw.engine.ActiveLayerID(); id != "" {
		mw.engine.DeleteLayer(id)
	}
}

func (mw *MainWindow) onClear() {
	dialog.ShowConfirm("Clear All", "Discard the image and all layers?", func(ok bool) {
		if ok {
			mw.engine.Clear()
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Photomark",
		fmt.Sprintf("Photomark %s\nBuilt %s (%s)\n\nWatermark, frame, and collage editing for photos.",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
