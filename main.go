// Package main provides the entry point for the Photomark application.
package main

import (
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	photomarkapp "photomark/internal/app"
	"photomark/internal/asset"
	"photomark/internal/editor"
	"photomark/internal/version"
	"photomark/ui/mainwindow"
	"photomark/ui/prefs"
)

const appTitle = "Photomark"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := app.NewWithID("photomark")
	fyneApp.Settings().SetTheme(&photomarkapp.PhotomarkTheme{})

	engine := editor.NewEngine()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, engine, appPrefs)
	win.SetTitle(appTitle)
	win.SetOnClosed(func() {
		win.SavePreferences()
	})

	// An image path on the command line is loaded straight into the session.
	if len(os.Args) > 1 {
		path := os.Args[1]
		a, err := asset.Load(path)
		if err != nil {
			log.Printf("Failed to load image %s: %v", path, err)
		} else {
			engine.SetImage(editor.BaseImage{Src: a.Path, Data: a.Image},
				float64(a.Width), float64(a.Height))
		}
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := photomarkapp.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	// The watcher fires on its own goroutine; hop onto the event loop
	// before showing the dialog.
	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		fyne.Do(func() {
			showRestartPrompt(win, reloader)
		})
	})

	reloader.Start()
}

func showRestartPrompt(win *mainwindow.MainWindow, reloader *photomarkapp.HotReloader) {
	dialog.ShowConfirm("New Version Available",
		"The application binary has been updated.\nRestart now?",
		func(restart bool) {
			if restart {
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
				return
			}
			reloader.ResetBaseline()
			reloader.Start()
		}, win.Window)
}
